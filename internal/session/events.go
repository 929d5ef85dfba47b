package session

import "sync"

type EventKind string

const (
	EventChanged              EventKind = "session_changed"
	EventLevelUp              EventKind = "level_up"
	EventVerificationRequired EventKind = "verification_required"
	EventLoggedOut            EventKind = "signed_out"
)

type Event struct {
	Kind     EventKind
	Snapshot Snapshot
	// OldLevel and NewLevel are set for EventLevelUp.
	OldLevel int
	NewLevel int
}

type Listener func(Event)

type listenerEntry struct {
	id int
	fn Listener
}

type listeners struct {
	mu      sync.Mutex
	nextID  int
	entries []listenerEntry
}

func (l *listeners) add(fn Listener) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	id := l.nextID
	l.entries = append(l.entries, listenerEntry{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { l.remove(id) })
	}
}

func (l *listeners) remove(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, e := range l.entries {
		if e.id == id {
			l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
			return
		}
	}
}

func (l *listeners) reset() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}

// emit calls every listener in subscription order. It must not be called
// with the manager's state lock held.
func (l *listeners) emit(events ...Event) {
	l.mu.Lock()
	entries := make([]listenerEntry, len(l.entries))
	copy(entries, l.entries)
	l.mu.Unlock()

	for _, ev := range events {
		for _, e := range entries {
			e.fn(ev)
		}
	}
}
