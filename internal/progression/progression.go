// Package progression derives fan levels from XP and holds the XP rewards
// granted for fan activities.
package progression

import "fmt"

// XPPerLevel is the amount of XP between two fan levels.
const XPPerLevel = 500

// LevelForXP returns the fan level for a non-negative XP total.
func LevelForXP(xp int) int {
	if xp < 0 {
		return 1
	}
	return xp/XPPerLevel + 1
}

// ValidLevel reports whether level is the level derived from xp.
func ValidLevel(xp, level int) bool {
	return xp >= 0 && level == LevelForXP(xp)
}

type Activity string

const (
	ActivityChatMessage     Activity = "chat_message"
	ActivityNotificationsOn Activity = "notifications_on"
	ActivityStorePurchase   Activity = "store_purchase"
	ActivityLiveMatchWatch  Activity = "live_match_watch"
	ActivityLiveEngagement  Activity = "live_engagement"
)

var rewards = map[Activity]int{
	ActivityChatMessage:     3,
	ActivityNotificationsOn: 3,
	ActivityStorePurchase:   10,
	ActivityLiveMatchWatch:  5,
	ActivityLiveEngagement:  2,
}

// Reward returns the XP granted for an activity.
func Reward(a Activity) (int, error) {
	xp, ok := rewards[a]
	if !ok {
		return 0, fmt.Errorf("unknown activity %q", a)
	}
	return xp, nil
}

// Activities lists the known activities in a stable order.
func Activities() []Activity {
	return []Activity{
		ActivityChatMessage,
		ActivityNotificationsOn,
		ActivityStorePurchase,
		ActivityLiveMatchWatch,
		ActivityLiveEngagement,
	}
}
