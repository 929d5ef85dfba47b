package main

import (
	"fmt"
	"io"
	"time"

	"fanverse/internal/logger"
	"fanverse/internal/remote"
	"fanverse/internal/session"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app is built before every subcommand runs.
type app struct {
	cfg     Config
	log     *zap.Logger
	manager *session.Manager
	out     io.Writer
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:           "fanctl",
		Short:         "Manage your fanverse account, profile and fan level",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("api-url", "", "fanverse API gateway URL")
	flags.String("token-file", "", "where the session tokens are kept")
	flags.Duration("timeout", 0, "timeout for each backend request")
	flags.String("log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newSignupCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newProfileCmd(a),
		newXPCmd(a),
		newVerifyCmd(a),
	)
	return root, a
}

// execute runs root and releases the session manager afterwards, also when
// the subcommand failed.
func (a *app) execute(root *cobra.Command) error {
	defer a.teardown()
	return root.Execute()
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := LoadConfig(".", cmd.Flags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	a.out = cmd.OutOrStdout()
	a.log = logger.New(cfg.Log).With(zap.String("component", "fanctl"))

	client := remote.New(remote.Config{
		BaseURL: cfg.APIURL,
		Store:   remote.NewFileTokenStore(cfg.TokenFile),
		Logger:  a.log,
	})
	a.manager = session.New(client, session.Options{
		Logger:         a.log,
		RequestTimeout: cfg.RequestTimeout,
	})
	a.manager.Subscribe(a.announce)

	if err := a.manager.Init(cmd.Context()); err != nil {
		a.log.Warn("could not restore session", zap.Error(err))
	}
	return nil
}

func (a *app) teardown() {
	if a.manager != nil {
		a.manager.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func (a *app) announce(ev session.Event) {
	switch ev.Kind {
	case session.EventLevelUp:
		fmt.Fprintf(a.out, "Level up! %d -> %d\n", ev.OldLevel, ev.NewLevel)
	case session.EventVerificationRequired:
		fmt.Fprintln(a.out, "Check your inbox to confirm your email address.")
	}
}

func (a *app) printSnapshot() {
	printSnapshot(a.out, a.manager.Snapshot())
}

func printSnapshot(w io.Writer, s session.Snapshot) {
	fmt.Fprintf(w, "state:    %s\n", s.State)
	if s.PendingEmail != "" {
		fmt.Fprintf(w, "pending:  %s\n", s.PendingEmail)
	}
	if s.Identity == nil {
		return
	}
	p := s.Profile
	fmt.Fprintf(w, "user:     %s <%s>\n", p.Username, s.Identity.Email)
	fmt.Fprintf(w, "level:    %d (%d xp)\n", p.FanLevel, p.XP)
	fmt.Fprintf(w, "verified: %t\n", p.Verified)
	if p.FavoritePlayer != "" {
		fmt.Fprintf(w, "player:   %s\n", p.FavoritePlayer)
	}
	fmt.Fprintf(w, "prefs:    theme=%s language=%s notifications=%t\n",
		p.Preferences.Theme, p.Preferences.Language, p.Preferences.Notifications)
	if !p.CreatedAt.IsZero() {
		fmt.Fprintf(w, "joined:   %s\n", p.CreatedAt.Format(time.DateOnly))
	}
}
