package main

import (
	"fmt"
	"strconv"
	"strings"

	"fanverse/internal/progression"
	"fanverse/internal/session"

	"github.com/spf13/cobra"
)

func newSignupCmd(a *app) *cobra.Command {
	var username, email, password string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a fanverse account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.manager.Signup(cmd.Context(), username, email, password); err != nil {
				return err
			}
			a.printSnapshot()
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (at least 6 characters)")
	markRequired(cmd, "username", "email", "password")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.manager.Login(cmd.Context(), email, password); err != nil {
				return err
			}
			a.printSnapshot()
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	markRequired(cmd, "email", "password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			a.manager.Logout(cmd.Context())
			fmt.Fprintln(a.out, "Signed out.")
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			a.printSnapshot()
		},
	}
}

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View or change your profile",
	}

	var (
		username, avatar, player, theme, language string
		notifications                             bool
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Update profile fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var patch session.ProfilePatch
			flags := cmd.Flags()
			if flags.Changed("username") {
				patch.Username = &username
			}
			if flags.Changed("avatar") {
				patch.AvatarURL = &avatar
			}
			if flags.Changed("favorite-player") {
				patch.FavoritePlayer = &player
			}
			var prefs session.PreferencesPatch
			if flags.Changed("theme") {
				t := session.Theme(strings.ToLower(theme))
				prefs.Theme = &t
			}
			if flags.Changed("language") {
				prefs.Language = &language
			}
			if flags.Changed("notifications") {
				prefs.Notifications = &notifications
			}
			if prefs != (session.PreferencesPatch{}) {
				patch.Preferences = &prefs
			}
			if patch == (session.ProfilePatch{}) {
				return fmt.Errorf("nothing to update")
			}

			if err := a.manager.UpdateProfile(cmd.Context(), patch); err != nil {
				return err
			}
			a.printSnapshot()
			return nil
		},
	}
	set.Flags().StringVar(&username, "username", "", "display name")
	set.Flags().StringVar(&avatar, "avatar", "", "avatar URL")
	set.Flags().StringVar(&player, "favorite-player", "", "favorite player")
	set.Flags().StringVar(&theme, "theme", "", "theme: classic, modern or retro")
	set.Flags().StringVar(&language, "language", "", "language code")
	set.Flags().BoolVar(&notifications, "notifications", true, "enable notifications")

	refresh := &cobra.Command{
		Use:   "refresh",
		Short: "Reload the profile, e.g. after confirming your email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.manager.Refresh(cmd.Context()); err != nil {
				return err
			}
			a.printSnapshot()
			return nil
		},
	}

	cmd.AddCommand(set, refresh)
	return cmd
}

func newXPCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "xp",
		Short: "Earn XP",
	}

	add := &cobra.Command{
		Use:   "add <amount>",
		Short: "Add XP to your profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[0])
			}
			if err := a.requireSignedIn(); err != nil {
				return err
			}
			if err := a.manager.AddXP(cmd.Context(), amount); err != nil {
				return err
			}
			a.printSnapshot()
			return nil
		},
	}

	names := make([]string, 0, len(progression.Activities()))
	for _, act := range progression.Activities() {
		names = append(names, string(act))
	}
	award := &cobra.Command{
		Use:       "award <activity>",
		Short:     "Earn the XP reward for an activity (" + strings.Join(names, ", ") + ")",
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSignedIn(); err != nil {
				return err
			}
			if err := a.manager.Award(cmd.Context(), progression.Activity(args[0])); err != nil {
				return err
			}
			a.printSnapshot()
			return nil
		},
	}

	cmd.AddCommand(add, award)
	return cmd
}

func newVerifyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Email verification",
	}
	var email string
	resend := &cobra.Command{
		Use:   "resend",
		Short: "Send the confirmation email again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email != "" {
				a.manager.SetPendingEmail(email)
			}
			if err := a.manager.ResendVerification(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Confirmation email sent.")
			return nil
		},
	}
	resend.Flags().StringVar(&email, "email", "", "address used at signup, when not signed in")
	cmd.AddCommand(resend)
	return cmd
}

// requireSignedIn turns the manager's silent anonymous no-op into a message
// for the terminal.
func (a *app) requireSignedIn() error {
	if err := a.manager.Require(session.FeatureProfile); err != nil {
		return fmt.Errorf("%w: run fanctl login first", err)
	}
	return nil
}

func markRequired(cmd *cobra.Command, names ...string) {
	for _, n := range names {
		_ = cmd.MarkFlagRequired(n)
	}
}
