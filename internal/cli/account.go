package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sugarwarrior/internal/session"
)

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username>",
		Short: "Sign in to an existing account",
		Long: `Look up an existing account by username and load its profile and
history onto this device.

Example:
  sugarwarrior login sam`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rootOpts, syncSkip)
			if err != nil {
				return err
			}
			defer a.Close()

			ok, err := a.session.Login(commandContext(cmd), args[0])
			if err != nil && !ok {
				return sessionExit("login failed", err)
			}
			if !ok {
				return NewExitError(ExitFailure, fmt.Sprintf("no account named %q", args[0]))
			}
			if session.IsIdentityInvalidated(err) {
				return WrapExitError(ExitFailure, "account no longer exists; signed out", err)
			}
			if err != nil {
				a.logger.Warn("signed in but could not load history", "error", err)
			}
			p := a.session.Profile()
			return a.out.Result(fmt.Sprintf("Signed in as %s.", p.Username), p)
		},
	}
}

// RegisterOptions holds flags for the register command.
type RegisterOptions struct {
	*RootOptions
	Profile profileFlags
}

// NewRegisterCommand creates the register command.
func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RegisterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account from the local profile",
		Long: `Create a backend account from the local profile plus any profile flags.
The flags are only saved once the backend accepts the account.

Example:
  sugarwarrior register --username sam --name Sam --age 31 --height 180 --weight 81`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rootOpts, syncSkip)
			if err != nil {
				return err
			}
			defer a.Close()

			upd := opts.Profile.update(cmd)
			if err := a.session.RegisterWith(commandContext(cmd), upd); err != nil {
				return sessionExit("registration failed", err)
			}
			p := a.session.Profile()
			return a.out.Result(fmt.Sprintf("Account created (%s).", p.RemoteID), p)
		},
	}
	opts.Profile.register(cmd)
	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear local state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rootOpts, syncSkip)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.session.Logout(commandContext(cmd)); err != nil {
				return WrapExitError(ExitFailure, "logout failed", err)
			}
			return a.out.Result("Signed out.", map[string]bool{"signed_out": true})
		},
	}
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Pull profile and history from the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rootOpts, syncSkip)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.session.Profile().HasIdentity() {
				return NewExitError(ExitFailure, "no account on this device; run 'sugarwarrior register' or 'sugarwarrior login'")
			}
			if err := a.session.InitializeData(commandContext(cmd)); err != nil {
				_ = a.out.Error(errorCode(err), "sync failed", err.Error())
				if session.IsIdentityInvalidated(err) {
					return WrapExitError(ExitFailure, "account no longer exists; signed out", err)
				}
				return sessionExit("sync failed", err)
			}
			snap := a.session.Snapshot()
			return a.out.Result(
				fmt.Sprintf("Synced %d entries.", len(snap.History)),
				map[string]int{"entries": len(snap.History), "streak": snap.Streak, "points": snap.Profile.Points})
		},
	}
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear this session's history and streak",
		Long: `Clear history, today's total and the streak for this session. The
profile and account are kept; entries already on the backend are not
deleted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rootOpts, syncSkip)
			if err != nil {
				return err
			}
			defer a.Close()

			a.session.ResetProgress()
			return a.out.Result("Progress reset.", map[string]bool{"reset": true})
		},
	}
}
