package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/sugarwarrior/internal/model"
)

// profileFlags binds one flag per editable profile field. Only flags the
// user actually set end up in the update.
type profileFlags struct {
	username   string
	name       string
	age        int
	gender     string
	height     float64
	weight     float64
	dailyLimit float64
	avatar     string
	steps      int
	sleepHours float64
}

func (f *profileFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.username, "username", "", "account username")
	fs.StringVar(&f.name, "name", "", "display name")
	fs.IntVar(&f.age, "age", 0, "age in years")
	fs.StringVar(&f.gender, "gender", "", "gender")
	fs.Float64Var(&f.height, "height", 0, "height in cm")
	fs.Float64Var(&f.weight, "weight", 0, "weight in kg")
	fs.Float64Var(&f.dailyLimit, "limit", 0, "daily sugar limit in grams")
	fs.StringVar(&f.avatar, "avatar", "", "avatar glyph")
	fs.IntVar(&f.steps, "steps", 0, "today's step count")
	fs.Float64Var(&f.sleepHours, "sleep", 0, "last night's sleep in hours")
}

func (f *profileFlags) update(cmd *cobra.Command) model.ProfileUpdate {
	var u model.ProfileUpdate
	changed := cmd.Flags().Changed
	if changed("username") {
		u.Username = &f.username
	}
	if changed("name") {
		u.Name = &f.name
	}
	if changed("age") {
		u.Age = &f.age
	}
	if changed("gender") {
		u.Gender = &f.gender
	}
	if changed("height") {
		u.Height = &f.height
	}
	if changed("weight") {
		u.Weight = &f.weight
	}
	if changed("limit") {
		u.DailyLimit = &f.dailyLimit
	}
	if changed("avatar") {
		u.Avatar = &f.avatar
	}
	if changed("steps") {
		u.Steps = &f.steps
	}
	if changed("sleep") {
		u.SleepHours = &f.sleepHours
	}
	return u
}

// NewProfileCommand creates the profile command group.
func NewProfileCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit the profile",
	}
	cmd.AddCommand(newProfileShowCommand(rootOpts))
	cmd.AddCommand(newProfileSetCommand(rootOpts))
	return cmd
}

func newProfileShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rootOpts, syncOnOpen)
			if err != nil {
				return err
			}
			defer a.Close()

			p := a.session.Profile()
			return a.out.Result(renderProfile(p), p)
		},
	}
}

func newProfileSetCommand(rootOpts *RootOptions) *cobra.Command {
	var flags profileFlags

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Edit profile fields",
		Long: `Edit one or more profile fields. BMI is recomputed when height or
weight changes. With an account, the edit is also sent to the backend.

Example:
  sugarwarrior profile set --weight 79.5 --steps 8200`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			upd := flags.update(cmd)
			if upd.IsEmpty() {
				return NewExitError(ExitCommandError, "no profile fields given")
			}

			a, err := openApp(cmd, rootOpts, syncSkip)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.session.SetProfile(commandContext(cmd), upd); err != nil {
				return sessionExit("invalid profile", err)
			}
			p := a.session.Profile()
			return a.out.Result(renderProfile(p), p)
		},
	}
	flags.register(cmd)
	return cmd
}
