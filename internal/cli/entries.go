package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sugarwarrior/internal/action"
	"github.com/roach88/sugarwarrior/internal/model"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	Grams    float64
	Calories float64
	Category string
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log <food>",
		Short: "Log a food with its sugar content",
		Long: `Log a food entry. The entry is kept locally and, with an account,
sent to the backend for points and streak.

Example:
  sugarwarrior log "Orange juice" --grams 21 --calories 110 --category fruit`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := action.QuickLog{
				Name:       strings.Join(args, " "),
				Category:   model.ParseCategory(opts.Category),
				SugarGrams: opts.Grams,
				Calories:   opts.Calories,
			}
			return recordQuickLog(cmd, rootOpts, q)
		},
	}

	cmd.Flags().Float64VarP(&opts.Grams, "grams", "g", 0, "sugar in grams (required)")
	cmd.Flags().Float64Var(&opts.Calories, "calories", 0, "calories")
	cmd.Flags().StringVar(&opts.Category, "category", "snack", "category (soda|coffee|snack|fruit)")
	_ = cmd.MarkFlagRequired("grams")

	return cmd
}

// NewQuickCommand creates the quick command.
func NewQuickCommand(rootOpts *RootOptions) *cobra.Command {
	names := make([]string, 0, len(action.Presets))
	for _, p := range action.Presets {
		names = append(names, strings.ToLower(p.Name))
	}

	return &cobra.Command{
		Use:       "quick <preset>",
		Short:     "Log a one-tap preset (" + strings.Join(names, ", ") + ")",
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, ok := action.Preset(args[0])
			if !ok {
				return NewExitError(ExitCommandError, fmt.Sprintf("unknown preset %q: must be one of %v", args[0], names))
			}
			return recordQuickLog(cmd, rootOpts, q)
		},
	}
}

func recordQuickLog(cmd *cobra.Command, rootOpts *RootOptions, q action.QuickLog) error {
	a, err := openApp(cmd, rootOpts, syncOnOpen)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.handler.QuickLog(commandContext(cmd), q)
	if err != nil {
		if errors.Is(err, action.ErrInvalidQuickLog) {
			return WrapExitError(ExitCommandError, "invalid entry", err)
		}
		return sessionExit("could not log entry", err)
	}
	return a.reportRecord(res)
}

// reportRecord prints a recorded action with today's status.
func (a *app) reportRecord(res action.Result) error {
	snap := a.session.Snapshot()
	today, err := newTodayView(snap.TotalToday, snap.Profile.DailyLimit)
	if err != nil {
		return WrapExitError(ExitFailure, "invalid daily limit", err)
	}
	v := recordView{Event: res.Event, Reward: res.Reward, Today: today}
	return a.out.Result(renderRecord(v), v)
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <entry-id>",
		Short: "Remove a logged entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rootOpts, syncOnOpen)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.session.RemoveEntry(commandContext(cmd), args[0]); err != nil {
				return sessionExit("could not remove entry", err)
			}
			snap := a.session.Snapshot()
			today, err := newTodayView(snap.TotalToday, snap.Profile.DailyLimit)
			if err != nil {
				return WrapExitError(ExitFailure, "invalid daily limit", err)
			}
			return a.out.Result(fmt.Sprintf("Removed %s.\n%s", args[0], today), today)
		},
	}
}

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Today bool
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List logged entries, most recent first",
		Long: `List logged entries, most recent first. Entries confirmed by the
backend are marked with '*'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rootOpts, syncOnOpen)
			if err != nil {
				return err
			}
			defer a.Close()

			now := a.clock.Now()
			snap := a.session.Snapshot()
			events := snap.History
			if opts.Today {
				events = model.EntriesOn(events, now)
			}
			entries := make([]entryView, 0, len(events))
			for _, e := range events {
				entries = append(entries, newEntryView(e, now.Location()))
			}
			today, err := newTodayView(snap.TotalToday, snap.Profile.DailyLimit)
			if err != nil {
				return WrapExitError(ExitFailure, "invalid daily limit", err)
			}
			return a.out.Result(renderHistory(entries, today), map[string]interface{}{
				"entries": entries,
				"today":   today,
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Today, "today", false, "only show today's entries")

	return cmd
}
