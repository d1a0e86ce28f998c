package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewInsightCommand creates the insight command.
func NewInsightCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "insight",
		Short: "Show today's status and the suggested action",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rootOpts, syncOnOpen)
			if err != nil {
				return err
			}
			defer a.Close()

			v, err := a.insight()
			if err != nil {
				return err
			}
			return a.out.Result(renderInsight(v), v)
		},
	}
}

func (a *app) insight() (insightView, error) {
	ins, err := a.session.Insight()
	if err != nil {
		return insightView{}, WrapExitError(ExitFailure, "could not evaluate insight", err)
	}
	snap := a.session.Snapshot()
	today, err := newTodayView(snap.TotalToday, snap.Profile.DailyLimit)
	if err != nil {
		return insightView{}, WrapExitError(ExitFailure, "invalid daily limit", err)
	}
	return insightView{Today: today, Insight: ins, Streak: snap.Streak, Points: snap.Profile.Points}, nil
}

// AcceptOptions holds flags for the accept command.
type AcceptOptions struct {
	*RootOptions
	Now bool
}

// NewAcceptCommand creates the accept command.
func NewAcceptCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AcceptOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "accept",
		Short: "Act on the current suggestion",
		Long: `Act on the current suggestion. Water and protein suggestions are
logged immediately. A walk starts the suggestion timer and is logged when
it runs out; press Ctrl-C to cancel it, or pass --now if the walk is
already done.

Example:
  sugarwarrior accept
  sugarwarrior accept --now`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rootOpts, syncOnOpen)
			if err != nil {
				return err
			}
			defer a.Close()

			v, err := a.insight()
			if err != nil {
				return err
			}
			rec := v.Insight.Recommendation
			if rec == nil {
				return a.out.Result("No action needed right now.", map[string]bool{"accepted": false})
			}

			ctx := commandContext(cmd)
			res, err := a.handler.Accept(ctx, rec)
			if err != nil {
				return sessionExit("could not complete action", err)
			}
			if res != nil {
				return a.reportRecord(*res)
			}

			if opts.Now {
				done, err := a.handler.FinishTimer(ctx)
				if err != nil {
					return sessionExit("could not complete walk", err)
				}
				return a.reportRecord(done)
			}

			a.out.VerboseLog("%s", renderTimer(a.handler.Timer()))
			fmt.Fprintf(a.out.GetErrWriter(), "Walk timer started (%s). Press Ctrl-C to cancel.\n", a.cfg.SuggestionTimer)

			sigCtx, cancel := signalContext(ctx, a.logger)
			defer cancel()
			select {
			case done := <-a.timerDone:
				if done.Err != nil {
					return sessionExit("could not complete walk", done.Err)
				}
				return a.reportRecord(done)
			case <-sigCtx.Done():
				a.handler.CancelTimer()
				return a.out.Result("Walk cancelled.", map[string]bool{"accepted": false})
			}
		},
	}

	cmd.Flags().BoolVar(&opts.Now, "now", false, "log the walk immediately instead of starting the timer")

	return cmd
}

// HeatmapOptions holds flags for the heatmap command.
type HeatmapOptions struct {
	*RootOptions
	Days int
}

// NewHeatmapCommand creates the heatmap command.
func NewHeatmapCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HeatmapOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "Show daily sugar totals for recent days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, rootOpts, syncOnOpen)
			if err != nil {
				return err
			}
			defer a.Close()

			cells, err := a.session.Heatmap(a.clock.Now(), opts.Days)
			if err != nil {
				return sessionExit("invalid heatmap range", err)
			}
			return a.out.Result(renderHeatmap(cells), cells)
		},
	}

	cmd.Flags().IntVar(&opts.Days, "days", 14, "number of days to show")

	return cmd
}
