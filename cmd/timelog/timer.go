package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dori/timelog/internal/app"
	"github.com/dori/timelog/internal/model"
	"github.com/dori/timelog/internal/tracker"
)

func (c *cli) timerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Control an entry's timer",
	}

	action := func(use, short, done string, fn func(t *tracker.Tracker, id string) error) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withApp(func(a *app.App) error {
					if _, err := findEntry(a.Tracker, args[0]); err != nil {
						return err
					}
					if err := fn(a.Tracker, args[0]); err != nil {
						return err
					}
					e, _ := a.Tracker.Entry(args[0])
					fmt.Fprintf(cmd.OutOrStdout(), "Timer %s for %q, entry total %s\n", done, e.Description, e.Duration)
					if done == "stopped" {
						a.Notifier.SendTimerStopped(e.Description, time.Duration(e.Duration.TotalSeconds)*time.Second)
					}
					return nil
				})
			},
		}
	}

	cmd.AddCommand(
		action("start", "Start a stopped timer", "started", (*tracker.Tracker).StartTimer),
		action("pause", "Pause a running timer", "paused", (*tracker.Tracker).PauseTimer),
		action("resume", "Resume a paused timer", "resumed", (*tracker.Tracker).ResumeTimer),
		action("stop", "Stop a timer and log its time as a period", "stopped", (*tracker.Tracker).StopTimer),
	)
	return cmd
}

func (c *cli) stopwatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stopwatch",
		Aliases: []string{"sw"},
		Short:   "Control the stopwatch",
	}

	start := &cobra.Command{
		Use:   "start",
		Short: "Start or resume the stopwatch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app.App) error {
				id, err := a.Tracker.StartStopwatch()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stopwatch running on %s\n", id)
				return nil
			})
		},
	}

	pause := &cobra.Command{
		Use:   "pause",
		Short: "Pause the stopwatch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app.App) error {
				if err := a.Tracker.PauseStopwatch(); err != nil {
					return err
				}
				printStopwatch(cmd.OutOrStdout(), a.Tracker.Stopwatch())
				return nil
			})
		},
	}

	stop := &cobra.Command{
		Use:   "stop [description]",
		Short: "Stop the stopwatch and keep its entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app.App) error {
				e, ok, err := a.Tracker.StopStopwatch(strings.Join(args, " "))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Stopwatch is not running.")
					return nil
				}
				a.Notifier.SendStopwatchStopped(e.Description, time.Duration(e.Duration.TotalSeconds)*time.Second)
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s %q (%s)\n", e.ID, e.Description, e.Duration)
				return nil
			})
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Abandon the stopwatch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app.App) error {
				if err := a.Tracker.ResetStopwatch(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Stopwatch reset.")
				return nil
			})
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the stopwatch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app.App) error {
				printStopwatch(cmd.OutOrStdout(), a.Tracker.Stopwatch())
				return nil
			})
		},
	}

	cmd.AddCommand(start, pause, stop, reset, status)
	return cmd
}

func printStopwatch(w io.Writer, sw tracker.Stopwatch) {
	if !sw.Active {
		fmt.Fprintln(w, "Stopwatch: idle")
		return
	}
	state := "running"
	if !sw.Running {
		state = "paused"
	}
	fmt.Fprintf(w, "Stopwatch: %s %s on %s (%s)\n", state, model.FormatHMS(int(sw.Elapsed/time.Second)), sw.EntryID, sw.Description)
}
