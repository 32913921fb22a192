package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dori/timelog/internal/app"
	"github.com/dori/timelog/internal/model"
	"github.com/dori/timelog/internal/store"
	"github.com/dori/timelog/internal/tracker"
)

func (c *cli) addCmd() *cobra.Command {
	var date, periods string

	cmd := &cobra.Command{
		Use:   "add [description]",
		Short: "Log an entry",
		Example: `  timelog add "Code review" --periods "09:00-10:30, 13:00-13:45"
  timelog add --date 2024-01-15 --periods 08:00-12:00`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := model.ParsePeriods(periods)
			if err != nil {
				return err
			}
			return c.withApp(func(a *app.App) error {
				d := date
				if d == "" {
					d = a.Tracker.Today()
				}
				e, err := a.Tracker.CreateEntry(d, strings.Join(args, " "), ps)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", e.ID, e.Duration)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "Date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&periods, "periods", "p", "", `Time periods, e.g. "09:00-12:00, 13:00-17:30"`)
	cmd.MarkFlagRequired("periods")
	return cmd
}

func (c *cli) editCmd() *cobra.Command {
	var date, description, periods string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an entry's date, description or periods",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app.App) error {
				e, err := findEntry(a.Tracker, args[0])
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("date") {
					e.Date = date
				}
				if cmd.Flags().Changed("description") {
					e.Description = description
				}
				if cmd.Flags().Changed("periods") {
					if e.TimePeriods, err = model.ParsePeriods(periods); err != nil {
						return err
					}
				}
				if err := a.Tracker.EditEntry(e.ID, e.Date, e.Description, e.TimePeriods); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", e.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "New date as YYYY-MM-DD")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVarP(&periods, "periods", "p", "", "Replacement time periods")
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an entry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app.App) error {
				if _, err := findEntry(a.Tracker, args[0]); err != nil {
					return err
				}
				if err := a.Tracker.DeleteEntry(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func (c *cli) doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle an entry's completed flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app.App) error {
				if _, err := findEntry(a.Tracker, args[0]); err != nil {
					return err
				}
				if err := a.Tracker.ToggleCompleted(args[0]); err != nil {
					return err
				}
				e, _ := a.Tracker.Entry(args[0])
				state := "open"
				if e.Completed {
					state = "completed"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", e.ID, state)
				return nil
			})
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	var date, from, to string
	var week bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List entries grouped by date",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if date != "" && (from != "" || to != "" || week) {
				return fmt.Errorf("--date cannot be combined with --from/--to or --week")
			}
			if week && (from != "" || to != "") {
				return fmt.Errorf("--week cannot be combined with --from/--to")
			}
			return c.withApp(func(a *app.App) error {
				var groups []store.DateGroup
				switch {
				case date != "":
					groups = store.SortedGroups(a.Tracker.ByDate(date))
				case week:
					groups = a.Tracker.PastWeekGroups()
				case from != "" || to != "":
					lo, hi := from, to
					if lo == "" {
						lo = "0000-00-00"
					}
					if hi == "" {
						hi = "9999-99-99"
					}
					groups = store.SortedGroups(a.Tracker.Range(lo, hi))
				default:
					groups = store.SortedGroups(a.Tracker.Entries())
				}
				printGroups(cmd.OutOrStdout(), groups)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "Only this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&from, "from", "", "First date of a range (inclusive)")
	cmd.Flags().StringVar(&to, "to", "", "Last date of a range (inclusive)")
	cmd.Flags().BoolVarP(&week, "week", "w", false, "The seven days before today")
	return cmd
}

func (c *cli) todayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's entries, total and stopwatch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app.App) error {
				out := cmd.OutOrStdout()
				today := a.Tracker.Today()
				total, count := a.Tracker.DaySummary(today)
				fmt.Fprintf(out, "%s %s: %d entries, %s\n", model.WeekdayName(today), today, count, model.FormatHMS(total))
				now := a.Tracker.Now()
				for _, e := range a.Tracker.TodayEntries() {
					printEntry(out, e, now)
				}
				printStopwatch(out, a.Tracker.Stopwatch())
				return nil
			})
		},
	}
}

// findEntry looks an entry up so unknown ids get a readable error
func findEntry(t *tracker.Tracker, id string) (model.Entry, error) {
	e, ok := t.Entry(id)
	if !ok {
		return model.Entry{}, fmt.Errorf("no entry with id %q", id)
	}
	return e, nil
}

func printGroups(w io.Writer, groups []store.DateGroup) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "No entries.")
		return
	}
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %s  total %s\n", model.WeekdayName(g.Date), g.Date, model.FormatHMS(g.TotalSeconds))
		for _, e := range g.Entries {
			printEntry(w, e, time.Time{})
		}
	}
}

func printEntry(w io.Writer, e model.Entry, now time.Time) {
	check := " "
	if e.Completed {
		check = "x"
	}
	line := fmt.Sprintf("  [%s] %s  %s  %s  %s", check, e.ID, e.Duration, model.FormatPeriods(e.TimePeriods), e.Description)
	if e.IsTimerActive() {
		line += fmt.Sprintf("  (timer %s", e.TimerState)
		if !now.IsZero() {
			line += " " + model.FormatHMS(int(e.TimerDisplay(now)/time.Second))
		}
		line += ")"
	}
	fmt.Fprintln(w, line)
}
