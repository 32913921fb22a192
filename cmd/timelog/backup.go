package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dori/timelog/internal/app"
	"github.com/dori/timelog/internal/backup"
)

func (c *cli) exportCmd() *cobra.Command {
	var output string
	var compress bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON backup of every entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app.App) error {
				path := output
				if path == "" {
					path = backup.FileName(a.Tracker.Now(), compress)
				}
				if err := a.ExportFile(path, compress); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(a.Tracker.Entries()), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Backup file (default time-tracker-backup-<date>.json)")
	cmd.Flags().BoolVar(&compress, "xz", false, "Compress the backup with xz")
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge a backup into the entries",
		Long: `Merge a backup file into the entries. Entries whose content already exists
are skipped. Plain and xz-compressed backups are both accepted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app.App) error {
				res, err := a.ImportFile(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries, skipped %d duplicates\n", res.Added, res.Skipped)
				return nil
			})
		},
	}
}

func (c *cli) historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List earlier states of the entries that can be restored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app.App) error {
				revisions, err := a.EntryRevisions()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(revisions) == 0 {
					fmt.Fprintln(out, "No earlier revisions.")
					return nil
				}
				for i, r := range revisions {
					count := "unreadable"
					if r.Entries >= 0 {
						count = fmt.Sprintf("%d entries", r.Entries)
					}
					fmt.Fprintf(out, "%3d  replaced %s  %s\n", i+1, r.ReplacedAt.Local().Format(time.DateTime), count)
				}
				return nil
			})
		},
	}
}

func (c *cli) restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <revision>",
		Short: "Replace the entries with a revision listed by history",
		Long: `Replace every entry with an earlier state listed by "timelog history".
The current entries are kept as the newest revision, so a restore can be undone
by restoring revision 1.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("revision must be a number, got %q", args[0])
			}
			return c.withApp(func(a *app.App) error {
				count, err := a.RestoreRevision(n)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Restored revision %d with %d entries\n", n, count)
				return nil
			})
		},
	}
}

func (c *cli) timesheetCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "timesheet",
		Short: "Write entries, daily totals and PTO to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app.App) error {
				if err := a.WriteTimesheet(output); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Workbook path, e.g. timesheet.xlsx")
	cmd.MarkFlagRequired("output")
	return cmd
}

func (c *cli) mirrorCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Copy entries and PTO days into the MySQL database in TIMELOG_MYSQL_DSN",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return c.withApp(func(a *app.App) error {
				if err := a.Mirror(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Mirrored entries and PTO days.")
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "Give up after this long")
	return cmd
}

func (c *cli) darkModeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "dark-mode [on|off|toggle]",
		Short:     "Show or set the TUI dark mode",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app.App) error {
				dark, err := a.Tracker.DarkMode()
				if err != nil {
					return err
				}
				if len(args) == 1 {
					switch args[0] {
					case "on":
						dark = true
					case "off":
						dark = false
					case "toggle":
						dark = !dark
					}
					if err := a.Tracker.SetDarkMode(dark); err != nil {
						return err
					}
				}
				state := "off"
				if dark {
					state = "on"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Dark mode is %s\n", state)
				return nil
			})
		},
	}
}
