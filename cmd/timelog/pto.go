package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dori/timelog/internal/app"
	"github.com/dori/timelog/internal/model"
	"github.com/dori/timelog/internal/pto"
)

func (c *cli) ptoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pto",
		Short: "Manage PTO days",
	}
	cmd.AddCommand(c.ptoAddCmd(), c.ptoEditCmd(), c.ptoDeleteCmd(), c.ptoListCmd())
	return cmd
}

func ptoTypeNames() string {
	names := make([]string, len(model.PtoTypes))
	for i, t := range model.PtoTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func ptoType(s string) model.PtoType {
	return model.PtoType(strings.ToLower(strings.TrimSpace(s)))
}

// explainTaken adds the flag that resolves a date conflict
func explainTaken(err error) error {
	if errors.Is(err, pto.ErrDateTaken) {
		return fmt.Errorf("%w (use --replace to overwrite it)", err)
	}
	return err
}

func (c *cli) ptoAddCmd() *cobra.Command {
	var kind, notes string
	var replace bool

	cmd := &cobra.Command{
		Use:   "add <date>",
		Short: "Record a PTO day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app.App) error {
				p, err := a.Pto.Save(pto.Input{Date: args[0], Type: ptoType(kind), Notes: notes}, replace)
				if err != nil {
					return explainTaken(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s %s (%s)\n", p.Type.Label(), p.Date, p.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&kind, "type", "t", string(model.PtoVacation), "One of "+ptoTypeNames())
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Free-form notes")
	cmd.Flags().BoolVar(&replace, "replace", false, "Overwrite a PTO day already on that date")
	return cmd
}

func (c *cli) ptoEditCmd() *cobra.Command {
	var date, kind, notes string
	var replace bool

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a PTO day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app.App) error {
				cur, err := a.Pto.Get(args[0])
				if errors.Is(err, pto.ErrNotFound) {
					return fmt.Errorf("no PTO day with id %q", args[0])
				}
				if err != nil {
					return err
				}
				in := pto.Input{Date: cur.Date, Type: cur.Type, Notes: cur.Notes}
				if cmd.Flags().Changed("date") {
					in.Date = date
				}
				if cmd.Flags().Changed("type") {
					in.Type = ptoType(kind)
				}
				if cmd.Flags().Changed("notes") {
					in.Notes = notes
				}
				p, err := a.Pto.Update(cur.ID, in, replace)
				if err != nil {
					return explainTaken(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s %s (%s)\n", p.Type.Label(), p.Date, p.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "New date as YYYY-MM-DD")
	cmd.Flags().StringVarP(&kind, "type", "t", "", "One of "+ptoTypeNames())
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Free-form notes")
	cmd.Flags().BoolVar(&replace, "replace", false, "Remove another PTO day already on the new date")
	return cmd
}

func (c *cli) ptoDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a PTO day",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app.App) error {
				if err := a.Pto.Delete(args[0]); err != nil {
					if errors.Is(err, pto.ErrNotFound) {
						return fmt.Errorf("no PTO day with id %q", args[0])
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func (c *cli) ptoListCmd() *cobra.Command {
	var year string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List PTO days and usage for a year",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app.App) error {
				y := year
				if y == "" {
					y = strconv.Itoa(a.Tracker.Now().Year())
				}
				days, err := a.Pto.ForYear(y)
				if err != nil {
					return err
				}
				usage, err := a.Pto.Summary(y)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "PTO %s:", y)
				for _, u := range usage {
					fmt.Fprintf(out, "  %s %d/%d", u.Type.Label(), u.Used, u.Limit)
				}
				fmt.Fprintln(out)
				for _, p := range days {
					fmt.Fprintf(out, "  %s  %-9s  %-8s  %s  %s\n", p.Date, model.WeekdayName(p.Date), p.Type.Label(), p.ID, p.Notes)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&year, "year", "y", "", "Year to show (default current year)")
	return cmd
}
