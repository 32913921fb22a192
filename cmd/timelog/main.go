package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dori/timelog/internal/app"
	"github.com/dori/timelog/internal/config"
	"github.com/dori/timelog/internal/ui"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cli carries the global flags shared by every subcommand
type cli struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "timelog",
		Short: "Log work time and PTO from the terminal",
		Long: `timelog records work entries made of time periods, per-entry timers,
a stopwatch and PTO days. Run it without a subcommand to open the TUI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI()
		},
	}
	root.Version = version
	root.SetVersionTemplate("timelog v{{.Version}}\n")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Write debug logs to the data directory")

	root.AddCommand(
		c.addCmd(),
		c.editCmd(),
		c.deleteCmd(),
		c.doneCmd(),
		c.listCmd(),
		c.todayCmd(),
		c.timerCmd(),
		c.stopwatchCmd(),
		c.exportCmd(),
		c.importCmd(),
		c.historyCmd(),
		c.restoreCmd(),
		c.timesheetCmd(),
		c.ptoCmd(),
		c.darkModeCmd(),
		c.mirrorCmd(),
		versionCmd(),
	)
	return root
}

// open builds the application from the environment. Callers must Close it.
func (c *cli) open() (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if c.verbose {
		cfg.LogLevel = slog.LevelDebug
	}
	return app.New(cfg)
}

// withApp opens the app around fn
func (c *cli) withApp(fn func(a *app.App) error) error {
	a, err := c.open()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func (c *cli) runTUI() error {
	return c.withApp(func(a *app.App) error {
		p := tea.NewProgram(
			ui.NewRootModel(a),
			tea.WithAltScreen(),
		)
		_, err := p.Run()
		return err
	})
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "timelog v%s\n", version)
		},
	}
}
