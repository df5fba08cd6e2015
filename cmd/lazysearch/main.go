package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rebeliceyang/lazysearch/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	cmd, c := newRootCmd()
	err := cmd.Execute()
	c.close()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() (*cobra.Command, *cli) {
	c := &cli{}

	cmd := &cobra.Command{
		Use:          "lazysearch",
		Short:        "lazysearch builds, validates and runs OData filter expressions",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return c.setup()
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return c.runTUI()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default: user config dir)")
	flags.StringVar(&c.dataDir, "data-dir", "", "directory for saved filters, history and logs")
	flags.StringVar(&c.logLevel, "log-level", "", "override the configured log level")

	cmd.AddCommand(
		validateCmd(c),
		optimizeCmd(c),
		collectionCmd(c),
		conditionCmd(c),
		savedCmd(c),
		searchCmd(c),
		historyCmd(c),
		keyCmd(c),
	)
	return cmd, c
}

func (c *cli) runTUI() error {
	mgr, err := c.savedManager()
	if err != nil {
		return err
	}
	store, err := c.openHistory()
	if err != nil {
		c.logger.Warn("history disabled", zap.Error(err))
	}

	deps := app.Deps{Saved: mgr, History: store, Logger: c.logger}
	if client, err := c.searchClient(); err == nil {
		deps.Searcher = client
	} else {
		c.logger.Info("search service not configured", zap.Error(err))
	}

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if c.cfg.UI.MouseEnabled {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(app.New(c.cfg, deps), opts...)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
