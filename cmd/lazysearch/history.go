package main

import (
	"fmt"
	"io"

	"github.com/rebeliceyang/lazysearch/internal/history"
	"github.com/spf13/cobra"
)

func historyCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "inspect validation history",
	}
	cmd.AddCommand(historyRecentCmd(c), historySearchCmd(c), historyStatsCmd(c))
	return cmd
}

func requireHistory(c *cli) (*history.Store, error) {
	store, err := c.openHistory()
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("history is disabled in the configuration")
	}
	return store, nil
}

func printEntries(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no history")
		return
	}
	for _, e := range entries {
		state := "ok"
		if !e.IsValid {
			state = "invalid"
		}
		fmt.Fprintf(w, "%s  %-7s  %-6s  %3d  %s\n",
			e.ValidatedAt.Local().Format("2006-01-02 15:04:05"), state, e.Source, e.ComplexityScore, e.Expression)
	}
}

func historyRecentCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "show the most recent validations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := requireHistory(c)
			if err != nil {
				return err
			}
			entries, err := store.GetRecent(limit)
			if err != nil {
				return err
			}
			printEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "entries to show")
	return cmd
}

func historySearchCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "find past validations containing text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := requireHistory(c)
			if err != nil {
				return err
			}
			entries, err := store.Search(args[0], limit)
			if err != nil {
				return err
			}
			printEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "entries to show")
	return cmd
}

func historyStatsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "summarize validation history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := requireHistory(c)
			if err != nil {
				return err
			}
			st, err := store.Stats()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "total:          %d\n", st.Total)
			fmt.Fprintf(out, "invalid:        %d\n", st.Invalid)
			fmt.Fprintf(out, "avg complexity: %.2f\n", st.AvgComplexity)
			fmt.Fprintf(out, "max complexity: %d\n", st.MaxComplexity)
			return nil
		},
	}
}
