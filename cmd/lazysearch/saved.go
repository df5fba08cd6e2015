package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rebeliceyang/lazysearch/internal/models"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func savedCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saved",
		Short: "manage saved filter expressions",
	}
	cmd.AddCommand(savedListCmd(c), savedAddCmd(c), savedDeleteCmd(c), savedExportCmd(c))
	return cmd
}

func savedListCmd(c *cli) *cobra.Command {
	var (
		query  string
		sortBy string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "list saved filters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := c.savedManager()
			if err != nil {
				return err
			}

			var filters []models.SavedFilter
			switch sortBy {
			case "name":
				filters = mgr.List()
			case "usage":
				filters = mgr.GetMostUsed(0)
			default:
				return fmt.Errorf("unknown sort order %q (want name or usage)", sortBy)
			}
			if query != "" {
				matched := lo.SliceToMap(mgr.Search(query), func(f models.SavedFilter) (string, bool) {
					return f.ID, true
				})
				filters = lo.Filter(filters, func(f models.SavedFilter, _ int) bool {
					return matched[f.ID]
				})
			}
			if limit > 0 && limit < len(filters) {
				filters = filters[:limit]
			}
			if len(filters) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no saved filters")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), savedTable(filters))
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "search", "s", "", "only list filters matching this text")
	cmd.Flags().StringVar(&sortBy, "sort", "name", "sort order: name or usage")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of filters to list (0 for all)")
	return cmd
}

func savedTable(filters []models.SavedFilter) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "INDEX", "COMPLEXITY", "USES", "EXPRESSION")
	for _, f := range filters {
		t.Row(f.Name, f.Index, strconv.Itoa(f.ComplexityScore), strconv.Itoa(f.UsageCount), f.Expression)
	}
	return t.String()
}

func savedAddCmd(c *cli) *cobra.Command {
	var (
		name        string
		description string
		expr        string
		index       string
		tags        []string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "save a validated filter expression",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := c.savedManager()
			if err != nil {
				return err
			}
			if index == "" {
				index = c.cfg.Search.IndexName
			}
			sf, err := mgr.Add(name, description, expr, index, tags)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %q (%s)\n", sf.Name, sf.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "unique name")
	cmd.Flags().StringVar(&description, "description", "", "free text description")
	cmd.Flags().StringVar(&expr, "expr", "", "filter expression")
	cmd.Flags().StringVar(&index, "index", "", "index the filter targets (default: configured index)")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "tags, comma separated")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("expr")
	return cmd
}

func savedDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id|name>",
		Short: "delete a saved filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := c.savedManager()
			if err != nil {
				return err
			}
			sf, err := mgr.Find(args[0])
			if err != nil {
				return err
			}
			if err := mgr.Delete(sf.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %q\n", sf.Name)
			return nil
		},
	}
}

func savedExportCmd(c *cli) *cobra.Command {
	var (
		format string
		path   string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "export saved filters to CSV or JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := c.savedManager()
			if err != nil {
				return err
			}
			var paths []string
			if path != "" {
				paths = append(paths, path)
			}

			var written string
			switch format {
			case "csv":
				written, err = mgr.ExportToCSV(paths...)
			case "json":
				written, err = mgr.ExportToJSON(paths...)
			default:
				return fmt.Errorf("unsupported export format %q", format)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", written)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "csv or json")
	cmd.Flags().StringVar(&path, "path", "", "output file (default: next to the saved filters file)")
	return cmd
}
