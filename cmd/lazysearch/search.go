package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rebeliceyang/lazysearch/internal/filter"
	"github.com/rebeliceyang/lazysearch/internal/search"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func searchCmd(c *cli) *cobra.Command {
	var (
		q         search.Query
		savedName string
		pages     int
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "run a query with a filter against the configured index",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				q.Search = args[0]
			}
			if savedName != "" {
				if q.Filter != "" {
					return fmt.Errorf("--filter and --saved are mutually exclusive")
				}
				mgr, err := c.savedManager()
				if err != nil {
					return err
				}
				sf, err := mgr.Find(savedName)
				if err != nil {
					return err
				}
				q.Filter = sf.Expression
				if err := mgr.RecordUsage(sf.ID); err != nil {
					c.logger.Warn("failed to record saved filter usage", zap.Error(err))
				}
			}
			if q.Filter != "" {
				if c.cfg.General.OptimizeOnApply {
					q.Filter = filter.Optimize(q.Filter)
				}
				c.record(q.Filter, "search", filter.Validate(q.Filter))
			}
			if q.Top <= 0 {
				q.Top = c.cfg.Search.Top
			}
			if pages <= 0 {
				pages = 1
			}
			if pages > c.cfg.Search.MaxPages {
				pages = c.cfg.Search.MaxPages
			}

			client, err := c.searchClient()
			if err != nil {
				return err
			}
			results, err := client.Paginate(cmd.Context(), q, pages)
			if err != nil {
				return err
			}

			summary := search.AnalyzeScores(results)
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, map[string]interface{}{
					"results": results,
					"scores":  summary,
				})
			}

			for i, r := range results {
				fmt.Fprintf(out, "%3d  %.4f  %s\n", i+1, r.Score, formatDocument(r.Document))
			}
			fmt.Fprintf(out, "\n%d results, score min %.4f max %.4f mean %.4f stddev %.4f\n",
				summary.Count, summary.Min, summary.Max, summary.Mean, summary.StdDev)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&q.Filter, "filter", "", "filter expression")
	flags.StringVar(&savedName, "saved", "", "use a saved filter by name or ID")
	flags.IntVar(&q.Top, "top", 0, "results per page (default: configured top)")
	flags.IntVar(&q.Skip, "skip", 0, "results to skip")
	flags.StringVar(&q.OrderBy, "orderby", "", "order by clause")
	flags.StringSliceVar(&q.Select, "select", nil, "fields to return, comma separated")
	flags.IntVar(&pages, "pages", 1, "pages to fetch")
	flags.BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

// formatDocument renders a document as sorted key=value pairs
func formatDocument(doc map[string]interface{}) string {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, doc[k]))
	}
	return strings.Join(parts, " ")
}
