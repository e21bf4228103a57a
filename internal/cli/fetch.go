package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/ppiankov/indicacoes/internal/browse"
	"github.com/ppiankov/indicacoes/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	fetchJSON     bool
	fetchOutput   string
	fetchCategory string
	fetchSearch   string
	fetchSort     string
	fetchCounts   bool
	fetchTimeout  time.Duration
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Run one ingestion and print the matters",
	Long: `Fetch runs the same ingestion as the HTTP endpoint once and prints the
result, optionally filtered, searched and sorted like the dashboard.

Example:
  indicacoes fetch
  indicacoes fetch --json --output indicacoes.json
  indicacoes fetch --category "Segurança Pública" --sort date
  indicacoes fetch --search "bairro centro" --counts`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "print JSON instead of a table")
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "write to file instead of stdout")
	fetchCmd.Flags().StringVar(&fetchCategory, "category", "", "only this category (case and accents ignored)")
	fetchCmd.Flags().StringVar(&fetchSearch, "search", "", "free-text filter over id, summary, address, neighborhood and protocol")
	fetchCmd.Flags().StringVar(&fetchSort, "sort", "id", "sort order: id or date")
	fetchCmd.Flags().BoolVar(&fetchCounts, "counts", false, "print matters per category instead of the list")
	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 2*time.Minute, "overall ingestion timeout")

	fetchCmd.Flags().Int("max-pages", 0, "pages fetched at once, 0 for all (overrides concurrency.max_pages)")
	fetchCmd.Flags().String("year", "", "SAPL year filter (overrides portal.year)")
	_ = viper.BindPFlag("concurrency.max_pages", fetchCmd.Flags().Lookup("max-pages"))
	_ = viper.BindPFlag("portal.year", fetchCmd.Flags().Lookup("year"))
}

func runFetch(cmd *cobra.Command, args []string) (err error) {
	category, err := browse.ParseCategory(fetchCategory)
	if err != nil {
		return err
	}
	order, err := browse.ParseSortOrder(fetchSort)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Output.Verbose)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), fetchTimeout)
	defer cancel()

	p, err := buildPipeline(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}

	matters, err := p.Collect(ctx)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if fetchOutput != "" {
		f, err := os.Create(fetchOutput)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close output: %w", closeErr)
			}
		}()
		out = f
	}

	view := browse.Apply(matters, browse.Query{Category: category, Search: fetchSearch, Sort: order})

	if fetchCounts {
		return renderCounts(out, browse.CountByCategory(view), fetchJSON)
	}
	if fetchJSON {
		return renderJSON(out, view)
	}
	if err := renderTable(out, view); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "\n%d of %d matters\n", len(view), len(matters))
	return nil
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderTable(w io.Writer, matters []model.LegislativeMatter) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATA\tCATEGORIA\tLOCAL\tPROTOCOLO")
	for _, m := range matters {
		location := m.Location.Address
		if m.Location.Neighborhood != "" {
			location += " (" + m.Location.Neighborhood + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.ID, m.PresentationDate, m.Category, truncate(location, 48), m.Protocol)
	}
	return tw.Flush()
}

func renderCounts(w io.Writer, counts []browse.CategoryCount, asJSON bool) error {
	if asJSON {
		return renderJSON(w, counts)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORIA\tTOTAL")
	for _, c := range counts {
		fmt.Fprintf(tw, "%s\t%d\n", c.Category, c.Count)
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
