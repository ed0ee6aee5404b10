package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/acta-lineup/internal/lineup"
	"github.com/pfrederiksen/acta-lineup/internal/scraper"
	"github.com/pfrederiksen/acta-lineup/internal/storage"
)

type scrapeOptions struct {
	*rootOptions

	file    string
	format  string
	sort    string
	retries uint64
	timeout time.Duration
	save    bool
}

func newScrapeCmd(root *rootOptions) *cobra.Command {
	opts := &scrapeOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "scrape [url]",
		Short: "Import the two team sheets from a match report",
		Long: `Fetch a match report from fcf.cat/acta and print both teams' starters and
substitutes. Use --file to parse a saved HTML page instead ("-" reads stdin).`,
		Args: cobra.MaximumNArgs(1),
		RunE: opts.run,
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Parse a saved HTML file instead of fetching")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&opts.sort, "sort", string(SortBySource), "Player order: source, number or name")
	cmd.Flags().Uint64Var(&opts.retries, "retries", 0, "Retry transient fetch failures this many times")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Fetch timeout (overrides ACTA_FETCH_TIMEOUT)")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Save the roster as JSON in the data directory")

	return cmd
}

func (o *scrapeOptions) run(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(o.format))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", o.format)
	}
	order, err := ParseSortOrder(o.sort)
	if err != nil {
		return err
	}

	var roster *lineup.Roster
	switch {
	case o.file != "" && len(args) > 0:
		return fmt.Errorf("pass either a URL or --file, not both")
	case o.file != "":
		roster, err = o.extractFile(cmd)
	case len(args) == 1:
		roster, err = o.fetch(cmd, args[0])
	default:
		return fmt.Errorf("a match report URL or --file is required")
	}
	if err != nil {
		return err
	}

	if o.save {
		store, err := storage.New(o.cfg.DataDir)
		if err != nil {
			return fmt.Errorf("initializing storage: %w", err)
		}
		path, err := store.SaveRoster(roster)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved roster to %s\n", path)
	}

	if err := WriteOutput(cmd.OutOrStdout(), roster, format, order, o.verbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func (o *scrapeOptions) extractFile(cmd *cobra.Command) (*lineup.Roster, error) {
	var r io.Reader
	if o.file == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(o.file)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", o.file, err)
		}
		defer f.Close()
		r = f
	}

	return scraper.NewExtractor(o.log).ExtractHTML(r)
}

func (o *scrapeOptions) fetch(cmd *cobra.Command, url string) (*lineup.Roster, error) {
	timeout := o.cfg.FetchTimeout
	if o.timeout > 0 {
		timeout = o.timeout
	}

	sc := scraper.New(
		scraper.WithFetcher(scraper.NewHTTPFetcher(timeout, o.cfg.UserAgent)),
		scraper.WithLogger(o.log),
	)

	cfg := defaultRetryConfig()
	cfg.MaxRetries = o.retries
	return fetchWithRetry(cmd.Context(), sc, url, cfg, o.log)
}
