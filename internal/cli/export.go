package cli

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/acta-lineup/internal/export"
	"github.com/pfrederiksen/acta-lineup/internal/filter"
	"github.com/pfrederiksen/acta-lineup/internal/storage"
)

type exportOptions struct {
	*rootOptions

	format string
	output string

	teams   []string
	types   []string
	players []string
	half    string
	minutes string
}

// eventFilter builds the event filter from the --team, --type, --player, --half
// and --minutes flags
func (o *exportOptions) eventFilter() (*filter.Filter, error) {
	q := url.Values{}
	q["team"] = o.teams
	q["type"] = o.types
	q["player"] = o.players
	if o.half != "" {
		q.Set("half", o.half)
	}
	if o.minutes != "" {
		q.Set("minutes", o.minutes)
	}
	return filter.FromQuery(q)
}

func newExportCmd(root *rootOptions) *cobra.Command {
	opts := &exportOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "export <match.json>",
		Short: "Convert a saved match to JSON or CSV",
		Long: `Read a JSON match export (a path, or a file name in the data directory)
and write it as JSON or CSV to stdout or --output.`,
		Args: cobra.ExactArgs(1),
		RunE: opts.run,
	}

	cmd.Flags().StringVar(&opts.format, "format", "csv", "Output format: csv or json")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().StringSliceVar(&opts.teams, "team", nil, "Only events of these teams (home, away)")
	cmd.Flags().StringSliceVar(&opts.types, "type", nil, "Only these event types (goal, shot, corner, yellow-card, red-card, substitution)")
	cmd.Flags().StringSliceVar(&opts.players, "player", nil, "Only events involving these player ids")
	cmd.Flags().StringVar(&opts.half, "half", "", "Only events of this half (1 or 2)")
	cmd.Flags().StringVar(&opts.minutes, "minutes", "", "Only events in this minute range, e.g. 10-45, 45- or -30")

	return cmd
}

func (o *exportOptions) run(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(o.format)
	if err != nil {
		return err
	}

	f, err := o.eventFilter()
	if err != nil {
		return err
	}

	store, err := storage.New(o.cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	doc, err := store.LoadExport(args[0])
	if err != nil {
		return err
	}
	doc.Events = f.Apply(doc.Events)
	if o.verbose && !f.IsEmpty() {
		fmt.Fprintf(cmd.ErrOrStderr(), "Filter: %s\n", f)
	}

	if o.output == "" {
		return export.Write(cmd.OutOrStdout(), doc, format)
	}

	out, err := os.Create(o.output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", o.output, err)
	}
	if err := export.Write(out, doc, format); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if o.verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d events to %s\n", len(doc.Events), o.output)
	}
	return nil
}
