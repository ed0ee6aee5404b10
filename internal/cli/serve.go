package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/acta-lineup/internal/logger"
	"github.com/pfrederiksen/acta-lineup/internal/match"
	"github.com/pfrederiksen/acta-lineup/internal/scraper"
	"github.com/pfrederiksen/acta-lineup/internal/server"
	"github.com/pfrederiksen/acta-lineup/internal/storage"
)

type serveOptions struct {
	*rootOptions

	addr   string
	lineup string
}

func newServeCmd(root *rootOptions) *cobra.Command {
	opts := &serveOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve POST /api/scrape-lineup and a live match session under /api/match.
Stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: opts.run,
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address (overrides ACTA_ADDR)")
	cmd.Flags().StringVar(&opts.lineup, "lineup", "", "Preload the match with a saved roster file")

	return cmd
}

func (o *serveOptions) run(cmd *cobra.Command, args []string) error {
	addr := o.cfg.Addr
	if o.addr != "" {
		addr = o.addr
	}

	store, err := storage.New(o.cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	m := match.New()
	if o.lineup != "" {
		roster, err := store.LoadRoster(o.lineup)
		if err != nil {
			return err
		}
		if err := m.SetTeams(*roster); err != nil {
			return err
		}
		o.log.Info("line-up preloaded", logger.Fields{
			"home": roster.HomeTeam.Name,
			"away": roster.AwayTeam.Name,
		})
	}

	sc := scraper.New(
		scraper.WithFetcher(scraper.NewHTTPFetcher(o.cfg.FetchTimeout, o.cfg.UserAgent)),
		scraper.WithLogger(o.log),
	)
	srv := server.New(sc,
		server.WithStore(store),
		server.WithMatch(m),
		server.WithLogger(o.log),
		server.WithAllowedOrigins(o.cfg.AllowedOrigins...),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	o.log.Info("starting", logger.Fields{"addr": addr, "data_dir": store.Dir()})
	return srv.Run(ctx, addr)
}
