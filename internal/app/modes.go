package app

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marketlens/marketlens/internal/pipeline"
	"github.com/marketlens/marketlens/internal/server"
	"github.com/marketlens/marketlens/internal/server/handler"
	"github.com/marketlens/marketlens/internal/server/ws"
)

// TrackMode runs the fetch/match/compare loop without the HTTP API.
func (a *App) TrackMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting track mode")

	tracker := a.buildTracker(deps)
	return ignoreCancel(tracker.RunLoop(ctx))
}

// ServerMode serves the REST and WebSocket API without a tracker. Handlers
// read from the persistent stores, so this mode expects a tracker running in
// another process against the same backends.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startServer(ctx, g, deps, nil)
	return ignoreCancel(g.Wait())
}

// OnceMode runs a single cycle and exits. Useful for cron jobs and smoke
// tests.
func (a *App) OnceMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting once mode")

	tracker := a.buildTracker(deps)
	return tracker.RunOnce(ctx)
}

// FullMode runs the tracker and the API server in one process. The server
// reads the tracker's in-memory snapshot directly.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	tracker := a.buildTracker(deps)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return tracker.RunLoop(ctx)
	})
	a.startServer(ctx, g, deps, tracker)

	return ignoreCancel(g.Wait())
}

// buildTracker assembles the pipeline tracker from the wired dependencies.
func (a *App) buildTracker(deps *Dependencies) *pipeline.Tracker {
	pdeps := pipeline.Deps{
		Clients: deps.Clients,
		Engine:  deps.Engine,
		Cache:   deps.ComparisonCache,
		Prices:  deps.PriceCache,
		Store:   deps.ComparisonStore,
		History: deps.HistoryStore,
		Bus:     deps.SignalBus,
	}
	if deps.Archiver != nil {
		pdeps.Archiver = deps.Archiver
	}
	if deps.Notifier != nil {
		pdeps.Alerter = deps.Notifier
	}

	return pipeline.NewTracker(pipeline.Config{
		Interval:       a.cfg.Tracker.Interval.Duration,
		LimitPerVenue:  a.cfg.Tracker.LimitPerVenue,
		HistorySize:    a.cfg.Tracker.HistorySize,
		PersistResults: a.cfg.Tracker.PersistResults,
		ArchiveCSV:     a.cfg.Tracker.ArchiveCSV,
	}, pdeps, a.logger)
}

// startServer registers the HTTP server (and, when a signal bus exists, the
// WebSocket hub) on the errgroup. source may be nil in server-only mode.
func (a *App) startServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, source handler.SnapshotSource) {
	if !a.cfg.Server.Enabled {
		a.logger.Info("http server disabled")
		return
	}

	startedAt := time.Now().UTC()

	var hub *ws.Hub
	if deps.SignalBus != nil {
		hub = ws.NewHub(deps.SignalBus, a.logger)
		g.Go(func() error {
			return hub.Run(ctx)
		})
	}

	srv := server.NewServer(
		server.Config{
			Port:        a.cfg.Server.Port,
			CORSOrigins: a.cfg.Server.CORSOrigins,
		},
		server.Handlers{
			Health:      handler.NewHealthHandler(a.logger, startedAt),
			Comparisons: handler.NewComparisonHandler(source, deps.ComparisonStore, a.logger),
			Markets:     handler.NewMarketHandler(source, a.logger),
			History:     handler.NewHistoryHandler(source, deps.HistoryStore, a.logger),
		},
		hub,
		a.logger,
	)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

// ignoreCancel maps context cancellation to a clean exit.
func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
