package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"voxelworld/internal/config"
	"voxelworld/internal/logger"
	"voxelworld/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// run ticks the worlds until ctx ends or the tick budget is spent, serving
// metrics alongside when enabled.
func run(ctx context.Context, cfg *config.Config) error {
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	mv, sessions, edits, err := setup(cfg, m)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if m != nil {
		srv := &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           metricsMux(m),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("serving metrics", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	sim := newSimulation(cfg, mv, sessions)
	g.Go(func() error {
		defer cancel()
		return sim.Run(ctx)
	})

	err = g.Wait()
	if cerr := mv.Close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	if cfg.Overlay.Path != "" && cfg.Overlay.SaveOnExit {
		if serr := edits.SaveFile(cfg.Overlay.Path); serr != nil {
			err = errors.Join(err, serr)
		} else {
			logger.Info("overlay saved", zap.String("path", cfg.Overlay.Path), zap.Int("voxels", edits.Len()))
		}
	}
	return err
}

func metricsMux(m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
