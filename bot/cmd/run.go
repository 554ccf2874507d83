package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lovepool/lovebot/botdb"
	"github.com/lovepool/lovebot/logger"
	"github.com/lovepool/lovebot/version"
)

type (
	RunCmd struct {
		MetricsPort int `default:"9000" help:"Metrics server port, 0 to disable"`
	}
	OnceCmd    struct{}
	SetupCmd   struct{}
	VersionCmd struct{}
)

func (c RunCmd) Run(ctx context.Context, root *BotCmd) error {
	log := logger.Setup()
	ctx = logger.NewContext(ctx, log)

	log.InfoContext(ctx, "lovebot starting", "version", version.Version(), "dry_run", root.DryRun)

	dbconn, err := root.openDB(ctx)
	if err != nil {
		return err
	}
	defer dbconn.Close()

	db := botdb.New(dbconn)
	s := root.scheduler(db)

	if c.MetricsPort > 0 {
		registry := prometheus.NewRegistry()
		s.RegisterMetrics(registry)
		go serveMetrics(ctx, c.MetricsPort, registry)
	}

	err = s.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.InfoContext(ctx, "lovebot shutting down")
		return nil
	}
	return err
}

func (c OnceCmd) Run(ctx context.Context, root *BotCmd) error {
	log := logger.Setup()
	ctx = logger.NewContext(ctx, log)

	dbconn, err := root.openDB(ctx)
	if err != nil {
		return err
	}
	defer dbconn.Close()

	db := botdb.New(dbconn)

	if err := db.VerifyIdentityIndex(ctx); err != nil {
		return err
	}

	s := root.scheduler(db)
	delay := s.RunCycle(ctx)
	log.InfoContext(ctx, "cycle finished", "next_would_run_in", delay)
	return nil
}

func (c SetupCmd) Run(ctx context.Context, root *BotCmd) error {
	log := logger.Setup()
	ctx = logger.NewContext(ctx, log)

	dbconn, err := root.openDB(ctx)
	if err != nil {
		return err
	}
	defer dbconn.Close()

	if err := botdb.New(dbconn).Setup(ctx); err != nil {
		return err
	}
	log.InfoContext(ctx, "database schema ready")
	return nil
}

func (c VersionCmd) Run(ctx context.Context) error {
	fmt.Printf("lovebot %s\n", version.Version())
	return nil
}

func serveMetrics(ctx context.Context, port int, registry *prometheus.Registry) {
	log := logger.FromContext(ctx)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info("metrics server listening", "port", port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("metrics server error", "err", err)
	}
}
