package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medhq/hospital-api/config"
	"github.com/medhq/hospital-api/internal/repository/postgres"
	"github.com/medhq/hospital-api/internal/worker"
	"github.com/medhq/hospital-api/pkg/logger"
	"github.com/medhq/hospital-api/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Pretty:     cfg.Log.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	m := metrics.New("hospital_worker")
	cleaner := worker.NewRetentionCleaner(postgres.NewAuditRepository(db), cfg.Audit, log, m)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.WithFields(map[string]interface{}{
		"retention": cfg.Audit.Retention.String(),
		"interval":  cfg.Audit.CleanupInterval.String(),
	}).Info("starting worker")

	cleaner.Run(ctx)
}
