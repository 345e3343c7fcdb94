package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/acebet/internal/dataset"
	"github.com/stitts-dev/acebet/internal/services"
	"github.com/stitts-dev/acebet/internal/train"
	"github.com/stitts-dev/acebet/pkg/config"
	"github.com/stitts-dev/acebet/pkg/database"
	"github.com/stitts-dev/acebet/pkg/logger"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "Usage: train <start_date> <end_date>   (YYYY-MM-DD, inclusive)")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	log := logger.WithService("train")

	// run returns instead of exiting so its deferred closes happen
	if err := run(context.Background(), cfg, os.Args[1], os.Args[2]); err != nil {
		log.Errorf("Training failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, startDate, endDate string) error {
	var registry *services.RunRegistry
	if cfg.RecordRuns {
		db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
		if err != nil {
			return err
		}
		defer db.Close()

		registry = services.NewRunRegistry(db)
		if err := registry.Migrate(ctx); err != nil {
			return err
		}
	}

	trainer, err := train.New(train.DefaultConfig())
	if err != nil {
		return err
	}

	svc := services.NewTrainingService(
		dataset.NewStore(cfg.DatasetPath, cfg.ParquetParallelism),
		trainer,
		services.NewModelStore(cfg.ModelDir),
		registry,
	)

	trainingRun, err := svc.TrainModel(ctx, startDate, endDate)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(trainingRun)
}
