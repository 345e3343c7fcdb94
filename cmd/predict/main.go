package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/acebet/internal/dataset"
	"github.com/stitts-dev/acebet/internal/services"
	"github.com/stitts-dev/acebet/internal/train"
	"github.com/stitts-dev/acebet/pkg/config"
	"github.com/stitts-dev/acebet/pkg/logger"
)

func main() {
	if len(os.Args) != 4 {
		fmt.Fprintln(os.Stderr, "Usage: predict <model.json> <start_date> <end_date>")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	log := logger.WithService("predict")

	n, err := run(cfg, os.Args[1], os.Args[2], os.Args[3])
	if err != nil {
		log.Errorf("Prediction failed: %v", err)
		os.Exit(1)
	}
	log.WithField("matches", n).Info("Predictions written")
}

func run(cfg *config.Config, modelPath, startDate, endDate string) (int, error) {
	start, err := train.ParseDate(startDate)
	if err != nil {
		return 0, err
	}
	end, err := train.ParseDate(endDate)
	if err != nil {
		return 0, err
	}

	artifact, err := services.LoadArtifact(modelPath)
	if err != nil {
		return 0, err
	}

	svc := services.NewPredictionService(dataset.NewStore(cfg.DatasetPath, cfg.ParquetParallelism))
	preds, err := svc.PredictWindow(artifact.Pipeline, start, end)
	if err != nil {
		return 0, err
	}

	out := bufio.NewWriter(os.Stdout)
	enc := json.NewEncoder(out)
	for i := range preds {
		if err := enc.Encode(&preds[i]); err != nil {
			return i, err
		}
	}
	return len(preds), out.Flush()
}
