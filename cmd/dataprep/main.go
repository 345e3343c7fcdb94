package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/acebet/internal/dataset"
	"github.com/stitts-dev/acebet/internal/services"
	"github.com/stitts-dev/acebet/pkg/config"
	"github.com/stitts-dev/acebet/pkg/logger"
)

func main() {
	if len(os.Args) > 2 {
		fmt.Fprintln(os.Stderr, "Usage: dataprep [raw.csv]")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	log := logger.WithService("dataprep")

	source := cfg.RawDataPath
	if len(os.Args) == 2 {
		source = os.Args[1]
	}

	store := dataset.NewStore(cfg.DatasetPath, cfg.ParquetParallelism)
	rows, err := services.NewDataPrepService(store).Prepare(source)
	if err != nil {
		log.Fatalf("Data preparation failed: %v", err)
	}

	fmt.Printf("%d rows written to %s\n", rows, cfg.DatasetPath)
}
