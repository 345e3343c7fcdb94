package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/acebet/internal/models"
	"github.com/stitts-dev/acebet/internal/services"
	"github.com/stitts-dev/acebet/pkg/config"
	"github.com/stitts-dev/acebet/pkg/database"
	"github.com/stitts-dev/acebet/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: migrate [up|down|runs]")
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())

	backend := "sqlite"
	if cfg.UsesPostgres() {
		backend = "postgres"
	}
	log := logger.WithService("migrate").WithField("backend", backend)

	if err := run(context.Background(), cfg, os.Args[1], log); err != nil {
		log.Errorf("Migration command %q failed: %v", os.Args[1], err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, command string, log *logrus.Entry) error {
	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		return err
	}
	defer db.Close()

	registry := services.NewRunRegistry(db)

	switch command {
	case "up":
		if err := runMigrations(ctx, db, registry); err != nil {
			return err
		}
		log.Info("Migrations completed successfully")

	case "down":
		if cfg.IsProduction() {
			return fmt.Errorf("refusing to drop tables in production")
		}
		if err := dropTables(db); err != nil {
			return err
		}
		log.Info("Tables dropped successfully")

	case "runs":
		return listRuns(ctx, registry)

	default:
		return fmt.Errorf("unknown command: %s", command)
	}
	return nil
}

func runMigrations(ctx context.Context, db *database.DB, registry *services.RunRegistry) error {
	if err := registry.Migrate(ctx); err != nil {
		return err
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_training_runs_created_at ON training_runs(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_training_runs_window ON training_runs(start_date, end_date)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

func dropTables(db *database.DB) error {
	if err := db.Migrator().DropTable(&models.TrainingRun{}); err != nil {
		return fmt.Errorf("failed to drop training_runs: %w", err)
	}
	return nil
}

func listRuns(ctx context.Context, registry *services.RunRegistry) error {
	runs, err := registry.List(ctx, 20)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tWINDOW\tTRAIN\tHOLDOUT\tAUC\tARTIFACT")
	for _, r := range runs {
		auc := "-"
		if r.HoldoutAUC != nil {
			auc = fmt.Sprintf("%.4f", *r.HoldoutAUC)
		}
		fmt.Fprintf(w, "%s\t%s\t%s..%s\t%d\t%d\t%s\t%s\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.StartDate, r.EndDate,
			r.TrainRows, r.HoldoutRows, auc, r.ArtifactPath)
	}
	return w.Flush()
}
