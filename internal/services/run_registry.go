package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/stitts-dev/acebet/internal/models"
	"github.com/stitts-dev/acebet/internal/train"
	"github.com/stitts-dev/acebet/pkg/database"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNoRuns = errors.New("no training runs recorded")

// RunRegistry keeps one row per successful training run.
type RunRegistry struct {
	db *database.DB
}

func NewRunRegistry(db *database.DB) *RunRegistry {
	return &RunRegistry{db: db}
}

func (r *RunRegistry) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&models.TrainingRun{}); err != nil {
		return fmt.Errorf("failed to migrate training runs: %w", err)
	}
	return nil
}

// Record inserts run, assigning an ID when it has none.
func (r *RunRegistry) Record(ctx context.Context, run *models.TrainingRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to record training run: %w", err)
	}
	return nil
}

func (r *RunRegistry) Latest(ctx context.Context) (*models.TrainingRun, error) {
	var run models.TrainingRun
	err := r.db.WithContext(ctx).Order("created_at DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest run: %w", err)
	}
	return &run, nil
}

// List returns the most recent runs first. limit <= 0 means all.
func (r *RunRegistry) List(ctx context.Context, limit int) ([]models.TrainingRun, error) {
	var runs []models.TrainingRun
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list training runs: %w", err)
	}
	return runs, nil
}

func newTrainingRun(res *train.Result, startDate, endDate, artifactPath string, cfg train.Config) (*models.TrainingRun, error) {
	features, err := json.Marshal(res.Pipeline.Features)
	if err != nil {
		return nil, err
	}
	params, err := json.Marshal(cfg.Classifier)
	if err != nil {
		return nil, err
	}

	return &models.TrainingRun{
		ID:              uuid.NewString(),
		StartDate:       startDate,
		EndDate:         endDate,
		ArtifactPath:    artifactPath,
		TrainRows:       res.TrainRows,
		HoldoutRows:     res.HoldoutRows,
		TrainStart:      res.TrainStart,
		TrainEnd:        res.TrainEnd,
		HoldoutStart:    res.HoldoutStart,
		HoldoutEnd:      res.HoldoutEnd,
		Features:        datatypes.JSON(features),
		Params:          datatypes.JSON(params),
		HoldoutAccuracy: finite(res.Metrics.Accuracy),
		HoldoutLogLoss:  finite(res.Metrics.LogLoss),
		HoldoutAUC:      finite(res.Metrics.AUC),
	}, nil
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
