package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stitts-dev/acebet/internal/dataset"
	"github.com/stitts-dev/acebet/internal/models"
	"github.com/stitts-dev/acebet/internal/train"
	"github.com/stitts-dev/acebet/pkg/logger"
)

// TrainingService trains a model on a window of the production dataset,
// saves the artifact and optionally records the run.
type TrainingService struct {
	store    *dataset.Store
	trainer  *train.Trainer
	models   *ModelStore
	registry *RunRegistry
	now      func() time.Time
}

// NewTrainingService wires the service. registry may be nil to skip run
// recording.
func NewTrainingService(store *dataset.Store, trainer *train.Trainer, modelStore *ModelStore, registry *RunRegistry) *TrainingService {
	return &TrainingService{
		store:    store,
		trainer:  trainer,
		models:   modelStore,
		registry: registry,
		now:      time.Now,
	}
}

// SetClock replaces the clock used to name artifacts.
func (s *TrainingService) SetClock(now func() time.Time) {
	s.now = now
}

// TrainModel trains on [startDate, endDate], both YYYY-MM-DD and inclusive.
func (s *TrainingService) TrainModel(ctx context.Context, startDate, endDate string) (*models.TrainingRun, error) {
	start, err := train.ParseDate(startDate)
	if err != nil {
		return nil, err
	}
	end, err := train.ParseDate(endDate)
	if err != nil {
		return nil, err
	}

	df, err := s.store.LoadFrame()
	if err != nil {
		return nil, err
	}

	res, err := s.trainer.Train(df, start, end)
	if err != nil {
		return nil, err
	}

	now := s.now()
	path, err := s.models.Save(&Artifact{
		CreatedAt:   now.UTC(),
		StartDate:   startDate,
		EndDate:     endDate,
		TrainRows:   res.TrainRows,
		HoldoutRows: res.HoldoutRows,
		Pipeline:    res.Pipeline,
	}, now)
	if err != nil {
		return nil, err
	}

	run, err := newTrainingRun(res, startDate, endDate, path, s.trainer.Config())
	if err != nil {
		return nil, err
	}
	run.CreatedAt = now.UTC()

	if s.registry != nil {
		if err := s.registry.Record(ctx, run); err != nil {
			return nil, err
		}
	}

	logger.WithRun(run.ID).WithFields(logrus.Fields{
		"start_date":   startDate,
		"end_date":     endDate,
		"artifact":     path,
		"train_rows":   res.TrainRows,
		"holdout_rows": res.HoldoutRows,
		"recorded":     s.registry != nil,
	}).Info("Training run complete")

	return run, nil
}
