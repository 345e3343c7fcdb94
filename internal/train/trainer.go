// Package train turns a window of the production dataset into a fitted
// Pipeline using a forward-chaining chronological split.
package train

import (
	"fmt"
	"math"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/sirupsen/logrus"
	"github.com/stitts-dev/acebet/internal/gbm"
	"github.com/stitts-dev/acebet/internal/models"
	"github.com/stitts-dev/acebet/pkg/logger"
	"github.com/stitts-dev/acebet/pkg/utils"
)

// Trainer fits pipelines with a fixed Config.
type Trainer struct {
	cfg Config
}

func New(cfg Config) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, utils.NewAppError(utils.StageTrain, utils.ErrCodeInvalidInput, utils.ErrInvalidInput,
			"invalid trainer config", err.Error())
	}
	return &Trainer{cfg: cfg.clone()}, nil
}

// Config returns a copy of the trainer configuration.
func (t *Trainer) Config() Config {
	return t.cfg.clone()
}

// Result is a fitted pipeline plus what it was fitted and evaluated on.
type Result struct {
	Pipeline     *Pipeline
	TrainRows    int
	HoldoutRows  int
	TrainStart   time.Time
	TrainEnd     time.Time
	HoldoutStart time.Time
	HoldoutEnd   time.Time
	Holdout      TrainingFrame
	Metrics      Metrics
}

// Train fits a pipeline on rows dated within [start, end]. The earliest
// block of the window trains the model and the block right after it is
// held out.
func (t *Trainer) Train(df dataframe.DataFrame, start, end time.Time) (*Result, error) {
	startStr, endStr := start.Format(models.DateLayout), end.Format(models.DateLayout)
	log := logger.WithWindow(startStr, endStr)

	window, err := SelectWindow(df, start, end)
	if err != nil {
		return nil, err
	}
	if window.Empty() {
		return nil, utils.EmptyWindow(startStr, endStr)
	}

	frame, err := SelectFeatures(window, t.cfg.ExcludedColumns)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"rows":     frame.Len(),
		"features": frame.Features.Ncol(),
	}).Info("Selected training window")

	split, err := chronologicalSplit(frame.Dates, t.cfg.SplitCount, t.cfg.SplitIndex)
	if err != nil {
		return nil, err
	}
	trainSet := frame.subset(split.trainRows())
	holdout := frame.subset(split.testRows())
	if trainSet.Features.Err != nil || holdout.Features.Err != nil {
		return nil, fmt.Errorf("failed to split window: %v %v", trainSet.Features.Err, holdout.Features.Err)
	}

	log.WithFields(logrus.Fields{
		"train_rows":    trainSet.Len(),
		"holdout_rows":  holdout.Len(),
		"train_end":     trainSet.Dates[trainSet.Len()-1].Format(models.DateLayout),
		"holdout_start": holdout.Dates[0].Format(models.DateLayout),
	}).Debug("Chronological split")

	encoder := NewOrdinalEncoder()
	if err := encoder.Fit(trainSet.Features); err != nil {
		return nil, err
	}
	X, err := encoder.Transform(trainSet.Features)
	if err != nil {
		return nil, err
	}

	clf := gbm.NewClassifier(t.cfg.Classifier)
	if err := clf.Fit(X, trainSet.Labels); err != nil {
		return nil, fmt.Errorf("failed to fit classifier: %w", err)
	}

	pipeline := &Pipeline{
		Features:   append([]string(nil), encoder.Features...),
		Encoder:    encoder,
		Classifier: clf,
	}

	metrics, err := Evaluate(pipeline, holdout)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate holdout: %w", err)
	}
	fields := logrus.Fields{
		"accuracy": metrics.Accuracy,
		"log_loss": metrics.LogLoss,
	}
	if !math.IsNaN(metrics.AUC) {
		fields["auc"] = metrics.AUC
	}
	log.WithFields(fields).Info("Model trained")

	return &Result{
		Pipeline:     pipeline,
		TrainRows:    trainSet.Len(),
		HoldoutRows:  holdout.Len(),
		TrainStart:   trainSet.Dates[0],
		TrainEnd:     trainSet.Dates[trainSet.Len()-1],
		HoldoutStart: holdout.Dates[0],
		HoldoutEnd:   holdout.Dates[holdout.Len()-1],
		Holdout:      holdout,
		Metrics:      metrics,
	}, nil
}
