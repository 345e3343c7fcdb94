package models

import (
	"time"

	"gorm.io/datatypes"
)

// TrainingRun is one invocation of the trainer, recorded in the run registry.
type TrainingRun struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// Requested window, inclusive on both ends
	StartDate string `gorm:"size:10;not null;index" json:"start_date"`
	EndDate   string `gorm:"size:10;not null" json:"end_date"`

	ArtifactPath string `gorm:"not null" json:"artifact_path"`

	TrainRows    int       `json:"train_rows"`
	HoldoutRows  int       `json:"holdout_rows"`
	TrainStart   time.Time `json:"train_start"`
	TrainEnd     time.Time `json:"train_end"`
	HoldoutStart time.Time `json:"holdout_start"`
	HoldoutEnd   time.Time `json:"holdout_end"`

	Features datatypes.JSON `json:"features"`
	Params   datatypes.JSON `json:"params"`

	// Nil when the holdout cannot produce the metric (e.g. a single class for AUC)
	HoldoutAccuracy *float64 `json:"holdout_accuracy,omitempty"`
	HoldoutLogLoss  *float64 `json:"holdout_log_loss,omitempty"`
	HoldoutAUC      *float64 `json:"holdout_auc,omitempty"`
}

func (TrainingRun) TableName() string {
	return "training_runs"
}
