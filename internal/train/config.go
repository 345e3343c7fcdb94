package train

import (
	"fmt"

	"github.com/stitts-dev/acebet/internal/gbm"
	"github.com/stitts-dev/acebet/internal/models"
)

// Config is fixed for the lifetime of a Trainer. Use DefaultConfig and
// override fields before calling New.
type Config struct {
	// ExcludedColumns never reach the model: the label, the date and every
	// column only known once the match is over.
	ExcludedColumns []string   `json:"excluded_columns"`
	SplitCount      int        `json:"split_count"`
	SplitIndex      int        `json:"split_index"`
	Classifier      gbm.Params `json:"classifier"`
}

func DefaultConfig() Config {
	return Config{
		ExcludedColumns: []string{
			models.ColTarget,
			models.ColDate,
			models.ColSetsP1,
			models.ColSetsP2,
			models.ColPSP1,
			models.ColPSP2,
			models.ColB365P1,
			models.ColB365P2,
		},
		SplitCount: 2,
		SplitIndex: 0,
		Classifier: gbm.DefaultParams(),
	}
}

func (c Config) Validate() error {
	if c.SplitCount < 2 {
		return fmt.Errorf("split count must be at least 2, got %d", c.SplitCount)
	}
	if c.SplitIndex < 0 || c.SplitIndex >= c.SplitCount {
		return fmt.Errorf("split index %d out of range [0, %d)", c.SplitIndex, c.SplitCount)
	}
	return c.Classifier.Validate()
}

func (c Config) clone() Config {
	out := c
	out.ExcludedColumns = append([]string(nil), c.ExcludedColumns...)
	return out
}
