package train

import (
	"fmt"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/stitts-dev/acebet/internal/models"
	"github.com/stitts-dev/acebet/pkg/utils"
)

// Window is the slice of the dataset between two dates, inclusive.
type Window struct {
	Frame dataframe.DataFrame
	Dates []time.Time
}

func (w Window) Empty() bool {
	return len(w.Dates) == 0
}

// TrainingFrame pairs the model inputs with their 0/1 labels, row aligned.
type TrainingFrame struct {
	Features dataframe.DataFrame
	Labels   []float64
	Dates    []time.Time
}

func (f TrainingFrame) Len() int {
	return len(f.Labels)
}

// subset copies the given rows. idx must not be empty.
func (f TrainingFrame) subset(idx []int) TrainingFrame {
	out := TrainingFrame{
		Features: f.Features.Subset(idx),
		Labels:   make([]float64, len(idx)),
		Dates:    make([]time.Time, len(idx)),
	}
	for i, r := range idx {
		out.Labels[i] = f.Labels[r]
		out.Dates[i] = f.Dates[r]
	}
	return out
}

// SelectWindow keeps rows with start <= date <= end at day resolution. The
// dataset must already be sorted by date.
func SelectWindow(df dataframe.DataFrame, start, end time.Time) (Window, error) {
	if !hasColumn(df, models.ColDate) {
		return Window{}, utils.SchemaMismatch(utils.StageTrain, models.ColDate)
	}
	dates, err := parseDates(df)
	if err != nil {
		return Window{}, err
	}
	for i := 1; i < len(dates); i++ {
		if dates[i].Before(dates[i-1]) {
			return Window{}, utils.NewAppError(utils.StageTrain, utils.ErrCodeUnsorted, utils.ErrUnsorted,
				"dataset rows must be in ascending date order", fmt.Sprintf("row=%d", i))
		}
	}

	lo, hi := truncateDay(start), truncateDay(end)
	var idx []int
	for i, d := range dates {
		if !d.Before(lo) && !d.After(hi) {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return Window{}, nil
	}

	w := Window{Frame: df.Subset(idx), Dates: make([]time.Time, len(idx))}
	if w.Frame.Err != nil {
		return Window{}, fmt.Errorf("failed to subset window: %w", w.Frame.Err)
	}
	for i, r := range idx {
		w.Dates[i] = dates[r]
	}
	return w, nil
}

// SelectFeatures drops the excluded columns that are present and turns the
// target column into labels. Unknown extra columns pass through as features.
func SelectFeatures(w Window, excluded []string) (TrainingFrame, error) {
	if !hasColumn(w.Frame, models.ColTarget) {
		return TrainingFrame{}, utils.SchemaMismatch(utils.StageTrain, models.ColTarget)
	}

	labels := w.Frame.Col(models.ColTarget).Float()
	for i, v := range labels {
		if v != 0 && v != 1 {
			return TrainingFrame{}, utils.NewAppError(utils.StageTrain, utils.ErrCodeInvalidInput, utils.ErrInvalidInput,
				"target must be boolean", fmt.Sprintf("row=%d value=%v", i, v))
		}
	}

	var drop []string
	for _, name := range w.Frame.Names() {
		if contains(excluded, name) {
			drop = append(drop, name)
		}
	}
	features := w.Frame
	if len(drop) > 0 {
		features = w.Frame.Drop(drop)
	}
	if features.Err != nil {
		return TrainingFrame{}, fmt.Errorf("failed to drop excluded columns: %w", features.Err)
	}
	if features.Ncol() == 0 {
		return TrainingFrame{}, utils.NewAppError(utils.StageTrain, utils.ErrCodeInvalidInput, utils.ErrInvalidInput,
			"no feature columns left after exclusion")
	}

	return TrainingFrame{Features: features, Labels: labels, Dates: w.Dates}, nil
}

// ParseDate parses a CLI date bound.
func ParseDate(value string) (time.Time, error) {
	d, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return time.Time{}, utils.NewAppError(utils.StageTrain, utils.ErrCodeInvalidInput, utils.ErrInvalidInput,
			"date must be YYYY-MM-DD", fmt.Sprintf("value=%s", value))
	}
	return d, nil
}

func parseDates(df dataframe.DataFrame) ([]time.Time, error) {
	col := df.Col(models.ColDate)
	out := make([]time.Time, col.Len())
	for i, raw := range col.Records() {
		d, err := time.Parse(models.DateLayout, raw)
		if err != nil {
			return nil, utils.NewAppError(utils.StageTrain, utils.ErrCodeInvalidInput, utils.ErrInvalidInput,
				"unparseable date in dataset", fmt.Sprintf("row=%d value=%s", i, raw))
		}
		out[i] = d
	}
	return out, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	return contains(df.Names(), name)
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
