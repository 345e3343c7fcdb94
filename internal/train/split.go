package train

import (
	"fmt"
	"time"

	"github.com/stitts-dev/acebet/internal/models"
	"github.com/stitts-dev/acebet/pkg/utils"
)

// Split is a pair of half-open row ranges; Train always precedes Test.
type Split struct {
	TrainStart, TrainEnd int
	TestStart, TestEnd   int
}

func (s Split) trainRows() []int { return rowRange(s.TrainStart, s.TrainEnd) }
func (s Split) testRows() []int  { return rowRange(s.TestStart, s.TestEnd) }

// TimeSeriesSplit returns k forward-chaining splits over n ordered rows.
// Each test block has n/(k+1) rows; split i trains on everything before its
// test block, so later splits train on strictly more history.
func TimeSeriesSplit(n, k int) ([]Split, error) {
	if k < 2 {
		return nil, fmt.Errorf("split count must be at least 2, got %d", k)
	}
	if n < k+1 {
		return nil, utils.NewAppError(utils.StageTrain, utils.ErrCodeInsufficientRows, utils.ErrInsufficientRows,
			"window has too few rows for the requested splits", fmt.Sprintf("rows=%d splits=%d", n, k))
	}

	testSize := n / (k + 1)
	splits := make([]Split, k)
	for i := range splits {
		trainEnd := n - (k-i)*testSize
		splits[i] = Split{
			TrainStart: 0,
			TrainEnd:   trainEnd,
			TestStart:  trainEnd,
			TestEnd:    trainEnd + testSize,
		}
	}
	return splits, nil
}

// chronologicalSplit picks one forward-chaining split and pulls the end of
// the training block back so no training row shares a date with the first
// holdout row. The holdout block is exactly the splitter's; only trailing
// training rows are dropped.
func chronologicalSplit(dates []time.Time, k, index int) (Split, error) {
	splits, err := TimeSeriesSplit(len(dates), k)
	if err != nil {
		return Split{}, err
	}
	s := splits[index]

	boundary := dates[s.TestStart]
	for s.TrainEnd > s.TrainStart && !dates[s.TrainEnd-1].Before(boundary) {
		s.TrainEnd--
	}
	if s.TrainEnd == s.TrainStart {
		return Split{}, utils.NewAppError(utils.StageTrain, utils.ErrCodeInsufficientRows, utils.ErrInsufficientRows,
			"no training rows precede the holdout block",
			fmt.Sprintf("holdout_start=%s", boundary.Format(models.DateLayout)))
	}
	return s, nil
}

func rowRange(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}
