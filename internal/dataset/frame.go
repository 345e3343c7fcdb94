package dataset

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stitts-dev/acebet/internal/models"
	"github.com/stitts-dev/acebet/pkg/utils"
)

// ToFrame lays records out column-wise. date is kept as a calendar-date
// string, the same shape the trainer parses its window from.
func ToFrame(records []models.RebalancedRecord) dataframe.DataFrame {
	n := len(records)
	str := func(get func(r *models.RebalancedRecord) string) []string {
		out := make([]string, n)
		for i := range records {
			out[i] = get(&records[i])
		}
		return out
	}
	num := func(get func(r *models.RebalancedRecord) float64) []float64 {
		out := make([]float64, n)
		for i := range records {
			out[i] = get(&records[i])
		}
		return out
	}
	ints := func(get func(r *models.RebalancedRecord) int) []int {
		out := make([]int, n)
		for i := range records {
			out[i] = get(&records[i])
		}
		return out
	}
	targets := make([]bool, n)
	for i := range records {
		targets[i] = records[i].Target
	}

	return dataframe.New(
		series.New(str(func(r *models.RebalancedRecord) string { return r.Date.Format(models.DateLayout) }), series.String, models.ColDate),
		series.New(num(func(r *models.RebalancedRecord) float64 { return r.Context.ATP }), series.Float, models.ColATP),
		series.New(str(func(r *models.RebalancedRecord) string { return r.Context.Location }), series.String, models.ColLocation),
		series.New(str(func(r *models.RebalancedRecord) string { return r.Context.Tournament }), series.String, models.ColTournament),
		series.New(str(func(r *models.RebalancedRecord) string { return r.Context.Series }), series.String, models.ColSeries),
		series.New(str(func(r *models.RebalancedRecord) string { return r.Context.Court }), series.String, models.ColCourt),
		series.New(str(func(r *models.RebalancedRecord) string { return r.Context.Surface }), series.String, models.ColSurface),
		series.New(str(func(r *models.RebalancedRecord) string { return r.Context.Round }), series.String, models.ColRound),
		series.New(num(func(r *models.RebalancedRecord) float64 { return r.Context.BestOf }), series.Float, models.ColBestOf),
		series.New(str(func(r *models.RebalancedRecord) string { return r.Context.Comment }), series.String, models.ColComment),
		series.New(str(func(r *models.RebalancedRecord) string { return r.P1.Name }), series.String, models.ColP1),
		series.New(str(func(r *models.RebalancedRecord) string { return r.P2.Name }), series.String, models.ColP2),
		series.New(num(func(r *models.RebalancedRecord) float64 { return r.P1.Rank }), series.Float, models.ColRankP1),
		series.New(num(func(r *models.RebalancedRecord) float64 { return r.P2.Rank }), series.Float, models.ColRankP2),
		series.New(num(func(r *models.RebalancedRecord) float64 { return r.P1.Sets }), series.Float, models.ColSetsP1),
		series.New(num(func(r *models.RebalancedRecord) float64 { return r.P2.Sets }), series.Float, models.ColSetsP2),
		series.New(num(func(r *models.RebalancedRecord) float64 { return r.P1.PS }), series.Float, models.ColPSP1),
		series.New(num(func(r *models.RebalancedRecord) float64 { return r.P2.PS }), series.Float, models.ColPSP2),
		series.New(num(func(r *models.RebalancedRecord) float64 { return r.P1.B365 }), series.Float, models.ColB365P1),
		series.New(num(func(r *models.RebalancedRecord) float64 { return r.P2.B365 }), series.Float, models.ColB365P2),
		series.New(num(func(r *models.RebalancedRecord) float64 { return r.P1.Elo }), series.Float, models.ColEloP1),
		series.New(num(func(r *models.RebalancedRecord) float64 { return r.P2.Elo }), series.Float, models.ColEloP2),
		series.New(num(func(r *models.RebalancedRecord) float64 { return r.ProbaElo }), series.Float, models.ColProbaElo),
		series.New(targets, series.Bool, models.ColTarget),
		series.New(ints(func(r *models.RebalancedRecord) int { return r.Year }), series.Int, models.ColYear),
		series.New(ints(func(r *models.RebalancedRecord) int { return r.Month }), series.Int, models.ColMonth),
		series.New(ints(func(r *models.RebalancedRecord) int { return r.Day }), series.Int, models.ColDay),
		series.New(num(func(r *models.RebalancedRecord) float64 { return r.RankDiff }), series.Float, models.ColRankDiff),
		series.New(str(func(r *models.RebalancedRecord) string { return r.BestRanked }), series.String, models.ColBestRanked),
	)
}

// LoadFrame reads the dataset file straight into a frame.
func (s *Store) LoadFrame() (dataframe.DataFrame, error) {
	records, err := s.Read()
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	df := ToFrame(records)
	if df.Err != nil {
		return dataframe.DataFrame{}, utils.NewAppError(utils.StageTrain, utils.ErrCodeInvalidInput, df.Err,
			"failed to build frame", fmt.Sprintf("path=%s", s.Path))
	}
	return df, nil
}
