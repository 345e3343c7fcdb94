package train

import (
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/stitts-dev/acebet/internal/dataprep"
	"github.com/stitts-dev/acebet/internal/dataset"
	"github.com/stitts-dev/acebet/internal/models"
)

var surfaces = []string{"Hard", "Clay", "Grass"}

// syntheticMatches produces n matches, two per day from 2019-01-01, where
// the better-ranked player wins four matches out of five.
func syntheticMatches(n int) []models.MatchRecord {
	base := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.MatchRecord, n)
	for i := 0; i < n; i++ {
		good := float64(1 + (i*7)%40)
		bad := good + float64(5+(i*13)%60)
		wRank, lRank := good, bad
		if i%5 == 0 {
			wRank, lRank = bad, good
		}
		out[i] = models.MatchRecord{
			Date: base.AddDate(0, 0, i/2),
			Context: models.MatchContext{
				ATP:        float64(i % 60),
				Location:   "Melbourne",
				Tournament: "Australian Open",
				Series:     "Grand Slam",
				Court:      "Outdoor",
				Surface:    surfaces[i%len(surfaces)],
				Round:      "1st Round",
				BestOf:     5,
				Comment:    "Completed",
			},
			Side1:    models.Side{Name: "Winner", Rank: wRank, Sets: 3, PS: 1.4, B365: 1.35, Elo: 1900},
			Side2:    models.Side{Name: "Loser", Rank: lRank, Sets: 1, PS: 3.1, B365: 3.0, Elo: 1750},
			ProbaElo: 0.7,
		}
	}
	return out
}

func syntheticFrame(n int) dataframe.DataFrame {
	return dataset.ToFrame(dataprep.Prepare(syntheticMatches(n)))
}

func date(value string) time.Time {
	d, err := time.Parse(models.DateLayout, value)
	if err != nil {
		panic(err)
	}
	return d
}
