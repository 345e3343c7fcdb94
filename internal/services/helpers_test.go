package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stitts-dev/acebet/internal/dataprep"
	"github.com/stitts-dev/acebet/internal/dataset"
	"github.com/stitts-dev/acebet/internal/models"
	"github.com/stitts-dev/acebet/internal/train"
	"github.com/stitts-dev/acebet/pkg/database"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 5, 14, 7, 30, 0, time.UTC)

// seasonMatches returns n matches, two per day from 2019-01-01, where the
// better-ranked player usually wins.
func seasonMatches(n int) []models.MatchRecord {
	base := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	surfaces := []string{"Hard", "Clay", "Grass"}
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
				ATP: 1, Location: "Paris", Tournament: "Roland Garros", Series: "Grand Slam",
				Court: "Outdoor", Surface: surfaces[i%3], Round: "2nd Round", BestOf: 5, Comment: "Completed",
			},
			Side1:    models.Side{Name: "Djokovic N.", Rank: wRank, Sets: 3, PS: 1.3, B365: 1.28, Elo: 2100},
			Side2:    models.Side{Name: "Thiem D.", Rank: lRank, Sets: 1, PS: 3.6, B365: 3.5, Elo: 1950},
			ProbaElo: 0.69,
		}
	}
	return out
}

func writeDataset(t *testing.T, n int) *dataset.Store {
	t.Helper()
	store := dataset.NewStore(filepath.Join(t.TempDir(), "atp_data_production.parquet"), 2)
	require.NoError(t, store.Write(dataprep.Prepare(seasonMatches(n))))
	return store
}

func newRegistry(t *testing.T) *RunRegistry {
	t.Helper()
	db, err := database.NewConnection(filepath.Join(t.TempDir(), "acebet.db"), true)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	registry := NewRunRegistry(db)
	require.NoError(t, registry.Migrate(testContext(t)))
	return registry
}

func newTrainer(t *testing.T) *train.Trainer {
	t.Helper()
	tr, err := train.New(train.DefaultConfig())
	require.NoError(t, err)
	return tr
}
