package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stitts-dev/acebet/internal/dataset"
	"github.com/stitts-dev/acebet/internal/models"
	"github.com/stitts-dev/acebet/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawExport = `ATP,Location,Tournament,Date,Series,Court,Surface,Round,Best of,Winner,Loser,WRank,LRank,Wsets,Lsets,Comment,PSW,PSL,B365W,B365L,elo_winner,elo_loser,proba_elo
1,Brisbane,Brisbane International,2017-01-03,ATP250,Outdoor,Hard,2nd Round,3,Nishikori K.,Thompson J.,5,79,2,0,Completed,1.11,7.5,1.1,7,1990.2,1625.0,0.89
1,Brisbane,Brisbane International,2017-01-02,ATP250,Outdoor,Hard,1st Round,3,Thompson J.,Kudla D.,79,NR,2,1,Completed,1.72,2.2,1.66,2.2,1620.5,1580.1,0.557
1,Brisbane,Brisbane International,2017-01-04,ATP250,Outdoor,Hard,Quarterfinals,3,Dimitrov G.,Nishikori K.,17,5,2,1,Completed,2.4,1.6,2.37,1.57,1850.0,1990.2,0.31
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "atp_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPrepareWritesRebalancedDataset(t *testing.T) {
	store := dataset.NewStore(filepath.Join(t.TempDir(), "out", "atp_data_production.parquet"), 2)

	rows, err := NewDataPrepService(store).Prepare(writeCSV(t, rawExport))
	require.NoError(t, err)
	assert.Equal(t, 3, rows)

	records, err := store.Read()
	require.NoError(t, err)
	require.Len(t, records, 3)

	// sorted by date before rebalancing
	assert.Equal(t, "Thompson J.", records[0].P1.Name)
	assert.True(t, records[0].Target)

	assert.Equal(t, models.Swapped, records[1].Placement)
	assert.Equal(t, "Thompson J.", records[1].P1.Name)
	assert.Equal(t, "Nishikori K.", records[1].P2.Name)
	assert.InDelta(t, 0.11, records[1].ProbaElo, 1e-9)
	assert.False(t, records[1].Target)

	assert.True(t, records[2].Target)
	assert.Equal(t, models.BestRankedP2, records[2].BestRanked)
}

func TestPrepareMissingColumnWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atp_data_production.parquet")
	store := dataset.NewStore(path, 1)

	noOdds := "Date,WRank,LRank,Wsets,Lsets,PSW,PSL,B365W,proba_elo\n2017-01-02,1,2,2,0,1.2,4,1.2,0.7\n"
	_, err := NewDataPrepService(store).Prepare(writeCSV(t, noOdds))
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "b365l")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPrepareMissingFile(t *testing.T) {
	store := dataset.NewStore(filepath.Join(t.TempDir(), "atp.parquet"), 1)
	_, err := NewDataPrepService(store).Prepare(filepath.Join(t.TempDir(), "absent.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
