// Package dataset persists the rebalanced production dataset as a Parquet file.
package dataset

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/stitts-dev/acebet/internal/models"
	"github.com/stitts-dev/acebet/pkg/utils"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
)

const readBatchSize = 1024

// row is the on-disk layout. target stays BOOLEAN and date an INT32 DATE so
// the types survive the write/read boundary.
type row struct {
	Date       int32    `parquet:"name=date, type=INT32, convertedtype=DATE"`
	ATP        *float64 `parquet:"name=atp, type=DOUBLE, repetitiontype=OPTIONAL"`
	Location   string   `parquet:"name=location, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Tournament string   `parquet:"name=tournament, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Series     string   `parquet:"name=series, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Court      string   `parquet:"name=court, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Surface    string   `parquet:"name=surface, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Round      string   `parquet:"name=round, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	BestOf     *float64 `parquet:"name=best_of, type=DOUBLE, repetitiontype=OPTIONAL"`
	Comment    string   `parquet:"name=comment, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	P1         string   `parquet:"name=p1, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	P2         string   `parquet:"name=p2, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	RankP1     *float64 `parquet:"name=rank_p1, type=DOUBLE, repetitiontype=OPTIONAL"`
	RankP2     *float64 `parquet:"name=rank_p2, type=DOUBLE, repetitiontype=OPTIONAL"`
	SetsP1     *float64 `parquet:"name=sets_p1, type=DOUBLE, repetitiontype=OPTIONAL"`
	SetsP2     *float64 `parquet:"name=sets_p2, type=DOUBLE, repetitiontype=OPTIONAL"`
	PSP1       *float64 `parquet:"name=ps_p1, type=DOUBLE, repetitiontype=OPTIONAL"`
	PSP2       *float64 `parquet:"name=ps_p2, type=DOUBLE, repetitiontype=OPTIONAL"`
	B365P1     *float64 `parquet:"name=b365_p1, type=DOUBLE, repetitiontype=OPTIONAL"`
	B365P2     *float64 `parquet:"name=b365_p2, type=DOUBLE, repetitiontype=OPTIONAL"`
	EloP1      *float64 `parquet:"name=elo_p1, type=DOUBLE, repetitiontype=OPTIONAL"`
	EloP2      *float64 `parquet:"name=elo_p2, type=DOUBLE, repetitiontype=OPTIONAL"`
	ProbaElo   *float64 `parquet:"name=proba_elo, type=DOUBLE, repetitiontype=OPTIONAL"`
	Target     bool     `parquet:"name=target, type=BOOLEAN"`
	Year       int32    `parquet:"name=year, type=INT32"`
	Month      int32    `parquet:"name=month, type=INT32"`
	Day        int32    `parquet:"name=day, type=INT32"`
	RankDiff   *float64 `parquet:"name=rank_diff, type=DOUBLE, repetitiontype=OPTIONAL"`
	BestRanked string   `parquet:"name=best_ranked, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

// Columns lists the production dataset columns in file order.
var Columns = []string{
	models.ColDate, models.ColATP, models.ColLocation, models.ColTournament, models.ColSeries,
	models.ColCourt, models.ColSurface, models.ColRound, models.ColBestOf, models.ColComment,
	models.ColP1, models.ColP2, models.ColRankP1, models.ColRankP2, models.ColSetsP1,
	models.ColSetsP2, models.ColPSP1, models.ColPSP2, models.ColB365P1, models.ColB365P2,
	models.ColEloP1, models.ColEloP2, models.ColProbaElo, models.ColTarget, models.ColYear,
	models.ColMonth, models.ColDay, models.ColRankDiff, models.ColBestRanked,
}

// Store reads and writes the production dataset file.
type Store struct {
	Path        string
	Parallelism int64
}

func NewStore(path string, parallelism int64) *Store {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Store{Path: path, Parallelism: parallelism}
}

// Write replaces the dataset file. Rows go to a temporary file that is
// renamed over Path only once fully written.
func (s *Store) Write(records []models.RebalancedRecord) (err error) {
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return utils.IOFailure(utils.StageRebalance, "failed to create dataset directory", s.Path, err)
		}
	}

	tmpPath := s.Path + ".tmp"
	defer func() {
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	fw, err := local.NewLocalFileWriter(tmpPath)
	if err != nil {
		return utils.IOFailure(utils.StageRebalance, "failed to create dataset file", tmpPath, err)
	}

	pw, err := writer.NewParquetWriter(fw, new(row), s.Parallelism)
	if err != nil {
		fw.Close()
		return utils.IOFailure(utils.StageRebalance, "failed to create parquet writer", tmpPath, err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i := range records {
		if err := pw.Write(toRow(records[i])); err != nil {
			fw.Close()
			return utils.IOFailure(utils.StageRebalance, fmt.Sprintf("failed to write dataset row %d", i), tmpPath, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return utils.IOFailure(utils.StageRebalance, "failed to finalize dataset file", tmpPath, err)
	}
	if err := fw.Close(); err != nil {
		return utils.IOFailure(utils.StageRebalance, "failed to close dataset file", tmpPath, err)
	}

	if err := os.Rename(tmpPath, s.Path); err != nil {
		return utils.IOFailure(utils.StageRebalance, "failed to move dataset into place", s.Path, err)
	}
	return nil
}

// Read loads every row in file order. Index is reassigned from row position.
func (s *Store) Read() ([]models.RebalancedRecord, error) {
	names, err := s.fileColumns()
	if err != nil {
		return nil, err
	}
	if err := checkSchema(names); err != nil {
		return nil, err
	}

	fr, err := local.NewLocalFileReader(s.Path)
	if err != nil {
		return nil, utils.IOFailure(utils.StageTrain, "failed to open dataset file", s.Path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(row), s.Parallelism)
	if err != nil {
		return nil, utils.IOFailure(utils.StageTrain, "failed to create parquet reader", s.Path, err)
	}
	defer pr.ReadStop()

	num := int(pr.GetNumRows())
	records := make([]models.RebalancedRecord, 0, num)
	batchSize := readBatchSize
	for offset := 0; offset < num; offset += batchSize {
		if remain := num - offset; remain < batchSize {
			batchSize = remain
		}
		batch := make([]row, batchSize)
		if err := pr.Read(&batch); err != nil {
			return nil, utils.IOFailure(utils.StageTrain,
				fmt.Sprintf("failed to read dataset rows at offset %d", offset), s.Path, err)
		}
		for i := range batch {
			records = append(records, fromRow(len(records), batch[i]))
		}
	}
	return records, nil
}

// fileColumns returns the column names as stored in the file. A reader
// built from a struct renames the footer schema to Go field names, so the
// names are taken from a schema-less reader instead.
func (s *Store) fileColumns() ([]string, error) {
	fr, err := local.NewLocalFileReader(s.Path)
	if err != nil {
		return nil, utils.IOFailure(utils.StageTrain, "failed to open dataset file", s.Path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, nil, 1)
	if err != nil {
		return nil, utils.IOFailure(utils.StageTrain, "failed to read dataset footer", s.Path, err)
	}
	defer pr.ReadStop()

	infos := pr.SchemaHandler.Infos
	names := make([]string, 0, len(infos))
	// Infos[0] is the root element
	for i := 1; i < len(infos); i++ {
		names = append(names, infos[i].ExName)
	}
	return names, nil
}

func checkSchema(names []string) error {
	present := make(map[string]bool, len(names))
	for _, name := range names {
		present[name] = true
	}
	for _, name := range Columns {
		if !present[name] {
			return utils.SchemaMismatch(utils.StageTrain, name)
		}
	}
	return nil
}

func toRow(r models.RebalancedRecord) row {
	return row{
		Date:       dateToDays(r.Date),
		ATP:        optional(r.Context.ATP),
		Location:   r.Context.Location,
		Tournament: r.Context.Tournament,
		Series:     r.Context.Series,
		Court:      r.Context.Court,
		Surface:    r.Context.Surface,
		Round:      r.Context.Round,
		BestOf:     optional(r.Context.BestOf),
		Comment:    r.Context.Comment,
		P1:         r.P1.Name,
		P2:         r.P2.Name,
		RankP1:     optional(r.P1.Rank),
		RankP2:     optional(r.P2.Rank),
		SetsP1:     optional(r.P1.Sets),
		SetsP2:     optional(r.P2.Sets),
		PSP1:       optional(r.P1.PS),
		PSP2:       optional(r.P2.PS),
		B365P1:     optional(r.P1.B365),
		B365P2:     optional(r.P2.B365),
		EloP1:      optional(r.P1.Elo),
		EloP2:      optional(r.P2.Elo),
		ProbaElo:   optional(r.ProbaElo),
		Target:     r.Target,
		Year:       int32(r.Year),
		Month:      int32(r.Month),
		Day:        int32(r.Day),
		RankDiff:   optional(r.RankDiff),
		BestRanked: r.BestRanked,
	}
}

func fromRow(index int, r row) models.RebalancedRecord {
	placement := models.Kept
	if !r.Target {
		placement = models.Swapped
	}
	return models.RebalancedRecord{
		Index: index,
		Date:  daysToDate(r.Date),
		Context: models.MatchContext{
			ATP:        value(r.ATP),
			Location:   r.Location,
			Tournament: r.Tournament,
			Series:     r.Series,
			Court:      r.Court,
			Surface:    r.Surface,
			Round:      r.Round,
			BestOf:     value(r.BestOf),
			Comment:    r.Comment,
		},
		P1: models.Side{
			Name: r.P1, Rank: value(r.RankP1), Sets: value(r.SetsP1),
			PS: value(r.PSP1), B365: value(r.B365P1), Elo: value(r.EloP1),
		},
		P2: models.Side{
			Name: r.P2, Rank: value(r.RankP2), Sets: value(r.SetsP2),
			PS: value(r.PSP2), B365: value(r.B365P2), Elo: value(r.EloP2),
		},
		ProbaElo:   value(r.ProbaElo),
		Target:     r.Target,
		Placement:  placement,
		Year:       int(r.Year),
		Month:      int(r.Month),
		Day:        int(r.Day),
		RankDiff:   value(r.RankDiff),
		BestRanked: r.BestRanked,
	}
}

func optional(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func value(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

const secondsPerDay = 24 * 60 * 60

func dateToDays(t time.Time) int32 {
	y, m, d := t.Date()
	return int32(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay)
}

func daysToDate(days int32) time.Time {
	return time.Unix(int64(days)*secondsPerDay, 0).UTC()
}
