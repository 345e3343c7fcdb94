// Package ingest reads the raw ATP match export into MatchRecords.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/stitts-dev/acebet/internal/models"
	"github.com/stitts-dev/acebet/pkg/logger"
	"github.com/stitts-dev/acebet/pkg/utils"
)

// Raw export column names, after lowercasing and replacing spaces with underscores.
const (
	colDate       = "date"
	colWinner     = "winner"
	colLoser      = "loser"
	colWRank      = "wrank"
	colLRank      = "lrank"
	colWSets      = "wsets"
	colLSets      = "lsets"
	colPSW        = "psw"
	colPSL        = "psl"
	colB365W      = "b365w"
	colB365L      = "b365l"
	colEloWinner  = "elo_winner"
	colEloLoser   = "elo_loser"
	colProbaElo   = "proba_elo"
	colATP        = "atp"
	colLocation   = "location"
	colTournament = "tournament"
	colSeries     = "series"
	colCourt      = "court"
	colSurface    = "surface"
	colRound      = "round"
	colBestOf     = "best_of"
	colComment    = "comment"
)

// RequiredColumns must be present in the header or ingestion aborts.
var RequiredColumns = []string{
	colDate, colWRank, colLRank, colWSets, colLSets,
	colPSW, colPSL, colB365W, colB365L, colProbaElo,
}

var optionalColumns = []string{
	colWinner, colLoser, colEloWinner, colEloLoser, colATP, colLocation,
	colTournament, colSeries, colCourt, colSurface, colRound, colBestOf, colComment,
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"1/2/2006",
}

// ReadMatchesFile opens path and reads it with ReadMatches.
func ReadMatchesFile(path string) ([]models.MatchRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open raw match file: %w", err)
	}
	defer f.Close()

	return ReadMatches(f)
}

// ReadMatches parses a raw match export. Rows are returned in file order;
// sorting is the caller's job.
func ReadMatches(r io.Reader) ([]models.MatchRecord, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, utils.SchemaMismatch(utils.StageRebalance, colDate)
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[normalizeHeader(name)] = i
	}
	for _, name := range RequiredColumns {
		if _, ok := index[name]; !ok {
			return nil, utils.SchemaMismatch(utils.StageRebalance, name)
		}
	}

	log := logger.WithStage(utils.StageRebalance)
	known := make(map[string]bool, len(RequiredColumns)+len(optionalColumns))
	for _, name := range append(append([]string{}, RequiredColumns...), optionalColumns...) {
		known[name] = true
	}
	for name := range index {
		if !known[name] {
			log.WithField("column", name).Debug("Ignoring unused raw column")
		}
	}

	var records []models.MatchRecord
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}

		rec, err := parseRow(rowReader{row: row, index: index})
		if err != nil {
			return nil, utils.NewAppError(utils.StageRebalance, utils.ErrCodeInvalidInput, utils.ErrInvalidInput,
				"malformed match row", fmt.Sprintf("line=%d: %v", line, err))
		}
		records = append(records, rec)
	}

	log.WithField("matches", len(records)).Info("Raw matches loaded")
	return records, nil
}

func parseRow(r rowReader) (models.MatchRecord, error) {
	date, err := parseDate(r.str(colDate))
	if err != nil {
		return models.MatchRecord{}, err
	}

	return models.MatchRecord{
		Date: date,
		Context: models.MatchContext{
			ATP:        r.num(colATP),
			Location:   r.str(colLocation),
			Tournament: r.str(colTournament),
			Series:     r.str(colSeries),
			Court:      r.str(colCourt),
			Surface:    r.str(colSurface),
			Round:      r.str(colRound),
			BestOf:     r.num(colBestOf),
			Comment:    r.str(colComment),
		},
		Side1: models.Side{
			Name: r.str(colWinner),
			Rank: r.num(colWRank),
			Sets: r.num(colWSets),
			PS:   r.num(colPSW),
			B365: r.num(colB365W),
			Elo:  r.num(colEloWinner),
		},
		Side2: models.Side{
			Name: r.str(colLoser),
			Rank: r.num(colLRank),
			Sets: r.num(colLSets),
			PS:   r.num(colPSL),
			B365: r.num(colB365L),
			Elo:  r.num(colEloLoser),
		},
		ProbaElo: r.num(colProbaElo),
	}, nil
}

type rowReader struct {
	row   []string
	index map[string]int
}

func (r rowReader) str(name string) string {
	i, ok := r.index[name]
	if !ok || i >= len(r.row) {
		return ""
	}
	return strings.TrimSpace(r.row[i])
}

// num returns NaN for absent, empty or non-numeric cells such as "NR".
func (r rowReader) num(name string) float64 {
	v := r.str(name)
	if v == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func parseDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", v)
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
	return strings.ReplaceAll(name, " ", "_")
}
