// Package dataprep turns winner/loser match records into a label-balanced dataset.
package dataprep

import (
	"sort"

	"github.com/stitts-dev/acebet/internal/models"
)

// Prepare sorts a copy of records by date and rebalances it. The sort is
// stable so matches sharing a date keep their file order.
func Prepare(records []models.MatchRecord) []models.RebalancedRecord {
	sorted := make([]models.MatchRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return Rebalance(sorted)
}

// Rebalance relabels winner/loser as p1/p2 and moves the winner to p2 on
// every odd row. records must already be sorted by date: the swap decision
// depends only on a row's position, so the same ordering always produces the
// same output.
func Rebalance(records []models.MatchRecord) []models.RebalancedRecord {
	out := make([]models.RebalancedRecord, len(records))
	for i, rec := range records {
		out[i] = rebalanceOne(i, rec)
	}
	return out
}

func rebalanceOne(index int, rec models.MatchRecord) models.RebalancedRecord {
	placement := models.PlacementFor(index)

	p1, p2 := rec.Side1, rec.Side2
	proba := rec.ProbaElo
	if placement == models.Swapped {
		p1, p2 = p2, p1
		// proba_elo is "p1 wins", and p1 is now the original loser
		proba = 1 - proba
	}

	rankDiff := p1.Rank - p2.Rank

	return models.RebalancedRecord{
		Index:      index,
		Date:       rec.Date,
		Context:    rec.Context,
		P1:         p1,
		P2:         p2,
		ProbaElo:   proba,
		Target:     placement == models.Kept,
		Placement:  placement,
		Year:       rec.Date.Year(),
		Month:      int(rec.Date.Month()),
		Day:        rec.Date.Day(),
		RankDiff:   rankDiff,
		BestRanked: models.BestRankedFor(rankDiff),
	}
}
