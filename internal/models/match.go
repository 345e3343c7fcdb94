package models

import (
	"math"
	"time"
)

// Side groups the per-player attributes of a match. Numeric fields are NaN when missing.
type Side struct {
	Name string  `json:"name"`
	Rank float64 `json:"rank"`
	Sets float64 `json:"sets"`
	PS   float64 `json:"ps"`   // Pinnacle closing odds
	B365 float64 `json:"b365"` // Bet365 closing odds
	Elo  float64 `json:"elo"`
}

// MatchContext holds the tournament attributes shared by both sides.
type MatchContext struct {
	ATP        float64 `json:"atp"`
	Location   string  `json:"location"`
	Tournament string  `json:"tournament"`
	Series     string  `json:"series"`
	Court      string  `json:"court"`
	Surface    string  `json:"surface"`
	Round      string  `json:"round"`
	BestOf     float64 `json:"best_of"`
	Comment    string  `json:"comment"`
}

// MatchRecord is one historical match as ingested. Side1 is always the winner.
type MatchRecord struct {
	Date    time.Time    `json:"date"`
	Context MatchContext `json:"context"`
	Side1   Side         `json:"side1"`
	Side2   Side         `json:"side2"`
	// ProbaElo is the pre-match Elo probability that Side1 wins.
	ProbaElo float64 `json:"proba_elo"`
}

// Placement records whether the original winner stayed in the p1 slot.
type Placement int

const (
	Kept Placement = iota
	Swapped
)

// PlacementFor derives the placement from a row's position alone: even rows
// keep the winner as p1, odd rows swap.
func PlacementFor(index int) Placement {
	if index%2 == 1 {
		return Swapped
	}
	return Kept
}

func (p Placement) String() string {
	if p == Swapped {
		return "swapped"
	}
	return "kept"
}

// Best-ranked labels.
const (
	BestRankedP1 = "p1"
	BestRankedP2 = "p2"
)

// RebalancedRecord is a match with the winner no longer pinned to one slot.
type RebalancedRecord struct {
	Index     int          `json:"index"`
	Date      time.Time    `json:"date"`
	Context   MatchContext `json:"context"`
	P1        Side         `json:"p1"`
	P2        Side         `json:"p2"`
	ProbaElo  float64      `json:"proba_elo"` // probability that p1 wins
	Target    bool         `json:"target"`    // true iff p1 won
	Placement Placement    `json:"-"`

	Year       int     `json:"year"`
	Month      int     `json:"month"`
	Day        int     `json:"day"`
	RankDiff   float64 `json:"rank_diff"`
	BestRanked string  `json:"best_ranked"`
}

// BestRankedFor labels the better ranked side from rank_p1 - rank_p2. A
// lower rank is better, so only a positive difference favours p2; ties and
// unknown ranks fall back to p1.
func BestRankedFor(rankDiff float64) string {
	if !math.IsNaN(rankDiff) && rankDiff > 0 {
		return BestRankedP2
	}
	return BestRankedP1
}
