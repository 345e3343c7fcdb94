package models

// Production dataset column names.
const (
	ColDate       = "date"
	ColATP        = "atp"
	ColLocation   = "location"
	ColTournament = "tournament"
	ColSeries     = "series"
	ColCourt      = "court"
	ColSurface    = "surface"
	ColRound      = "round"
	ColBestOf     = "best_of"
	ColComment    = "comment"
	ColP1         = "p1"
	ColP2         = "p2"
	ColRankP1     = "rank_p1"
	ColRankP2     = "rank_p2"
	ColSetsP1     = "sets_p1"
	ColSetsP2     = "sets_p2"
	ColPSP1       = "ps_p1"
	ColPSP2       = "ps_p2"
	ColB365P1     = "b365_p1"
	ColB365P2     = "b365_p2"
	ColEloP1      = "elo_p1"
	ColEloP2      = "elo_p2"
	ColProbaElo   = "proba_elo"
	ColTarget     = "target"
	ColYear       = "year"
	ColMonth      = "month"
	ColDay        = "day"
	ColRankDiff   = "rank_diff"
	ColBestRanked = "best_ranked"
)

// DateLayout is the calendar-date format used in frames and CLI arguments.
const DateLayout = "2006-01-02"
