package services

import (
	"time"

	"github.com/stitts-dev/acebet/internal/dataset"
	"github.com/stitts-dev/acebet/internal/models"
	"github.com/stitts-dev/acebet/internal/train"
)

// Prediction is the model's view of one match.
type Prediction struct {
	Date    string  `json:"date"`
	P1      string  `json:"p1"`
	P2      string  `json:"p2"`
	ProbaP1 float64 `json:"proba_p1"`
	Winner  string  `json:"predicted_winner"`
	Target  bool    `json:"target"`
}

// PredictionService scores dataset windows with a saved pipeline.
type PredictionService struct {
	store *dataset.Store
}

func NewPredictionService(store *dataset.Store) *PredictionService {
	return &PredictionService{store: store}
}

// PredictWindow scores every match dated within [start, end]. An empty
// window yields no predictions.
func (s *PredictionService) PredictWindow(p *train.Pipeline, start, end time.Time) ([]Prediction, error) {
	df, err := s.store.LoadFrame()
	if err != nil {
		return nil, err
	}
	w, err := train.SelectWindow(df, start, end)
	if err != nil || w.Empty() {
		return nil, err
	}

	proba, err := p.PredictProba(w.Frame)
	if err != nil {
		return nil, err
	}

	p1 := w.Frame.Col(models.ColP1).Records()
	p2 := w.Frame.Col(models.ColP2).Records()
	targets := w.Frame.Col(models.ColTarget).Float()

	out := make([]Prediction, len(proba))
	for i, pr := range proba {
		winner := p2[i]
		if pr > 0.5 {
			winner = p1[i]
		}
		out[i] = Prediction{
			Date:    w.Dates[i].Format(models.DateLayout),
			P1:      p1[i],
			P2:      p2[i],
			ProbaP1: pr,
			Winner:  winner,
			Target:  targets[i] == 1,
		}
	}
	return out, nil
}
