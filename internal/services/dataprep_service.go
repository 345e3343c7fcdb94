package services

import (
	"github.com/sirupsen/logrus"
	"github.com/stitts-dev/acebet/internal/dataprep"
	"github.com/stitts-dev/acebet/internal/dataset"
	"github.com/stitts-dev/acebet/internal/ingest"
	"github.com/stitts-dev/acebet/pkg/logger"
	"github.com/stitts-dev/acebet/pkg/utils"
)

// DataPrepService turns the raw match export into the production dataset.
type DataPrepService struct {
	store *dataset.Store
	log   *logrus.Entry
}

func NewDataPrepService(store *dataset.Store) *DataPrepService {
	return &DataPrepService{
		store: store,
		log:   logger.WithStage(utils.StageRebalance),
	}
}

// Prepare reads csvPath, rebalances it and replaces the dataset file. It
// returns the number of rows written. Nothing is written when the export
// fails validation.
func (s *DataPrepService) Prepare(csvPath string) (int, error) {
	s.log.WithField("source", csvPath).Info("Reading raw matches")

	matches, err := ingest.ReadMatchesFile(csvPath)
	if err != nil {
		return 0, err
	}

	records := dataprep.Prepare(matches)

	kept := 0
	for _, r := range records {
		if r.Target {
			kept++
		}
	}

	if err := s.store.Write(records); err != nil {
		return 0, err
	}

	s.log.WithFields(logrus.Fields{
		"rows":    len(records),
		"kept":    kept,
		"swapped": len(records) - kept,
		"dataset": s.store.Path,
	}).Info("Production dataset written")

	return len(records), nil
}
