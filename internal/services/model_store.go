package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stitts-dev/acebet/internal/train"
)

const artifactTimeLayout = "2006-01-02-15-04"

// Artifact is the persisted trained model with the window it was fitted on.
type Artifact struct {
	CreatedAt   time.Time       `json:"created_at"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	TrainRows   int             `json:"train_rows"`
	HoldoutRows int             `json:"holdout_rows"`
	Pipeline    *train.Pipeline `json:"pipeline"`
}

// ModelStore writes artifacts into a directory, one file per minute.
type ModelStore struct {
	dir string
}

func NewModelStore(dir string) *ModelStore {
	if dir == "" {
		dir = "."
	}
	return &ModelStore{dir: dir}
}

// ArtifactName is model_YYYY-MM-DD-HH-MM.json for the given instant.
func ArtifactName(now time.Time) string {
	return fmt.Sprintf("model_%s.json", now.Format(artifactTimeLayout))
}

// Save writes the artifact and returns its path. A second save within the
// same minute replaces the first.
func (s *ModelStore) Save(artifact *Artifact, now time.Time) (string, error) {
	if artifact == nil || artifact.Pipeline == nil {
		return "", fmt.Errorf("nothing to save")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create model directory: %w", err)
	}

	data, err := json.Marshal(artifact)
	if err != nil {
		return "", fmt.Errorf("failed to encode model: %w", err)
	}

	path := filepath.Join(s.dir, ArtifactName(now))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write model: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to move model into place: %w", err)
	}
	return path, nil
}

// LoadArtifact reads a model file written by Save.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to decode model %s: %w", path, err)
	}
	p := artifact.Pipeline
	if p == nil || p.Encoder == nil || p.Classifier == nil || !p.Classifier.Fitted() {
		return nil, fmt.Errorf("model %s has no fitted pipeline", path)
	}
	return &artifact, nil
}
