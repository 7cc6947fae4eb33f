// Package history persists one JSON record per finished game.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/numwits/numwits/internal/game"
)

// Store writes transcripts into a directory, keyed by the transcript's
// timestamp-derived id.
type Store struct {
	dir string
}

// NewStore creates a transcript store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Save writes the transcript and returns the file path. Failures are for
// the caller to log; a lost transcript never invalidates the verdict.
func (s *Store) Save(t *game.Transcript) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create history directory")
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to encode transcript")
	}

	path := filepath.Join(s.dir, fmt.Sprintf("game_%s.json", t.ID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(err, "failed to write transcript")
	}
	return path, nil
}

// Load reads a transcript back by id.
func (s *Store) Load(id string) (*game.Transcript, error) {
	path := filepath.Join(s.dir, fmt.Sprintf("game_%s.json", id))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read transcript %s", id)
	}

	var t game.Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, errors.Wrapf(err, "corrupt transcript %s", id)
	}
	return &t, nil
}
