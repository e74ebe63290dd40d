// Package snapshot reads the previously published dataset and writes the
// new one. The prior dataset is the only history kept: each run replaces it.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/phuslu/log"

	"github.com/seenimoa/etftracker/pkg/models"
)

// DefaultPath is where the presentation layer expects the dataset.
const DefaultPath = "public/etf_data.json"

// priorRecord is the subset of a published record needed for reconciliation.
// Any change annotations stored alongside the holdings are ignored.
type priorRecord struct {
	Ticker   string                `json:"ticker"`
	Holdings []models.HoldingEntry `json:"holdings"`
}

// Store maps each instrument ticker to the holdings it was last published with.
// It is read-only after Load.
type Store struct {
	prior map[string][]models.HoldingEntry
}

// Empty returns a store without prior state.
func Empty() *Store {
	return &Store{prior: map[string][]models.HoldingEntry{}}
}

// Load reads the dataset at path. A missing or unreadable file is not an
// error: the run simply starts without prior state.
func Load(path string) *Store {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Info().Str("path", path).Msg("no prior snapshot, starting fresh")
		} else {
			log.Warn().Err(err).Str("path", path).Msg("read prior snapshot")
		}
		return Empty()
	}

	s, err := Parse(data)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("prior snapshot is corrupt, ignoring")
		return Empty()
	}
	log.Debug().Str("path", path).Int("instruments", s.Len()).Msg("loaded prior snapshot")
	return s
}

// Parse builds a store from a JSON array of published records.
func Parse(data []byte) (*Store, error) {
	var records []priorRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}

	s := Empty()
	for _, r := range records {
		if r.Ticker == "" {
			continue
		}
		h := r.Holdings
		if h == nil {
			h = []models.HoldingEntry{}
		}
		s.prior[r.Ticker] = h
	}
	return s, nil
}

// Prior returns the holdings last published for ticker, or nil.
// The ticker must match the configured identifier exactly.
func (s *Store) Prior(ticker string) []models.HoldingEntry {
	return s.prior[ticker]
}

// Has reports whether ticker was present in the prior dataset.
func (s *Store) Has(ticker string) bool {
	_, ok := s.prior[ticker]
	return ok
}

// Len returns the number of instruments in the prior dataset.
func (s *Store) Len() int {
	return len(s.prior)
}

// Encode renders records as the published JSON document: two-space
// indentation, non-ASCII text left unescaped.
func Encode(records []models.InstrumentRecord) ([]byte, error) {
	if records == nil {
		records = []models.InstrumentRecord{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes records to path, replacing any existing file. The write goes
// through a temporary file in the same directory and a rename.
func Save(path string, records []models.InstrumentRecord) error {
	data, err := Encode(records)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".etf_data-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// ReadRecords decodes a full published dataset, for reporting.
func ReadRecords(path string) ([]models.InstrumentRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var records []models.InstrumentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	return records, nil
}
