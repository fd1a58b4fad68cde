package models

import (
	"errors"
	"sync/atomic"
	"time"
)

var ErrNoDataset = errors.New("no dataset loaded")

// Dataset is one fully built record set for an analysis session.
// It is built in one pass and never mutated afterwards; a new upload
// produces a new Dataset.
type Dataset struct {
	Records     []*CaseRecord `json:"records"`
	Source      string        `json:"source"`
	SkippedRows int           `json:"skipped_rows"`
	LoadedAt    time.Time     `json:"loaded_at"`
}

// DatasetStore holds the current session's dataset. Replacement is a
// single pointer swap: readers either see the previous complete set
// or the new complete set, never a partial one.
type DatasetStore struct {
	current atomic.Pointer[Dataset]
}

func NewDatasetStore() *DatasetStore {
	return &DatasetStore{}
}

func (s *DatasetStore) Replace(d *Dataset) {
	s.current.Store(d)
}

// Current returns the active dataset, or ErrNoDataset before the
// first upload (and after a reset).
func (s *DatasetStore) Current() (*Dataset, error) {
	d := s.current.Load()
	if d == nil {
		return nil, ErrNoDataset
	}
	return d, nil
}

func (s *DatasetStore) Reset() {
	s.current.Store(nil)
}
