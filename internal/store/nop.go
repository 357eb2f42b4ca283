package store

import "fdescout/internal/model"

// NopStore is a no-op store used in dry-run mode. Nothing is persisted,
// so every listing appears new on each run.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) Exists(jobURL string) (bool, error)     { return false, nil }
func (s *NopStore) SaveBatch(records []model.Record) error { return nil }
func (s *NopStore) RecordRunLog(runID, source string, found, added int, errs []string) error {
	return nil
}
