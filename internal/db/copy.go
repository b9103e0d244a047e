package db

import (
	"github.com/jackc/pgx/v5"

	"github.com/gyeh/noharmcheck/internal/model"
)

// ChannelSource feeds COPY from a channel of staging records, so the producer
// blocks whenever the database falls behind.
type ChannelSource struct {
	ch      <-chan *model.StagingRecord
	current *model.StagingRecord
	count   int64
}

func NewChannelSource(ch <-chan *model.StagingRecord) *ChannelSource {
	return &ChannelSource{ch: ch}
}

// Next receives the next record and reports false once the channel is closed.
func (s *ChannelSource) Next() bool {
	rec, ok := <-s.ch
	if !ok {
		s.current = nil
		return false
	}
	s.current = rec
	s.count++
	return true
}

func (s *ChannelSource) Values() ([]any, error) {
	return s.current.CopyValues(), nil
}

// Err is always nil; producer failures travel on the producer's own channel.
func (s *ChannelSource) Err() error {
	return nil
}

// Count is the number of records handed to COPY so far.
func (s *ChannelSource) Count() int64 {
	return s.count
}

var _ pgx.CopyFromSource = (*ChannelSource)(nil)
