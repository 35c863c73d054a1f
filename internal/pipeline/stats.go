package pipeline

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Outcome is what happened to one descriptor.
type Outcome string

const (
	OutcomeDetected     Outcome = "detected"
	OutcomeDuplicate    Outcome = "duplicate"
	OutcomeInconclusive Outcome = "inconclusive"
	OutcomeDeclined     Outcome = "declined"
	OutcomeFetchFailed  Outcome = "fetch_failed"
	OutcomeFiltered     Outcome = "filtered"
	OutcomeRejected     Outcome = "rejected"
)

// Stats counts outcomes. Safe for concurrent use.
type Stats struct {
	Detected     atomic.Int64
	Duplicate    atomic.Int64
	Inconclusive atomic.Int64
	Declined     atomic.Int64
	FetchFailed  atomic.Int64
	Filtered     atomic.Int64
	Rejected     atomic.Int64
	DeepScans    atomic.Int64
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Detected     int64 `json:"detected"`
	Duplicate    int64 `json:"duplicate"`
	Inconclusive int64 `json:"inconclusive"`
	Declined     int64 `json:"declined"`
	FetchFailed  int64 `json:"fetch_failed"`
	Filtered     int64 `json:"filtered"`
	Rejected     int64 `json:"rejected"`
	DeepScans    int64 `json:"deep_scans"`
}

func (s *Stats) record(o Outcome) {
	switch o {
	case OutcomeDetected:
		s.Detected.Add(1)
	case OutcomeDuplicate:
		s.Duplicate.Add(1)
	case OutcomeInconclusive:
		s.Inconclusive.Add(1)
	case OutcomeDeclined:
		s.Declined.Add(1)
	case OutcomeFetchFailed:
		s.FetchFailed.Add(1)
	case OutcomeFiltered:
		s.Filtered.Add(1)
	case OutcomeRejected:
		s.Rejected.Add(1)
	}
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Detected:     s.Detected.Load(),
		Duplicate:    s.Duplicate.Load(),
		Inconclusive: s.Inconclusive.Load(),
		Declined:     s.Declined.Load(),
		FetchFailed:  s.FetchFailed.Load(),
		Filtered:     s.Filtered.Load(),
		Rejected:     s.Rejected.Load(),
		DeepScans:    s.DeepScans.Load(),
	}
}

// Total is the number of descriptors handled.
func (s StatsSnapshot) Total() int64 {
	return s.Detected + s.Duplicate + s.Inconclusive + s.Declined + s.FetchFailed + s.Filtered + s.Rejected
}

// Log writes the counters as one summary line.
func (s StatsSnapshot) Log(logger zerolog.Logger) {
	logger.Info().
		Int64("handled", s.Total()).
		Int64("detected", s.Detected).
		Int64("duplicate", s.Duplicate).
		Int64("inconclusive", s.Inconclusive).
		Int64("declined", s.Declined).
		Int64("fetch_failed", s.FetchFailed).
		Int64("filtered", s.Filtered).
		Int64("rejected", s.Rejected).
		Int64("deep_scans", s.DeepScans).
		Msg("Detection summary")
}
