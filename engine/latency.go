package engine

import (
	"time"

	"github.com/OussamaHadad/matchbook/domain"
)

// AddOutcome buckets an Add or Amend sample by what the internal add did:
// rest on a limit level that already existed, create a brand new limit
// level, or get rejected outright (spec 4.5).
type AddOutcome int

const (
	OutcomeRejected AddOutcome = iota
	OutcomeExistingLevel
	OutcomeNewLevel
)

func (o AddOutcome) String() string {
	switch o {
	case OutcomeRejected:
		return "rejected"
	case OutcomeExistingLevel:
		return "existing_limit_level"
	case OutcomeNewLevel:
		return "new_limit_level"
	default:
		return "unknown"
	}
}

type addKey struct {
	kind    domain.Kind
	outcome AddOutcome
}

// stat accumulates mean and variance online (Welford's algorithm) instead
// of retaining every sample — the source this spec was distilled from
// keeps an unbounded vector<double> per bucket and reduces it at flush
// time; a long-running book would grow that vector without bound, so the
// streaming form is used here instead. See DESIGN.md.
type stat struct {
	count int64
	mean  float64
	m2    float64
}

func (s *stat) add(x float64) {
	s.count++
	d := x - s.mean
	s.mean += d / float64(s.count)
	d2 := x - s.mean
	s.m2 += d * d2
}

func (s *stat) variance() float64 {
	if s.count == 0 {
		return 0
	}
	return s.m2 / float64(s.count)
}

// LatencyMeter classifies and records one elapsed-microseconds sample per
// mutating operation (spec 4.5). It is not separately synchronized: every
// Record call happens while the owning Book holds its single mutex.
type LatencyMeter struct {
	add    map[addKey]*stat
	amend  map[AddOutcome]*stat
	cancel map[bool]*stat
	match  *stat
}

// NewLatencyMeter builds an empty meter.
func NewLatencyMeter() *LatencyMeter {
	return &LatencyMeter{
		add:    make(map[addKey]*stat),
		amend:  make(map[AddOutcome]*stat),
		cancel: make(map[bool]*stat),
		match:  &stat{},
	}
}

func microseconds(d time.Duration) float64 { return float64(d.Nanoseconds()) / 1000.0 }

// RecordAdd files a sample for a user-issued add, keyed by order kind and
// outcome.
func (m *LatencyMeter) RecordAdd(kind domain.Kind, outcome AddOutcome, elapsed time.Duration) {
	key := addKey{kind: kind, outcome: outcome}
	s, ok := m.add[key]
	if !ok {
		s = &stat{}
		m.add[key] = s
	}
	s.add(microseconds(elapsed))
}

// RecordAmend files a sample for an amend's end-to-end latency (the
// cancel phase folded into the subsequent add phase), keyed by the
// internal add's outcome.
func (m *LatencyMeter) RecordAmend(outcome AddOutcome, elapsed time.Duration) {
	s, ok := m.amend[outcome]
	if !ok {
		s = &stat{}
		m.amend[outcome] = s
	}
	s.add(microseconds(elapsed))
}

// RecordCancel files a sample for a user-issued cancel, keyed by whether
// it emptied the level. Cancels issued internally by amend must not be
// passed here — they are accounted for by RecordAmend instead.
func (m *LatencyMeter) RecordCancel(lastInLevel bool, elapsed time.Duration) {
	s, ok := m.cancel[lastInLevel]
	if !ok {
		s = &stat{}
		m.cancel[lastInLevel] = s
	}
	s.add(microseconds(elapsed))
}

// RecordMatch files one sample per inner iteration of the crossing loop.
func (m *LatencyMeter) RecordMatch(elapsed time.Duration) {
	m.match.add(microseconds(elapsed))
}

// Clear discards every recorded sample.
func (m *LatencyMeter) Clear() {
	m.add = make(map[addKey]*stat)
	m.amend = make(map[AddOutcome]*stat)
	m.cancel = make(map[bool]*stat)
	m.match = &stat{}
}

// BucketStats is one row of the stats output record set (spec 6).
type BucketStats struct {
	Operation         string
	OrderKind         string
	LimitLevelStatus  string
	MeanLatencyUs     float64
	LatencyVarianceUs float64
	SampleCount       int64
}

// StatsSnapshot is the full set of latency buckets at a point in time.
type StatsSnapshot struct {
	Buckets      []BucketStats
	TotalSamples int64
}

// Snapshot reads the current buckets without clearing them (the source's
// declared-but-undefined analyzeLatencies; see SPEC_FULL.md 11.3).
func (m *LatencyMeter) Snapshot() StatsSnapshot {
	var snap StatsSnapshot

	for key, s := range m.add {
		snap.Buckets = append(snap.Buckets, BucketStats{
			Operation:         "Add",
			OrderKind:         key.kind.String(),
			LimitLevelStatus:  key.outcome.String(),
			MeanLatencyUs:     s.mean,
			LatencyVarianceUs: s.variance(),
			SampleCount:       s.count,
		})
		snap.TotalSamples += s.count
	}

	for outcome, s := range m.amend {
		snap.Buckets = append(snap.Buckets, BucketStats{
			Operation:         "Amend",
			LimitLevelStatus:  outcome.String(),
			MeanLatencyUs:     s.mean,
			LatencyVarianceUs: s.variance(),
			SampleCount:       s.count,
		})
		snap.TotalSamples += s.count
	}

	for lastInLevel, s := range m.cancel {
		status := "not_last_in_limit_level"
		if lastInLevel {
			status = "last_in_limit_level"
		}
		snap.Buckets = append(snap.Buckets, BucketStats{
			Operation:         "Cancel",
			LimitLevelStatus:  status,
			MeanLatencyUs:     s.mean,
			LatencyVarianceUs: s.variance(),
			SampleCount:       s.count,
		})
		snap.TotalSamples += s.count
	}

	snap.Buckets = append(snap.Buckets, BucketStats{
		Operation:         "Match",
		LimitLevelStatus:  "none",
		MeanLatencyUs:     m.match.mean,
		LatencyVarianceUs: m.match.variance(),
		SampleCount:       m.match.count,
	})
	snap.TotalSamples += m.match.count

	return snap
}

// RejectionCounts is additive introspection (SPEC_FULL.md 11.5): it never
// feeds back into control flow, it only answers "why did admission say
// no" for observability.
type RejectionCounts struct {
	DuplicateID      int64
	FAKUnmatchable   int64
	FOKUnfillable    int64
	MarketNoOpposite int64
}
