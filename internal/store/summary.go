package store

import (
	"fmt"
	"sort"
	"time"

	"ohttpc/internal/domain"
)

const summaryMode = 0o644

// OutcomeRecord is the on-disk form of a domain.Outcome.
type OutcomeRecord struct {
	Replica  int           `json:"replica"`
	Success  bool          `json:"success"`
	Bytes    int           `json:"bytes,omitempty"`
	Error    string        `json:"error,omitempty"`
	Kind     string        `json:"kind,omitempty"`
	Attempts int           `json:"attempts"`
	Duration time.Duration `json:"duration_ns"`
}

// SummaryRecord is the document written by WriteSummary.
type SummaryRecord struct {
	Summary  domain.Summary  `json:"summary"`
	Outcomes []OutcomeRecord `json:"outcomes"`
}

// WriteSummary atomically writes s and its outcomes to path. Outcomes are
// stored in replica order regardless of completion order.
func WriteSummary(path string, s domain.Summary, outcomes []domain.Outcome) error {
	rec := SummaryRecord{Summary: s, Outcomes: make([]OutcomeRecord, 0, len(outcomes))}
	for _, o := range outcomes {
		rec.Outcomes = append(rec.Outcomes, OutcomeRecord{
			Replica:  o.Replica,
			Success:  o.Success(),
			Bytes:    o.Bytes,
			Error:    o.Reason(),
			Kind:     string(domain.KindOf(o.Err)),
			Attempts: o.Attempts,
			Duration: o.Duration,
		})
	}
	sort.Slice(rec.Outcomes, func(i, j int) bool {
		return rec.Outcomes[i].Replica < rec.Outcomes[j].Replica
	})

	if err := writeJSON(path, rec, summaryMode); err != nil {
		return domain.Wrap(domain.KindIO, "write summary", err)
	}
	return nil
}

// ReadSummary loads a document written by WriteSummary.
func ReadSummary(path string) (SummaryRecord, error) {
	var rec SummaryRecord
	ok, err := readJSON(path, &rec)
	if err != nil {
		return SummaryRecord{}, domain.Wrap(domain.KindIO, "read summary", err)
	}
	if !ok {
		return SummaryRecord{}, domain.Wrap(domain.KindIO, "read summary", fmt.Errorf("%s: no such file", path))
	}
	return rec, nil
}
