package service

import (
	"sort"
	"time"

	"call_transcriber/internal/domain"
)

// Selection is the result of choosing a call to process. At most one of
// Call and AlreadyProcessed is set; both empty means no eligible call.
type Selection struct {
	Call             *domain.Call
	AlreadyProcessed bool
}

// Select picks at most one call to process from a raw vendor list: keep
// completed calls with a recording whose start time falls within the
// lookback window, order by start time descending (ties by Sid ascending
// for determinism) and take the head. If the head is the call recorded by
// the dedup marker, there is nothing to do.
//
// Processing only the single most-recent call bounds per-cycle work; the
// system guarantees delivery of the latest observed call only.
func Select(calls []domain.Call, marker string, now time.Time, lookback time.Duration) Selection {
	cutoff := now.Add(-lookback)

	eligible := make([]domain.Call, 0, len(calls))
	for _, c := range calls {
		if c.Status != domain.StatusCompleted {
			continue
		}
		if !c.HasRecording() {
			continue
		}
		if c.StartedAt.Before(cutoff) {
			continue
		}
		eligible = append(eligible, c)
	}

	if len(eligible) == 0 {
		return Selection{}
	}

	sort.Slice(eligible, func(i, j int) bool {
		if !eligible[i].StartedAt.Equal(eligible[j].StartedAt) {
			return eligible[i].StartedAt.After(eligible[j].StartedAt)
		}
		return eligible[i].Sid < eligible[j].Sid
	})

	head := eligible[0]
	if head.Sid == marker {
		return Selection{AlreadyProcessed: true}
	}

	return Selection{Call: &head}
}
