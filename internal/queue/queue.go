// Package queue builds prioritized due-card queues for study sessions.
package queue

import (
	"fmt"
	"sort"
	"time"

	"github.com/studypace/srs-api/internal/domain"
)

// Priority reason categories, checked in this order. The first matching
// category wins, so a badly overdue card reads as overdue even when it is
// also difficult and failing.
const (
	ReasonVeryLowSuccessRate = "very low success rate"
	ReasonLowSuccessRate     = "low success rate"
	ReasonVeryDifficultCard  = "very difficult card"
	ReasonDifficultCard      = "difficult card"
	ReasonNewCard            = "new card"
	ReasonRegularReview      = "regular review due"
)

// Scoring bonuses. Each axis is capped independently before summation; the
// practical maximum score is around 140.
const (
	overdueBonusPerDay = 10
	overdueBonusCap    = 50

	lowSuccessBonus     = 30 // success rate < 0.5
	veryLowSuccessBonus = 20 // additionally, success rate < 0.3

	difficultBonus     = 25 // ease factor < 2.0
	veryDifficultBonus = 15 // additionally, ease factor < 1.5

	underReviewedBonus = 20 // fewer than 3 total reviews
)

// highPriorityThreshold separates routine reviews from cards that need
// attention; entries scoring above it are counted as high priority.
const highPriorityThreshold = 50

// DueEntry is a due card's review state with its derived priority. Entries
// are ephemeral: recomputed on every queue build and never persisted.
type DueEntry struct {
	State          *domain.ReviewState `json:"state"`
	PriorityScore  int                 `json:"priority_score"`
	PriorityReason string              `json:"priority_reason"`
}

// BuildResult is the outcome of one queue build. TotalDue and
// HighPriorityCount always describe the full due set, even when a limit
// truncated Entries.
type BuildResult struct {
	Entries           []DueEntry
	TotalDue          int
	HighPriorityCount int
}

// Build filters the given states down to those due at or before now, scores
// and orders them, and truncates to limit (a non-positive limit means no
// truncation). Pure computation over an already-fetched set; no I/O.
//
// Ordering is by descending priority score; ties break by oldest due date
// first so queue order is deterministic.
func Build(states []*domain.ReviewState, now time.Time, limit int) BuildResult {
	entries := make([]DueEntry, 0, len(states))
	highPriority := 0

	for _, state := range states {
		if state == nil || !state.IsDue(now) {
			continue
		}

		score := Score(state, now)
		if score > highPriorityThreshold {
			highPriority++
		}

		entries = append(entries, DueEntry{
			State:          state,
			PriorityScore:  score,
			PriorityReason: Reason(state, now),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].PriorityScore != entries[j].PriorityScore {
			return entries[i].PriorityScore > entries[j].PriorityScore
		}
		return entries[i].State.NextReviewAt.Before(entries[j].State.NextReviewAt)
	})

	total := len(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return BuildResult{
		Entries:           entries,
		TotalDue:          total,
		HighPriorityCount: highPriority,
	}
}

// Score computes a card's additive priority score: overdue cards, cards the
// user keeps failing, hard cards, and barely-seen cards all push a card up
// the queue.
func Score(state *domain.ReviewState, now time.Time) int {
	score := 0

	overdue := state.DaysOverdue(now) * overdueBonusPerDay
	if overdue > overdueBonusCap {
		overdue = overdueBonusCap
	}
	score += overdue

	if state.SuccessRate < 0.5 {
		score += lowSuccessBonus
		if state.SuccessRate < 0.3 {
			score += veryLowSuccessBonus
		}
	}

	if state.EaseFactor < 2.0 {
		score += difficultBonus
		if state.EaseFactor < 1.5 {
			score += veryDifficultBonus
		}
	}

	if state.TotalReviews < 3 {
		score += underReviewedBonus
	}

	return score
}

// Reason returns the first matching categorical explanation for why a card
// sits where it does in the queue.
func Reason(state *domain.ReviewState, now time.Time) string {
	if days := state.DaysOverdue(now); days > 2 {
		return fmt.Sprintf("%d days overdue", days)
	}

	if state.SuccessRate < 0.3 {
		return ReasonVeryLowSuccessRate
	}
	if state.SuccessRate < 0.5 {
		return ReasonLowSuccessRate
	}

	if state.EaseFactor < 1.5 {
		return ReasonVeryDifficultCard
	}
	if state.EaseFactor < 2.0 {
		return ReasonDifficultCard
	}

	if state.TotalReviews < 3 {
		return ReasonNewCard
	}

	return ReasonRegularReview
}
