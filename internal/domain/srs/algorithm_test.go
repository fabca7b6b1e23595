package srs

import (
	"math"
	"testing"
	"time"

	"github.com/studypace/srs-api/internal/domain"
)

var gradeNow = time.Date(2026, 4, 1, 10, 30, 0, 0, time.UTC)

func TestGrade(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		name         string
		quality      int
		prior        Prior
		wantEase     float64
		wantInterval int
		wantReps     int
	}{
		{
			name:         "fresh card rated perfect",
			quality:      5,
			prior:        Prior{EaseFactor: 2.5, IntervalDays: 1, Repetitions: 0},
			wantEase:     2.6,
			wantInterval: 1,
			wantReps:     1,
		},
		{
			name:         "second success uses the six day opener",
			quality:      4,
			prior:        Prior{EaseFactor: 2.5, IntervalDays: 1, Repetitions: 1},
			wantEase:     2.5,
			wantInterval: 6,
			wantReps:     2,
		},
		{
			name:         "third success compounds by the new ease",
			quality:      5,
			prior:        Prior{EaseFactor: 2.5, IntervalDays: 6, Repetitions: 2},
			wantEase:     2.6,
			wantInterval: 16, // round(6 * 2.6)
			wantReps:     3,
		},
		{
			name:         "failure resets repetitions and interval",
			quality:      2,
			prior:        Prior{EaseFactor: 2.5, IntervalDays: 6, Repetitions: 2},
			wantEase:     2.18, // 2.5 + (0.1 - 3*(0.08 + 3*0.02)) = 2.5 - 0.32
			wantInterval: 1,
			wantReps:     0,
		},
		{
			name:         "complete blackout takes the largest ease penalty",
			quality:      0,
			prior:        Prior{EaseFactor: 2.5, IntervalDays: 30, Repetitions: 5},
			wantEase:     1.7, // 2.5 - 0.8
			wantInterval: 1,
			wantReps:     0,
		},
		{
			name:         "ease factor never drops below the floor",
			quality:      0,
			prior:        Prior{EaseFactor: 1.35, IntervalDays: 1, Repetitions: 0},
			wantEase:     1.3,
			wantInterval: 1,
			wantReps:     0,
		},
		{
			name:         "barely passing rating still counts as success",
			quality:      3,
			prior:        Prior{EaseFactor: 2.0, IntervalDays: 10, Repetitions: 3},
			wantEase:     1.86, // 2.0 - 0.14
			wantInterval: 19,   // round(10 * 1.86)
			wantReps:     4,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Grade(tc.quality, tc.prior, gradeNow, params)
			if err != nil {
				t.Fatalf("Grade returned unexpected error: %v", err)
			}

			if math.Abs(got.EaseFactor-tc.wantEase) > 1e-9 {
				t.Errorf("ease factor = %v, want %v", got.EaseFactor, tc.wantEase)
			}
			if got.IntervalDays != tc.wantInterval {
				t.Errorf("interval = %d, want %d", got.IntervalDays, tc.wantInterval)
			}
			if got.Repetitions != tc.wantReps {
				t.Errorf("repetitions = %d, want %d", got.Repetitions, tc.wantReps)
			}

			wantDue := domain.DateOf(gradeNow).AddDate(0, 0, tc.wantInterval)
			if !got.NextReviewAt.Equal(wantDue) {
				t.Errorf("next review at = %v, want %v", got.NextReviewAt, wantDue)
			}
		})
	}
}

func TestGradeRejectsOutOfRangeQuality(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	prior := Prior{EaseFactor: 2.5, IntervalDays: 1, Repetitions: 0}

	for _, quality := range []int{-1, 6, 100} {
		if _, err := Grade(quality, prior, gradeNow, params); err != domain.ErrInvalidQuality {
			t.Errorf("Grade(%d) error = %v, want ErrInvalidQuality", quality, err)
		}
	}
}

// TestGradePerfectStreak verifies the interval chain 1, 6, round(6*ease'), ...
// with the ease factor climbing 0.1 per perfect answer.
func TestGradePerfectStreak(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	prior := Prior{EaseFactor: 2.5, IntervalDays: 1, Repetitions: 0}
	wantIntervals := []int{1, 6}
	ease := 2.5

	for i := 0; i < 8; i++ {
		got, err := Grade(5, prior, gradeNow, params)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}

		ease += 0.1
		if math.Abs(got.EaseFactor-ease) > 1e-9 {
			t.Fatalf("step %d: ease = %v, want %v", i, got.EaseFactor, ease)
		}

		if i >= len(wantIntervals) {
			want := int(math.Round(float64(prior.IntervalDays) * got.EaseFactor))
			wantIntervals = append(wantIntervals, want)
		}
		if got.IntervalDays != wantIntervals[i] {
			t.Fatalf("step %d: interval = %d, want %d", i, got.IntervalDays, wantIntervals[i])
		}

		prior = Prior{
			EaseFactor:   got.EaseFactor,
			IntervalDays: got.IntervalDays,
			Repetitions:  got.Repetitions,
		}
	}
}

// TestGradeEaseFloorHolds exercises arbitrary quality sequences and asserts
// the ease factor invariant is never violated.
func TestGradeEaseFloorHolds(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	sequences := [][]int{
		{0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
		{5, 0, 5, 0, 5, 0, 5, 0},
		{3, 2, 1, 0, 1, 2, 3, 4, 5},
		{2, 2, 2, 2, 2, 2, 2},
	}

	for _, seq := range sequences {
		prior := Prior{EaseFactor: 2.5, IntervalDays: 1, Repetitions: 0}
		for i, quality := range seq {
			got, err := Grade(quality, prior, gradeNow, params)
			if err != nil {
				t.Fatalf("sequence %v step %d: %v", seq, i, err)
			}
			if got.EaseFactor < params.MinEaseFactor-1e-9 {
				t.Fatalf("sequence %v step %d: ease %v dropped below floor", seq, i, got.EaseFactor)
			}
			if got.IntervalDays < 1 {
				t.Fatalf("sequence %v step %d: interval %d below one day", seq, i, got.IntervalDays)
			}
			prior = Prior{
				EaseFactor:   got.EaseFactor,
				IntervalDays: got.IntervalDays,
				Repetitions:  got.Repetitions,
			}
		}
	}
}
