// Package results aggregates scored submissions into learner and teacher views.
package results

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stemsi/exproctor-backend/internal/model"
)

// DefaultRecentLimit is the number of entries kept in a learner's recent activity.
const DefaultRecentLimit = 5

// SortNewestFirst orders items by descending timestamp. Items with equal
// timestamps keep their relative order.
func SortNewestFirst[T any](items []T, at func(T) time.Time) {
	slices.SortStableFunc(items, func(a, b T) int {
		return at(b).Compare(at(a))
	})
}

// Average returns total/count rounded half away from zero to one decimal,
// or 0 when count is 0.
func Average(total, count int) float64 {
	if count == 0 {
		return 0
	}
	avg, _ := decimal.NewFromInt(int64(total)).
		Div(decimal.NewFromInt(int64(count))).
		Round(1).
		Float64()
	return avg
}

// Recent maps the first limit submissions to recent-activity entries.
// subs must already be ordered newest first.
func Recent(subs []model.StudentSubmission, limit int) []model.RecentSubmission {
	if limit < 0 {
		limit = 0
	}
	n := min(limit, len(subs))

	out := make([]model.RecentSubmission, 0, n)
	for _, s := range subs[:n] {
		out = append(out, model.RecentSubmission{
			ExamID:         s.ExamID,
			ExamName:       s.ExamName,
			Score:          s.Score,
			TotalQuestions: s.TotalQuestions,
			SubmittedAt:    s.CreatedAt,
		})
	}
	return out
}

// Stats summarizes a learner's submissions. The input is sorted newest first
// in place before the recent entries are taken.
func Stats(subs []model.StudentSubmission, recentLimit int) model.LearnerStats {
	SortNewestFirst(subs, func(s model.StudentSubmission) time.Time { return s.CreatedAt })

	total := 0
	for _, s := range subs {
		total += s.Score
	}

	return model.LearnerStats{
		CompletedExams:    len(subs),
		AvgScore:          Average(total, len(subs)),
		TotalScore:        total,
		RecentSubmissions: Recent(subs, recentLimit),
	}
}

// ForTeacher wraps a teacher's submissions, newest first.
func ForTeacher(subs []model.TeacherSubmission) model.TeacherSubmissions {
	if subs == nil {
		subs = []model.TeacherSubmission{}
	}
	SortNewestFirst(subs, func(s model.TeacherSubmission) time.Time { return s.SubmittedAt })
	return model.TeacherSubmissions{
		TotalSubmissions: len(subs),
		Submissions:      subs,
	}
}
