package results

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/stemsi/exproctor-backend/internal/model"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func sub(examName string, score int, minutes int) model.StudentSubmission {
	return model.StudentSubmission{
		Submission: model.Submission{
			ID:        uuid.New(),
			ExamID:    uuid.New(),
			Score:     score,
			CreatedAt: base.Add(time.Duration(minutes) * time.Minute),
		},
		ExamName:       examName,
		TotalQuestions: 10,
	}
}

func TestStats(t *testing.T) {
	tests := []struct {
		name       string
		subs       []model.StudentSubmission
		wantCount  int
		wantTotal  int
		wantAvg    float64
		wantRecent []string
	}{
		{
			name:       "no submissions",
			subs:       nil,
			wantAvg:    0,
			wantRecent: []string{},
		},
		{
			name:       "single",
			subs:       []model.StudentSubmission{sub("go", 7, 0)},
			wantCount:  1,
			wantTotal:  7,
			wantAvg:    7,
			wantRecent: []string{"go"},
		},
		{
			name: "average rounds to one decimal",
			subs: []model.StudentSubmission{
				sub("a", 10, 1),
				sub("b", 10, 2),
				sub("c", 0, 3),
			},
			wantCount:  3,
			wantTotal:  20,
			wantAvg:    6.7,
			wantRecent: []string{"c", "b", "a"},
		},
		{
			name: "many submissions",
			subs: []model.StudentSubmission{
				sub("a", 5, 1), sub("b", 5, 2), sub("c", 5, 3), sub("d", 0, 4),
				sub("e", 0, 5), sub("f", 0, 6), sub("g", 0, 7), sub("h", 0, 8),
				sub("i", 0, 9), sub("j", 0, 10), sub("k", 0, 11), sub("l", 0, 12),
				sub("m", 0, 13), sub("n", 0, 14), sub("o", 0, 15), sub("p", 0, 16),
				sub("q", 0, 17), sub("r", 0, 18), sub("s", 0, 19), sub("t", 1, 20),
			},
			wantCount:  20,
			wantTotal:  16,
			wantAvg:    0.8,
			wantRecent: []string{"t", "s", "r", "q", "p"},
		},
		{
			name: "recent keeps five newest",
			subs: []model.StudentSubmission{
				sub("1", 1, 1), sub("6", 6, 6), sub("3", 3, 3),
				sub("2", 2, 2), sub("5", 5, 5), sub("4", 4, 4),
			},
			wantCount:  6,
			wantTotal:  21,
			wantAvg:    3.5,
			wantRecent: []string{"6", "5", "4", "3", "2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Stats(tt.subs, DefaultRecentLimit)
			if got.CompletedExams != tt.wantCount {
				t.Errorf("completed = %d, want %d", got.CompletedExams, tt.wantCount)
			}
			if got.TotalScore != tt.wantTotal {
				t.Errorf("total = %d, want %d", got.TotalScore, tt.wantTotal)
			}
			if got.AvgScore != tt.wantAvg {
				t.Errorf("avg = %v, want %v", got.AvgScore, tt.wantAvg)
			}
			if got.RecentSubmissions == nil {
				t.Fatal("recent must be an empty slice, not nil")
			}
			if len(got.RecentSubmissions) != len(tt.wantRecent) {
				t.Fatalf("recent len = %d, want %d", len(got.RecentSubmissions), len(tt.wantRecent))
			}
			for i, r := range got.RecentSubmissions {
				if r.ExamName != tt.wantRecent[i] {
					t.Errorf("recent[%d] = %s, want %s", i, r.ExamName, tt.wantRecent[i])
				}
			}
		})
	}
}

func TestAverage(t *testing.T) {
	cases := []struct {
		total, count int
		want         float64
	}{
		{0, 0, 0},
		{10, 0, 0},
		{1, 3, 0.3},
		{2, 3, 0.7},
		{25, 2, 12.5},
		{1, 4, 0.3},
		{1, 20, 0.1},
	}
	for _, c := range cases {
		if got := Average(c.total, c.count); got != c.want {
			t.Errorf("Average(%d, %d) = %v, want %v", c.total, c.count, got, c.want)
		}
	}
}

func TestForTeacher(t *testing.T) {
	older := model.TeacherSubmission{StudentName: "a", SubmittedAt: base}
	newer := model.TeacherSubmission{StudentName: "b", SubmittedAt: base.Add(time.Hour)}

	got := ForTeacher([]model.TeacherSubmission{older, newer})
	if got.TotalSubmissions != 2 || got.Submissions[0].StudentName != "b" {
		t.Fatalf("unexpected %+v", got)
	}

	empty := ForTeacher(nil)
	if empty.TotalSubmissions != 0 || empty.Submissions == nil {
		t.Fatalf("empty listing must carry an empty slice, got %+v", empty)
	}
}

func TestSortNewestFirstIsStable(t *testing.T) {
	a, b, c := sub("a", 0, 0), sub("b", 0, 0), sub("c", 0, 5)
	items := []model.StudentSubmission{a, b, c}

	SortNewestFirst(items, func(s model.StudentSubmission) time.Time { return s.CreatedAt })

	want := []string{"c", "a", "b"}
	for i, s := range items {
		if s.ExamName != want[i] {
			t.Fatalf("order = %v at %d, want %v", s.ExamName, i, want)
		}
	}
}
