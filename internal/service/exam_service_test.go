package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/exproctor-backend/internal/model"
)

func TestResolve(t *testing.T) {
	f := newFixture()
	exam, _, _ := f.seedExam("algebra-1a2b3c4d")
	ctx := context.Background()

	tests := []struct {
		name       string
		identifier string
		wantErr    error
	}{
		{"by internal id", exam.ID.String(), nil},
		{"by token", "algebra-1a2b3c4d", nil},
		{"by token with spaces", "  algebra-1a2b3c4d ", nil},
		{"unknown uuid", uuid.NewString(), ErrExamNotFound},
		{"unknown token", "nope", ErrExamNotFound},
		{"empty", "", ErrExamNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.examSvc.Resolve(ctx, tt.identifier)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && got.ID != exam.ID {
				t.Fatalf("resolved %s, want %s", got.ID, exam.ID)
			}
		})
	}
}

func TestResolveFallsBackToTokenShapedLikeID(t *testing.T) {
	f := newFixture()
	token := uuid.NewString()
	exam := f.exams.add(model.Exam{ExamToken: token, CreatedBy: teacher.UserID})

	got, err := f.examSvc.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.ID != exam.ID {
		t.Fatalf("got %s, want %s", got.ID, exam.ID)
	}
}

func TestResolveStorageFailure(t *testing.T) {
	f := newFixture()
	f.exams.getErr = errBoom

	_, err := f.examSvc.Resolve(context.Background(), uuid.NewString())
	if !errors.Is(err, ErrStorage) || !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want ErrStorage wrapping the cause", err)
	}
}

func TestNewExamToken(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z0-9-]+-[0-9a-f]{8}$`)

	for _, name := range []string{"Intro to Go", "Ujian Akhir Semester!", "***", strings.Repeat("long name ", 20)} {
		tok := NewExamToken(name)
		if !pattern.MatchString(tok) {
			t.Errorf("token %q for %q has unexpected shape", tok, name)
		}
		if _, err := uuid.Parse(tok); err == nil {
			t.Errorf("token %q parses as an internal id", tok)
		}
	}

	if !strings.HasPrefix(NewExamToken("Intro to Go"), "intro-to-go-") {
		t.Error("token does not start with the slugged name")
	}
	if NewExamToken("x") == NewExamToken("x") {
		t.Error("tokens for the same name must differ")
	}
}

func examRequest(name string) model.ExamRequest {
	live := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	return model.ExamRequest{
		ExamName:       name,
		TotalQuestions: 10,
		Duration:       45,
		LiveDate:       live,
		DeadDate:       live.Add(2 * time.Hour),
		CodingQuestion: &model.CodingQuestion{Question: "FizzBuzz", Description: "print it"},
	}
}

func TestCreateUpdateDelete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	exam, err := f.examSvc.Create(ctx, teacher, examRequest("Midterm"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if exam.CreatedBy != teacher.UserID || !strings.HasPrefix(exam.ExamToken, "midterm-") {
		t.Fatalf("unexpected exam %+v", exam)
	}

	if _, err := f.examSvc.Create(ctx, student, examRequest("Nope")); !errors.Is(err, ErrForbidden) {
		t.Fatalf("student create err = %v, want ErrForbidden", err)
	}

	upd := examRequest("Midterm v2")
	upd.CodingQuestion = nil
	if _, err := f.examSvc.Update(ctx, otherTeacher, exam.ID.String(), upd); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign update err = %v, want ErrForbidden", err)
	}

	got, err := f.examSvc.Update(ctx, teacher, exam.ExamToken, upd)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.ExamName != "Midterm v2" || got.CodingQuestion != nil {
		t.Fatalf("update did not replace every field: %+v", got)
	}
	if got.ExamToken != exam.ExamToken {
		t.Fatal("token changed on update")
	}

	if err := f.examSvc.DeleteByToken(ctx, teacher, exam.ID.String()); !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("delete by id err = %v, want ErrExamNotFound", err)
	}
	if err := f.examSvc.DeleteByToken(ctx, otherTeacher, exam.ExamToken); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign delete err = %v, want ErrForbidden", err)
	}
	if err := f.examSvc.DeleteByToken(ctx, teacher, exam.ExamToken); err != nil {
		t.Fatalf("DeleteByToken: %v", err)
	}
	if _, err := f.examSvc.Resolve(ctx, exam.ExamToken); !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("exam still resolvable after delete: %v", err)
	}
}

func TestListByTeacher(t *testing.T) {
	f := newFixture()
	f.seedExam("mine")
	f.exams.add(model.Exam{ExamToken: "theirs", CreatedBy: otherTeacher.UserID})

	mine, err := f.examSvc.ListByTeacher(context.Background(), teacher.UserID)
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].ExamToken != "mine" {
		t.Fatalf("got %+v", mine)
	}

	all, _ := f.examSvc.ListAll(context.Background())
	if len(all) != 2 {
		t.Fatalf("ListAll returned %d exams", len(all))
	}
}

func TestQuestionsByEitherIdentifier(t *testing.T) {
	f := newFixture()
	exam, _, _ := f.seedExam("quiz")

	for _, id := range []string{exam.ID.String(), "quiz"} {
		_, qs, err := f.examSvc.Questions(context.Background(), id)
		if err != nil {
			t.Fatalf("Questions(%s): %v", id, err)
		}
		if len(qs) != 2 {
			t.Fatalf("Questions(%s) = %d questions", id, len(qs))
		}
	}
}
