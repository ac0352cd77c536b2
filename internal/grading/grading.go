// Package grading scores multiple-choice submissions.
package grading

import "github.com/stemsi/exproctor-backend/internal/model"

// DefaultMarks is awarded for a correct answer when the question carries no
// positive mark value.
const DefaultMarks = 10

// Result is the outcome of scoring one submission.
type Result struct {
	Score   int
	Answers []model.Answer
}

// Score grades answers against questions. Answers keep their input order and
// length. An answer to a question that is not in questions is incorrect and
// worth nothing; it is never an error.
func Score(questions []model.Question, answers []model.AnswerInput) Result {
	byID := make(map[string]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID.String()] = &questions[i]
	}

	res := Result{Answers: make([]model.Answer, len(answers))}
	for i, a := range answers {
		out := model.Answer{
			QuestionID:     a.QuestionID,
			SelectedOption: a.SelectedOption,
			CodeAnswer:     a.CodeAnswer,
		}

		if q, ok := byID[a.QuestionID]; ok {
			if correct, ok := q.CorrectOption(); ok && a.SelectedOption != "" && a.SelectedOption == correct.ID {
				out.IsCorrect = true
				res.Score += Marks(q)
			}
		}

		res.Answers[i] = out
	}
	return res
}

// Marks returns the value of a correct answer to q.
func Marks(q *model.Question) int {
	if q.Marks > 0 {
		return q.Marks
	}
	return DefaultMarks
}

// MaxScore is the score of a fully correct submission to questions.
func MaxScore(questions []model.Question) int {
	total := 0
	for i := range questions {
		total += Marks(&questions[i])
	}
	return total
}

// CorrectOptionCount counts the options flagged correct.
func CorrectOptionCount(options []model.OptionRequest) int {
	n := 0
	for _, o := range options {
		if o.IsCorrect {
			n++
		}
	}
	return n
}
