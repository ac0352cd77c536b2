package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/exproctor-backend/internal/model"
	"github.com/stemsi/exproctor-backend/internal/response"
	"github.com/stemsi/exproctor-backend/internal/validator"
)

// ExamHandler handles exam endpoints.
type ExamHandler struct {
	examService examService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService examService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// examView always carries coding_question so clients can test a single field.
type examView struct {
	*model.Exam
	CodingQuestion model.CodingQuestion `json:"coding_question"`
}

func viewOf(e *model.Exam) examView {
	v := examView{Exam: e}
	if e.CodingQuestion != nil {
		v.CodingQuestion = *e.CodingQuestion
	}
	return v
}

// ListExams godoc
// GET /api/v1/exams
// Lists every exam.
func (h *ExamHandler) ListExams(c *gin.Context) {
	exams, err := h.examService.ListAll(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if exams == nil {
		exams = []model.Exam{}
	}

	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// ListMyExams godoc
// GET /api/v1/exams/mine
// Lists the exams authored by the calling teacher.
func (h *ExamHandler) ListMyExams(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	exams, err := h.examService.ListByTeacher(c.Request.Context(), caller.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	if exams == nil {
		exams = []model.Exam{}
	}

	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// GetExam godoc
// GET /api/v1/exams/:exam_id
// Returns one exam. The path segment may be the exam ID or its token.
func (h *ExamHandler) GetExam(c *gin.Context) {
	exam, err := h.examService.Resolve(c.Request.Context(), c.Param("exam_id"))
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": viewOf(exam)})
}

// CreateExam godoc
// POST /api/v1/exams
// Creates an exam owned by the calling teacher.
func (h *ExamHandler) CreateExam(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	var req model.ExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), caller, req)
	if err != nil {
		failAuthor(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"exam": viewOf(exam)})
}

// UpdateExam godoc
// PUT /api/v1/exams/:exam_id
// Replaces the editable fields of an exam the caller authored.
func (h *ExamHandler) UpdateExam(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	var req model.ExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Update(c.Request.Context(), caller, c.Param("exam_id"), req)
	if err != nil {
		failAuthor(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": viewOf(exam)})
}

// DeleteExam godoc
// DELETE /api/v1/exams/:exam_id
// Deletes an exam by its token. Questions are removed with it.
func (h *ExamHandler) DeleteExam(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	if err := h.examService.DeleteByToken(c.Request.Context(), caller, c.Param("exam_id")); err != nil {
		failAuthor(c, err)
		return
	}

	response.Message(c, http.StatusOK, "exam deleted")
}

// ListQuestions godoc
// GET /api/v1/exams/:exam_id/questions
// Lists the questions of an exam. Students never see which option is correct.
func (h *ExamHandler) ListQuestions(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	exam, questions, err := h.examService.Questions(c.Request.Context(), c.Param("exam_id"))
	if err != nil {
		fail(c, err)
		return
	}

	if caller.IsStudent() {
		stripped := make([]model.QuestionForStudent, 0, len(questions))
		for i := range questions {
			stripped = append(stripped, questions[i].ForStudent())
		}
		response.Success(c, http.StatusOK, gin.H{"exam_token": exam.ExamToken, "questions": stripped})
		return
	}

	if questions == nil {
		questions = []model.Question{}
	}
	response.Success(c, http.StatusOK, gin.H{"exam_token": exam.ExamToken, "questions": questions})
}
