package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/exproctor-backend/internal/model"
	"github.com/stemsi/exproctor-backend/internal/response"
	"github.com/stemsi/exproctor-backend/internal/validator"
)

// SubmissionHandler handles exam submission and result endpoints.
type SubmissionHandler struct {
	submissionService submissionService
	resultService     resultService
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(submissionService submissionService, resultService resultService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		resultService:     resultService,
	}
}

// SubmitExam godoc
// POST /api/v1/submissions
// Scores the answers against the answer key and stores the submission.
func (h *SubmissionHandler) SubmitExam(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	var req model.SubmitExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sub, err := h.submissionService.Submit(c.Request.Context(), caller, req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"submission": sub})
}

// ExamResults godoc
// GET /api/v1/results/:exam_id
// Lists every submission of an exam, newest first, with exam details.
func (h *SubmissionHandler) ExamResults(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	list, err := h.resultService.ResultsForExam(c.Request.Context(), caller, c.Param("exam_id"))
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"results": list})
}

// LearnerResult godoc
// GET /api/v1/results/:exam_id/:student_id
// Returns the student's most recent submission to the exam.
func (h *SubmissionHandler) LearnerResult(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	studentID, err := strconv.ParseInt(c.Param("student_id"), 10, 64)
	if err != nil || studentID <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	sub, err := h.resultService.ResultForLearner(c.Request.Context(), caller, c.Param("exam_id"), studentID)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submission": sub})
}

// MyStats godoc
// GET /api/v1/students/me/stats
// Summarizes the calling student's submissions.
func (h *SubmissionHandler) MyStats(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	stats, err := h.resultService.StatsForLearner(c.Request.Context(), caller.UserID)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, stats)
}

// MyLastSubmission godoc
// GET /api/v1/students/me/last-submission
// Returns the exam of the calling student's newest submission.
func (h *SubmissionHandler) MyLastSubmission(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	last, err := h.resultService.LastSubmission(c.Request.Context(), caller.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	if last == nil {
		response.Message(c, http.StatusOK, "no submissions found")
		return
	}

	response.Success(c, http.StatusOK, last)
}

// TeacherSubmissions godoc
// GET /api/v1/teachers/me/submissions
// Lists submissions across every exam the calling teacher authored.
func (h *SubmissionHandler) TeacherSubmissions(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	subs, err := h.resultService.SubmissionsForTeacher(c.Request.Context(), caller.UserID)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, subs)
}
