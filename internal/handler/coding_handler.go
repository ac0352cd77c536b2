package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/exproctor-backend/internal/model"
	"github.com/stemsi/exproctor-backend/internal/response"
	"github.com/stemsi/exproctor-backend/internal/validator"
)

// CodingHandler handles coding question endpoints.
type CodingHandler struct {
	codingService codingService
}

// NewCodingHandler creates a new CodingHandler.
func NewCodingHandler(codingService codingService) *CodingHandler {
	return &CodingHandler{codingService: codingService}
}

// GetCodingQuestion godoc
// GET /api/v1/coding/exams/:exam_token
// Returns the coding question embedded in an exam.
func (h *CodingHandler) GetCodingQuestion(c *gin.Context) {
	q, err := h.codingService.GetForExam(c.Request.Context(), c.Param("exam_token"))
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"coding_question": q})
}

// SubmitCode godoc
// POST /api/v1/coding/submit
// Stores the calling student's coding answer, replacing an earlier one.
func (h *CodingHandler) SubmitCode(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	var req model.SubmitCodingRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sub, err := h.codingService.Submit(c.Request.Context(), caller, req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"coding_submission": sub})
}

// MyCodingSubmission godoc
// GET /api/v1/coding/exams/:exam_token/submission
// Returns the calling student's coding answer for an exam.
func (h *CodingHandler) MyCodingSubmission(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	sub, err := h.codingService.MySubmission(c.Request.Context(), caller, c.Param("exam_token"))
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"coding_submission": sub})
}
