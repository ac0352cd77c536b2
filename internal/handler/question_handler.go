package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/exproctor-backend/internal/model"
	"github.com/stemsi/exproctor-backend/internal/response"
	"github.com/stemsi/exproctor-backend/internal/validator"
)

// QuestionHandler handles question authoring endpoints.
type QuestionHandler struct {
	questionService questionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService questionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// CreateQuestion godoc
// POST /api/v1/questions
// Adds a question to an exam the caller authored.
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	var req model.CreateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.questionService.Create(c.Request.Context(), caller, req)
	if err != nil {
		failAuthor(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": q})
}

// UpdateQuestion godoc
// PUT /api/v1/questions/:question_id
// Partially updates a question. Omitted fields keep their value.
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.questionService.Update(c.Request.Context(), caller, id, req)
	if err != nil {
		failAuthor(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": q})
}
