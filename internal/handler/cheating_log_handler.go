package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/exproctor-backend/internal/model"
	"github.com/stemsi/exproctor-backend/internal/response"
	"github.com/stemsi/exproctor-backend/internal/validator"
)

// CheatingLogHandler handles proctoring log endpoints.
type CheatingLogHandler struct {
	proctorService proctorService
}

// NewCheatingLogHandler creates a new CheatingLogHandler.
func NewCheatingLogHandler(proctorService proctorService) *CheatingLogHandler {
	return &CheatingLogHandler{proctorService: proctorService}
}

// SaveCheatingLog godoc
// POST /api/v1/cheating-logs
// Accepts the client-accumulated log. It is combined with the live log and
// persisted asynchronously.
func (h *CheatingLogHandler) SaveCheatingLog(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	var req model.SaveCheatingLogRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	log, err := h.proctorService.Save(c.Request.Context(), caller, req)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"cheating_log": log})
}

// ListCheatingLogs godoc
// GET /api/v1/cheating-logs/:exam_id
// Lists the stored cheating logs of an exam the caller authored.
func (h *CheatingLogHandler) ListCheatingLogs(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	logs, err := h.proctorService.ListByExam(c.Request.Context(), caller, c.Param("exam_id"))
	if err != nil {
		failAuthor(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"cheating_logs": logs})
}

// LearnerCheatingLog godoc
// GET /api/v1/cheating-logs/:exam_id/:student_id
// Returns one student's stored log for an exam the caller authored.
func (h *CheatingLogHandler) LearnerCheatingLog(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	studentID, err := strconv.ParseInt(c.Param("student_id"), 10, 64)
	if err != nil || studentID <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	log, err := h.proctorService.GetForLearner(c.Request.Context(), caller, c.Param("exam_id"), studentID)
	if err != nil {
		failAuthor(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"cheating_log": log})
}
