package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/exproctor-backend/internal/middleware"
	"github.com/stemsi/exproctor-backend/internal/response"
	"github.com/stemsi/exproctor-backend/internal/service"
)

// errorStatus maps a service error onto an HTTP status and API code.
func errorStatus(err error) (int, response.ErrCode) {
	switch {
	case errors.Is(err, service.ErrExamNotFound):
		return http.StatusNotFound, response.ErrExamNotFound
	case errors.Is(err, service.ErrQuestionNotFound):
		return http.StatusNotFound, response.ErrQuestionNotFound
	case errors.Is(err, service.ErrSubmissionNotFound):
		return http.StatusNotFound, response.ErrSubmissionNotFound
	case errors.Is(err, service.ErrCodingQuestionNotFound):
		return http.StatusNotFound, response.ErrCodingQuestionNotFound
	case errors.Is(err, service.ErrCheatingLogNotFound):
		return http.StatusNotFound, response.ErrCheatingLogNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, response.ErrForbidden
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, response.ErrValidation
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, response.ErrInvalidCredentials
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, response.ErrEmailTaken
	case errors.Is(err, service.ErrSessionInvalidated):
		return http.StatusUnauthorized, response.ErrSessionInvalidated
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, response.ErrTokenInvalid
	case errors.Is(err, service.ErrStorage):
		return http.StatusInternalServerError, response.ErrStorage
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}

// fail writes the error response for err. Server-side failures are attached
// to the context so the request logger records the cause.
func fail(c *gin.Context, err error) {
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	if code == response.ErrValidation {
		detail := strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": ")
		response.FailWithDetail(c, status, code, detail)
		return
	}
	response.Fail(c, status, code)
}

// failAuthor is fail for exam authoring routes, where a forbidden caller is
// a teacher who does not own the exam.
func failAuthor(c *gin.Context, err error) {
	if errors.Is(err, service.ErrForbidden) {
		response.Fail(c, http.StatusForbidden, response.ErrNotExamAuthor)
		return
	}
	fail(c, err)
}

// identity returns the caller or writes a 401 and reports false.
func identity(c *gin.Context) (service.Identity, bool) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
	}
	return id, ok
}
