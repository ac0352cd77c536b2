package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/exproctor-backend/internal/model"
	"github.com/stemsi/exproctor-backend/internal/response"
	"github.com/stemsi/exproctor-backend/internal/service"
	"github.com/stemsi/exproctor-backend/internal/validator"
	ws "github.com/stemsi/exproctor-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler handles the proctoring stream.
type WSHandler struct {
	examService    examService
	proctorService proctorService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
	now            func() time.Time
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(examService examService, proctorService proctorService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		examService:    examService,
		proctorService: proctorService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
		now:            time.Now,
	}
}

// ProctorStream godoc
// WS /ws/v1/proctor/exams/:exam_id/stream
// Receives detector samples from the student's browser and keeps the live
// cheating log up to date. The exam is resolved once, before upgrading, and
// the stream is only opened while the exam window is live.
func (h *WSHandler) ProctorStream(c *gin.Context) {
	caller, ok := identity(c)
	if !ok {
		return
	}

	exam, err := h.examService.Resolve(c.Request.Context(), c.Param("exam_id"))
	if err != nil {
		fail(c, err)
		return
	}
	if !exam.IsLive(h.now()) {
		response.Fail(c, http.StatusForbidden, response.ErrExamNotLive)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	// The request context ends with the handler, which outlives the connection.
	ctx := context.WithoutCancel(c.Request.Context())

	wsLog := h.log.With().
		Int64("student_id", caller.UserID).
		Str("exam_id", exam.ID.String()).
		Logger()

	wsLog.Info().Msg("Proctoring stream opened")

	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionSample:
			h.handleSample(ctx, conn, wsLog, caller, exam.ID, msg.Sample)
		case ws.ActionPing:
			_ = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		case ws.ActionFlush:
			h.handleFlush(ctx, conn, wsLog, caller, exam.ID)
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			_ = ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
	}
}

func (h *WSHandler) handleSample(ctx context.Context, conn *websocket.Conn, wsLog zerolog.Logger, caller service.Identity, examID uuid.UUID, sample *model.DetectionSample) {
	if sample == nil {
		_ = ws.WriteError(conn, "sample is required")
		return
	}
	if fields := validator.Struct(sample); fields != nil {
		_ = ws.WriteFieldErrors(conn, response.GetMessage(response.ErrValidation), fields)
		return
	}

	res, err := h.proctorService.RecordSample(ctx, caller, examID, *sample)
	if err != nil {
		wsLog.Error().Err(err).Msg("Record sample failed")
		_ = ws.WriteError(conn, "record failed")
		return
	}

	if res.Recorded {
		wsLog.Debug().Interface("violations", res.Violations).Msg("Violations recorded")
	}

	_ = ws.WriteTyped(conn, ws.RecordedResponse{
		Event:      ws.EventRecorded,
		Violations: res.Violations,
		Recorded:   res.Recorded,
		Counters:   ws.CountersOf(res.Log),
	})
}

func (h *WSHandler) handleFlush(ctx context.Context, conn *websocket.Conn, wsLog zerolog.Logger, caller service.Identity, examID uuid.UUID) {
	flushed, err := h.proctorService.Flush(ctx, caller, examID)
	if err != nil {
		wsLog.Error().Err(err).Msg("Flush live log failed")
		_ = ws.WriteError(conn, "flush failed")
		return
	}

	wsLog.Info().Bool("flushed", flushed).Msg("Live log flushed")
	_ = ws.WriteTyped(conn, ws.FlushedResponse{Event: ws.EventFlushed, Flushed: flushed})
}
