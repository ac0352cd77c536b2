package websocket

import (
	"github.com/stemsi/exproctor-backend/internal/model"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSample Action = "sample"
	ActionPing   Action = "ping"
	ActionFlush  Action = "flush"
)

// RequestEnvelope is every client frame. Sample is only read for ActionSample.
type RequestEnvelope struct {
	Action Action                 `json:"action"`
	Sample *model.DetectionSample `json:"sample,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventRecorded Event = "recorded"
	EventFlushed  Event = "flushed"
	EventPong     Event = "pong"
)

// Counters mirrors the four violation counters of a live log.
type Counters struct {
	NoFace           int `json:"no_face_count"`
	MultipleFace     int `json:"multiple_face_count"`
	CellPhone        int `json:"cell_phone_count"`
	ProhibitedObject int `json:"prohibited_object_count"`
}

// CountersOf copies the counters of a cheating log.
func CountersOf(l model.CheatingLog) Counters {
	return Counters{
		NoFace:           l.NoFaceCount,
		MultipleFace:     l.MultipleFaceCount,
		CellPhone:        l.CellPhoneCount,
		ProhibitedObject: l.ProhibitedObjectCount,
	}
}

// RecordedResponse answers a sample with what was detected and the running
// counters.
type RecordedResponse struct {
	Event      Event                 `json:"event"`
	Violations []model.ViolationType `json:"violations"`
	Recorded   bool                  `json:"recorded"`
	Counters   Counters              `json:"counters"`
}

// FlushedResponse reports whether a live log was handed to persistence.
type FlushedResponse struct {
	Event   Event `json:"event"`
	Flushed bool  `json:"flushed"`
}

type ErrorResponse struct {
	Event  Event             `json:"event"`
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
