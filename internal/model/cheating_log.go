package model

import (
	"time"

	"github.com/google/uuid"
)

// ViolationType is the closed set of proctoring violations.
type ViolationType string

const (
	ViolationNoFace           ViolationType = "noFace"
	ViolationMultipleFace     ViolationType = "multipleFace"
	ViolationCellPhone        ViolationType = "cellPhone"
	ViolationProhibitedObject ViolationType = "prohibitedObject"
)

// ViolationTypes lists every violation type in display order.
var ViolationTypes = []ViolationType{
	ViolationNoFace,
	ViolationMultipleFace,
	ViolationCellPhone,
	ViolationProhibitedObject,
}

// Valid reports whether v belongs to the closed enumeration.
func (v ViolationType) Valid() bool {
	switch v {
	case ViolationNoFace, ViolationMultipleFace, ViolationCellPhone, ViolationProhibitedObject:
		return true
	}
	return false
}

// Evidence is one externally hosted image tied to a single detection.
type Evidence struct {
	URL        string        `json:"url"`
	Type       ViolationType `json:"type"`
	DetectedAt time.Time     `json:"detected_at"`
}

// CheatingLog is the accumulated proctoring record of one learner in one exam.
type CheatingLog struct {
	ID                    uuid.UUID  `json:"id"`
	ExamID                uuid.UUID  `json:"exam_id"`
	StudentID             int64      `json:"student_id"`
	Username              string     `json:"username"`
	Email                 string     `json:"email"`
	NoFaceCount           int        `json:"no_face_count"`
	MultipleFaceCount     int        `json:"multiple_face_count"`
	CellPhoneCount        int        `json:"cell_phone_count"`
	ProhibitedObjectCount int        `json:"prohibited_object_count"`
	Screenshots           []Evidence `json:"screenshots"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// Count returns the counter for v.
func (l *CheatingLog) Count(v ViolationType) int {
	switch v {
	case ViolationNoFace:
		return l.NoFaceCount
	case ViolationMultipleFace:
		return l.MultipleFaceCount
	case ViolationCellPhone:
		return l.CellPhoneCount
	case ViolationProhibitedObject:
		return l.ProhibitedObjectCount
	}
	return 0
}

// SetCount overwrites the counter for v. Unknown types are ignored.
func (l *CheatingLog) SetCount(v ViolationType, n int) {
	switch v {
	case ViolationNoFace:
		l.NoFaceCount = n
	case ViolationMultipleFace:
		l.MultipleFaceCount = n
	case ViolationCellPhone:
		l.CellPhoneCount = n
	case ViolationProhibitedObject:
		l.ProhibitedObjectCount = n
	}
}

// Total sums all four counters.
func (l *CheatingLog) Total() int {
	return l.NoFaceCount + l.MultipleFaceCount + l.CellPhoneCount + l.ProhibitedObjectCount
}

// EvidenceRequest is one evidence entry in a client payload.
type EvidenceRequest struct {
	URL        string    `json:"url" binding:"required,url,max=2048"`
	Type       string    `json:"type" binding:"required,violation_type"`
	DetectedAt time.Time `json:"detected_at" binding:"required"`
}

// SaveCheatingLogRequest is the client-accumulated log posted at submit time.
type SaveCheatingLogRequest struct {
	ExamID                string            `json:"exam_id" binding:"required,max=128"`
	NoFaceCount           int               `json:"no_face_count" binding:"min=0"`
	MultipleFaceCount     int               `json:"multiple_face_count" binding:"min=0"`
	CellPhoneCount        int               `json:"cell_phone_count" binding:"min=0"`
	ProhibitedObjectCount int               `json:"prohibited_object_count" binding:"min=0"`
	Screenshots           []EvidenceRequest `json:"screenshots" binding:"max=1000,dive"`
}

// Detection is one object reported by the client-side detector.
type Detection struct {
	Class string  `json:"class" binding:"required,max=64"`
	Score float64 `json:"score" binding:"min=0,max=1"`
}

// DetectionSample is one periodic detector output.
type DetectionSample struct {
	Detections  []Detection `json:"detections" binding:"max=100,dive"`
	EvidenceURL string      `json:"evidence_url" binding:"omitempty,url,max=2048"`
	CapturedAt  *time.Time  `json:"captured_at" binding:"omitempty"`
}
