// Package proctor folds proctoring detections into per-learner cheating logs.
//
// All functions are pure: they never mutate their arguments and return fresh
// values, so callers can apply them inside optimistic transactions and retry.
package proctor

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/stemsi/exproctor-backend/internal/model"
)

// ErrUnknownViolation is returned for a violation type outside the closed set.
var ErrUnknownViolation = errors.New("unknown violation type")

// MinConfidence is the lowest detector score that counts. A zero score means
// the client did not report confidence and the detection is kept.
const MinConfidence = 0.5

type evidenceKey struct {
	url  string
	typ  model.ViolationType
	unix int64
}

func keyOf(e model.Evidence) evidenceKey {
	return evidenceKey{url: e.URL, typ: e.Type, unix: e.DetectedAt.UnixNano()}
}

// Merge returns a copy of log with the counter for v incremented and e
// appended. e.Type is forced to v. Merging evidence that is already present
// leaves the log unchanged, so a retried event is never counted twice.
func Merge(log model.CheatingLog, v model.ViolationType, e model.Evidence) (model.CheatingLog, error) {
	if !v.Valid() {
		return log, fmt.Errorf("%w: %q", ErrUnknownViolation, v)
	}
	e.Type = v

	out := log
	out.Screenshots = slices.Clone(log.Screenshots)

	k := keyOf(e)
	for _, s := range log.Screenshots {
		if keyOf(s) == k {
			return out, nil
		}
	}

	out.Screenshots = append(out.Screenshots, e)
	out.SetCount(v, log.Count(v)+1)
	return out, nil
}

// Classify maps one detector sample to the violations it shows. Each
// violation appears at most once per sample, in the order noFace,
// multipleFace, cellPhone, prohibitedObject.
func Classify(sample model.DetectionSample) []model.ViolationType {
	var persons int
	var phone, object bool

	for _, d := range sample.Detections {
		if d.Score > 0 && d.Score < MinConfidence {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(d.Class)) {
		case "person":
			persons++
		case "cell phone":
			phone = true
		case "book", "laptop":
			object = true
		}
	}

	var out []model.ViolationType
	switch {
	case persons == 0:
		out = append(out, model.ViolationNoFace)
	case persons > 1:
		out = append(out, model.ViolationMultipleFace)
	}
	if phone {
		out = append(out, model.ViolationCellPhone)
	}
	if object {
		out = append(out, model.ViolationProhibitedObject)
	}
	return out
}

// Combine merges two partial logs of the same learner and exam. Evidence is
// the union of both lists, ordered by detection time. Each counter is the
// largest of the two counters and the number of evidence entries of its type,
// so detections reported through both paths count once.
//
// Identity fields come from a, falling back to b where a is empty.
func Combine(a, b model.CheatingLog) model.CheatingLog {
	out := a
	if out.ID == uuid.Nil {
		out.ID = b.ID
	}
	if out.ExamID == uuid.Nil {
		out.ExamID = b.ExamID
	}
	if out.StudentID == 0 {
		out.StudentID = b.StudentID
	}
	if out.Username == "" {
		out.Username = b.Username
	}
	if out.Email == "" {
		out.Email = b.Email
	}
	if out.CreatedAt.IsZero() || (!b.CreatedAt.IsZero() && b.CreatedAt.Before(out.CreatedAt)) {
		out.CreatedAt = b.CreatedAt
	}
	if b.UpdatedAt.After(out.UpdatedAt) {
		out.UpdatedAt = b.UpdatedAt
	}

	seen := make(map[evidenceKey]struct{}, len(a.Screenshots)+len(b.Screenshots))
	evidence := make([]model.Evidence, 0, len(a.Screenshots)+len(b.Screenshots))
	perType := make(map[model.ViolationType]int, len(model.ViolationTypes))
	for _, list := range [][]model.Evidence{a.Screenshots, b.Screenshots} {
		for _, e := range list {
			k := keyOf(e)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			evidence = append(evidence, e)
			perType[e.Type]++
		}
	}
	slices.SortStableFunc(evidence, compareEvidence)
	out.Screenshots = evidence

	for _, v := range model.ViolationTypes {
		out.SetCount(v, max(a.Count(v), b.Count(v), perType[v]))
	}
	return out
}

func compareEvidence(x, y model.Evidence) int {
	if c := x.DetectedAt.Compare(y.DetectedAt); c != 0 {
		return c
	}
	if c := cmp.Compare(x.URL, y.URL); c != 0 {
		return c
	}
	return cmp.Compare(x.Type, y.Type)
}

// FromRequest converts a client-posted log into a CheatingLog. Evidence
// entries with an unknown type are rejected.
func FromRequest(req model.SaveCheatingLogRequest) (model.CheatingLog, error) {
	log := model.CheatingLog{
		NoFaceCount:           req.NoFaceCount,
		MultipleFaceCount:     req.MultipleFaceCount,
		CellPhoneCount:        req.CellPhoneCount,
		ProhibitedObjectCount: req.ProhibitedObjectCount,
		Screenshots:           make([]model.Evidence, 0, len(req.Screenshots)),
	}
	for _, s := range req.Screenshots {
		v := model.ViolationType(s.Type)
		if !v.Valid() {
			return model.CheatingLog{}, fmt.Errorf("%w: %q", ErrUnknownViolation, s.Type)
		}
		log.Screenshots = append(log.Screenshots, model.Evidence{URL: s.URL, Type: v, DetectedAt: s.DetectedAt})
	}
	return log, nil
}
