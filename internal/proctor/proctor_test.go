package proctor

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/stemsi/exproctor-backend/internal/model"
)

var t0 = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func ev(url string, v model.ViolationType, sec int) model.Evidence {
	return model.Evidence{URL: url, Type: v, DetectedAt: t0.Add(time.Duration(sec) * time.Second)}
}

func TestMerge(t *testing.T) {
	var log model.CheatingLog

	got, err := Merge(log, model.ViolationCellPhone, ev("https://img/1", "", 1))
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if got.CellPhoneCount != 1 || len(got.Screenshots) != 1 {
		t.Fatalf("unexpected log %+v", got)
	}
	if got.Screenshots[0].Type != model.ViolationCellPhone {
		t.Errorf("evidence type = %q, want cellPhone", got.Screenshots[0].Type)
	}
	if log.CellPhoneCount != 0 || log.Screenshots != nil {
		t.Error("Merge mutated its input")
	}
}

func TestMergeRejectsUnknownType(t *testing.T) {
	log := model.CheatingLog{NoFaceCount: 2}
	got, err := Merge(log, "tabSwitch", ev("u", "", 0))
	if !errors.Is(err, ErrUnknownViolation) {
		t.Fatalf("err = %v, want ErrUnknownViolation", err)
	}
	if got.NoFaceCount != 2 || len(got.Screenshots) != 0 {
		t.Errorf("log changed on error: %+v", got)
	}
}

func TestMergeDuplicateEvidenceCountsOnce(t *testing.T) {
	e := ev("https://img/1", model.ViolationNoFace, 3)

	once, _ := Merge(model.CheatingLog{}, model.ViolationNoFace, e)
	twice, _ := Merge(once, model.ViolationNoFace, e)

	if twice.NoFaceCount != 1 || len(twice.Screenshots) != 1 {
		t.Fatalf("duplicate evidence double-counted: %+v", twice)
	}
}

func TestMergeOrderIndependent(t *testing.T) {
	e1 := ev("https://img/1", model.ViolationNoFace, 1)
	e2 := ev("https://img/2", model.ViolationMultipleFace, 2)

	ab, _ := Merge(model.CheatingLog{}, e1.Type, e1)
	ab, _ = Merge(ab, e2.Type, e2)
	ba, _ := Merge(model.CheatingLog{}, e2.Type, e2)
	ba, _ = Merge(ba, e1.Type, e1)

	for _, v := range model.ViolationTypes {
		if ab.Count(v) != ba.Count(v) {
			t.Errorf("%s: %d vs %d", v, ab.Count(v), ba.Count(v))
		}
	}
	if len(ab.Screenshots) != 2 || len(ba.Screenshots) != 2 {
		t.Fatalf("evidence dropped: %v / %v", ab.Screenshots, ba.Screenshots)
	}
	for _, e := range ab.Screenshots {
		if !slices.Contains(ba.Screenshots, e) {
			t.Errorf("evidence %+v missing from reversed merge", e)
		}
	}
}

func TestMergeCountersMatchEvidence(t *testing.T) {
	var log model.CheatingLog
	events := []model.Evidence{
		ev("a", model.ViolationNoFace, 1),
		ev("b", model.ViolationCellPhone, 2),
		ev("c", model.ViolationNoFace, 3),
		ev("d", model.ViolationProhibitedObject, 4),
	}
	for _, e := range events {
		var err error
		if log, err = Merge(log, e.Type, e); err != nil {
			t.Fatal(err)
		}
	}

	for _, v := range model.ViolationTypes {
		n := 0
		for _, e := range log.Screenshots {
			if e.Type == v {
				n++
			}
		}
		if log.Count(v) != n {
			t.Errorf("%s counter %d, evidence %d", v, log.Count(v), n)
		}
	}
}

func TestClassify(t *testing.T) {
	det := func(classes ...string) model.DetectionSample {
		s := model.DetectionSample{}
		for _, c := range classes {
			s.Detections = append(s.Detections, model.Detection{Class: c, Score: 0.9})
		}
		return s
	}

	tests := []struct {
		name   string
		sample model.DetectionSample
		want   []model.ViolationType
	}{
		{"single person is clean", det("person"), nil},
		{"empty frame", det(), []model.ViolationType{model.ViolationNoFace}},
		{"two people", det("person", "person"), []model.ViolationType{model.ViolationMultipleFace}},
		{"three people count once", det("person", "person", "person"), []model.ViolationType{model.ViolationMultipleFace}},
		{"phone", det("person", "cell phone"), []model.ViolationType{model.ViolationCellPhone}},
		{"book and laptop count once", det("person", "book", "laptop"), []model.ViolationType{model.ViolationProhibitedObject}},
		{
			"everything",
			det("cell phone", "book"),
			[]model.ViolationType{model.ViolationNoFace, model.ViolationCellPhone, model.ViolationProhibitedObject},
		},
		{"case insensitive", det("Person", " Cell Phone "), []model.ViolationType{model.ViolationCellPhone}},
		{"ignores unrelated classes", det("person", "cup", "chair"), nil},
		{
			"low confidence ignored",
			model.DetectionSample{Detections: []model.Detection{{Class: "person", Score: 0.9}, {Class: "cell phone", Score: 0.2}}},
			nil,
		},
		{
			"unreported confidence kept",
			model.DetectionSample{Detections: []model.Detection{{Class: "person"}, {Class: "person"}}},
			[]model.ViolationType{model.ViolationMultipleFace},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.sample); !slices.Equal(got, tt.want) {
				t.Errorf("Classify = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCombine(t *testing.T) {
	examID := uuid.New()
	shared := ev("https://img/shared", model.ViolationCellPhone, 5)

	client := model.CheatingLog{
		ExamID:         examID,
		StudentID:      7,
		Username:       "ana",
		CellPhoneCount: 1,
		NoFaceCount:    4,
		Screenshots:    []model.Evidence{shared},
	}
	live := model.CheatingLog{
		ExamID:         examID,
		StudentID:      7,
		Email:          "ana@example.com",
		CellPhoneCount: 2,
		Screenshots: []model.Evidence{
			ev("https://img/early", model.ViolationCellPhone, 1),
			shared,
		},
	}

	got := Combine(client, live)

	if got.Username != "ana" || got.Email != "ana@example.com" {
		t.Errorf("identity not merged: %q %q", got.Username, got.Email)
	}
	if got.CellPhoneCount != 2 {
		t.Errorf("cell phone = %d, want 2", got.CellPhoneCount)
	}
	if got.NoFaceCount != 4 {
		t.Errorf("no face = %d, want client counter 4", got.NoFaceCount)
	}
	if len(got.Screenshots) != 2 {
		t.Fatalf("evidence = %v, want 2 unique entries", got.Screenshots)
	}
	if got.Screenshots[0].URL != "https://img/early" {
		t.Errorf("evidence not ordered by detection time: %v", got.Screenshots)
	}

	rev := Combine(live, client)
	for _, v := range model.ViolationTypes {
		if rev.Count(v) != got.Count(v) {
			t.Errorf("Combine not commutative for %s: %d vs %d", v, rev.Count(v), got.Count(v))
		}
	}
	if !slices.Equal(rev.Screenshots, got.Screenshots) {
		t.Errorf("evidence differs: %v vs %v", rev.Screenshots, got.Screenshots)
	}
}

func TestCombineWithEmpty(t *testing.T) {
	log := model.CheatingLog{ProhibitedObjectCount: 1, Screenshots: []model.Evidence{ev("x", model.ViolationProhibitedObject, 0)}}

	got := Combine(model.CheatingLog{}, log)
	if got.ProhibitedObjectCount != 1 || len(got.Screenshots) != 1 {
		t.Fatalf("unexpected %+v", got)
	}
}

func TestFromRequest(t *testing.T) {
	req := model.SaveCheatingLogRequest{
		ExamID:      "exam",
		NoFaceCount: 1,
		Screenshots: []model.EvidenceRequest{{URL: "https://img/1", Type: "noFace", DetectedAt: t0}},
	}
	log, err := FromRequest(req)
	if err != nil {
		t.Fatal(err)
	}
	if log.NoFaceCount != 1 || log.Screenshots[0].Type != model.ViolationNoFace {
		t.Fatalf("unexpected %+v", log)
	}

	req.Screenshots[0].Type = "tabSwitch"
	if _, err := FromRequest(req); !errors.Is(err, ErrUnknownViolation) {
		t.Fatalf("err = %v, want ErrUnknownViolation", err)
	}
}
