package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestComponentTagsJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := Component(New(&buf, "debug", "json"), "grading")

	log.Info().Int("score", 10).Msg("scored")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if entry["component"] != "grading" {
		t.Errorf("component = %v", entry["component"])
	}
	if entry["message"] != "scored" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["score"] != float64(10) {
		t.Errorf("score = %v", entry["score"])
	}
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "chatty", "json")

	log.Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line should be filtered at info level: %s", buf.String())
	}
	log.Info().Msg("shown")
	if buf.Len() == 0 {
		t.Fatal("info line should be written")
	}
}
