package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFormatResetTime(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+2", 2*60*60)
	reset := time.Date(2024, 3, 16, 12, 30, 0, 0, loc)

	got := FormatResetTime(reset)
	if got != "2024-03-16T10:30:00.000Z" {
		t.Errorf("FormatResetTime() = %q, want %q", got, "2024-03-16T10:30:00.000Z")
	}
}

func TestTeamResponse_FailureOmitsTeamFields(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(TeamResponse{Success: false, Error: "Failed to generate team. Please try again."})
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if len(body) != 2 {
		t.Errorf("Expected only success and error keys, got %v", body)
	}
	if body["success"] != false {
		t.Errorf("Expected success false, got %v", body["success"])
	}
}
