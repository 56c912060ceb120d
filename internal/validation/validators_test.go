package validation

import (
	"errors"
	"testing"

	"github.com/benvon/team-builder/internal/models"
)

func validRequest() *models.TeamRequest {
	return &models.TeamRequest{
		PokemonNames: []string{"Pikachu", "Charizard"},
		BattleFormat: "gen9ou",
		Playstyles:   []string{"sun"},
	}
}

func TestValidateTeamRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mutate      func(*models.TeamRequest)
		wantField   string
		wantMessage string
	}{
		{
			name:   "valid request",
			mutate: func(*models.TeamRequest) {},
		},
		{
			name:   "three playstyles allowed",
			mutate: func(r *models.TeamRequest) { r.Playstyles = []string{"sun", "rain", "sand"} },
		},
		{
			name:        "zero pokemon names",
			mutate:      func(r *models.TeamRequest) { r.PokemonNames = []string{} },
			wantField:   "pokemonNames",
			wantMessage: "At least one Pokemon is required",
		},
		{
			name:        "missing pokemon names",
			mutate:      func(r *models.TeamRequest) { r.PokemonNames = nil },
			wantField:   "pokemonNames",
			wantMessage: "At least one Pokemon is required",
		},
		{
			name:        "empty pokemon name",
			mutate:      func(r *models.TeamRequest) { r.PokemonNames = []string{"Pikachu", ""} },
			wantField:   "pokemonNames[1]",
			wantMessage: "Pokemon names must not be empty",
		},
		{
			name:        "empty battle format",
			mutate:      func(r *models.TeamRequest) { r.BattleFormat = "" },
			wantField:   "battleFormat",
			wantMessage: "Battle format is required",
		},
		{
			name:        "no playstyles",
			mutate:      func(r *models.TeamRequest) { r.Playstyles = nil },
			wantField:   "playstyles",
			wantMessage: "At least one playstyle is required",
		},
		{
			name:        "four playstyles",
			mutate:      func(r *models.TeamRequest) { r.Playstyles = []string{"sun", "rain", "sand", "snow"} },
			wantField:   "playstyles",
			wantMessage: "At most 3 playstyles are allowed",
		},
		{
			name:        "empty playstyle",
			mutate:      func(r *models.TeamRequest) { r.Playstyles = []string{"sun", ""} },
			wantField:   "playstyles[1]",
			wantMessage: "Playstyles must not be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := validRequest()
			tt.mutate(req)

			err := ValidateTeamRequest(req)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Expected *ValidationError, got %T (%v)", err, err)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("Expected field %q, got %q", tt.wantField, vErr.Field)
			}
			if vErr.Message != tt.wantMessage {
				t.Errorf("Expected message %q, got %q", tt.wantMessage, vErr.Message)
			}
			if !errors.Is(err, ErrValidation) {
				t.Error("Expected errors.Is(err, ErrValidation) to be true")
			}
		})
	}
}

func TestValidateTeamRequest_NilBody(t *testing.T) {
	t.Parallel()

	err := ValidateTeamRequest(nil)
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "body" {
		t.Fatalf("Expected body ValidationError, got %v", err)
	}
}

func TestNormalizeTeamRequest(t *testing.T) {
	t.Parallel()

	req := &models.TeamRequest{
		PokemonNames: []string{"  Pikachu ", "\tCharizard\x00", "   "},
		BattleFormat: " gen9ou\n",
		Playstyles:   []string{" sun "},
	}
	NormalizeTeamRequest(req)

	if req.PokemonNames[0] != "Pikachu" || req.PokemonNames[1] != "Charizard" {
		t.Errorf("Expected trimmed names, got %q", req.PokemonNames)
	}
	if req.BattleFormat != "gen9ou" {
		t.Errorf("Expected trimmed format, got %q", req.BattleFormat)
	}
	if req.Playstyles[0] != "sun" {
		t.Errorf("Expected trimmed playstyle, got %q", req.Playstyles[0])
	}

	// A whitespace-only name becomes empty and must fail validation
	err := ValidateTeamRequest(req)
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "pokemonNames[2]" {
		t.Errorf("Expected pokemonNames[2] error after normalization, got %v", err)
	}
}

func TestNormalizeTeamRequest_BlankPlaystyle(t *testing.T) {
	t.Parallel()

	req := validRequest()
	req.Playstyles = []string{"  "}
	NormalizeTeamRequest(req)

	err := ValidateTeamRequest(req)
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "playstyles[0]" {
		t.Fatalf("Expected playstyles[0] error after normalization, got %v", err)
	}
	if vErr.Message != "Playstyles must not be empty" {
		t.Errorf("Unexpected message %q", vErr.Message)
	}
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"  hello  ", "hello"},
		{"a\x00b", "ab"},
		{"line1\nline2", "line1\nline2"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeText(tt.input); got != tt.want {
			t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
