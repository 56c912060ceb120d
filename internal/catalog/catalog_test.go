package catalog

import (
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(c.Formats) != 7 {
		t.Errorf("Expected 7 formats, got %d", len(c.Formats))
	}
	if len(c.Playstyles) != 18 {
		t.Errorf("Expected 18 playstyles, got %d", len(c.Playstyles))
	}
	if len(c.Categories) != 6 {
		t.Errorf("Expected 6 categories, got %d", len(c.Categories))
	}
	if len(c.Pokemon) == 0 {
		t.Error("Expected a non-empty Pokemon pool")
	}
}

func TestLookups(t *testing.T) {
	t.Parallel()

	c := MustLoad()

	f, ok := c.Format("gen9ou")
	if !ok {
		t.Fatal("Expected gen9ou to exist")
	}
	if f.Name != "Generation 9 OU Singles" {
		t.Errorf("Unexpected format name %q", f.Name)
	}

	if _, ok := c.Format("gen1ubers"); ok {
		t.Error("Expected unknown format lookup to fail")
	}

	p, ok := c.Playstyle("sun")
	if !ok {
		t.Fatal("Expected sun to exist")
	}
	if p.Name != "Sun Team" || p.Category != "weather" {
		t.Errorf("Unexpected playstyle %+v", p)
	}

	weather := c.PlaystylesByCategory("weather")
	if len(weather) != 4 {
		t.Errorf("Expected 4 weather playstyles, got %d", len(weather))
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "malformed yaml",
			doc:     "formats: [",
			wantErr: "failed to parse catalog",
		},
		{
			name:    "duplicate format",
			doc:     "formats:\n  - id: a\n  - id: a\n",
			wantErr: "duplicate format id",
		},
		{
			name:    "unknown category",
			doc:     "playstyles:\n  - id: sun\n    category: weather\n",
			wantErr: "unknown category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.doc))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
