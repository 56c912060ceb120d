package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/benvon/team-builder/internal/ratelimit"
	"github.com/redis/go-redis/v9"
)

func TestPrintUsage(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	const prefix, day = "tb", "2026-05-01"
	mr.HSet(prefix+":analytics:"+day, "allowed", "7", "denied", "2")
	mr.HSet(prefix+":analytics:"+day+":id:198.51.100.4", "allowed", "5", "denied", "2")
	mr.HSet(prefix+":analytics:"+day+":id:192.0.2.1", "allowed", "2")
	if _, err := mr.SAdd(prefix+":analytics:"+day+":identifiers", "198.51.100.4", "192.0.2.1"); err != nil {
		t.Fatalf("seed identifiers: %v", err)
	}

	reader := ratelimit.NewUsageReader(client, prefix)

	tests := []struct {
		name       string
		identifier string
		want       []string
	}{
		{
			name: "day with per client table",
			want: []string{
				"Usage for 2026-05-01: allowed 7, denied 2",
				"IDENTIFIER",
				"192.0.2.1     2        0",
				"198.51.100.4  5        2",
			},
		},
		{
			name:       "single identifier",
			identifier: "198.51.100.4",
			want:       []string{"2026-05-01 198.51.100.4: allowed 5, denied 2"},
		},
		{
			name:       "unknown identifier reports zero",
			identifier: "203.0.113.9",
			want:       []string{"allowed 0, denied 0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			if err := printUsage(context.Background(), &out, reader, day, tt.identifier); err != nil {
				t.Fatalf("printUsage: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("Expected output to contain %q, got:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestRatelimitSetCmd_RequiresValidRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing rate", args: []string{"set"}},
		{name: "malformed rate", args: []string{"set", "--rate", "lots"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := NewRatelimitCmd()
			cmd.SetArgs(tt.args)
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			if err := cmd.Execute(); err == nil {
				t.Error("Expected error but got nil")
			}
		})
	}
}
