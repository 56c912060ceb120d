package main

import (
	"reflect"
	"testing"
)

func TestAllowedOrigins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "", want: nil},
		{name: "single", raw: "http://localhost:3000", want: []string{"http://localhost:3000"}},
		{name: "comma separated", raw: "https://a.example.com, https://b.example.com", want: []string{"https://a.example.com", "https://b.example.com"}},
		{name: "blank entries dropped", raw: " , https://a.example.com ,", want: []string{"https://a.example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := allowedOrigins(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("allowedOrigins(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
