package team

import (
	"errors"
	"strings"

	"github.com/benvon/team-builder/internal/models"
)

const (
	teamMarker     = "TEAM:"
	strategyMarker = "STRATEGY:"
	fence          = "```"
)

// ErrParse matches every *ParseError
var ErrParse = errors.New("could not parse team data from AI response")

// ParseError reports why a completion could not be split into team and strategy
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return ErrParse.Error() + ": " + e.Reason
}

// Is lets callers match with errors.Is(err, ErrParse)
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// Completion is a parsed model answer
type Completion struct {
	ShowdownText string
	Strategy     string
}

// ParseCompletion splits a completion into the Showdown team block and the strategy guide.
// The team is the text after the first TEAM: marker up to the next STRATEGY: marker (or the
// end), with a surrounding code fence removed. The strategy is everything after the first
// STRATEGY: marker, or a placeholder when there is none.
func ParseCompletion(text string) (*Completion, error) {
	start := strings.Index(text, teamMarker)
	if start < 0 {
		return nil, &ParseError{Reason: "missing " + teamMarker + " section"}
	}

	block := text[start+len(teamMarker):]
	if end := strings.Index(block, strategyMarker); end >= 0 {
		block = block[:end]
	}
	showdown := stripFence(strings.TrimSpace(block))
	if showdown == "" {
		return nil, &ParseError{Reason: "empty " + teamMarker + " section"}
	}

	strategy := models.StrategyPlaceholder
	if i := strings.Index(text, strategyMarker); i >= 0 {
		strategy = strings.TrimSpace(text[i+len(strategyMarker):])
	}

	return &Completion{ShowdownText: showdown, Strategy: strategy}, nil
}

// stripFence removes a ```lang ... ``` wrapper around s. Anything after the last
// closing fence is dropped with it.
func stripFence(s string) string {
	if !strings.HasPrefix(s, fence) {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, fence)
	}
	if end := strings.LastIndex(s, fence); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}
