package ai

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
)

var (
	// ErrConfiguration means the provider is not usable as configured (missing or rejected key)
	ErrConfiguration = errors.New("AI provider is not configured")
	// ErrUpstreamQuota means the provider refused the request for quota or billing reasons
	ErrUpstreamQuota = errors.New("AI provider quota exceeded")
	// ErrEmptyResponse means the provider answered without any content
	ErrEmptyResponse = errors.New("no response received from AI provider")
	// ErrUpstreamUnavailable covers every other provider failure, timeouts included
	ErrUpstreamUnavailable = errors.New("AI provider unavailable")
)

// Kind classifies an UpstreamError
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindQuota         Kind = "quota"
	KindEmptyResponse Kind = "empty_response"
	KindUnavailable   Kind = "unavailable"
)

func (k Kind) sentinel() error {
	switch k {
	case KindConfiguration:
		return ErrConfiguration
	case KindQuota:
		return ErrUpstreamQuota
	case KindEmptyResponse:
		return ErrEmptyResponse
	default:
		return ErrUpstreamUnavailable
	}
}

// UpstreamError is a classified provider failure. Match it with errors.Is against
// ErrConfiguration, ErrUpstreamQuota, ErrEmptyResponse or ErrUpstreamUnavailable.
type UpstreamError struct {
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %v", e.Kind.sentinel(), e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind.sentinel(), e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for e.Kind
func (e *UpstreamError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// classify maps an SDK error to an UpstreamError
func classify(err error) *UpstreamError {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return &UpstreamError{Kind: KindUnavailable, Err: err}
	}

	kind := KindUnavailable
	switch {
	case apiErr.StatusCode == http.StatusUnauthorized,
		apiErr.StatusCode == http.StatusForbidden,
		apiErr.Code == "invalid_api_key":
		kind = KindConfiguration
	case apiErr.StatusCode == http.StatusTooManyRequests,
		apiErr.Code == "insufficient_quota",
		strings.Contains(strings.ToLower(apiErr.Type), "billing"),
		strings.Contains(strings.ToLower(apiErr.Code), "billing"):
		kind = KindQuota
	}

	return &UpstreamError{Kind: kind, StatusCode: apiErr.StatusCode, Err: err}
}
