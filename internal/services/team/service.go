// Package team turns a team request into a prompt, sends it to the AI provider
// and parses the answer.
package team

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/team-builder/internal/catalog"
	"github.com/benvon/team-builder/internal/logger"
	"github.com/benvon/team-builder/internal/metrics"
	"github.com/benvon/team-builder/internal/models"
	"github.com/benvon/team-builder/internal/request"
	"github.com/benvon/team-builder/internal/services/ai"
	"github.com/benvon/team-builder/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Generator produces a team for a validated request
type Generator interface {
	Generate(ctx context.Context, req *models.TeamRequest) (*Completion, error)
}

// Service is the default Generator
type Service struct {
	provider  ai.CompletionProvider
	catalog   *catalog.Catalog
	opts      ai.CompletionOptions
	tracer    trace.Tracer
	metrics   *metrics.Recorder
	log       *zap.Logger
	debugMode bool
}

// Option configures a Service
type Option func(*Service)

// WithTracer overrides the tracer used for the completion span
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithMetrics records completion latency
func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger; debugMode logs full prompts and completions
func WithLogger(log *zap.Logger, debugMode bool) Option {
	return func(s *Service) {
		s.log = log
		s.debugMode = debugMode
	}
}

// NewService creates a generator
func NewService(provider ai.CompletionProvider, c *catalog.Catalog, opts ai.CompletionOptions, options ...Option) *Service {
	s := &Service{
		provider: provider,
		catalog:  c,
		opts:     opts,
		tracer:   telemetry.Tracer("team-builder/team"),
		log:      zap.NewNop(),
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Generate builds the prompt, calls the provider once and parses the result.
// Provider failures are *ai.UpstreamError; unparseable answers are *ParseError.
func (s *Service) Generate(ctx context.Context, req *models.TeamRequest) (*Completion, error) {
	prompt := BuildPrompt(req, s.catalog)

	ctx, span := s.tracer.Start(ctx, "team.generate",
		trace.WithAttributes(
			attribute.Int("team.pokemon_count", len(req.PokemonNames)),
			attribute.String("team.battle_format", req.BattleFormat),
			attribute.StringSlice("team.playstyles", req.Playstyles),
			attribute.String("ai.model", s.opts.Model),
		),
	)
	defer span.End()

	start := time.Now()
	text, err := s.provider.Complete(ctx, ai.SystemPrompt, prompt, s.opts)
	elapsed := time.Since(start)
	s.metrics.RecordCompletion(elapsed, err)
	span.SetAttributes(attribute.Int64("ai.latency_ms", elapsed.Milliseconds()))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return nil, fmt.Errorf("complete: %w", err)
	}

	if s.debugMode {
		s.log.Debug("team_completion_received",
			zap.String("request_id", request.RequestIDFromContext(ctx)),
			zap.String("completion_preview", logger.SanitizeContent(text, true)),
		)
	}

	completion, err := ParseCompletion(text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		s.log.Warn("team_completion_unparseable",
			zap.String("request_id", request.RequestIDFromContext(ctx)),
			zap.Int("completion_length", len(text)),
			zap.String("completion_preview", logger.SanitizeContent(text, false)),
		)
		return nil, err
	}

	span.SetAttributes(attribute.Int("team.showdown_length", len(completion.ShowdownText)))
	span.SetStatus(codes.Ok, "")
	return completion, nil
}
