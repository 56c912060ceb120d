package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/benvon/team-builder/internal/logger"
	"github.com/benvon/team-builder/internal/metrics"
	"github.com/benvon/team-builder/internal/models"
	"github.com/benvon/team-builder/internal/ratelimit"
	"github.com/benvon/team-builder/internal/request"
	"github.com/benvon/team-builder/internal/services/ai"
	"github.com/benvon/team-builder/internal/services/team"
	"github.com/benvon/team-builder/internal/validation"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// GenerateTeamPath is the team generation endpoint
const GenerateTeamPath = "/api/generate-team"

// Client-facing error messages. Provider and store details never reach the client.
const (
	msgLimiterUnavailable = "Rate limiter unavailable. Please try again later."
	msgUpstreamQuota      = "AI provider quota exceeded. Please try again later."
	msgConfiguration      = "AI provider API key is not configured. Please check your environment variables."
	msgGenerationFailed   = "Failed to generate team. Please try again."
	msgDailyLimitExceeded = "Daily limit exceeded"
)

// Pipeline stages used in logs
const (
	stageRateLimit = "rate_limit"
	stageDecode    = "decode"
	stageValidate  = "validate"
	stageComplete  = "complete"
	stageParse     = "parse"
)

// TeamHandlerConfig holds the tunables of TeamHandler
type TeamHandlerConfig struct {
	// FailOpen lets requests through when the limiter store is unreachable
	FailOpen bool
	// AITimeout bounds the provider call, independent of the client connection
	AITimeout time.Duration
	Metrics   *metrics.Recorder
	Logger    *zap.Logger
}

// TeamHandler serves team generation requests
type TeamHandler struct {
	limiter   ratelimit.Limiter
	generator team.Generator
	failOpen  bool
	aiTimeout time.Duration
	metrics   *metrics.Recorder
	log       *zap.Logger
	now       func() time.Time
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(limiter ratelimit.Limiter, generator team.Generator, cfg TeamHandlerConfig) *TeamHandler {
	if cfg.AITimeout <= 0 {
		cfg.AITimeout = ai.DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &TeamHandler{
		limiter:   limiter,
		generator: generator,
		failOpen:  cfg.FailOpen,
		aiTimeout: cfg.AITimeout,
		metrics:   cfg.Metrics,
		log:       cfg.Logger,
		now:       time.Now,
	}
}

// RegisterRoutes registers the team route. Any method other than POST gets 405.
func (h *TeamHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc(GenerateTeamPath, h.GenerateTeam).Methods(http.MethodPost)
	r.HandleFunc(GenerateTeamPath, methodNotAllowed(http.MethodPost))
}

// GenerateTeam runs gate, validate, generate and respond. The gate always runs
// first, so a rejected or invalid request never reaches the provider.
func (h *TeamHandler) GenerateTeam(w http.ResponseWriter, r *http.Request) {
	identifier := request.ClientIdentifier(r)
	requestID := request.RequestIDFromContext(r.Context())
	log := h.log.With(
		zap.String("identifier", logger.SanitizeIdentifier(identifier)),
		zap.String("request_id", requestID),
	)

	decision, ok := h.gate(w, r, identifier, log)
	if !ok {
		return
	}

	var req models.TeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.rejectInvalid(w, &validation.ValidationError{Field: "body", Message: "Invalid JSON body"}, stageDecode, err, log)
		return
	}
	validation.NormalizeTeamRequest(&req)
	if err := validation.ValidateTeamRequest(&req); err != nil {
		h.rejectInvalid(w, err, stageValidate, err, log)
		return
	}

	log.Info("team_generation_started",
		zap.Int("pokemon_count", len(req.PokemonNames)),
		zap.String("battle_format", logger.SanitizeString(req.BattleFormat, logger.MaxIdentifierLength)),
		zap.Int("playstyle_count", len(req.Playstyles)),
		zap.Int("remaining", decision.Remaining),
	)

	// A disconnecting client does not abort the provider call
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.aiTimeout)
	defer cancel()

	completion, err := h.generator.Generate(ctx, &req)
	if err != nil {
		h.failGeneration(w, err, log)
		return
	}

	h.metrics.RecordGeneration(metrics.OutcomeSuccess)
	if r.Context().Err() != nil {
		log.Info("team_generation_discarded_client_gone")
		return
	}

	log.Info("team_generation_succeeded",
		zap.Int("showdown_length", len(completion.ShowdownText)),
		zap.Int("remaining", decision.Remaining),
	)

	writeJSON(w, http.StatusOK, models.TeamResponse{
		Success:       true,
		ShowdownText:  completion.ShowdownText,
		Strategy:      completion.Strategy,
		LeadPokemon:   models.LeadPokemonPlaceholder,
		WinConditions: []string{models.WinConditionsPlaceholder},
		RateLimit: &models.RateLimitInfo{
			Remaining: decision.Remaining,
			Limit:     decision.Limit,
			ResetTime: models.FormatResetTime(decision.Reset),
		},
	})
}

// gate checks the limiter and writes the rejection response. It reports whether to continue.
func (h *TeamHandler) gate(w http.ResponseWriter, r *http.Request, identifier string, log *zap.Logger) (ratelimit.Decision, bool) {
	decision, err := h.limiter.Check(r.Context(), identifier)
	if err != nil {
		h.metrics.RecordLimiterDecision(metrics.DecisionError)
		if !h.failOpen {
			log.Error("team_generation_failed",
				zap.String("stage", stageRateLimit),
				zap.String("error", logger.SanitizeError(err)),
			)
			h.metrics.RecordGeneration(metrics.OutcomeLimiterUnavailable)
			writeJSON(w, http.StatusServiceUnavailable, models.TeamResponse{Success: false, Error: msgLimiterUnavailable})
			return decision, false
		}
		log.Warn("rate_limiter_unavailable_failing_open",
			zap.String("stage", stageRateLimit),
			zap.String("error", logger.SanitizeError(err)),
		)
		decision.Allowed = true
		decision.Remaining = decision.Limit
		return decision, true
	}

	setRateLimitHeaders(w, decision)

	if !decision.Allowed {
		h.metrics.RecordLimiterDecision(metrics.DecisionDenied)
		h.metrics.RecordGeneration(metrics.OutcomeRateLimited)
		log.Info("rate_limit_exceeded",
			zap.String("stage", stageRateLimit),
			zap.Int("limit", decision.Limit),
			zap.Time("reset", decision.Reset),
		)

		retryAfter := decision.RetryAfter(h.now())
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
		writeJSON(w, http.StatusTooManyRequests, models.RateLimitedResponse{
			Error:       msgDailyLimitExceeded,
			Message:     rateLimitMessage(decision, retryAfter),
			Remaining:   0,
			ResetTime:   models.FormatResetTime(decision.Reset),
			Limit:       decision.Limit,
			RateLimited: true,
		})
		return decision, false
	}

	h.metrics.RecordLimiterDecision(metrics.DecisionAllowed)
	return decision, true
}

func (h *TeamHandler) rejectInvalid(w http.ResponseWriter, clientErr error, stage string, cause error, log *zap.Logger) {
	log.Info("team_request_invalid",
		zap.String("stage", stage),
		zap.String("error", logger.SanitizeError(cause)),
	)
	h.metrics.RecordGeneration(metrics.OutcomeInvalid)
	writeJSON(w, http.StatusBadRequest, models.TeamResponse{Success: false, Error: clientErr.Error()})
}

func (h *TeamHandler) failGeneration(w http.ResponseWriter, err error, log *zap.Logger) {
	status, message, outcome := classifyGenerationError(err)

	stage := stageComplete
	if errors.Is(err, team.ErrParse) {
		stage = stageParse
	}
	log.Error("team_generation_failed",
		zap.String("stage", stage),
		zap.String("outcome", outcome),
		zap.String("error", logger.SanitizeError(err)),
	)
	h.metrics.RecordGeneration(outcome)
	writeJSON(w, status, models.TeamResponse{Success: false, Error: message})
}

// classifyGenerationError maps a generator error to status, client message and metrics outcome
func classifyGenerationError(err error) (int, string, string) {
	switch {
	case errors.Is(err, ai.ErrUpstreamQuota):
		return http.StatusTooManyRequests, msgUpstreamQuota, metrics.OutcomeUpstreamQuota
	case errors.Is(err, ai.ErrConfiguration):
		return http.StatusInternalServerError, msgConfiguration, metrics.OutcomeConfiguration
	case errors.Is(err, team.ErrParse):
		return http.StatusInternalServerError, msgGenerationFailed, metrics.OutcomeParse
	default:
		return http.StatusInternalServerError, msgGenerationFailed, metrics.OutcomeFailed
	}
}

func setRateLimitHeaders(w http.ResponseWriter, d ratelimit.Decision) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))
}

func rateLimitMessage(d ratelimit.Decision, retryAfter time.Duration) string {
	hours := int(math.Round(retryAfter.Hours()))
	return fmt.Sprintf("You can only generate %d teams per day. Your limit resets at %s (in %d hours).",
		d.Limit, d.Reset.UTC().Format("3:04:05 PM MST"), hours)
}
