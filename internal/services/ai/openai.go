package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/benvon/team-builder/internal/logger"
	"github.com/benvon/team-builder/internal/request"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout bounds a single completion; long teams take a while to generate
	DefaultTimeout = 90 * time.Second
)

// OpenAIConfig configures an OpenAIProvider
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	Timeout   time.Duration
	Logger    *zap.Logger
	DebugMode bool
}

// OpenAIProvider implements CompletionProvider with the OpenAI chat completions API
type OpenAIProvider struct {
	client    openai.Client
	apiKey    string
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIProvider creates a new OpenAI provider. SDK retries are disabled: a
// failed completion is reported to the caller as is.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenAIBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	httpClient := &http.Client{
		Timeout: cfg.Timeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	)

	return &OpenAIProvider{
		client:    client,
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		logger:    cfg.Logger,
		debugMode: cfg.DebugMode,
	}
}

// Model returns the model used when CompletionOptions.Model is empty
func (p *OpenAIProvider) Model() string {
	return p.model
}

// Complete sends the prompts and returns the first choice's content
func (p *OpenAIProvider) Complete(ctx context.Context, systemPrompt, userPrompt string, opts CompletionOptions) (string, error) {
	if p.apiKey == "" {
		return "", &UpstreamError{Kind: KindConfiguration, Err: errors.New("API key is not configured")}
	}

	model := opts.Model
	if model == "" {
		model = p.model
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}

	requestID := request.RequestIDFromContext(ctx)
	if p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", "generate_team"),
			zap.String("model", model),
			zap.Int("prompt_length", len(userPrompt)),
			zap.String("prompt_preview", logger.SanitizeContent(userPrompt, true)),
			zap.String("request_id", requestID),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, params)
	latency := time.Since(start)
	if err != nil {
		upstream := classify(err)
		p.logger.Warn("llm_api_error",
			zap.String("operation", "generate_team"),
			zap.String("model", model),
			zap.String("kind", string(upstream.Kind)),
			zap.Int("status_code", upstream.StatusCode),
			zap.String("error", logger.SanitizeError(err)),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
		return "", upstream
	}

	if len(resp.Choices) == 0 {
		return "", &UpstreamError{Kind: KindEmptyResponse, Err: errors.New("no choices in response")}
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", &UpstreamError{Kind: KindEmptyResponse, Err: errors.New("empty message content")}
	}

	fields := []zap.Field{
		zap.String("operation", "generate_team"),
		zap.String("model", model),
		zap.Int("response_length", len(content)),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
		zap.String("request_id", requestID),
		zap.Int64("latency_ms", latency.Milliseconds()),
	}
	if p.debugMode {
		fields = append(fields, zap.String("response_preview", logger.SanitizeContent(content, true)))
		p.logger.Debug("llm_api_response", fields...)
	} else {
		p.logger.Info("llm_api_response", fields...)
	}

	return content, nil
}
