package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	gatewayDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "prepnexus",
		Subsystem: "ai",
		Name:      "request_duration_seconds",
		Help:      "Duration of AI gateway requests",
	}, []string{"operation", "model"})

	gatewayFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prepnexus",
		Subsystem: "ai",
		Name:      "request_failures_total",
		Help:      "Number of AI gateway failures",
	}, []string{"operation", "model"})
)

// OpenAIConfig defines configuration options for the OpenAI-compatible gateway.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIGateway implements Gateway against any OpenAI-compatible chat
// completion endpoint (the default deployment points it at OpenRouter).
type OpenAIGateway struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIGateway builds a new gateway using the provided configuration.
func NewOpenAIGateway(cfg OpenAIConfig) (*OpenAIGateway, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ai gateway api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "google/gemini-2.5-flash"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}

	tracer := otel.Tracer("github.com/prepnexus/prepnexus-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	client := openai.NewClientWithConfig(config)

	return &OpenAIGateway{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Complete sends one completion request and returns the trimmed text of the
// first choice. Failures come back classified with the package sentinels.
func (g *OpenAIGateway) Complete(parent context.Context, req Request) (string, error) {
	operation := req.Operation
	if operation == "" {
		operation = "complete"
	}

	ctx, span := g.tracer.Start(parent, "openai."+operation, trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
	))
	defer span.End()

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = g.cfg.MaxTokens
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.User,
	})

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		Messages:    messages,
	})
	gatewayDuration.WithLabelValues(operation, g.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		classified := ClassifyError(err)
		gatewayFailures.WithLabelValues(operation, g.cfg.Model).Inc()
		span.RecordError(classified)
		span.SetStatus(codes.Error, classified.Error())
		g.logger.Warn().Err(err).Str("operation", operation).Msg("ai gateway request failed")
		return "", classified
	}

	if len(resp.Choices) == 0 {
		empty := fmt.Errorf("%w: no choices returned", ErrUnavailable)
		gatewayFailures.WithLabelValues(operation, g.cfg.Model).Inc()
		span.RecordError(empty)
		span.SetStatus(codes.Error, empty.Error())
		return "", empty
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// StreamChat streams a multi-turn conversation, invoking onDelta for every
// content fragment as it arrives. Returning an error from onDelta aborts the
// stream; this lets handlers stop on client disconnect.
func (g *OpenAIGateway) StreamChat(parent context.Context, system string, history []ChatMessage, onDelta func(delta string) error) error {
	ctx, span := g.tracer.Start(parent, "openai.stream_chat", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
		attribute.Int("history_length", len(history)),
	))
	defer span.End()

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, m := range history {
		role := m.Role
		if role != openai.ChatMessageRoleAssistant {
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	start := time.Now()
	stream, err := g.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:     g.cfg.Model,
		MaxTokens: g.cfg.MaxTokens,
		Messages:  messages,
		Stream:    true,
	})
	if err != nil {
		classified := ClassifyError(err)
		gatewayFailures.WithLabelValues("chat", g.cfg.Model).Inc()
		span.RecordError(classified)
		span.SetStatus(codes.Error, classified.Error())
		return classified
	}
	defer stream.Close()

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			classified := ClassifyError(err)
			gatewayFailures.WithLabelValues("chat", g.cfg.Model).Inc()
			span.RecordError(classified)
			span.SetStatus(codes.Error, classified.Error())
			return classified
		}

		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		if err := onDelta(delta); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	gatewayDuration.WithLabelValues("chat", g.cfg.Model).Observe(time.Since(start).Seconds())
	return nil
}
