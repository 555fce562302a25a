package llms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/frankx-ai/frankx/pkg/config"
	"github.com/frankx-ai/frankx/pkg/httpclient"
	"github.com/frankx-ai/frankx/pkg/observability"
)

const anthropicVersion = "2023-06-01"

// AnthropicProvider talks to the Anthropic messages API.
type AnthropicProvider struct {
	config     *config.ProviderConfig
	httpClient *httpclient.Client
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
	System      string             `json:"system,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type anthropicResponse struct {
	Content    []anthropicContent `json:"content"`
	StopReason string             `json:"stop_reason"`
	Usage      anthropicUsage     `json:"usage"`
	Error      *anthropicError    `json:"error,omitempty"`
}

// NewAnthropicProvider builds a client for the Anthropic API.
func NewAnthropicProvider(cfg *config.ProviderConfig) (*AnthropicProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("provider config cannot be nil")
	}

	client := httpclient.New(
		httpclient.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		}),
		httpclient.WithMaxRetries(cfg.MaxRetries),
		httpclient.WithBaseDelay(time.Duration(cfg.RetryDelay)*time.Second),
		httpclient.WithHeaderParser(httpclient.ParseAnthropicHeaders),
	)

	return &AnthropicProvider{
		config:     cfg,
		httpClient: client,
	}, nil
}

func (p *AnthropicProvider) Name() config.Provider { return config.ProviderAnthropic }

func (p *AnthropicProvider) Close() error { return nil }

func (p *AnthropicProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	startTime := time.Now()

	tracer := observability.GetTracer("frankx.llm")
	ctx, span := tracer.Start(ctx, observability.SpanLLMRequest,
		trace.WithAttributes(
			attribute.String(observability.AttrProvider, string(config.ProviderAnthropic)),
			attribute.String(observability.AttrLLMModel, req.Model),
		),
	)
	defer span.End()

	response, err := p.makeRequest(ctx, p.buildRequest(req))
	duration := time.Since(startTime)

	if err == nil && response.Error != nil {
		err = fmt.Errorf("anthropic API error: %s", response.Error.Message)
	}
	if err == nil && len(response.Content) == 0 {
		err = fmt.Errorf("no response content returned")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if metrics := observability.GetGlobalMetrics(); metrics != nil {
			metrics.RecordLLMCall(ctx, string(config.ProviderAnthropic), req.Model, duration, 0, 0, err)
		}
		return nil, err
	}

	var text string
	for _, block := range response.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	span.SetAttributes(
		attribute.Int(observability.AttrLLMTokensInput, response.Usage.InputTokens),
		attribute.Int(observability.AttrLLMTokensOutput, response.Usage.OutputTokens),
	)
	span.SetStatus(codes.Ok, "success")

	if metrics := observability.GetGlobalMetrics(); metrics != nil {
		metrics.RecordLLMCall(ctx, string(config.ProviderAnthropic), req.Model, duration,
			response.Usage.InputTokens, response.Usage.OutputTokens, nil)
	}

	return &Response{
		Text:         text,
		InputTokens:  response.Usage.InputTokens,
		OutputTokens: response.Usage.OutputTokens,
	}, nil
}

func (p *AnthropicProvider) buildRequest(req *Request) anthropicRequest {
	messages := make([]anthropicMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, anthropicMessage{Role: m.Role, Content: m.Content})
	}

	temperature := req.Temperature
	if temperature == 0 && p.config.Temperature != nil {
		temperature = *p.config.Temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}

	return anthropicRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		System:      req.System,
	}
}

func (p *AnthropicProvider) makeRequest(ctx context.Context, request anthropicRequest) (*anthropicResponse, error) {
	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.config.BaseURL+"/messages", bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(requestBody)), nil
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("anthropic-version", anthropicVersion)
	if p.config.APIKey != "" {
		req.Header.Set("x-api-key", p.config.APIKey)
	}

	resp, err := p.httpClient.Do(req)
	if resp != nil {
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	var response anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &response, nil
}

var _ Provider = (*AnthropicProvider)(nil)
