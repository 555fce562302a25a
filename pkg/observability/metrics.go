package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics records dispatch and LLM call measurements.
type Metrics interface {
	// RecordLLMCall records one provider request.
	RecordLLMCall(ctx context.Context, provider, model string, duration time.Duration, inputTokens, outputTokens int, err error)

	// RecordDispatch records one dispatch, including whether it was
	// served by the degraded fallback path.
	RecordDispatch(ctx context.Context, agentID string, duration time.Duration, degraded bool, err error)
}

var (
	globalMetrics   Metrics
	globalMetricsMu sync.RWMutex
)

// SetGlobalMetrics installs the process-wide metrics recorder.
func SetGlobalMetrics(m Metrics) {
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	globalMetrics = m
}

// GetGlobalMetrics returns the process-wide metrics recorder, or nil
// when metrics are not initialized.
func GetGlobalMetrics() Metrics {
	globalMetricsMu.RLock()
	defer globalMetricsMu.RUnlock()
	return globalMetrics
}

// PrometheusMetrics implements Metrics over OpenTelemetry instruments
// exported through the Prometheus registry.
type PrometheusMetrics struct {
	llmDuration     metric.Float64Histogram
	llmInputTokens  metric.Int64Counter
	llmOutputTokens metric.Int64Counter
	llmErrors       metric.Int64Counter

	dispatchDuration metric.Float64Histogram
	dispatchCalls    metric.Int64Counter
	dispatchDegraded metric.Int64Counter
	dispatchFailures metric.Int64Counter
}

// InitMetrics builds the metrics recorder. When disabled, a recorder
// with nil instruments is returned; all Record calls are no-ops.
func InitMetrics(ctx context.Context, cfg MetricsConfig) (*PrometheusMetrics, error) {
	if !cfg.Enabled {
		return &PrometheusMetrics{}, nil
	}

	promExporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(promExporter),
	)

	meter := meterProvider.Meter("frankx")

	m := &PrometheusMetrics{}

	if m.llmDuration, err = meter.Float64Histogram(
		"frankx_llm_request_duration_seconds",
		metric.WithDescription("LLM request duration in seconds"),
	); err != nil {
		return nil, fmt.Errorf("failed to create llm duration histogram: %w", err)
	}

	if m.llmInputTokens, err = meter.Int64Counter(
		"frankx_llm_tokens_input_total",
		metric.WithDescription("Total input tokens sent to providers"),
	); err != nil {
		return nil, fmt.Errorf("failed to create llm input tokens counter: %w", err)
	}

	if m.llmOutputTokens, err = meter.Int64Counter(
		"frankx_llm_tokens_output_total",
		metric.WithDescription("Total output tokens from providers"),
	); err != nil {
		return nil, fmt.Errorf("failed to create llm output tokens counter: %w", err)
	}

	if m.llmErrors, err = meter.Int64Counter(
		"frankx_llm_errors_total",
		metric.WithDescription("Total provider errors"),
	); err != nil {
		return nil, fmt.Errorf("failed to create llm errors counter: %w", err)
	}

	if m.dispatchDuration, err = meter.Float64Histogram(
		"frankx_dispatch_duration_seconds",
		metric.WithDescription("Dispatch duration in seconds"),
	); err != nil {
		return nil, fmt.Errorf("failed to create dispatch duration histogram: %w", err)
	}

	if m.dispatchCalls, err = meter.Int64Counter(
		"frankx_dispatch_calls_total",
		metric.WithDescription("Total dispatches"),
	); err != nil {
		return nil, fmt.Errorf("failed to create dispatch calls counter: %w", err)
	}

	if m.dispatchDegraded, err = meter.Int64Counter(
		"frankx_dispatch_degraded_total",
		metric.WithDescription("Dispatches served by the fallback path"),
	); err != nil {
		return nil, fmt.Errorf("failed to create dispatch degraded counter: %w", err)
	}

	if m.dispatchFailures, err = meter.Int64Counter(
		"frankx_dispatch_failures_total",
		metric.WithDescription("Dispatches that failed outright"),
	); err != nil {
		return nil, fmt.Errorf("failed to create dispatch failures counter: %w", err)
	}

	return m, nil
}

func (m *PrometheusMetrics) RecordLLMCall(ctx context.Context, provider, model string, duration time.Duration, inputTokens, outputTokens int, err error) {
	if m.llmDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("model", model),
	)

	m.llmDuration.Record(ctx, duration.Seconds(), attrs)
	if inputTokens > 0 {
		m.llmInputTokens.Add(ctx, int64(inputTokens), attrs)
	}
	if outputTokens > 0 {
		m.llmOutputTokens.Add(ctx, int64(outputTokens), attrs)
	}
	if err != nil {
		m.llmErrors.Add(ctx, 1, attrs)
	}
}

func (m *PrometheusMetrics) RecordDispatch(ctx context.Context, agentID string, duration time.Duration, degraded bool, err error) {
	if m.dispatchDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("agent", agentID),
	)

	m.dispatchDuration.Record(ctx, duration.Seconds(), attrs)
	m.dispatchCalls.Add(ctx, 1, attrs)
	if degraded {
		m.dispatchDegraded.Add(ctx, 1, attrs)
	}
	if err != nil {
		m.dispatchFailures.Add(ctx, 1, attrs)
	}
}

var _ Metrics = (*PrometheusMetrics)(nil)
