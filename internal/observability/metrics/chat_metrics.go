package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ChatMetrics tracks completion outcomes, token throughput, and credit
// consumption for the chat pipeline.
type ChatMetrics struct {
	completions        *prometheus.CounterVec
	completionDuration *prometheus.HistogramVec
	tokens             *prometheus.CounterVec
	creditsUsed        *prometheus.GaugeVec
}

var (
	chatMetricsOnce sync.Once
	chatMetrics     *ChatMetrics
)

// Chat returns the process-wide chat metrics set.
func Chat() *ChatMetrics {
	return ChatWithConfig(Config{})
}

// ChatWithConfig returns the chat metrics set, registering it on first use.
func ChatWithConfig(cfg Config) *ChatMetrics {
	chatMetricsOnce.Do(func() {
		chatMetrics = newChatMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return chatMetrics
}

// ResetChatMetricsForTest clears the singleton between test registries.
func ResetChatMetricsForTest() {
	chatMetricsOnce = sync.Once{}
	chatMetrics = nil
}

func newChatMetrics(registerer prometheus.Registerer, cfg Config) *ChatMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "seology"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	completions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "seology_chat_completions_total",
			Help:        "Total chat completion calls by result.",
			ConstLabels: constLabels,
		},
		[]string{"result"}, // success | provider_error | degraded
	)

	completionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "seology_chat_completion_duration_seconds",
			Help: "Wall-clock duration of model completion calls.",
			Buckets: []float64{
				0.5,
				1,
				2,
				5,
				10,
				30,
				60,
				120,
			},
			ConstLabels: constLabels,
		},
		[]string{"model"},
	)

	tokens := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "seology_chat_tokens_total",
			Help:        "Total tokens consumed by completion calls.",
			ConstLabels: constLabels,
		},
		[]string{"direction"}, // input | output
	)

	creditsUsed := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "seology_credits_used",
			Help:        "Credits consumed in the current billing period by plan.",
			ConstLabels: constLabels,
		},
		[]string{"plan"},
	)

	registerer.MustRegister(
		completions,
		completionDuration,
		tokens,
		creditsUsed,
	)

	return &ChatMetrics{
		completions:        completions,
		completionDuration: completionDuration,
		tokens:             tokens,
		creditsUsed:        creditsUsed,
	}
}

// IncCompletion counts one completion attempt by result.
func (m *ChatMetrics) IncCompletion(result string) {
	if m == nil {
		return
	}
	m.completions.WithLabelValues(result).Inc()
}

// ObserveCompletionDuration records the latency of one model call.
func (m *ChatMetrics) ObserveCompletionDuration(model string, duration time.Duration) {
	if m == nil {
		return
	}
	m.completionDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// AddTokens accumulates token counts reported by the provider.
func (m *ChatMetrics) AddTokens(inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	if inputTokens > 0 {
		m.tokens.WithLabelValues("input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.tokens.WithLabelValues("output").Add(float64(outputTokens))
	}
}

// SetCreditsUsed gauges aggregate period consumption for a plan tier.
func (m *ChatMetrics) SetCreditsUsed(plan string, value int64) {
	if m == nil {
		return
	}
	m.creditsUsed.WithLabelValues(plan).Set(float64(value))
}
