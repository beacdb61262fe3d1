// Package observability exports assistant metrics to Prometheus.
package observability

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "nova"

// Cache lookup outcomes.
const (
	CacheHit         = "hit"
	CacheMiss        = "miss"
	CacheStale       = "stale"
	CacheUnavailable = "unavailable"
	CacheBypass      = "bypass"
)

// Metrics holds the assistant's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	cacheRequests   *prometheus.CounterVec
	intentDetection *prometheus.CounterVec
	llmRequests     *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg, reusing collectors that are
// already registered. A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Data cache lookups by key and outcome.",
		}, []string{"key", "result"}),
		intentDetection: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intent_detections_total",
			Help:      "Intent detections by the path that produced the answer.",
		}, []string{"path"}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "LLM requests by provider, operation and status.",
		}, []string{"provider", "operation", "status"}),
	}

	var err error
	if m.cacheRequests, err = register(reg, m.cacheRequests); err != nil {
		return nil, err
	}
	if m.intentDetection, err = register(reg, m.intentDetection); err != nil {
		return nil, err
	}
	if m.llmRequests, err = register(reg, m.llmRequests); err != nil {
		return nil, err
	}
	return m, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register collector: %w", err)
	}
	return c, nil
}

// CacheRequest counts one cache lookup.
func (m *Metrics) CacheRequest(key, result string) {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues(key, result).Inc()
}

// IntentDetection counts one detection answered by path (regex, cache or llm).
func (m *Metrics) IntentDetection(path string) {
	if m == nil {
		return
	}
	m.intentDetection.WithLabelValues(path).Inc()
}

// LLMRequest counts one LLM call; err decides the status label.
func (m *Metrics) LLMRequest(provider, operation string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.llmRequests.WithLabelValues(provider, operation, status).Inc()
}

// CacheRequestCounter exposes the cache counter for tests.
func (m *Metrics) CacheRequestCounter(key, result string) prometheus.Counter {
	return m.cacheRequests.WithLabelValues(key, result)
}

// IntentDetectionCounter exposes the intent counter for tests.
func (m *Metrics) IntentDetectionCounter(path string) prometheus.Counter {
	return m.intentDetection.WithLabelValues(path)
}
