// Package intent decides which data domains a user message is about. Keyword
// patterns answer clear cases; ambiguous ones go to an LLM classifier whose
// answers are cached for similar follow-up queries.
package intent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Veraticus/nova/internal/common"
	"github.com/Veraticus/nova/internal/model"
	"github.com/Veraticus/nova/internal/observability"
)

// Detection paths.
const (
	PathRegex = "regex"
	PathCache = "cache"
	PathLLM   = "llm"
)

// Classifier sends a prompt to a language model and returns its raw reply.
type Classifier interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config holds the detection thresholds.
type Config struct {
	// InclusionThreshold is the minimum confidence for an intent to be reported.
	InclusionThreshold float64
	// HighConfidence skips the LLM when any keyword score reaches it.
	HighConfidence float64
	// SingleMatch and MultiMatch score one and several keyword matches.
	SingleMatch float64
	MultiMatch  float64
	// SimilarityThreshold is the fuzzy match ratio for cached classifications.
	SimilarityThreshold float64
	// CacheSize caps the classification cache; 0 is unbounded.
	CacheSize int
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		InclusionThreshold:  0.3,
		HighConfidence:      0.8,
		SingleMatch:         0.7,
		MultiMatch:          0.9,
		SimilarityThreshold: 0.85,
	}
}

// Detection is the full result of classifying one message.
type Detection struct {
	Intents model.IntentSet
	Regex   Scores
	Other   Scores
	Path    string
}

// Detector classifies messages into intents.
type Detector struct {
	classifier Classifier
	cache      *Cache
	logger     *slog.Logger
	metrics    *observability.Metrics
	cfg        Config
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets the detector logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Detector) { d.logger = l }
}

// WithMetrics records which path answered each detection.
func WithMetrics(m *observability.Metrics) Option {
	return func(d *Detector) { d.metrics = m }
}

// NewDetector creates a detector. A nil classifier limits detection to
// keyword patterns and the cache.
func NewDetector(classifier Classifier, cfg Config, opts ...Option) (*Detector, error) {
	d := &Detector{classifier: classifier, cfg: cfg}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = common.LoggerOrDefault(d.logger)

	cache, err := NewCache(cfg.SimilarityThreshold, cfg.CacheSize, d.logger)
	if err != nil {
		return nil, err
	}
	d.cache = cache
	return d, nil
}

// Cache exposes the classification cache.
func (d *Detector) Cache() *Cache {
	return d.cache
}

// Detect returns the intents of message, never empty.
func (d *Detector) Detect(ctx context.Context, message string) model.IntentSet {
	return d.Classify(ctx, message).Intents
}

// Classify runs detection and reports the scores behind it.
func (d *Detector) Classify(ctx context.Context, message string) Detection {
	regex := scoreRegex(message, d.cfg)
	d.logger.Debug("regex intent scores", "scores", regex)

	if !d.shouldUseLLM(regex, message) {
		return d.finish(message, Detection{Regex: regex, Path: PathRegex}, regex)
	}

	if cached, ok := d.cache.Get(message); ok {
		return d.finish(message, Detection{Regex: regex, Other: cached, Path: PathCache}, fuse(regex, cached))
	}

	d.logger.Info("using LLM for intent classification")
	classified := d.classify(ctx, message)
	if len(classified) > 0 {
		d.cache.Store(message, classified)
	}
	return d.finish(message, Detection{Regex: regex, Other: classified, Path: PathLLM}, fuse(regex, classified))
}

func (d *Detector) finish(message string, det Detection, combined Scores) Detection {
	det.Intents = filter(combined, d.cfg.InclusionThreshold)
	d.metrics.IntentDetection(det.Path)
	d.logger.Info("intent detection",
		"path", det.Path,
		"message", common.Truncate(message, 50),
		"intents", det.Intents.Names())
	return det
}

// shouldUseLLM reports whether keyword scores leave the message ambiguous.
func (d *Detector) shouldUseLLM(regex Scores, message string) bool {
	if len(regex) == 0 {
		return true
	}
	for _, conf := range regex {
		if conf >= d.cfg.HighConfidence {
			return false
		}
	}
	if len(regex) > 1 {
		return true
	}
	return strings.Contains(message, "?")
}

// classify asks the LLM for scores. Failures yield no scores.
func (d *Detector) classify(ctx context.Context, message string) Scores {
	if d.classifier == nil {
		return Scores{}
	}

	reply, err := d.classifier.Generate(ctx, buildPrompt(message))
	if err != nil {
		d.logger.Warn("LLM classification failed", "error", err)
		return Scores{}
	}

	scores, err := parseScores(reply)
	if err != nil {
		d.logger.Warn("LLM classification unparseable",
			"error", err,
			"response", common.Truncate(reply, 200))
		return Scores{}
	}
	return scores
}
