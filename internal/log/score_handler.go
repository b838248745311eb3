package log

import (
	"context"
	"io"
	"log/slog"
	"math"
	"strings"
)

// scoreKeywords marks attribute keys whose float values are scores in
// [0, 1]. Scores are logged at the same two-decimal precision reports
// use, so log lines and report output never disagree about a value.
var scoreKeywords = []string{
	"score", "quality", "confidence", "degradation",
	"raw", "adjusted", "value", "progress",
}

// ScoreHandler wraps an slog.Handler to normalize score attributes.
// Float values under score-like keys are rounded to two decimals before
// reaching the underlying handler; full-precision floats stay internal
// to the computation.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Call sites keep logging full-precision values without caring
//     about display rules
type ScoreHandler struct {
	// handler is the underlying slog handler that receives the
	// normalized records.
	handler slog.Handler
}

// NewScoreHandler creates a ScoreHandler wrapping the given handler.
// If handler is nil, the returned ScoreHandler uses
// slog.Default().Handler().
func NewScoreHandler(handler slog.Handler) *ScoreHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &ScoreHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given
// level. It delegates to the underlying handler.
func (h *ScoreHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle normalizes the record's attributes and passes it on.
func (h *ScoreHandler) Handle(ctx context.Context, r slog.Record) error {
	normalized := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		normalized.AddAttrs(h.normalizeAttr(a))
		return true
	})
	return h.handler.Handle(ctx, normalized)
}

// WithAttrs returns a new handler with the given attributes added,
// normalized first.
func (h *ScoreHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	normalized := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		normalized[i] = h.normalizeAttr(a)
	}
	return &ScoreHandler{handler: h.handler.WithAttrs(normalized)}
}

// WithGroup returns a new handler with the given group name.
func (h *ScoreHandler) WithGroup(name string) slog.Handler {
	return &ScoreHandler{handler: h.handler.WithGroup(name)}
}

// normalizeAttr rounds score-like float attributes, recursively handling
// groups.
func (h *ScoreHandler) normalizeAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		normalized := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			normalized[i] = h.normalizeAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(normalized...)}
	}

	if a.Value.Kind() == slog.KindFloat64 && isScoreKey(a.Key) {
		return slog.Float64(a.Key, math.Round(a.Value.Float64()*100)/100)
	}
	return a
}

// isScoreKey reports whether the key names a score-like value.
func isScoreKey(key string) bool {
	lower := strings.ToLower(key)
	for _, keyword := range scoreKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// NewLogger creates a text slog.Logger with score normalization.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	textHandler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewScoreHandler(textHandler))
}

// NewJSONLogger creates a JSON slog.Logger with score normalization.
// Useful for structured log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	jsonHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewScoreHandler(jsonHandler))
}
