package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// ANSI color codes for the handful of levels safelease ever emits: most
// invocations run once and exit, so the palette only needs to distinguish
// a DEBUG trace line (§4.2/§4.3 step-by-step logging) from the rare WARN
// or ERROR that accompanies a reported failure.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// ColorTextHandler is a slog.Handler that writes one line per record:
// a bracketed timestamp and level, the message, then "key=value" pairs
// for every structured field attached to the record or bound ahead of
// time via WithAttrs.
type ColorTextHandler struct {
	opts     *slog.HandlerOptions
	w        io.Writer
	mu       *sync.Mutex
	attrs    []slog.Attr
	useColor bool
}

// NewColorTextHandler builds a handler writing to w, gated by opts.Level,
// with ANSI color enabled or not per useColor.
func NewColorTextHandler(w io.Writer, opts *slog.HandlerOptions, useColor bool) *ColorTextHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &ColorTextHandler{opts: opts, w: w, mu: &sync.Mutex{}, useColor: useColor}
}

// Enabled reports whether level passes the handler's configured floor.
func (h *ColorTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle formats r as one line and writes it. Formatting happens in a
// local buffer outside the lock; only the final write is serialized.
func (h *ColorTextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := fmt.Appendf(nil, "[%s] [%s] %s",
		r.Time.Format("2006-01-02 15:04:05"), h.formatLevel(r.Level), r.Message)

	for _, attr := range h.attrs {
		buf = h.appendAttr(buf, attr)
	}
	r.Attrs(func(a slog.Attr) bool {
		buf = h.appendAttr(buf, a)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

// formatLevel returns the level string with optional color
func (h *ColorTextHandler) formatLevel(level slog.Level) string {
	var levelStr string
	var color string

	switch {
	case level < slog.LevelInfo:
		levelStr = "DEBUG"
		color = colorGray
	case level < slog.LevelWarn:
		levelStr = "INFO"
		color = colorGreen
	case level < slog.LevelError:
		levelStr = "WARN"
		color = colorYellow
	default:
		levelStr = "ERROR"
		color = colorRed
	}

	if h.useColor {
		return fmt.Sprintf("%s%s%s", color, levelStr, colorReset)
	}
	return levelStr
}

// appendAttr formats "key=value" for one field (e.g. offset, identity,
// elapsed_ms — see the logger.Debug calls in internal/sectorio and
// internal/lease) and appends it to buf.
func (h *ColorTextHandler) appendAttr(buf []byte, a slog.Attr) []byte {
	if a.Equal(slog.Attr{}) {
		return buf
	}
	a.Value = a.Value.Resolve()
	val := formatValue(a.Value)

	if h.useColor {
		return fmt.Appendf(buf, " %s%s%s=%s", colorCyan, a.Key, colorReset, val)
	}
	return fmt.Appendf(buf, " %s=%s", a.Key, val)
}

// formatValue formats a slog.Value for text output
func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return fmt.Sprintf("%d", v.Int64())
	case slog.KindUint64:
		return fmt.Sprintf("%d", v.Uint64())
	case slog.KindFloat64:
		return fmt.Sprintf("%.3f", v.Float64())
	case slog.KindBool:
		return fmt.Sprintf("%t", v.Bool())
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindAny:
		return fmt.Sprintf("%v", v.Any())
	default:
		return v.String()
	}
}

// WithAttrs returns a handler that prepends attrs to every record it
// logs, sharing this handler's writer and lock. safelease's own
// logger.Debug/Info/etc. never bind attrs ahead of time, but the method
// is part of slog.Handler and exercised indirectly if a caller wraps
// the logger with slog.With.
func (h *ColorTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ColorTextHandler{
		opts:     h.opts,
		w:        h.w,
		mu:       h.mu,
		attrs:    append(append([]slog.Attr{}, h.attrs...), attrs...),
		useColor: h.useColor,
	}
}

// WithGroup is a no-op beyond satisfying slog.Handler: safelease's flat
// key=value fields never need grouping.
func (h *ColorTextHandler) WithGroup(name string) slog.Handler {
	return h
}
