// Package logging provides the bracketed slog handler used by every binary.
package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

const timeFormat = "2006-01-02 15:04:05"

// Handler writes records as: [2006-01-02 15:04:05] [LEVEL] message key=value ...
type Handler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
}

// NewHandler creates a Handler. level may be a *slog.LevelVar to allow runtime changes.
func NewHandler(w io.Writer, level slog.Leveler) *Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &Handler{mu: &sync.Mutex{}, w: w, level: level}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	buf := bytes.NewBuffer(nil)

	fmt.Fprintf(buf, "[%s] [%s] %s", r.Time.Format(timeFormat), r.Level, r.Message)

	for _, a := range h.attrs {
		appendAttr(buf, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(buf, h.prefix, a)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func appendAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	val := a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if val.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if a.Key != "" {
			groupPrefix = prefix + a.Key + "."
		}
		for _, ga := range val.Group() {
			appendAttr(buf, groupPrefix, ga)
		}
		return
	}

	buf.WriteByte(' ')
	buf.WriteString(prefix)
	buf.WriteString(a.Key)
	buf.WriteByte('=')

	switch val.Kind() {
	case slog.KindString:
		fmt.Fprintf(buf, "%q", val.String())
	case slog.KindTime:
		buf.WriteString(val.Time().Format(time.RFC3339))
	default:
		fmt.Fprintf(buf, "%v", val.Any())
	}
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefixed := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	prefixed = append(prefixed, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		prefixed = append(prefixed, a)
	}
	return &Handler{mu: h.mu, w: h.w, level: h.level, attrs: prefixed, prefix: h.prefix}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &Handler{mu: h.mu, w: h.w, level: h.level, attrs: h.attrs, prefix: h.prefix + name + "."}
}

// Setup installs a Handler on w as the slog default and returns its level
// so callers can change verbosity on config reload.
func Setup(w io.Writer, level slog.Level) *slog.LevelVar {
	lv := new(slog.LevelVar)
	lv.Set(level)
	slog.SetDefault(slog.New(NewHandler(w, lv)))
	return lv
}
