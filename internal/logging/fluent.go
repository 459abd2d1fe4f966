package logging

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// poster is the part of *fluent.Fluent the handler needs.
type poster interface {
	PostWithTime(tag string, tm time.Time, message interface{}) error
}

// FluentHandler is a slog.Handler that posts each record as a map to Fluent
// Bit. The tag is "<prefix>.<level>" so the collector can route by level.
type FluentHandler struct {
	client poster
	prefix string
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

// NewFluentHandler wraps a fluent client. level may be nil for Info.
func NewFluentHandler(client poster, prefix string, level slog.Leveler) *FluentHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &FluentHandler{client: client, prefix: prefix, level: level}
}

func (h *FluentHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *FluentHandler) Handle(_ context.Context, r slog.Record) error {
	data := make(map[string]any, r.NumAttrs()+len(h.attrs)+3)

	for _, a := range h.attrs {
		put(data, "", a)
	}
	prefix := h.groupPrefix()
	r.Attrs(func(a slog.Attr) bool {
		put(data, prefix, a)
		return true
	})

	data["level"] = r.Level.String()
	data["message"] = r.Message
	data["timestamp"] = r.Time.UTC().Format(time.RFC3339Nano)

	tag := h.prefix + "." + strings.ToLower(r.Level.String())
	return h.client.PostWithTime(tag, r.Time, data)
}

func (h *FluentHandler) groupPrefix() string {
	if len(h.groups) == 0 {
		return ""
	}
	return strings.Join(h.groups, ".") + "."
}

// put stores a under prefix, flattening nested groups into dotted keys.
func put(data map[string]any, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			put(data, prefix+a.Key+".", ga)
		}
		return
	}
	data[prefix+a.Key] = a.Value.Any()
}

func (h *FluentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	prefix := h.groupPrefix()
	for _, a := range attrs {
		a.Key = prefix + a.Key
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

func (h *FluentHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}
