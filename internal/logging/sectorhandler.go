package logging

import (
	"context"
	"log/slog"
)

// SectorSource reports the active sector for log enrichment. Satisfied by
// session.Context. A nil or inactive source leaves records untouched.
type SectorSource interface {
	Active() bool
	SectorID() string
	StarName() string
}

// SectorHandler wraps another handler and stamps every record emitted while
// a sector is active with the sector id and its star's display name, so one
// session log can be filtered by system visited.
type SectorHandler struct {
	inner slog.Handler
	src   SectorSource
}

// NewSectorHandler creates a handler stamping records with the active sector.
func NewSectorHandler(inner slog.Handler, src SectorSource) *SectorHandler {
	return &SectorHandler{
		inner: inner,
		src:   src,
	}
}

// Enabled delegates to the inner handler.
func (h *SectorHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle stamps the record when a sector is active and delegates.
func (h *SectorHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.src != nil && h.src.Active() {
		attrs := []slog.Attr{slog.String("sector", h.src.SectorID())}
		if star := h.src.StarName(); star != "" {
			attrs = append(attrs, slog.String("star", star))
		}
		r.AddAttrs(attrs...)
	}
	return h.inner.Handle(ctx, r)
}

// WithAttrs returns a new SectorHandler over the inner handler's result.
func (h *SectorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SectorHandler{
		inner: h.inner.WithAttrs(attrs),
		src:   h.src,
	}
}

// WithGroup returns a new SectorHandler over the inner handler's result.
// The sector stamp lands inside the open group, like any per-record attr.
func (h *SectorHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &SectorHandler{
		inner: h.inner.WithGroup(name),
		src:   h.src,
	}
}
