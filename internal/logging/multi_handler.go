package logging

import (
	"context"
	"errors"
	"log/slog"

	"github.com/smazurov/busylightd/internal/metrics"
)

// Sink is one named destination in a fan-out chain. The name labels
// the sink's error counter so a wedged journald socket is tellable
// from a full pipe on stdout.
type Sink struct {
	Name    string
	Handler slog.Handler
}

// MultiHandler fans out log records to multiple sinks. A failing sink
// never blocks the others; its failures are counted in metrics and the
// joined error is returned to slog.
type MultiHandler struct {
	sinks []Sink
}

// NewMultiHandler creates a handler that writes to all provided sinks.
func NewMultiHandler(sinks ...Sink) *MultiHandler {
	return &MultiHandler{sinks: sinks}
}

// Enabled implements slog.Handler.
func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, s := range m.sinks {
		if s.Handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle implements slog.Handler.
func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, s := range m.sinks {
		if !s.Handler.Enabled(ctx, r.Level) {
			continue
		}
		if err := s.Handler.Handle(ctx, r.Clone()); err != nil {
			metrics.LogSinkErrors.WithLabelValues(s.Name).Inc()
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WithAttrs implements slog.Handler.
func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sinks := make([]Sink, len(m.sinks))
	for i, s := range m.sinks {
		sinks[i] = Sink{Name: s.Name, Handler: s.Handler.WithAttrs(attrs)}
	}
	return &MultiHandler{sinks: sinks}
}

// WithGroup implements slog.Handler.
func (m *MultiHandler) WithGroup(name string) slog.Handler {
	sinks := make([]Sink, len(m.sinks))
	for i, s := range m.sinks {
		sinks[i] = Sink{Name: s.Name, Handler: s.Handler.WithGroup(name)}
	}
	return &MultiHandler{sinks: sinks}
}
