package logging

import (
	"context"
	"log/slog"
)

// componentLevelHandler applies a per-component minimum level. The wrapped
// handler must be configured with the most verbose level in use so overrides
// can lower the threshold as well as raise it.
type componentLevelHandler struct {
	next      slog.Handler
	overrides map[string]slog.Level
	level     slog.Level
}

func newComponentLevelHandler(next slog.Handler, overrides map[string]string, base slog.Level) slog.Handler {
	if next == nil {
		return NoopHandler{}
	}
	parsed := make(map[string]slog.Level, len(overrides))
	for component, value := range overrides {
		parsed[component] = parseLevel(value)
	}
	return &componentLevelHandler{next: next, overrides: parsed, level: base}
}

func (h *componentLevelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level < h.level {
		return false
	}
	return h.next.Enabled(ctx, level)
}

func (h *componentLevelHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level < h.level {
		return nil
	}
	return h.next.Handle(ctx, record)
}

func (h *componentLevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	level := h.level
	for _, attr := range attrs {
		if attr.Key != FieldComponent {
			continue
		}
		if override, ok := h.overrides[attr.Value.String()]; ok {
			level = override
		}
	}
	return &componentLevelHandler{
		next:      h.next.WithAttrs(attrs),
		overrides: h.overrides,
		level:     level,
	}
}

func (h *componentLevelHandler) WithGroup(name string) slog.Handler {
	return &componentLevelHandler{
		next:      h.next.WithGroup(name),
		overrides: h.overrides,
		level:     h.level,
	}
}

// minLevel returns the most verbose of base and every override.
func minLevel(base slog.Level, overrides map[string]string) slog.Level {
	lowest := base
	for _, value := range overrides {
		if lvl := parseLevel(value); lvl < lowest {
			lowest = lvl
		}
	}
	return lowest
}
