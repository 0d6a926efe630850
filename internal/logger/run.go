package logger

import (
	"context"

	"go.uber.org/zap"
)

type runInfoKey struct{}

// RunInfo identifies the build run, category and step a log line belongs to
type RunInfo struct {
	RunID    string
	Category string
	Step     string
	Monat    string
}

func (r RunInfo) fields() []zap.Field {
	var fields []zap.Field
	if r.RunID != "" {
		fields = append(fields, zap.String("run_id", r.RunID))
	}
	if r.Category != "" {
		fields = append(fields, zap.String("category", r.Category))
	}
	if r.Step != "" {
		fields = append(fields, zap.String("step", r.Step))
	}
	if r.Monat != "" {
		fields = append(fields, zap.String("monat", r.Monat))
	}
	return fields
}

// WithRun returns a context carrying the run info; loggers from FromContext include it
func WithRun(ctx context.Context, info RunInfo) context.Context {
	return context.WithValue(ctx, runInfoKey{}, info)
}

// RunFromContext returns the run info stored in the context
func RunFromContext(ctx context.Context) (RunInfo, bool) {
	info, ok := ctx.Value(runInfoKey{}).(RunInfo)
	return info, ok
}

// WithStep returns a context whose run info is narrowed to a category, step and month.
// Empty arguments keep the current value.
func WithStep(ctx context.Context, category, step, monat string) context.Context {
	info, _ := RunFromContext(ctx)
	if category != "" {
		info.Category = category
	}
	if step != "" {
		info.Step = step
	}
	if monat != "" {
		info.Monat = monat
	}
	return WithRun(ctx, info)
}
