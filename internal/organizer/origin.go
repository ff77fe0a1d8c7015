package organizer

import (
	"context"

	"mediasort/internal/history"
)

type originKey struct{}

// WithOrigin tags ctx with how the item entered the pipeline.
func WithOrigin(ctx context.Context, origin history.Origin) context.Context {
	return context.WithValue(ctx, originKey{}, origin)
}

// OriginFromContext returns the tagged origin, defaulting to the watcher.
func OriginFromContext(ctx context.Context) history.Origin {
	if ctx != nil {
		if origin, ok := ctx.Value(originKey{}).(history.Origin); ok && origin != "" {
			return origin
		}
	}
	return history.OriginWatch
}
