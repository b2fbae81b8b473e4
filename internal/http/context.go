package http

import (
	"context"
	"log/slog"

	"github.com/example/hotel-booking/internal/application"
	"github.com/example/hotel-booking/internal/logging"
)

type contextKey string

const (
	identityContextKey contextKey = "identity"
	routeContextKey    contextKey = "route"
)

// ContextWithLogger returns a derived context carrying the request scoped logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts the request scoped logger if available.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

// ContextWithIdentity returns a derived context containing the signed-in identity.
func ContextWithIdentity(ctx context.Context, identity application.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext extracts the signed-in identity from context if available.
func IdentityFromContext(ctx context.Context) (application.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(application.Identity)
	return identity, ok
}

// routeHolder is filled in by the matched route so the request logger can
// label metrics with the pattern rather than the raw path.
type routeHolder struct {
	pattern string
}

func contextWithRouteHolder(ctx context.Context, holder *routeHolder) context.Context {
	return context.WithValue(ctx, routeContextKey, holder)
}

func recordRoute(ctx context.Context, pattern string) {
	if holder, ok := ctx.Value(routeContextKey).(*routeHolder); ok && holder != nil {
		holder.pattern = pattern
	}
}
