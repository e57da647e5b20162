package middleware

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/fairshare/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// SessionIDKey is the context key for storing the authenticated session ID.
const SessionIDKey contextKey = "session_id"

// GetSessionID extracts the session ID from the context.
// Returns empty string if not found.
func GetSessionID(ctx context.Context) string {
	sessionID, _ := ctx.Value(SessionIDKey).(string)
	return sessionID
}

// WithSessionID returns a copy of ctx carrying sessionID.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

// RequireSession returns a middleware that validates session tokens.
// It extracts the token from the Authorization header, validates it, and adds
// the session ID to the request context. Procedures listed in exempt skip the
// check.
func RequireSession(tokens *auth.SessionTokens, exempt ...string) connect.UnaryInterceptorFunc {
	skip := make(map[string]bool, len(exempt))
	for _, procedure := range exempt {
		skip[procedure] = true
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			procedure := req.Spec().Procedure
			if skip[procedure] {
				return next(ctx, req)
			}

			// Extract Authorization header
			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				slog.Debug("Missing session token", "procedure", procedure)
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			// Parse Bearer token
			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			if !ok || scheme != "Bearer" || tokenString == "" {
				slog.Debug("Malformed authorization header", "procedure", procedure)
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			// Validate token
			claims, err := tokens.Validate(tokenString)
			if err != nil {
				slog.Debug("Invalid session token", "procedure", procedure, "error", err)
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(WithSessionID(ctx, claims.SessionID), req)
		}
	}
}
