package shared

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is the type of request context keys set by the API layer.
type ContextKey string

// Context keys for various values
const (
	// ClientContextKey holds the subject of the validated bearer token.
	ClientContextKey ContextKey = "client"
	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"
	// TraceIDLength is the length of generated trace IDs in hex characters
	TraceIDLength = 32
	// maxInboundTraceIDLength bounds trace IDs accepted from clients
	maxInboundTraceIDLength = 64
)

// SetTraceID adds a freshly generated trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return WithTraceID(ctx, generateTraceID())
}

// WithTraceID adds traceID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// GetClient returns the authenticated client name, if any.
func GetClient(ctx context.Context) (string, bool) {
	client, ok := ctx.Value(ClientContextKey).(string)
	return client, ok && client != ""
}

// ValidInboundTraceID reports whether a client-supplied trace ID is safe to
// reuse in logs and responses.
func ValidInboundTraceID(id string) bool {
	if id == "" || len(id) > maxInboundTraceIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// generateTraceID returns 32 hex characters from a random UUID, falling back
// to a time-based UUID if the random source fails.
func generateTraceID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		id, err = uuid.NewUUID()
		if err != nil {
			id = uuid.Must(uuid.NewV7())
		}
	}
	return strings.ReplaceAll(id.String(), "-", "")
}
