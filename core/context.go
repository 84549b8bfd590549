package core

import "context"

// Context keys for analysis options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
	runIDKey          contextKey = "runID"
)

// WithSuppressHeader returns a context that silences the analysis header,
// used by callers that own stdout such as the MCP server.
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	suppress, ok := ctx.Value(suppressHeaderKey).(bool)
	return ok && suppress
}

// withRunID records the result store run id on the context.
func withRunID(ctx context.Context, runID int64) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// getRunID returns the result store run id, if one was recorded.
func getRunID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(runIDKey).(int64)
	return id, ok
}
