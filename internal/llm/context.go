package llm

import "context"

type contextKey int

const (
	purposeKey contextKey = iota
	requestIDKey
)

// WithPurpose labels model calls made with ctx, e.g. "quiz-batch".
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom returns the purpose label, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}

// WithRequestID ties model calls made with ctx to one pipeline request,
// so recorded LLM events can be joined with the generation they served.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFrom returns the pipeline request id, or "".
func RequestIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}
