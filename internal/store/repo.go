package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	Purpose   string    // exact purpose match (empty = any)
	RequestID string    // request id prefix (empty = any)
	From      time.Time // timestamp >= From
	To        time.Time // timestamp <= To
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	RequestID    string // pipeline request the call served, if any
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns a single event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	// LLMUsageByPurpose aggregates successful and failed calls per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// GeneratedQuestion is one accepted question of a generation. Payload is
// the question's JSON wire form; the store does not interpret it.
type GeneratedQuestion struct {
	QuestionID  int64
	Type        string
	Fingerprint string
	Stem        string
	Payload     string
}

// GenerationRecord describes one completed generate or regenerate call.
type GenerationRecord struct {
	RequestID  string
	Kind       string // "batch" or "regenerate"
	Grade      int
	Skill      string
	Difficulty string
	Material   string
	Requested  int
	Rounds     int
	Fallbacks  int
	Warning    string
	Questions  []GeneratedQuestion
}

// Generation is a stored generation record header.
type Generation struct {
	ID         int64
	Sequence   int64
	RequestID  string
	Timestamp  time.Time
	Kind       string
	Grade      int
	Skill      string
	Difficulty string
	Material   string
	Requested  int
	Returned   int
	Rounds     int
	Fallbacks  int
	Warning    string
}

// GenerationRepo persists the output of the generation pipeline.
type GenerationRepo interface {
	// SaveGeneration stores a record and its questions in one transaction
	// and returns the new generation id.
	SaveGeneration(ctx context.Context, rec GenerationRecord) (int64, error)

	// RecentGenerations returns up to limit headers, newest first.
	RecentGenerations(ctx context.Context, limit int) ([]Generation, error)

	// GenerationQuestions returns the questions of one generation in order.
	GenerationQuestions(ctx context.Context, generationID int64) ([]GeneratedQuestion, error)

	// RecentStems returns up to limit distinct non-empty stems of the most
	// recently stored questions.
	RecentStems(ctx context.Context, limit int) ([]string, error)
}
