package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one completion per call. Implementations wrap a
// vendor SDK or HTTP API; RetryProvider and LoggingProvider decorate them.
type Provider interface {
	// Generate runs a single completion. With req.Schema set the backend
	// is asked for structured JSON and the reply is checked against the
	// schema before it is returned.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the configured model, before any vendor aliasing.
	ModelID() string
}

// Request is a backend-neutral completion request.
type Request struct {
	System string

	// Quiz generation is single-turn: one user message.
	Messages []Message

	// Schema constrains the reply. Nil means free text.
	Schema *Schema

	MaxTokens int

	// Zero values for the sampling knobs leave the backend default.
	Temperature float64
	TopP        float64

	// RepeatPenalty uses Ollama's scale (1 = off). OpenAI-style and
	// Gemini backends translate it to a frequency penalty.
	RepeatPenalty float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema document.
type Schema struct {
	// Name is kebab-case, e.g. "quiz-batch". OpenAI uses it as the
	// json_schema name and validation caches compiled schemas under it.
	Name        string
	Description string
	Definition  map[string]any

	// Accept, when set, is what replies are checked against in place of
	// Definition. Definition still steers decoding; Accept can be looser
	// so that one off-shape item does not fail the whole reply.
	Accept map[string]any
}

type Response struct {
	// Content is schema-checked JSON when the request carried a Schema,
	// the raw completion text otherwise.
	Content json.RawMessage
	Usage   Usage

	// Model is what the backend reports having served, which may be a
	// dated snapshot of ModelID.
	Model string

	// StopReason is StopEnd or StopMaxTokens.
	StopReason string
}

const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// complete is the last step of every provider: a truncated completion is
// an error, and content must satisfy the request schema when one was set.
func complete(req Request, resp *Response) (*Response, error) {
	if resp.StopReason == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Content: resp.Content}
	}
	if err := validateResponse(req.Schema, resp.Content); err != nil {
		return nil, err
	}
	return resp, nil
}

// Text returns the content as a string. Safe on nil.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Content)
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
