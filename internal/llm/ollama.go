package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

const defaultOllamaBaseURL = "http://127.0.0.1:11434"

// OllamaProvider implements Provider against a local Ollama server using
// the official client and the non-streaming /api/generate endpoint.
type OllamaProvider struct {
	client *api.Client
	model  string
}

// NewOllamaProvider creates a new Ollama provider. timeout bounds each
// HTTP request; zero means no client-side limit.
func NewOllamaProvider(cfg OllamaConfig, timeout time.Duration) (*OllamaProvider, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("ollama model is required")
	}
	raw := strings.TrimRight(cfg.BaseURL, "/")
	if raw == "" {
		raw = defaultOllamaBaseURL
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse ollama URL %q: %w", raw, err)
	}

	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: statusTransport{next: http.DefaultTransport},
	}
	return &OllamaProvider{
		client: api.NewClient(base, httpClient),
		model:  cfg.Model,
	}, nil
}

func (p *OllamaProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	stream := false
	body := &api.GenerateRequest{
		Model:   p.model,
		Prompt:  flattenMessages(req.Messages),
		System:  req.System,
		Stream:  &stream,
		Options: ollamaOptions(req),
	}
	if req.Schema != nil {
		format, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return nil, fmt.Errorf("marshal ollama format: %w", err)
		}
		body.Format = format
	}

	var out api.GenerateResponse
	err := p.client.Generate(ctx, body, func(r api.GenerateResponse) error {
		out = r
		return nil
	})
	if err != nil {
		return nil, ollamaError(ctx, err)
	}

	model := out.Model
	if model == "" {
		model = p.model
	}
	stop := StopEnd
	if out.DoneReason == "length" {
		stop = StopMaxTokens
	}
	return complete(req, &Response{
		Content: json.RawMessage(out.Response),
		Usage: Usage{
			InputTokens:  out.PromptEvalCount,
			OutputTokens: out.EvalCount,
			TotalTokens:  out.PromptEvalCount + out.EvalCount,
		},
		Model:      model,
		StopReason: stop,
	})
}

func (p *OllamaProvider) ModelID() string {
	return p.model
}

// ollamaOptions carries the sampling knobs that are set. Unset ones are
// left to the model's Modelfile.
func ollamaOptions(req Request) map[string]any {
	opts := map[string]any{}
	if req.Temperature > 0 {
		opts["temperature"] = req.Temperature
	}
	if req.TopP > 0 {
		opts["top_p"] = req.TopP
	}
	if req.RepeatPenalty > 0 {
		opts["repeat_penalty"] = req.RepeatPenalty
	}
	if req.MaxTokens > 0 {
		opts["num_predict"] = req.MaxTokens
	}
	return opts
}

// statusTransport turns HTTP error statuses into the package's error
// taxonomy before the Ollama client sees them, so the status code and
// Retry-After header survive.
type statusTransport struct {
	next http.RoundTripper
}

func (t statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil || resp.StatusCode < http.StatusBadRequest {
		return resp, err
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return nil, statusError(resp.StatusCode, resp.Header,
		fmt.Errorf("ollama returned HTTP %d: %s", resp.StatusCode, truncateBody(raw, 200)))
}

// ollamaError unwraps taxonomy errors raised by statusTransport; anything
// else (refused connection, error line in the stream) means the server
// could not serve the call.
func ollamaError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var (
		rl       *ErrRateLimit
		rejected *ErrRequestRejected
		unavail  *ErrProviderUnavailable
	)
	switch {
	case errors.As(err, &rl):
		return rl
	case errors.As(err, &rejected):
		return rejected
	case errors.As(err, &unavail):
		return unavail
	}
	return &ErrProviderUnavailable{Err: err}
}

// flattenMessages renders a conversation as a single prompt. Single-turn
// requests pass the user message through unchanged.
func flattenMessages(msgs []Message) string {
	if len(msgs) == 1 && msgs[0].Role == RoleUser {
		return msgs[0].Content
	}
	var b strings.Builder
	for _, m := range msgs {
		fmt.Fprintf(&b, "%s: %s\n\n", m.Role, m.Content)
	}
	return strings.TrimSpace(b.String())
}

func truncateBody(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
