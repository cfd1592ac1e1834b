package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ollama/ollama/api"
)

func newTestOllamaProvider(t *testing.T, handler http.HandlerFunc) *OllamaProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewOllamaProvider(OllamaConfig{BaseURL: server.URL + "/", Model: "llama3.1"}, 5*time.Second)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p
}

func TestOllamaProvider_HappyPath(t *testing.T) {
	var got api.GenerateRequest
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"model":             "llama3.1",
			"response":          "Here you go:\n```json\n{\"questions\": []}\n```",
			"done":              true,
			"done_reason":       "stop",
			"prompt_eval_count": 120,
			"eval_count":        48,
		})
	}

	p := newTestOllamaProvider(t, handler)
	resp, err := p.Generate(context.Background(), Request{
		System:        "You are an English teacher.",
		Messages:      []Message{{Role: RoleUser, Content: "Generate EXACTLY 3 questions"}},
		MaxTokens:     2048,
		Temperature:   0.9,
		TopP:          0.95,
		RepeatPenalty: 1.15,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Stream == nil || *got.Stream {
		t.Error("expected stream=false")
	}
	if got.Prompt != "Generate EXACTLY 3 questions" {
		t.Errorf("prompt = %q", got.Prompt)
	}
	if got.System != "You are an English teacher." {
		t.Errorf("system = %q", got.System)
	}
	if got.Options["top_p"] != 0.95 || got.Options["repeat_penalty"] != 1.15 || got.Options["num_predict"] != float64(2048) {
		t.Errorf("options not forwarded: %+v", got.Options)
	}
	if got.Format != nil {
		t.Errorf("format without a schema: %s", got.Format)
	}

	if resp.Usage.InputTokens != 120 || resp.Usage.OutputTokens != 48 || resp.Usage.TotalTokens != 168 {
		t.Errorf("unexpected usage: %+v", resp.Usage)
	}
	if resp.StopReason != StopEnd {
		t.Errorf("stop reason = %q", resp.StopReason)
	}
	if resp.Text() != "Here you go:\n```json\n{\"questions\": []}\n```" {
		t.Errorf("unexpected text: %q", resp.Text())
	}
}

func TestOllamaProvider_ServerError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"model not loaded"}`))
	}

	p := newTestOllamaProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %T: %v", err, err)
	}
}

func TestOllamaProvider_UnknownModelIsRejected(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model 'llama9' not found"}`))
	}

	p := newTestOllamaProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{})
	var rejected *ErrRequestRejected
	if !errors.As(err, &rejected) {
		t.Fatalf("expected ErrRequestRejected, got %T: %v", err, err)
	}
	if rejected.Status != http.StatusNotFound {
		t.Errorf("status = %d", rejected.Status)
	}
}

func TestOllamaProvider_Truncated(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"response":    `{"questions": [{"id": 1`,
			"done":        true,
			"done_reason": "length",
		})
	}

	p := newTestOllamaProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{})
	var trunc *ErrMaxTokensExceeded
	if !errors.As(err, &trunc) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %T: %v", err, err)
	}
	if string(trunc.Content) != `{"questions": [{"id": 1` {
		t.Errorf("partial content = %q", trunc.Content)
	}
}

func TestOllamaProvider_RateLimit(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}

	p := newTestOllamaProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got %T: %v", err, err)
	}
	if rl.RetryAfter != 7*time.Second {
		t.Errorf("retry after = %s", rl.RetryAfter)
	}
}

func TestOllamaProvider_Unreachable(t *testing.T) {
	p, err := NewOllamaProvider(OllamaConfig{BaseURL: "http://127.0.0.1:1", Model: "llama3.1"}, time.Second)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	_, err = p.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %T: %v", err, err)
	}
}

func TestOllamaProvider_SchemaValidated(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		var req api.GenerateRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Format) == 0 {
			t.Error("expected format to carry the schema")
		}
		json.NewEncoder(w).Encode(map[string]any{"response": `{"items": 3}`, "done": true})
	}

	p := newTestOllamaProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{Schema: testSchema()})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %T: %v", err, err)
	}
}

func TestOllamaProvider_ErrorLineInBody(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"model is loading"}` + "\n"))
	}

	p := newTestOllamaProvider(t, handler)
	_, err := p.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %T: %v", err, err)
	}
}

func TestOllamaOptions_OnlySetKnobs(t *testing.T) {
	opts := ollamaOptions(Request{Temperature: 0.7})
	if len(opts) != 1 || opts["temperature"] != 0.7 {
		t.Errorf("options = %v", opts)
	}
}

func TestFlattenMessages(t *testing.T) {
	single := flattenMessages([]Message{{Role: RoleUser, Content: "only"}})
	if single != "only" {
		t.Errorf("single = %q", single)
	}
	multi := flattenMessages([]Message{
		{Role: RoleUser, Content: "a"},
		{Role: RoleAssistant, Content: "b"},
	})
	if multi != "user: a\n\nassistant: b" {
		t.Errorf("multi = %q", multi)
	}
}
