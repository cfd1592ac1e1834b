package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestMockProvider_ReplaysScript(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"questions":[{"type":"tf"}]}`), Usage: Usage{InputTokens: 10, OutputTokens: 5}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("slow down")}},
		MockResponse{Content: json.RawMessage(`{"questions":[`), StopReason: StopMaxTokens},
	)
	ctx := context.Background()

	first, err := mock.Generate(ctx, Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Text() != `{"questions":[{"type":"tf"}]}` || first.Usage.InputTokens != 10 || first.StopReason != StopEnd {
		t.Errorf("first response = %+v", first)
	}

	var rl *ErrRateLimit
	if _, err := mock.Generate(ctx, Request{}); !errors.As(err, &rl) {
		t.Errorf("second call: expected ErrRateLimit, got %v", err)
	}

	var trunc *ErrMaxTokensExceeded
	if _, err := mock.Generate(ctx, Request{}); !errors.As(err, &trunc) {
		t.Errorf("third call: expected ErrMaxTokensExceeded, got %v", err)
	}

	var unavail *ErrProviderUnavailable
	if _, err := mock.Generate(ctx, Request{}); !errors.As(err, &unavail) {
		t.Errorf("exhausted script: expected ErrProviderUnavailable, got %v", err)
	}

	reqs := mock.Requests()
	if len(reqs) != 4 || mock.CallCount() != 4 {
		t.Fatalf("recorded %d requests", len(reqs))
	}
	if reqs[0].System != "sys" || reqs[0].Messages[0].Content != "first" {
		t.Errorf("first request = %+v", reqs[0])
	}
	if mock.ModelID() != "mock" {
		t.Errorf("ModelID = %q", mock.ModelID())
	}
}

func TestMockProvider_HonoursCancellation(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := mock.Generate(ctx, Request{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := mock.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("cancelled call should not consume the script: %v", err)
	}
}

func TestComplete(t *testing.T) {
	schema := testSchema()
	valid := json.RawMessage(`{"text":"Pick one.","correctIndex":0}`)

	resp, err := complete(Request{Schema: schema}, &Response{Content: valid, StopReason: StopEnd})
	if err != nil || resp.Text() != string(valid) {
		t.Fatalf("complete = %v, %v", resp, err)
	}

	var trunc *ErrMaxTokensExceeded
	_, err = complete(Request{Schema: schema}, &Response{Content: valid, StopReason: StopMaxTokens})
	if !errors.As(err, &trunc) {
		t.Fatalf("truncation should win over a valid body, got %v", err)
	}

	var inv *ErrInvalidResponse
	if _, err = complete(Request{Schema: schema}, &Response{Content: json.RawMessage(`{}`)}); !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}

	if _, err = complete(Request{}, &Response{Content: json.RawMessage("free text")}); err != nil {
		t.Fatalf("free text without schema: %v", err)
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, "quiz-regenerate")
	if p := PurposeFrom(ctx); p != "quiz-regenerate" {
		t.Fatalf("expected 'quiz-regenerate', got %q", p)
	}
	if p := PurposeFrom(WithPurpose(ctx, "")); p != "unknown" {
		t.Fatalf("empty purpose should read as unknown, got %q", p)
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()
	if id := RequestIDFrom(ctx); id != "" {
		t.Fatalf("expected no request id, got %q", id)
	}
	ctx = WithRequestID(WithPurpose(ctx, "quiz-batch"), "req-42")
	if id := RequestIDFrom(ctx); id != "req-42" {
		t.Fatalf("request id = %q", id)
	}
	if p := PurposeFrom(ctx); p != "quiz-batch" {
		t.Fatalf("request id should not clobber purpose, got %q", p)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "ollama defaults",
			cfg:     DefaultConfig(),
			wantErr: false,
		},
		{
			name:    "ollama without model",
			cfg:     Config{Provider: "ollama", Ollama: OllamaConfig{BaseURL: "http://127.0.0.1:11434"}},
			wantErr: true,
		},
		{
			name:    "ollama without url",
			cfg:     Config{Provider: "ollama", Ollama: OllamaConfig{Model: "llama3.1"}},
			wantErr: true,
		},
		{
			name:    "anthropic without key",
			cfg:     Config{Provider: "anthropic"},
			wantErr: true,
		},
		{
			name:    "anthropic with key",
			cfg:     Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "openai without key",
			cfg:     Config{Provider: "openai"},
			wantErr: true,
		},
		{
			name:    "openai with key",
			cfg:     Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "mock is a test double, not a backend",
			cfg:     Config{Provider: "mock"},
			wantErr: true,
		},
		{
			name:    "unknown provider",
			cfg:     Config{Provider: "unknown"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("QUIZSMITH_LLM_PROVIDER", "openai")
	t.Setenv("QUIZSMITH_OPENAI_API_KEY", "sk-env")
	t.Setenv("QUIZSMITH_OLLAMA_MODEL", "qwen2.5")
	t.Setenv("QUIZSMITH_LLM_TIMEOUT", "45s")
	t.Setenv("QUIZSMITH_LLM_MAX_ATTEMPTS", "not-a-number")

	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	if cfg.Provider != "openai" || cfg.OpenAI.APIKey != "sk-env" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.Ollama.Model != "qwen2.5" {
		t.Errorf("ollama model = %q", cfg.Ollama.Model)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("timeout = %s", cfg.Timeout)
	}
	if cfg.Retry.MaxAttempts != 2 {
		t.Errorf("bad max attempts should keep default, got %d", cfg.Retry.MaxAttempts)
	}
}

func TestResponseText(t *testing.T) {
	var r *Response
	if r.Text() != "" {
		t.Errorf("nil response text = %q", r.Text())
	}
	r = &Response{Content: json.RawMessage(`{"questions":[]}`)}
	if r.Text() != `{"questions":[]}` {
		t.Errorf("text = %q", r.Text())
	}
}

func TestLookupCost(t *testing.T) {
	if c := LookupCost("gpt-4o-mini"); c == nil || c.Cost(1_000_000, 0) != 0.15 {
		t.Errorf("gpt-4o-mini cost = %+v", c)
	}
	if c := LookupCost("llama3.1:8b"); c == nil || c.Cost(5000, 5000) != 0 {
		t.Errorf("local model should be free, got %+v", c)
	}
	if c := LookupCost("some-unknown-model"); c != nil {
		t.Errorf("expected nil for unknown model, got %+v", c)
	}
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()
	if _, err := NewProvider(ctx, Config{Provider: "mock"}, nil, nil); err == nil {
		t.Error("expected an error for an unknown backend")
	}
	if _, err := NewProvider(ctx, Config{Provider: "openai"}, nil, nil); err == nil {
		t.Error("expected an error for a missing API key")
	}

	cfg := DefaultConfig()
	cfg.Ollama.Model = "qwen2.5"
	p, err := NewProvider(ctx, cfg, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.(*RetryProvider); !ok {
		t.Errorf("expected the retry decorator outermost, got %T", p)
	}
	if p.ModelID() != "qwen2.5" {
		t.Errorf("ModelID = %q", p.ModelID())
	}
}
