package quizgen

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/quizsmith/internal/llm"
	"github.com/abhisek/quizsmith/internal/logger"
)

// LLMGenerator implements BatchGenerator on top of an llm.Provider.
type LLMGenerator struct {
	provider  llm.Provider
	validator *Validator
	config    Config
	log       *logger.Logger
}

// NewLLMGenerator creates a model-backed generator. log may be nil.
func NewLLMGenerator(provider llm.Provider, validator *Validator, cfg Config, log *logger.Logger) *LLMGenerator {
	if validator == nil {
		validator = NewValidator(nil)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LLMGenerator{provider: provider, validator: validator, config: cfg, log: log}
}

// GenerateBatch asks the model for in.Count questions and returns those
// that validate. The caller bounds the call with ctx.
func (g *LLMGenerator) GenerateBatch(ctx context.Context, in BatchInput) BatchResult {
	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(in, g.config)},
		},
		MaxTokens:     g.config.MaxTokens,
		Temperature:   g.config.Temperature,
		TopP:          g.config.TopP,
		RepeatPenalty: g.config.RepeatPenalty,
	}
	if g.config.StructuredOutput {
		req.Schema = QuizBatchSchema
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return BatchResult{Failure: classifyProviderError(err)}
	}

	payload := ExtractPayload(resp.Text())
	if payload.Shape == ShapeUnparseable {
		return BatchResult{Failure: &GenerationError{
			Kind: KindMalformedResponse,
			Err:  errors.New(payload.Reason),
		}}
	}

	out := make([]Question, 0, len(payload.Items))
	rejected := 0
	for _, item := range payload.Items {
		q, verr := g.validator.Validate(item)
		if verr != nil {
			rejected++
			g.log.Debug("dropped model question", "rule", verr.Rule, "reason", verr.Message)
			continue
		}
		out = append(out, q)
	}
	g.log.Debug("model batch parsed",
		"shape", payload.Shape.String(), "items", len(payload.Items),
		"accepted", len(out), "rejected", rejected)

	return BatchResult{Questions: out}
}

// classifyProviderError maps provider failures onto the pipeline's
// taxonomy. Content that failed the envelope schema or was truncated is
// malformed; everything else means the backend could not serve the call.
func classifyProviderError(err error) *GenerationError {
	var invalid *llm.ErrInvalidResponse
	var truncated *llm.ErrMaxTokensExceeded
	if errors.As(err, &invalid) || errors.As(err, &truncated) {
		return &GenerationError{Kind: KindMalformedResponse, Err: err}
	}
	return &GenerationError{Kind: KindBackendUnavailable, Err: fmt.Errorf("model call failed: %w", err)}
}
