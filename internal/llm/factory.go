package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/quizsmith/internal/logger"
	"github.com/abhisek/quizsmith/internal/store"
)

// NewProvider builds the configured backend wrapped with retry and
// logging. eventRepo may be nil, in which case calls are only logged.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *logger.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "ollama":
		base, err = NewOllamaProvider(cfg.Ollama, cfg.Timeout)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// Each attempt is logged and recorded separately, so retry wraps logging.
	return WithRetry(WithLogging(base, cfg.Provider, eventRepo, log), cfg.Retry), nil
}
