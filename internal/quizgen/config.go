package quizgen

import "time"

// Config controls the generation pipeline.
type Config struct {
	// UseModel enables the model-backed generator. When false every round
	// is served by the mock generator.
	UseModel bool `yaml:"use_model"`

	// MaxAttempts is the number of generation rounds per call.
	MaxAttempts int `yaml:"max_attempts"`

	// MaxBatch caps the number of questions requested in one round.
	MaxBatch int `yaml:"max_batch"`

	// MaxCount caps the requested count of a batch call.
	MaxCount int `yaml:"max_count"`

	// DefaultPoolMultiplier is used when a request carries none.
	DefaultPoolMultiplier int `yaml:"default_pool_multiplier"`

	// AvoidCap caps the avoid-stem list handed to a generator.
	AvoidCap int `yaml:"avoid_cap"`

	// PromptAvoidCap caps how many avoid stems the prompt lists.
	PromptAvoidCap int `yaml:"prompt_avoid_cap"`

	// ContextBudget caps the lesson text embedded in the prompt, in runes.
	ContextBudget int `yaml:"context_budget"`

	// RegenerateBatch is the number of candidates a regenerate call draws.
	RegenerateBatch int `yaml:"regenerate_batch"`

	BatchTimeout      time.Duration `yaml:"batch_timeout"`
	RegenerateTimeout time.Duration `yaml:"regenerate_timeout"`

	MaxTokens     int     `yaml:"max_tokens"`
	Temperature   float64 `yaml:"temperature"`
	TopP          float64 `yaml:"top_p"`
	RepeatPenalty float64 `yaml:"repeat_penalty"`

	// StructuredOutput asks the provider to constrain output to the batch
	// envelope schema. Free-text extraction still applies.
	StructuredOutput bool `yaml:"structured_output"`

	// FingerprintMaterialTag keeps the "[material]" prefix in fingerprints
	// and stems. By default it is stripped.
	FingerprintMaterialTag bool `yaml:"fingerprint_material_tag"`

	// IDStrategy is "time" or "sequence".
	IDStrategy string `yaml:"id_strategy"`

	// BanksFile optionally points at a YAML file of mock banks.
	BanksFile string `yaml:"banks_file"`
}

// DefaultConfig returns the standard pipeline settings.
func DefaultConfig() Config {
	return Config{
		UseModel:              false,
		MaxAttempts:           6,
		MaxBatch:              60,
		MaxCount:              80,
		DefaultPoolMultiplier: 3,
		AvoidCap:              40,
		PromptAvoidCap:        20,
		ContextBudget:         4500,
		RegenerateBatch:       10,
		BatchTimeout:          120 * time.Second,
		RegenerateTimeout:     60 * time.Second,
		MaxTokens:             8192,
		Temperature:           0.9,
		TopP:                  0.95,
		RepeatPenalty:         1.15,
		StructuredOutput:      true,
		IDStrategy:            IDStrategyTime,
	}
}

// Fingerprinter returns the fingerprint policy this config selects.
func (c Config) Fingerprinter() Fingerprinter {
	return Fingerprinter{IncludeMaterialTag: c.FingerprintMaterialTag}
}
