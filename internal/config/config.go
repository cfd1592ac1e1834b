// Package config assembles the process configuration from defaults, an
// optional YAML file and QUIZSMITH_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/quizsmith/internal/llm"
	"github.com/abhisek/quizsmith/internal/quizgen"
)

// EnvConfigFile names the env var holding a config file path.
const EnvConfigFile = "QUIZSMITH_CONFIG"

// Config is the full process configuration.
type Config struct {
	LLM        llm.Config     `yaml:"llm"`
	Generation quizgen.Config `yaml:"generation"`
	Server     ServerConfig   `yaml:"server"`
	Log        LogConfig      `yaml:"log"`

	// DBPath overrides the default database location when set.
	DBPath string `yaml:"db_path"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LogConfig selects the logger mode: "dev", "prod" or "quiet".
type LogConfig struct {
	Mode string `yaml:"mode"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LLM:        llm.DefaultConfig(),
		Generation: quizgen.DefaultConfig(),
		Server: ServerConfig{
			Addr:           ":5000",
			AllowedOrigins: []string{"*"},
		},
		Log: LogConfig{Mode: "dev"},
	}
}

// Load builds the configuration. path may be empty, in which case
// QUIZSMITH_CONFIG is consulted; a missing file is only an error when a
// path was given explicitly.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigFile)
		explicit = path != ""
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	cfg.ApplyEnv()
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv() {
	llm.ApplyEnv(&c.LLM)

	g := &c.Generation
	setBool(&g.UseModel, "QUIZSMITH_USE_MODEL")
	setInt(&g.MaxAttempts, "QUIZSMITH_MAX_ATTEMPTS")
	setInt(&g.MaxBatch, "QUIZSMITH_MAX_BATCH")
	setInt(&g.MaxCount, "QUIZSMITH_MAX_COUNT")
	setInt(&g.ContextBudget, "QUIZSMITH_CONTEXT_BUDGET")
	setDuration(&g.BatchTimeout, "QUIZSMITH_BATCH_TIMEOUT")
	setDuration(&g.RegenerateTimeout, "QUIZSMITH_REGENERATE_TIMEOUT")
	setInt(&g.MaxTokens, "QUIZSMITH_MAX_TOKENS")
	setFloat(&g.Temperature, "QUIZSMITH_TEMPERATURE")
	setFloat(&g.TopP, "QUIZSMITH_TOP_P")
	setFloat(&g.RepeatPenalty, "QUIZSMITH_REPEAT_PENALTY")
	setBool(&g.StructuredOutput, "QUIZSMITH_STRUCTURED_OUTPUT")
	setBool(&g.FingerprintMaterialTag, "QUIZSMITH_FINGERPRINT_MATERIAL_TAG")
	setString(&g.IDStrategy, "QUIZSMITH_ID_STRATEGY")
	setString(&g.BanksFile, "QUIZSMITH_BANKS_FILE")

	setString(&c.Server.Addr, "QUIZSMITH_ADDR")
	if v := os.Getenv("QUIZSMITH_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.AllowedOrigins = origins
	}

	setString(&c.Log.Mode, "QUIZSMITH_LOG_MODE")
	setString(&c.DBPath, "QUIZSMITH_DB")
}

// Validate checks the pipeline settings and, when the model is enabled,
// the provider settings.
func (c Config) Validate() error {
	g := c.Generation
	if g.MaxAttempts < 1 {
		return fmt.Errorf("generation.max_attempts must be at least 1, got %d", g.MaxAttempts)
	}
	if g.MaxBatch < 1 {
		return fmt.Errorf("generation.max_batch must be at least 1, got %d", g.MaxBatch)
	}
	if g.MaxCount < 1 {
		return fmt.Errorf("generation.max_count must be at least 1, got %d", g.MaxCount)
	}
	if g.RegenerateBatch < 1 {
		return fmt.Errorf("generation.regenerate_batch must be at least 1, got %d", g.RegenerateBatch)
	}
	switch g.IDStrategy {
	case "", quizgen.IDStrategyTime, quizgen.IDStrategySequence:
	default:
		return fmt.Errorf("unknown generation.id_strategy %q", g.IDStrategy)
	}
	if g.UseModel {
		if err := c.LLM.Validate(); err != nil {
			return fmt.Errorf("llm: %w", err)
		}
	}
	return nil
}

// ModelName returns the configured model of the selected provider.
func (c Config) ModelName() string {
	switch c.LLM.Provider {
	case "ollama":
		return c.LLM.Ollama.Model
	case "anthropic":
		return c.LLM.Anthropic.Model
	case "openai":
		return c.LLM.OpenAI.Model
	case "gemini":
		return c.LLM.Gemini.Model
	case "openrouter":
		return c.LLM.OpenRouter.Model
	default:
		return c.LLM.Provider
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
