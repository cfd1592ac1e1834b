package cmd

import (
	"context"

	"github.com/abhisek/quizsmith/internal/config"
	"github.com/abhisek/quizsmith/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quizsmith",
	Short: "English quiz question generator",
	Long: `quizsmith generates validated, de-duplicated English quiz questions
(multiple choice, reading, true/false, fill-in-the-blank, reorder) from a
language model or a built-in mock generator.`,
	SilenceUsage: true,
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QUIZSMITH_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides QUIZSMITH_CONFIG env var)")
	rootCmd.PersistentFlags().String("log-mode", "", "Log mode: dev, prod or quiet")
	rootCmd.PersistentFlags().Bool("use-model", false, "Generate with the configured model backend (overrides config)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(regenerateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads the config file and environment, then applies the
// persistent flags that were set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if f := cmd.Flags().Lookup("log-mode"); f != nil && f.Changed {
		cfg.Log.Mode = f.Value.String()
	}
	if f := cmd.Flags().Lookup("use-model"); f != nil && f.Changed {
		cfg.Generation.UseModel, _ = cmd.Flags().GetBool("use-model")
	}
	if f := cmd.Flags().Lookup("banks"); f != nil && f.Changed {
		cfg.Generation.BanksFile = f.Value.String()
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured path (QUIZSMITH_DB or db_path), then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// openStore opens the database for commands that only read history.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, err
	}
	return store.Open(dbPath)
}
