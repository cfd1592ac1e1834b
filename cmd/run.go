package cmd

import (
	"fmt"
	"os"

	"github.com/abhisek/quizsmith/internal/config"
	"github.com/abhisek/quizsmith/internal/llm"
	"github.com/abhisek/quizsmith/internal/logger"
	"github.com/abhisek/quizsmith/internal/quizgen"
	"github.com/abhisek/quizsmith/internal/store"
	"github.com/spf13/cobra"
)

// pipeline bundles everything a generating command needs.
type pipeline struct {
	cfg   config.Config
	log   *logger.Logger
	store *store.Store
	orch  *quizgen.Orchestrator
}

func (p *pipeline) Close() {
	if p.store != nil {
		_ = p.store.Close()
	}
	p.log.Sync()
}

// buildPipeline loads configuration, opens the store and assembles the
// orchestrator. A model backend that fails to initialize is reported and
// the pipeline runs on the mock generator alone.
func buildPipeline(cmd *cobra.Command) (*pipeline, error) {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	p := &pipeline{cfg: cfg, log: log, store: st}

	ids, err := quizgen.NewIDSource(cfg.Generation.IDStrategy)
	if err != nil {
		p.Close()
		return nil, err
	}
	validator := quizgen.NewValidator(ids)

	banks := quizgen.DefaultBanks()
	if cfg.Generation.BanksFile != "" {
		banks, err = quizgen.LoadBanks(cfg.Generation.BanksFile)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("load banks: %w", err)
		}
	}
	mock := quizgen.NewMockGenerator(banks, ids, nil)

	opts := []quizgen.Option{
		quizgen.WithRecorder(st.GenerationRepo()),
		quizgen.WithLogger(log),
	}
	if cfg.Generation.UseModel {
		provider, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), log)
		if err != nil {
			fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
			fmt.Fprintln(os.Stderr, "Falling back to the mock generator.")
		} else {
			opts = append(opts, quizgen.WithModel(quizgen.NewLLMGenerator(provider, validator, cfg.Generation, log)))
		}
	}

	p.orch = quizgen.NewOrchestrator(cfg.Generation, mock, validator, opts...)
	log.Debug("pipeline ready",
		"db", dbPath, "use_model", p.orch.ModelEnabled(),
		"provider", cfg.LLM.Provider, "model", cfg.ModelName())
	return p, nil
}
