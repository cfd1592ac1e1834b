package quizgen

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/quizsmith/internal/llm"
	"github.com/abhisek/quizsmith/internal/logger"
	"github.com/abhisek/quizsmith/internal/store"
)

// Purpose labels attached to model calls for the LLM event log.
const (
	PurposeBatch      = "quiz-batch"
	PurposeRegenerate = "quiz-regenerate"
)

// ShortfallWarning accompanies a result with fewer questions than asked.
const ShortfallWarning = "Could not reach full count without duplicates; enable the model backend for best results."

const (
	minPoolMultiplier = 1
	maxPoolMultiplier = 6
)

// Orchestrator drives generation rounds until the requested count of
// unique, valid questions is reached or the attempt budget runs out.
// It holds no per-call state and is safe for concurrent use.
type Orchestrator struct {
	config      Config
	mock        BatchGenerator
	model       BatchGenerator
	validator   *Validator
	fp          Fingerprinter
	generations store.GenerationRepo
	log         *logger.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithModel sets the model-backed generator. It is only used when the
// config enables the model.
func WithModel(g BatchGenerator) Option {
	return func(o *Orchestrator) { o.model = g }
}

// WithRecorder persists every completed call to repo.
func WithRecorder(repo store.GenerationRepo) Option {
	return func(o *Orchestrator) { o.generations = repo }
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// NewOrchestrator creates an orchestrator that falls back to mock.
func NewOrchestrator(cfg Config, mock BatchGenerator, validator *Validator, opts ...Option) *Orchestrator {
	if validator == nil {
		validator = NewValidator(nil)
	}
	o := &Orchestrator{
		config:    cfg,
		mock:      mock,
		validator: validator,
		fp:        cfg.Fingerprinter(),
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ModelEnabled reports whether rounds try the model backend first.
func (o *Orchestrator) ModelEnabled() bool {
	return o.config.UseModel && o.model != nil
}

// Generate returns up to req.Count unique valid questions. A short result
// carries a warning; generation itself never fails.
func (o *Orchestrator) Generate(ctx context.Context, req Request) Result {
	res := Result{RequestID: uuid.NewString()}
	log := o.log.With("request_id", res.RequestID)
	ctx = llm.WithRequestID(ctx, res.RequestID)

	count := clamp(req.Count, 1, o.config.MaxCount)
	types := ResolveTypes(req.Skill, req.Types)
	// Zero means unset; negatives clamp to the minimum like any other
	// out-of-range value.
	pool := req.PoolMultiplier
	if pool == 0 {
		pool = o.config.DefaultPoolMultiplier
	}
	pool = clamp(pool, minPoolMultiplier, maxPoolMultiplier)

	clientAvoid := o.normalizeAvoid(req.Avoid)

	seen := make(map[string]struct{})
	var accepted []Question

	for range o.config.MaxAttempts {
		need := count - len(accepted)
		if need <= 0 {
			break
		}
		res.Rounds++

		in := BatchInput{
			Grade:      req.Grade,
			Skill:      req.Skill,
			Difficulty: req.Difficulty,
			Types:      types,
			Count:      batchSize(need, pool, o.config.MaxBatch),
			Material:   req.Material,
			UnitText:   req.UnitText,
			AvoidStems: o.avoidStems(clientAvoid, accepted),
		}

		batch, warning := o.runRound(ctx, in, PurposeBatch, o.config.BatchTimeout, log)
		if warning != "" {
			res.Warning = warning
			res.Fallbacks++
		}

		added := 0
		for _, q := range batch {
			if q.Type == "" {
				continue
			}
			fp := o.fp.Fingerprint(q)
			if _, dup := seen[fp]; dup {
				continue
			}
			seen[fp] = struct{}{}
			accepted = append(accepted, q)
			added++
		}
		if len(accepted) > count {
			accepted = accepted[:count]
		}
		log.Debug("generation round",
			"round", res.Rounds, "need", need, "batch", in.Count,
			"received", len(batch), "added", added, "total", len(accepted))
	}

	res.Questions = o.revalidate(accepted, count)
	if len(res.Questions) < count && res.Warning == "" {
		res.Warning = ShortfallWarning
	}

	o.record(ctx, "batch", req.Grade, req.Skill, req.Difficulty, req.Material, count, res, log)
	return res
}

// runRound asks the model when enabled and falls back to the mock
// generator on failure. A non-empty warning means the round fell back.
func (o *Orchestrator) runRound(ctx context.Context, in BatchInput, purpose string, timeout time.Duration, log *logger.Logger) ([]Question, string) {
	if o.ModelEnabled() {
		mctx := llm.WithPurpose(ctx, purpose)
		var cancel context.CancelFunc
		if timeout > 0 {
			mctx, cancel = context.WithTimeout(mctx, timeout)
		} else {
			mctx, cancel = context.WithCancel(mctx)
		}
		result := o.model.GenerateBatch(mctx, in)
		cancel()

		if result.Failure == nil {
			return result.Questions, ""
		}
		warning := "AI fallback used: " + result.Failure.Error()
		log.Warn("model generation failed, using mock generator",
			"kind", string(result.Failure.Kind), "error", result.Failure.Err)
		return o.mock.GenerateBatch(ctx, in).Questions, warning
	}
	return o.mock.GenerateBatch(ctx, in).Questions, ""
}

// revalidate round-trips each accepted question through its wire form and
// the validator, then truncates to count.
func (o *Orchestrator) revalidate(accepted []Question, count int) []Question {
	out := make([]Question, 0, min(len(accepted), count))
	for _, q := range accepted {
		v, verr := o.validator.Validate(wireRecord(q))
		if verr != nil {
			o.log.Warn("accepted question failed revalidation", "rule", verr.Rule, "reason", verr.Message)
			continue
		}
		out = append(out, v)
	}
	if len(out) > count {
		out = out[:count]
	}
	return out
}

// wireRecord returns the question exactly as a client would receive it,
// decoded back into generic JSON values.
func wireRecord(q Question) any {
	data, err := json.Marshal(q)
	if err != nil {
		return q.Record()
	}
	var rec any
	if err := json.Unmarshal(data, &rec); err != nil {
		return q.Record()
	}
	return rec
}

// avoidStems puts the caller's avoid list first, then the stems of the
// questions accepted so far, capped at the configured total.
func (o *Orchestrator) avoidStems(client []string, accepted []Question) []string {
	out := slices.Clone(client)
	for _, q := range accepted {
		if s := o.fp.Stem(q); s != "" {
			out = append(out, s)
		}
	}
	if o.config.AvoidCap > 0 && len(out) > o.config.AvoidCap {
		out = out[:o.config.AvoidCap]
	}
	return out
}

func (o *Orchestrator) normalizeAvoid(avoid []string) []string {
	out := make([]string, 0, len(avoid))
	for _, a := range avoid {
		if s := o.fp.NormalizeStem(a); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ResolveTypes picks the question types for a request. Without explicit
// types the skill decides; unsupported names are dropped, and an empty
// result falls back to mcq.
func ResolveTypes(skill string, requested []string) []QuestionType {
	if len(requested) == 0 {
		switch skill {
		case "reading":
			return []QuestionType{TypeReadingMCQ}
		case "grammar":
			return []QuestionType{TypeMCQ, TypeFill, TypeTF, TypeReorder}
		default:
			return []QuestionType{TypeMCQ, TypeFill, TypeTF}
		}
	}
	var types []QuestionType
	for _, r := range requested {
		if t := QuestionType(strings.TrimSpace(r)); t.Valid() {
			types = append(types, t)
		}
	}
	if len(types) == 0 {
		return []QuestionType{TypeMCQ}
	}
	return types
}

// batchSize over-requests to offset validation and dedup losses.
func batchSize(need, pool, maxBatch int) int {
	n := max(need, int(float64(need)*(1.2+0.4*float64(pool))))
	if maxBatch > 0 {
		n = min(maxBatch, n)
	}
	return n
}

func clamp(v, lo, hi int) int {
	if hi > 0 && v > hi {
		v = hi
	}
	return max(v, lo)
}

func (o *Orchestrator) record(ctx context.Context, kind string, grade int, skill, difficulty, material string, requested int, res Result, log *logger.Logger) {
	if o.generations == nil {
		return
	}
	rec := store.GenerationRecord{
		RequestID:  res.RequestID,
		Kind:       kind,
		Grade:      grade,
		Skill:      skill,
		Difficulty: difficulty,
		Material:   material,
		Requested:  requested,
		Rounds:     res.Rounds,
		Fallbacks:  res.Fallbacks,
		Warning:    res.Warning,
	}
	for _, q := range res.Questions {
		payload, err := json.Marshal(q)
		if err != nil {
			continue
		}
		rec.Questions = append(rec.Questions, store.GeneratedQuestion{
			QuestionID:  q.ID,
			Type:        string(q.Type),
			Fingerprint: o.fp.Fingerprint(q),
			Stem:        o.fp.Stem(q),
			Payload:     string(payload),
		})
	}
	if _, err := o.generations.SaveGeneration(ctx, rec); err != nil {
		log.Warn("failed to record generation", "error", err)
	}
}
