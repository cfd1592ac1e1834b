package quizgen

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/abhisek/quizsmith/internal/llm"
)

// ErrCouldNotRegenerate is returned when no candidate of a regenerate
// batch is valid and new.
var ErrCouldNotRegenerate = errors.New("could not regenerate")

// Regenerate returns one question of the requested type whose stem is not
// in req.Avoid. An unsupported type is treated as mcq.
func (o *Orchestrator) Regenerate(ctx context.Context, req RegenerateRequest) (Question, error) {
	res := Result{RequestID: uuid.NewString(), Rounds: 1}
	log := o.log.With("request_id", res.RequestID)
	ctx = llm.WithRequestID(ctx, res.RequestID)

	qtype := QuestionType(strings.TrimSpace(req.Type))
	if !qtype.Valid() {
		qtype = TypeMCQ
	}
	avoid := o.normalizeAvoid(req.Avoid)

	in := BatchInput{
		Grade:      req.Grade,
		Skill:      req.Skill,
		Difficulty: req.Difficulty,
		Types:      []QuestionType{qtype},
		Count:      o.config.RegenerateBatch,
		Material:   req.Material,
		UnitText:   req.UnitText,
		AvoidStems: avoid,
	}

	batch, warning := o.runRound(ctx, in, PurposeRegenerate, o.config.RegenerateTimeout, log)
	if warning != "" {
		res.Warning = warning
		res.Fallbacks = 1
	}

	for _, candidate := range batch {
		q, verr := o.validator.Validate(wireRecord(candidate))
		if verr != nil {
			continue
		}
		stem := o.fp.Stem(q)
		if stem != "" && slices.Contains(avoid, stem) {
			continue
		}
		res.Questions = []Question{q}
		o.record(ctx, "regenerate", req.Grade, req.Skill, req.Difficulty, req.Material, 1, res, log)
		return q, nil
	}

	log.Info("regenerate found no new candidate", "type", string(qtype), "candidates", len(batch))
	return Question{}, ErrCouldNotRegenerate
}
