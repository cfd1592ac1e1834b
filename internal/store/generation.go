package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// generationRepo implements GenerationRepo.
type generationRepo struct {
	drv *entsql.Driver
	seq *sequence
}

func (r *generationRepo) SaveGeneration(ctx context.Context, rec GenerationRecord) (int64, error) {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}

	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	b := builder()
	header := b.Insert(generationTable.Name).
		Columns("sequence", "request_id", "timestamp", "kind", "grade", "skill", "difficulty",
			"material", "requested", "returned", "rounds", "fallbacks", "warning").
		Values(seqNum, rec.RequestID, time.Now().UTC(), rec.Kind, rec.Grade, rec.Skill,
			rec.Difficulty, rec.Material, rec.Requested, len(rec.Questions),
			rec.Rounds, rec.Fallbacks, rec.Warning)
	res, err := execStmt(ctx, tx, header)
	if err != nil {
		return 0, fmt.Errorf("insert generation: %w", err)
	}
	genID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("generation id: %w", err)
	}

	if len(rec.Questions) > 0 {
		insert := b.Insert(questionTable.Name).
			Columns("generation_id", "position", "question_id", "type", "fingerprint", "stem", "payload")
		for i, q := range rec.Questions {
			insert.Values(genID, i, q.QuestionID, q.Type, q.Fingerprint, q.Stem, q.Payload)
		}
		if _, err := execStmt(ctx, tx, insert); err != nil {
			return 0, fmt.Errorf("insert questions: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit generation: %w", err)
	}
	return genID, nil
}

func (r *generationRepo) RecentGenerations(ctx context.Context, limit int) ([]Generation, error) {
	b := builder()
	sel := b.Select("id", "sequence", "request_id", "timestamp", "kind", "grade", "skill",
		"difficulty", "material", "requested", "returned", "rounds", "fallbacks", "warning").
		From(b.Table(generationTable.Name)).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel.Limit(limit)
	}

	rows, err := queryStmt(ctx, r.drv, sel)
	if err != nil {
		return nil, fmt.Errorf("query generations: %w", err)
	}
	defer rows.Close()

	var out []Generation
	for rows.Next() {
		var g Generation
		if err := rows.Scan(&g.ID, &g.Sequence, &g.RequestID, &g.Timestamp, &g.Kind,
			&g.Grade, &g.Skill, &g.Difficulty, &g.Material, &g.Requested, &g.Returned,
			&g.Rounds, &g.Fallbacks, &g.Warning); err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *generationRepo) GenerationQuestions(ctx context.Context, generationID int64) ([]GeneratedQuestion, error) {
	b := builder()
	sel := b.Select("question_id", "type", "fingerprint", "stem", "payload").
		From(b.Table(questionTable.Name)).
		Where(entsql.EQ("generation_id", generationID)).
		OrderBy("position")

	rows, err := queryStmt(ctx, r.drv, sel)
	if err != nil {
		return nil, fmt.Errorf("query generated questions: %w", err)
	}
	defer rows.Close()

	var out []GeneratedQuestion
	for rows.Next() {
		var q GeneratedQuestion
		if err := rows.Scan(&q.QuestionID, &q.Type, &q.Fingerprint, &q.Stem, &q.Payload); err != nil {
			return nil, fmt.Errorf("scan generated question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *generationRepo) RecentStems(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	b := builder()
	sel := b.Select("stem").
		From(b.Table(questionTable.Name)).
		Where(entsql.NEQ("stem", "")).
		GroupBy("stem").
		OrderBy(entsql.Desc(entsql.Max("id"))).
		Limit(limit)

	rows, err := queryStmt(ctx, r.drv, sel)
	if err != nil {
		return nil, fmt.Errorf("query recent stems: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan stem: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
