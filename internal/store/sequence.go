package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	entsql "entgo.io/ent/dialect/sql"
)

// sequence hands out the monotonic number shared by model call events and
// generation records, so both tables merge into one timeline. The mutex
// serializes callers in this process; the increment and read share one
// transaction so processes sharing the file never see the same value.
type sequence struct {
	mu  sync.Mutex
	drv *entsql.Driver
}

func (s *sequence) Next(ctx context.Context) (n int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin sequence tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback() //nolint:errcheck
		}
	}()

	b := builder()
	bump := b.Update(sequenceTable.Name).Add("next_val", 1).Where(entsql.EQ("id", 1))
	if _, err = execStmt(ctx, tx, bump); err != nil {
		return 0, fmt.Errorf("bump sequence: %w", err)
	}

	rows, err := queryStmt(ctx, tx, b.Select("next_val").From(b.Table(sequenceTable.Name)).Where(entsql.EQ("id", 1)))
	if err != nil {
		return 0, fmt.Errorf("read sequence: %w", err)
	}
	var next sql.NullInt64
	if rows.Next() {
		err = rows.Scan(&next)
	}
	if err == nil {
		err = rows.Err()
	}
	rows.Close()
	if err != nil {
		return 0, fmt.Errorf("scan sequence: %w", err)
	}
	if !next.Valid {
		err = fmt.Errorf("sequence row missing")
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit sequence: %w", err)
	}
	return next.Int64 - 1, nil
}
