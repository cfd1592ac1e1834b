package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store is the SQLite database behind generation history and model call
// records. Queries are built with ent's SQL builders over the ent driver.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
	seq *sequence
}

// pragmas are set through the DSN so that every pooled connection gets
// them, not just the first one.
var pragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"foreign_keys(1)",
	"synchronous(NORMAL)",
}

// Open opens (creating if needed) the database file at path and brings
// its schema up to date.
func Open(path string) (*Store, error) {
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	db, err := sql.Open("sqlite", path+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := migrate(context.Background(), drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return &Store{db: db, drv: drv, seq: &sequence{drv: drv}}, nil
}

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.drv.Close()
}

// EventRepo returns the model call repository.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{drv: s.drv, seq: s.seq}
}

// GenerationRepo returns the generation history repository.
func (s *Store) GenerationRepo() GenerationRepo {
	return &generationRepo{drv: s.drv, seq: s.seq}
}

// migrate creates or updates the tables and seeds the sequence row.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	seed := builder().Insert(sequenceTable.Name).
		Columns("id", "next_val").
		Values(1, 1).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing())
	if _, err := execStmt(ctx, drv, seed); err != nil {
		return fmt.Errorf("seed sequence: %w", err)
	}
	return nil
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// statement is any ent builder that renders to SQL and arguments.
type statement interface {
	Query() (string, []any)
}

func execStmt(ctx context.Context, ex dialect.ExecQuerier, st statement) (sql.Result, error) {
	query, args := st.Query()
	var res sql.Result
	if err := ex.Exec(ctx, query, args, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// queryStmt runs st and returns its rows. The caller closes them.
func queryStmt(ctx context.Context, ex dialect.ExecQuerier, st statement) (*entsql.Rows, error) {
	query, args := st.Query()
	rows := &entsql.Rows{}
	if err := ex.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. QUIZSMITH_DB environment variable
// 2. $XDG_DATA_HOME/quizsmith/quizsmith.db
// 3. ~/.local/share/quizsmith/quizsmith.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("QUIZSMITH_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "quizsmith", "quizsmith.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
