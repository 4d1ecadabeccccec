package migrate

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Markers separating the forward and rollback sections of a migration file.
const (
	upMarker   = "-- migrate:up"
	downMarker = "-- migrate:down"
)

// Record is one row of the schema_migrations tracking table.
type Record struct {
	Filename  string
	AppliedAt time.Time
	Checksum  string
}

// Runner applies and rolls back SQL migration files against Postgres.
// Files are executed in lexical order; each must contain a "-- migrate:up"
// and a "-- migrate:down" section.
type Runner struct {
	pool *pgxpool.Pool
	dir  string
}

func NewRunner(ctx context.Context, databaseURL, dir string) (*Runner, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL not set in environment")
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Runner{pool: pool, dir: dir}, nil
}

func (r *Runner) Close() {
	r.pool.Close()
}

func (r *Runner) ensureTable(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		id SERIAL PRIMARY KEY,
		filename TEXT NOT NULL UNIQUE,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		checksum TEXT NOT NULL
	);
	`)
	if err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}
	return nil
}

func (r *Runner) appliedSet(ctx context.Context) (map[string]bool, error) {
	rows, err := r.pool.Query(ctx, `SELECT filename FROM schema_migrations;`)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan filename: %w", err)
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

func (r *Runner) appliedOrdered(ctx context.Context) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `SELECT filename, applied_at, checksum FROM schema_migrations ORDER BY applied_at DESC, id DESC;`)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Filename, &rec.AppliedAt, &rec.Checksum); err != nil {
			return nil, fmt.Errorf("scan migration record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *Runner) files() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir %s: %w", r.dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (r *Runner) parseFile(filename string) (upSQL, downSQL string, err error) {
	content, err := os.ReadFile(filepath.Join(r.dir, filename))
	if err != nil {
		return "", "", fmt.Errorf("read %s: %w", filename, err)
	}

	text := string(content)
	upIdx := strings.Index(text, upMarker)
	downIdx := strings.Index(text, downMarker)
	if upIdx < 0 || downIdx < 0 || downIdx < upIdx {
		return "", "", fmt.Errorf("%s: missing %q or %q section", filename, upMarker, downMarker)
	}

	upSQL = strings.TrimSpace(text[upIdx+len(upMarker) : downIdx])
	downSQL = strings.TrimSpace(text[downIdx+len(downMarker):])
	if upSQL == "" {
		return "", "", fmt.Errorf("%s: empty up section", filename)
	}
	return upSQL, downSQL, nil
}

func checksum(sql string) string {
	sum := sha256.Sum256([]byte(sql))
	return fmt.Sprintf("%x", sum)
}

// Pending returns the migration files not yet applied, in execution order.
func (r *Runner) Pending(ctx context.Context) ([]string, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	applied, err := r.appliedSet(ctx)
	if err != nil {
		return nil, err
	}
	files, err := r.files()
	if err != nil {
		return nil, err
	}

	var pending []string
	for _, f := range files {
		if !applied[f] {
			pending = append(pending, f)
		}
	}
	return pending, nil
}

// Up applies every pending migration inside its own transaction and
// returns the filenames that were applied.
func (r *Runner) Up(ctx context.Context) ([]string, error) {
	pending, err := r.Pending(ctx)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, f := range pending {
		upSQL, _, err := r.parseFile(f)
		if err != nil {
			return applied, err
		}

		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return applied, fmt.Errorf("begin transaction: %w", err)
		}
		if _, err := tx.Exec(ctx, upSQL); err != nil {
			_ = tx.Rollback(ctx)
			return applied, fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO schema_migrations (filename, checksum) VALUES ($1, $2)`,
			f, checksum(upSQL),
		); err != nil {
			_ = tx.Rollback(ctx)
			return applied, fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return applied, fmt.Errorf("commit %s: %w", f, err)
		}
		applied = append(applied, f)
	}
	return applied, nil
}

// Down rolls back the most recent migrations, newest first, and returns
// the filenames that were rolled back.
func (r *Runner) Down(ctx context.Context, steps int) ([]string, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	records, err := r.appliedOrdered(ctx)
	if err != nil {
		return nil, err
	}
	if steps > len(records) {
		steps = len(records)
	}

	var rolledBack []string
	for _, rec := range records[:steps] {
		_, downSQL, err := r.parseFile(rec.Filename)
		if err != nil {
			return rolledBack, err
		}

		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return rolledBack, fmt.Errorf("begin transaction: %w", err)
		}
		if downSQL != "" {
			if _, err := tx.Exec(ctx, downSQL); err != nil {
				_ = tx.Rollback(ctx)
				return rolledBack, fmt.Errorf("rollback %s: %w", rec.Filename, err)
			}
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM schema_migrations WHERE filename = $1`, rec.Filename,
		); err != nil {
			_ = tx.Rollback(ctx)
			return rolledBack, fmt.Errorf("unrecord %s: %w", rec.Filename, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return rolledBack, fmt.Errorf("commit rollback %s: %w", rec.Filename, err)
		}
		rolledBack = append(rolledBack, rec.Filename)
	}
	return rolledBack, nil
}

// Status reports applied records and pending filenames.
func (r *Runner) Status(ctx context.Context) (applied []Record, pending []string, err error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, nil, err
	}
	applied, err = r.appliedOrdered(ctx)
	if err != nil {
		return nil, nil, err
	}
	pending, err = r.Pending(ctx)
	if err != nil {
		return nil, nil, err
	}
	return applied, pending, nil
}
