// Package postgres is the shared-database sink, for runs that feed a central
// archive multiple scrapers write into.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"warnetl/internal/record"
	"warnetl/internal/sink"
)

func init() {
	sink.Register("postgres", New)
}

// Repo implements sink.Repository on Postgres via a pgx pool.
// Idempotence comes from the row_hash unique constraint plus
// ON CONFLICT DO NOTHING; date text binds into DATE columns server-side.
type Repo struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg sink.Config) (sink.Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createSQL()); err != nil {
		return fmt.Errorf("create table %s: %w", sink.TableName, err)
	}
	return nil
}

func (r *Repo) Write(ctx context.Context, recs []*record.Normalized) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	q := insertSQL()
	for _, rec := range recs {
		batch.Queue(q, sink.Values(rec)...)
	}

	res := r.pool.SendBatch(ctx, batch)
	defer res.Close()

	var written int64
	for range recs {
		tag, err := res.Exec()
		if err != nil {
			return written, fmt.Errorf("insert row: %w", err)
		}
		written += tag.RowsAffected()
	}
	return written, nil
}

func (r *Repo) Close() error {
	r.pool.Close()
	return nil
}

func createSQL() string {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(sink.TableName)
	b.WriteString(" (\n")
	for i, col := range sink.Columns() {
		if i > 0 {
			b.WriteString(",\n")
		}
		b.WriteString("  ")
		b.WriteString(col)
		b.WriteString(" ")
		b.WriteString(columnType(col))
	}
	b.WriteString("\n)")
	return b.String()
}

func columnType(col string) string {
	switch record.Field(col).Kind() {
	case record.KindDate:
		return "DATE"
	case record.KindInt:
		return "BIGINT"
	}
	switch col {
	case "row_hash":
		return "TEXT PRIMARY KEY"
	case "source_id":
		return "TEXT NOT NULL"
	case "scraped_at":
		return "TIMESTAMPTZ NOT NULL"
	default:
		return "TEXT"
	}
}

func insertSQL() string {
	cols := sink.Columns()
	ph := make([]string, len(cols))
	for i := range cols {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (row_hash) DO NOTHING",
		sink.TableName, strings.Join(cols, ", "), strings.Join(ph, ", "),
	)
}
