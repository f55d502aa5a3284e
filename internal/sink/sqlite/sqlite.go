// Package sqlite is the embedded database sink, using the pure-Go driver so
// local runs need no cgo toolchain.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"warnetl/internal/record"
	"warnetl/internal/sink"
)

func init() {
	sink.Register("sqlite", New)
}

// Repo implements sink.Repository on SQLite.
//
// Dates are stored as "2006-01-02" TEXT; SQLite has no date type and TEXT in
// ISO order compares correctly. Idempotence comes from the row_hash primary
// key plus INSERT OR IGNORE.
type Repo struct {
	db *sql.DB
}

func New(ctx context.Context, cfg sink.Config) (sink.Repository, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createSQL())
	if err != nil {
		return fmt.Errorf("create table %s: %w", sink.TableName, err)
	}
	return nil
}

func (r *Repo) Write(ctx context.Context, recs []*record.Normalized) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertSQL())
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	var written int64
	for _, rec := range recs {
		res, err := stmt.ExecContext(ctx, sink.Values(rec)...)
		if err != nil {
			return 0, fmt.Errorf("insert row: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		written += n
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return written, nil
}

func (r *Repo) Close() error { return r.db.Close() }

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
	switch col {
	case "row_hash":
		return "TEXT PRIMARY KEY"
	case "source_id", "scraped_at":
		return "TEXT NOT NULL"
	case string(record.FieldEmployeeCount):
		return "INTEGER"
	default:
		return "TEXT"
	}
}

func insertSQL() string {
	cols := sink.Columns()
	ph := strings.TrimRight(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf(
		"INSERT OR IGNORE INTO %s (%s) VALUES (%s)",
		sink.TableName, strings.Join(cols, ", "), ph,
	)
}
