// Package mssql is the SQL Server sink, using database/sql over the
// sqlserver driver.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"warnetl/internal/record"
	"warnetl/internal/sink"
)

func init() {
	sink.Register("mssql", New)
}

// Repo implements sink.Repository on SQL Server.
// MERGE is avoided on purpose; an existence-guarded INSERT under a
// transaction covers the single-writer-per-source pattern this pipeline has.
type Repo struct {
	db *sql.DB
}

func New(ctx context.Context, cfg sink.Config) (sink.Repository, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect mssql: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mssql: %w", err)
	}
	return &Repo{db: db}, nil
}

func (r *Repo) EnsureSchema(ctx context.Context) error {
	q := fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL %s",
		sink.TableName, createSQL(),
	)
	if _, err := r.db.ExecContext(ctx, q); err != nil {
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
	b.WriteString("CREATE TABLE ")
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
		return "DATE NULL"
	case record.KindInt:
		return "BIGINT NULL"
	}
	switch col {
	case "row_hash":
		return "NVARCHAR(64) NOT NULL PRIMARY KEY"
	case "source_id":
		return "NVARCHAR(32) NOT NULL"
	case "scraped_at":
		return "DATETIMEOFFSET NOT NULL"
	default:
		return "NVARCHAR(MAX) NULL"
	}
}

// insertSQL guards the insert on row_hash existence, the idempotence
// equivalent of OR IGNORE / ON CONFLICT on the other backends.
func insertSQL() string {
	cols := sink.Columns()
	ph := make([]string, len(cols))
	for i := range cols {
		ph[i] = fmt.Sprintf("@p%d", i+1)
	}
	return fmt.Sprintf(
		"IF NOT EXISTS (SELECT 1 FROM %s WHERE row_hash = @p1) INSERT INTO %s (%s) VALUES (%s)",
		sink.TableName, sink.TableName, strings.Join(cols, ", "), strings.Join(ph, ", "),
	)
}
