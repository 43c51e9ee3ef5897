// internal/audit/postgres.go
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PostgresJournal persists journal entries in Postgres. The table is an
// append-only log; entries are never updated or deleted.
type PostgresJournal struct {
	db     *sql.DB
	tracer trace.Tracer
}

// NewPostgresJournal creates a Postgres-backed journal.
func NewPostgresJournal(db *sql.DB) *PostgresJournal {
	return &PostgresJournal{
		db:     db,
		tracer: otel.Tracer("libris/audit"),
	}
}

// EnsureSchema creates the journal table if it does not exist.
func (j *PostgresJournal) EnsureSchema(ctx context.Context) error {
	_, err := j.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_entries (
			id UUID PRIMARY KEY,
			kind TEXT NOT NULL,
			book_id INT NOT NULL,
			loan_id INT,
			detail JSONB,
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS audit_entries_book_idx ON audit_entries (book_id, recorded_at);
	`)
	if err != nil {
		return fmt.Errorf("create audit schema: %w", err)
	}
	return nil
}

func (j *PostgresJournal) Append(ctx context.Context, e Entry) error {
	stamp(&e)

	ctx, span := j.tracer.Start(ctx, "audit.append",
		trace.WithAttributes(
			attribute.String("entry.kind", e.Kind),
			attribute.Int("entry.book_id", e.BookID),
		),
	)
	defer span.End()

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO audit_entries (id, kind, book_id, loan_id, detail, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ID, e.Kind, e.BookID, e.LoanID, []byte(e.Detail), e.RecordedAt)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	span.SetAttributes(attribute.Bool("append.success", true))
	return nil
}

func (j *PostgresJournal) ByBook(ctx context.Context, bookID int) ([]Entry, error) {
	ctx, span := j.tracer.Start(ctx, "audit.by_book",
		trace.WithAttributes(attribute.Int("entry.book_id", bookID)),
	)
	defer span.End()

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, kind, book_id, loan_id, detail, recorded_at
		FROM audit_entries
		WHERE book_id = $1
		ORDER BY recorded_at ASC
	`, bookID)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e      Entry
			loanID sql.NullInt64
			detail []byte
			at     time.Time
		)
		if err := rows.Scan(&e.ID, &e.Kind, &e.BookID, &loanID, &detail, &at); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.LoanID = int(loanID.Int64)
		e.Detail = detail
		e.RecordedAt = at
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}

	return entries, nil
}
