package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/populist-vote/platform-sub000/pkg/domain"
	audit "github.com/populist-vote/platform-sub000/pkg/platform/audit"
	txcontext "github.com/populist-vote/platform-sub000/pkg/platform/tx"
)

// Store implements audit.Store and audit.Reader over one table per kind.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

var tables = map[audit.Kind]string{
	audit.KindExactMatch:        "audit_exact_match",
	audit.KindQuestionableSlug:  "audit_questionable_slug",
	audit.KindQuestionablePhone: "audit_questionable_phone",
	audit.KindSlugCollision:     "audit_slug_collision",
}

const commonColumns = `id, run_id, source_id, tier, matched_fields, staging_id,
			canonical_id, was_merged, note, staging_snapshot, canonical_snapshot, recorded_at`

// Append inserts the record into its kind's table.
func (s *Store) Append(ctx context.Context, rec audit.Record) error {
	table, ok := tables[rec.Kind]
	if !ok {
		return fmt.Errorf("unknown audit kind %q", rec.Kind)
	}

	args := []any{
		rec.ID,
		uuid.UUID(rec.RunID),
		rec.SourceID,
		rec.Tier,
		pq.Array(nonNil(rec.MatchedFields)),
		uuid.UUID(rec.StagingID),
		canonicalArg(rec.CanonicalID),
		rec.WasMerged,
		nullString(rec.Note),
		string(rec.StagingSnapshot),
		jsonArg(rec.CanonicalSnapshot),
		rec.RecordedAt,
	}
	columns := commonColumns
	switch rec.Kind {
	case audit.KindQuestionableSlug:
		columns += ", candidate_slug, reason"
		args = append(args, rec.CandidateSlug, rec.Reason)
	case audit.KindQuestionablePhone:
		columns += ", candidate_slug, phone, reason"
		args = append(args, rec.CandidateSlug, rec.Phone, rec.Reason)
	case audit.KindSlugCollision:
		columns += ", inserted_slug, candidate_count"
		args = append(args, rec.InsertedSlug, rec.CandidateCount)
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, table, columns, placeholders(len(args)))
	if _, err := s.execer(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s audit record: %w", rec.Kind, err)
	}
	return nil
}

// ListByRun returns every record of a run, oldest first.
func (s *Store) ListByRun(ctx context.Context, runID domain.RunID) ([]audit.Record, error) {
	return s.list(ctx, runID, audit.Kinds...)
}

// ListQuestionable returns the records of a run that need human review.
func (s *Store) ListQuestionable(ctx context.Context, runID domain.RunID) ([]audit.Record, error) {
	return s.list(ctx, runID, audit.KindQuestionableSlug, audit.KindQuestionablePhone)
}

func (s *Store) list(ctx context.Context, runID domain.RunID, kinds ...audit.Kind) ([]audit.Record, error) {
	selects := make([]string, 0, len(kinds))
	for _, k := range kinds {
		selects = append(selects, selectFor(k))
	}
	query := strings.Join(selects, "\nUNION ALL\n") + "\nORDER BY recorded_at, id"

	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(runID))
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func selectFor(k audit.Kind) string {
	extra := "NULL::text, NULL::text, NULL::text, NULL::text, NULL::integer"
	switch k {
	case audit.KindQuestionableSlug:
		extra = "candidate_slug, reason, NULL::text, NULL::text, NULL::integer"
	case audit.KindQuestionablePhone:
		extra = "candidate_slug, reason, phone, NULL::text, NULL::integer"
	case audit.KindSlugCollision:
		extra = "NULL::text, NULL::text, NULL::text, inserted_slug, candidate_count"
	}
	return fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE run_id = $1`,
		pq.QuoteLiteral(string(k)), commonColumns, extra, tables[k])
}

func scanRecords(rows *sql.Rows) ([]audit.Record, error) {
	var records []audit.Record
	for rows.Next() {
		var (
			rec            audit.Record
			kind           string
			runID          uuid.UUID
			stagingID      uuid.UUID
			canonicalID    *uuid.UUID
			note           sql.NullString
			canonicalSnap  []byte
			candidateSlug  sql.NullString
			reason         sql.NullString
			phone          sql.NullString
			insertedSlug   sql.NullString
			candidateCount sql.NullInt64
		)
		err := rows.Scan(
			&kind,
			&rec.ID,
			&runID,
			&rec.SourceID,
			&rec.Tier,
			pq.Array(&rec.MatchedFields),
			&stagingID,
			&canonicalID,
			&rec.WasMerged,
			&note,
			&rec.StagingSnapshot,
			&canonicalSnap,
			&rec.RecordedAt,
			&candidateSlug,
			&reason,
			&phone,
			&insertedSlug,
			&candidateCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}

		rec.Kind = audit.Kind(kind)
		rec.RunID = domain.RunID(runID)
		rec.StagingID = domain.StagingID(stagingID)
		if canonicalID != nil {
			id := domain.PoliticianID(*canonicalID)
			rec.CanonicalID = &id
		}
		rec.Note = note.String
		if len(canonicalSnap) > 0 {
			rec.CanonicalSnapshot = canonicalSnap
		}
		rec.CandidateSlug = candidateSlug.String
		rec.Reason = reason.String
		rec.Phone = phone.String
		rec.InsertedSlug = insertedSlug.String
		rec.CandidateCount = int(candidateCount.Int64)

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return records, nil
}

func placeholders(n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(ph, ", ")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func canonicalArg(id *domain.PoliticianID) any {
	if id == nil {
		return nil
	}
	return uuid.UUID(*id)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// jsonArg passes snapshots as text; lib/pq would encode []byte as bytea.
func jsonArg(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
