package racecandidate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/populist-vote/platform-sub000/internal/canonical/models"
	"github.com/populist-vote/platform-sub000/internal/canonical/store"
	"github.com/populist-vote/platform-sub000/pkg/domain"
	txcontext "github.com/populist-vote/platform-sub000/pkg/platform/tx"
)

// PostgresStore persists links in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed link store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Insert ignores conflicts on the primary key and on ref_key alike.
func (s *PostgresStore) Insert(ctx context.Context, link models.RaceCandidate) (bool, error) {
	query := `
		INSERT INTO race_candidates (race_id, candidate_id, ref_key)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`
	res, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(link.RaceID),
		uuid.UUID(link.CandidateID),
		store.NullString(link.RefKey),
	)
	if err != nil {
		return false, fmt.Errorf("insert race candidate: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert race candidate: %w", err)
	}
	return n == 1, nil
}

func (s *PostgresStore) ListByRace(ctx context.Context, raceID domain.RaceID) ([]models.RaceCandidate, error) {
	query := `
		SELECT race_id, candidate_id, COALESCE(ref_key, ''), created_at
		FROM race_candidates
		WHERE race_id = $1
		ORDER BY created_at, candidate_id
	`
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query, uuid.UUID(raceID))
	if err != nil {
		return nil, fmt.Errorf("list race candidates: %w", err)
	}
	defer rows.Close()

	var out []models.RaceCandidate
	for rows.Next() {
		var (
			l                models.RaceCandidate
			rid, candidateID uuid.UUID
		)
		if err := rows.Scan(&rid, &candidateID, &l.RefKey, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan race candidate: %w", err)
		}
		l.RaceID = domain.RaceID(rid)
		l.CandidateID = domain.PoliticianID(candidateID)
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate race candidates: %w", err)
	}
	return out, nil
}
