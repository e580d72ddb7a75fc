package race

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/populist-vote/platform-sub000/internal/canonical/models"
	"github.com/populist-vote/platform-sub000/internal/canonical/store"
	"github.com/populist-vote/platform-sub000/pkg/domain"
	"github.com/populist-vote/platform-sub000/pkg/platform/sentinel"
	txcontext "github.com/populist-vote/platform-sub000/pkg/platform/tx"
)

// PostgresStore persists races in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed race store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const returnColumns = `id, slug, COALESCE(ref_key, ''), office_id, COALESCE(title, ''),
	COALESCE(race_type, ''), COALESCE(vote_type, ''), COALESCE(party, ''), COALESCE(state, ''),
	COALESCE(description, ''), election_date, is_special_election, COALESCE(num_elect, 0),
	created_at, updated_at`

func (s *PostgresStore) UpsertBySlug(ctx context.Context, r models.Race) (models.Race, bool, error) {
	if r.ID.IsNil() {
		r.ID = domain.NewRaceID()
	}
	query := `
		INSERT INTO race (id, slug, ref_key, office_id, title, race_type, vote_type, party, state,
			description, election_date, is_special_election, num_elect)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, COALESCE($12::boolean, false), $13)
		ON CONFLICT (slug) DO UPDATE SET
			ref_key             = COALESCE(race.ref_key, EXCLUDED.ref_key),
			office_id           = EXCLUDED.office_id,
			title               = COALESCE(EXCLUDED.title, race.title),
			race_type           = COALESCE(EXCLUDED.race_type, race.race_type),
			vote_type           = COALESCE(EXCLUDED.vote_type, race.vote_type),
			party               = COALESCE(EXCLUDED.party, race.party),
			state               = COALESCE(EXCLUDED.state, race.state),
			description         = COALESCE(EXCLUDED.description, race.description),
			election_date       = COALESCE(EXCLUDED.election_date, race.election_date),
			is_special_election = COALESCE($12::boolean, race.is_special_election),
			num_elect           = COALESCE(EXCLUDED.num_elect, race.num_elect),
			updated_at          = now()
		RETURNING ` + returnColumns + `, (xmax = 0)
	`
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query,
		uuid.UUID(r.ID),
		r.Slug,
		store.NullString(r.RefKey),
		uuid.UUID(r.OfficeID),
		store.NullString(r.Title),
		store.NullString(r.RaceType),
		store.NullString(r.VoteType),
		store.NullString(r.Party),
		store.NullString(r.State),
		store.NullString(r.Description),
		store.NullTime(r.ElectionDate),
		store.NullBool(r.IsSpecialElection),
		store.NullInt(r.NumElect),
	)
	var inserted bool
	out, err := scanRace(row, &inserted)
	if err != nil {
		return models.Race{}, false, fmt.Errorf("upsert race %s: %w", r.Slug, err)
	}
	return out, inserted, nil
}

func (s *PostgresStore) FindBySlug(ctx context.Context, slug string) (models.Race, error) {
	query := `SELECT ` + returnColumns + ` FROM race WHERE slug = $1`
	out, err := scanRace(txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Race{}, sentinel.ErrNotFound
		}
		return models.Race{}, fmt.Errorf("find race by slug: %w", err)
	}
	return out, nil
}

func scanRace(row *sql.Row, extra ...any) (models.Race, error) {
	var (
		r            models.Race
		id, officeID uuid.UUID
		electionDate sql.NullTime
		special      bool
	)
	dest := []any{&id, &r.Slug, &r.RefKey, &officeID, &r.Title, &r.RaceType, &r.VoteType, &r.Party,
		&r.State, &r.Description, &electionDate, &special, &r.NumElect, &r.CreatedAt, &r.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return models.Race{}, err
	}
	r.ID = domain.RaceID(id)
	r.OfficeID = domain.OfficeID(officeID)
	if electionDate.Valid {
		d := electionDate.Time
		r.ElectionDate = &d
	}
	r.IsSpecialElection = &special
	return r, nil
}
