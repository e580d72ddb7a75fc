package office

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

// PostgresStore persists offices in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed office store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const returnColumns = `id, slug, COALESCE(ref_key, ''), COALESCE(title, ''), COALESCE(name, ''),
	COALESCE(subtitle, ''), COALESCE(office_type, ''), COALESCE(chamber, ''),
	COALESCE(district_type, ''), COALESCE(district, ''), COALESCE(political_scope, ''),
	COALESCE(election_scope, ''), COALESCE(state, ''), COALESCE(county, ''),
	COALESCE(municipality, ''), COALESCE(seat, ''), COALESCE(term_length, 0),
	created_at, updated_at`

// UpsertBySlug uses xmax = 0 to tell a fresh insert from a conflict update.
func (s *PostgresStore) UpsertBySlug(ctx context.Context, o models.Office) (models.Office, bool, error) {
	if o.ID.IsNil() {
		o.ID = domain.NewOfficeID()
	}
	query := `
		INSERT INTO office (id, slug, ref_key, title, name, subtitle, office_type, chamber,
			district_type, district, political_scope, election_scope, state, county,
			municipality, seat, term_length)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (slug) DO UPDATE SET
			ref_key         = COALESCE(office.ref_key, EXCLUDED.ref_key),
			title           = COALESCE(EXCLUDED.title, office.title),
			name            = COALESCE(EXCLUDED.name, office.name),
			subtitle        = COALESCE(EXCLUDED.subtitle, office.subtitle),
			office_type     = COALESCE(EXCLUDED.office_type, office.office_type),
			chamber         = COALESCE(EXCLUDED.chamber, office.chamber),
			district_type   = COALESCE(EXCLUDED.district_type, office.district_type),
			district        = COALESCE(EXCLUDED.district, office.district),
			political_scope = COALESCE(EXCLUDED.political_scope, office.political_scope),
			election_scope  = COALESCE(EXCLUDED.election_scope, office.election_scope),
			state           = COALESCE(EXCLUDED.state, office.state),
			county          = COALESCE(EXCLUDED.county, office.county),
			municipality    = COALESCE(EXCLUDED.municipality, office.municipality),
			seat            = COALESCE(EXCLUDED.seat, office.seat),
			term_length     = COALESCE(EXCLUDED.term_length, office.term_length),
			updated_at      = now()
		RETURNING ` + returnColumns + `, (xmax = 0)
	`
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query,
		uuid.UUID(o.ID),
		o.Slug,
		store.NullString(o.RefKey),
		store.NullString(o.Title),
		store.NullString(o.Name),
		store.NullString(o.Subtitle),
		store.NullString(o.OfficeType),
		store.NullString(o.Chamber),
		store.NullString(o.DistrictType),
		store.NullString(o.District),
		store.NullString(o.PoliticalScope),
		store.NullString(o.ElectionScope),
		store.NullString(o.State),
		store.NullString(o.County),
		store.NullString(o.Municipality),
		store.NullString(o.Seat),
		store.NullInt(o.TermLength),
	)
	var inserted bool
	out, err := scanOffice(row, &inserted)
	if err != nil {
		return models.Office{}, false, fmt.Errorf("upsert office %s: %w", o.Slug, err)
	}
	return out, inserted, nil
}

func (s *PostgresStore) FindBySlug(ctx context.Context, slug string) (models.Office, error) {
	query := `SELECT ` + returnColumns + ` FROM office WHERE slug = $1`
	out, err := scanOffice(txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Office{}, sentinel.ErrNotFound
		}
		return models.Office{}, fmt.Errorf("find office by slug: %w", err)
	}
	return out, nil
}

func scanOffice(row *sql.Row, extra ...any) (models.Office, error) {
	var (
		o  models.Office
		id uuid.UUID
	)
	dest := []any{&id, &o.Slug, &o.RefKey, &o.Title, &o.Name, &o.Subtitle, &o.OfficeType, &o.Chamber,
		&o.DistrictType, &o.District, &o.PoliticalScope, &o.ElectionScope, &o.State, &o.County,
		&o.Municipality, &o.Seat, &o.TermLength, &o.CreatedAt, &o.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return models.Office{}, err
	}
	o.ID = domain.OfficeID(id)
	return o, nil
}
