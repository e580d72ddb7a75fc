package politician

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/populist-vote/platform-sub000/internal/canonical/models"
	"github.com/populist-vote/platform-sub000/internal/canonical/store"
	"github.com/populist-vote/platform-sub000/internal/platform/postgres"
	"github.com/populist-vote/platform-sub000/pkg/domain"
	"github.com/populist-vote/platform-sub000/pkg/platform/normalize"
	"github.com/populist-vote/platform-sub000/pkg/platform/sentinel"
	txcontext "github.com/populist-vote/platform-sub000/pkg/platform/tx"
)

// PostgresStore persists politicians in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed politician store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectColumns = `id, slug, COALESCE(ref_key, ''), COALESCE(first_name, ''), COALESCE(middle_name, ''),
	COALESCE(last_name, ''), COALESCE(suffix, ''), COALESCE(preferred_name, ''), COALESCE(email, ''),
	COALESCE(phone, ''), COALESCE(home_state, ''), COALESCE(party, ''),
	residence_address_id, campaign_address_id, created_at, updated_at`

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) ([]models.Politician, error) {
	key := normalize.Email(email)
	if key == "" {
		return nil, nil
	}
	return s.list(ctx, "find politicians by email",
		`SELECT `+selectColumns+` FROM politician WHERE email_key = $1 ORDER BY created_at, id`, key)
}

func (s *PostgresStore) FindByPhone(ctx context.Context, phone string) ([]models.Politician, error) {
	key := normalize.Phone(phone)
	if key == "" {
		return nil, nil
	}
	return s.list(ctx, "find politicians by phone",
		`SELECT `+selectColumns+` FROM politician WHERE phone_key = $1 ORDER BY created_at, id`, key)
}

func (s *PostgresStore) FindBySlugPrefix(ctx context.Context, base string) ([]models.Politician, error) {
	base = normalize.Slug(base)
	if base == "" {
		return nil, nil
	}
	rows, err := s.list(ctx, "find politicians by slug prefix",
		`SELECT `+selectColumns+` FROM politician
		WHERE slug = $1 OR slug LIKE $2
		ORDER BY created_at, id`, base, escapeLike(base)+"-%")
	if err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, p := range rows {
		if normalize.IsNumberedVariant(p.Slug, base) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *PostgresStore) FindByRefKey(ctx context.Context, refKey string) (models.Politician, error) {
	if refKey == "" {
		return models.Politician{}, sentinel.ErrNotFound
	}
	return s.one(ctx, "find politician by ref_key",
		`SELECT `+selectColumns+` FROM politician WHERE ref_key = $1`, refKey)
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.PoliticianID) (models.Politician, error) {
	return s.one(ctx, "find politician by id",
		`SELECT `+selectColumns+` FROM politician WHERE id = $1`, uuid.UUID(id))
}

func (s *PostgresStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM politician WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check politician slug: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Insert(ctx context.Context, p models.Politician) (models.Politician, error) {
	if p.ID.IsNil() {
		p.ID = domain.NewPoliticianID()
	}
	query := `
		INSERT INTO politician (id, slug, ref_key, first_name, middle_name, last_name, suffix,
			preferred_name, email, email_key, phone, phone_key, home_state, party,
			residence_address_id, campaign_address_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + selectColumns
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query,
		uuid.UUID(p.ID),
		p.Slug,
		store.NullString(p.RefKey),
		store.NullString(p.FirstName),
		store.NullString(p.MiddleName),
		store.NullString(p.LastName),
		store.NullString(p.Suffix),
		store.NullString(p.PreferredName),
		store.NullString(p.Email),
		store.NullString(normalize.Email(p.Email)),
		store.NullString(p.Phone),
		store.NullString(normalize.Phone(p.Phone)),
		store.NullString(p.HomeState),
		store.NullString(p.Party),
		addressArg(p.ResidenceAddressID),
		addressArg(p.CampaignAddressID),
	)
	out, err := scanPolitician(row)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return models.Politician{}, fmt.Errorf("insert politician %s: %w", p.Slug, sentinel.ErrConflict)
		}
		return models.Politician{}, fmt.Errorf("insert politician %s: %w", p.Slug, err)
	}
	return out, nil
}

func (s *PostgresStore) UpdateFields(ctx context.Context, id domain.PoliticianID, in models.Politician) (models.Politician, error) {
	query := `
		UPDATE politician SET
			ref_key              = COALESCE(ref_key,
			                           (SELECT $2::text WHERE NOT EXISTS (SELECT 1 FROM politician WHERE ref_key = $2::text))),
			first_name           = COALESCE($3, first_name),
			middle_name          = COALESCE($4, middle_name),
			last_name            = COALESCE($5, last_name),
			suffix               = COALESCE($6, suffix),
			preferred_name       = COALESCE($7, preferred_name),
			email                = COALESCE($8, email),
			email_key            = COALESCE($9, email_key),
			phone                = COALESCE($10, phone),
			phone_key            = COALESCE($11, phone_key),
			home_state           = COALESCE($12, home_state),
			party                = COALESCE($13, party),
			residence_address_id = COALESCE($14, residence_address_id),
			campaign_address_id  = COALESCE($15, campaign_address_id),
			updated_at           = now()
		WHERE id = $1
		RETURNING ` + selectColumns
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query,
		uuid.UUID(id),
		store.NullString(in.RefKey),
		store.NullString(in.FirstName),
		store.NullString(in.MiddleName),
		store.NullString(in.LastName),
		store.NullString(in.Suffix),
		store.NullString(in.PreferredName),
		store.NullString(in.Email),
		store.NullString(normalize.Email(in.Email)),
		store.NullString(in.Phone),
		store.NullString(normalize.Phone(in.Phone)),
		store.NullString(in.HomeState),
		store.NullString(in.Party),
		addressArg(in.ResidenceAddressID),
		addressArg(in.CampaignAddressID),
	)
	out, err := scanPolitician(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Politician{}, sentinel.ErrNotFound
		}
		return models.Politician{}, fmt.Errorf("update politician %s: %w", id, err)
	}
	return out, nil
}

func (s *PostgresStore) one(ctx context.Context, op, query string, args ...any) (models.Politician, error) {
	p, err := scanPolitician(txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Politician{}, sentinel.ErrNotFound
		}
		return models.Politician{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (s *PostgresStore) list(ctx context.Context, op, query string, args ...any) ([]models.Politician, error) {
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.Politician
	for rows.Next() {
		p, err := scanPolitician(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPolitician(row scanner) (models.Politician, error) {
	var (
		p                   models.Politician
		id                  uuid.UUID
		residence, campaign *uuid.UUID
	)
	err := row.Scan(&id, &p.Slug, &p.RefKey, &p.FirstName, &p.MiddleName, &p.LastName, &p.Suffix,
		&p.PreferredName, &p.Email, &p.Phone, &p.HomeState, &p.Party, &residence, &campaign,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return models.Politician{}, err
	}
	p.ID = domain.PoliticianID(id)
	if residence != nil {
		a := domain.AddressID(*residence)
		p.ResidenceAddressID = &a
	}
	if campaign != nil {
		a := domain.AddressID(*campaign)
		p.CampaignAddressID = &a
	}
	return p, nil
}

func addressArg(id *domain.AddressID) any {
	if id == nil || id.IsNil() {
		return nil
	}
	return uuid.UUID(*id)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
