package address

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/populist-vote/platform-sub000/internal/canonical/models"
	"github.com/populist-vote/platform-sub000/internal/canonical/store"
	"github.com/populist-vote/platform-sub000/pkg/domain"
	"github.com/populist-vote/platform-sub000/pkg/platform/normalize"
	"github.com/populist-vote/platform-sub000/pkg/platform/sentinel"
	txcontext "github.com/populist-vote/platform-sub000/pkg/platform/tx"
)

// PostgresStore persists addresses in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed address store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectColumns = `id, line_1, COALESCE(line_2, ''), city, COALESCE(county, ''), state, country,
	COALESCE(postal_code, ''), created_at`

func (s *PostgresStore) FindByNaturalKey(ctx context.Context, key normalize.AddressKey) (*models.Address, error) {
	query := `SELECT ` + selectColumns + ` FROM address
		WHERE key_line_1 = $1 AND key_city = $2 AND key_state = $3 AND key_country = $4`
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query, key.Line1, key.City, key.State, key.Country)
	addr, err := scanAddress(row)
	if err != nil {
		return nil, fmt.Errorf("find address by natural key: %w", err)
	}
	return addr, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.AddressID) (*models.Address, error) {
	query := `SELECT ` + selectColumns + ` FROM address WHERE id = $1`
	row := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(id))
	addr, err := scanAddress(row)
	if err != nil {
		return nil, fmt.Errorf("find address by id: %w", err)
	}
	return addr, nil
}

// InsertIfAbsent relies on the unique natural-key index so concurrent
// inserts of the same address converge on one row.
func (s *PostgresStore) InsertIfAbsent(ctx context.Context, addr models.Address) (*models.Address, bool, error) {
	if addr.ID.IsNil() {
		addr.ID = domain.NewAddressID()
	}
	key := addr.Key()
	query := `
		INSERT INTO address (id, line_1, line_2, city, county, state, country, postal_code,
			key_line_1, key_city, key_state, key_country)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (key_line_1, key_city, key_state, key_country) DO NOTHING
	`
	res, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(addr.ID),
		addr.Line1,
		store.NullString(addr.Line2),
		addr.City,
		store.NullString(addr.County),
		addr.State,
		addr.Country,
		store.NullString(addr.PostalCode),
		key.Line1,
		key.City,
		key.State,
		key.Country,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert address: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("insert address: %w", err)
	}

	existing, err := s.FindByNaturalKey(ctx, key)
	if err != nil {
		return nil, false, err
	}
	return existing, n == 1, nil
}

func scanAddress(row *sql.Row) (*models.Address, error) {
	var (
		a  models.Address
		id uuid.UUID
	)
	err := row.Scan(&id, &a.Line1, &a.Line2, &a.City, &a.County, &a.State, &a.Country, &a.PostalCode, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	a.ID = domain.AddressID(id)
	return &a, nil
}
