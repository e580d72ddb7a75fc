// Package address resolves staged inline addresses to canonical address rows.
package address

import (
	"context"
	"errors"
	"log/slog"

	"github.com/populist-vote/platform-sub000/internal/canonical/models"
	stagingmodels "github.com/populist-vote/platform-sub000/internal/staging/models"
	"github.com/populist-vote/platform-sub000/pkg/domain"
	dErrors "github.com/populist-vote/platform-sub000/pkg/domain-errors"
	"github.com/populist-vote/platform-sub000/pkg/platform/normalize"
	"github.com/populist-vote/platform-sub000/pkg/platform/sentinel"
)

type Store interface {
	FindByNaturalKey(ctx context.Context, key normalize.AddressKey) (*models.Address, error)
	InsertIfAbsent(ctx context.Context, addr models.Address) (*models.Address, bool, error)
}

// Service merges addresses by natural key so that two politicians living at
// the same address reference one row.
type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("address store is required")
	}
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// MergeOrInsert returns the canonical id for staged, inserting a row when no
// address with the same natural key exists. An empty address (no street line)
// is not merged and yields a nil id.
func (s *Service) MergeOrInsert(ctx context.Context, staged *stagingmodels.Address) (domain.AddressID, bool, error) {
	if staged.IsEmpty() {
		return domain.AddressID{}, false, nil
	}
	addr := canonicalAddress(staged)

	existing, err := s.store.FindByNaturalKey(ctx, addr.Key())
	switch {
	case err == nil:
		return existing.ID, false, nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return domain.AddressID{}, false, dErrors.Wrap(err, dErrors.CodeDatabase, "failed to look up address")
	}

	row, inserted, err := s.store.InsertIfAbsent(ctx, addr)
	if err != nil {
		return domain.AddressID{}, false, dErrors.Wrap(err, dErrors.CodeDatabase, "failed to insert address")
	}
	if inserted {
		s.logger.DebugContext(ctx, "address inserted",
			"address_id", row.ID,
			"city", row.City,
			"state", row.State,
		)
	}
	return row.ID, inserted, nil
}

func canonicalAddress(a *stagingmodels.Address) models.Address {
	country := a.Country
	if country == "" {
		country = normalize.DefaultCountry
	}
	return models.Address{
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		County:     a.County,
		State:      normalize.State(a.State),
		Country:    country,
		PostalCode: normalize.PostalCode(a.PostalCode),
	}
}
