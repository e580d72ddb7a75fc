package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/populist-vote/platform-sub000/internal/staging/models"
	"github.com/populist-vote/platform-sub000/pkg/domain"
	dErrors "github.com/populist-vote/platform-sub000/pkg/domain-errors"
	txcontext "github.com/populist-vote/platform-sub000/pkg/platform/tx"
)

const schema = "staging"

// PostgresStore reads staging.<namespace>_* tables.
type PostgresStore struct {
	db        *sql.DB
	namespace string
}

// NewPostgres creates a staging store for namespace. The namespace becomes
// part of table names, so it is validated here.
func NewPostgres(db *sql.DB, namespace string) (*PostgresStore, error) {
	if !validNamespace(namespace) {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid staging namespace %q", namespace)
	}
	return &PostgresStore{db: db, namespace: namespace}, nil
}

var namespacePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,47}$`)

func validNamespace(ns string) bool {
	return namespacePattern.MatchString(ns)
}

func (s *PostgresStore) table(entity string) string {
	return pq.QuoteIdentifier(schema) + "." + pq.QuoteIdentifier(s.namespace+"_"+entity)
}

// LoadBatch reads the whole staging content in dependency order.
func (s *PostgresStore) LoadBatch(ctx context.Context) (*models.Batch, error) {
	offices, err := s.Offices(ctx)
	if err != nil {
		return nil, err
	}
	politicians, err := s.Politicians(ctx)
	if err != nil {
		return nil, err
	}
	races, err := s.Races(ctx)
	if err != nil {
		return nil, err
	}
	links, err := s.RaceCandidates(ctx)
	if err != nil {
		return nil, err
	}
	return &models.Batch{
		Offices:        offices,
		Politicians:    politicians,
		Races:          races,
		RaceCandidates: links,
	}, nil
}

// Offices returns staged offices ordered by slug.
func (s *PostgresStore) Offices(ctx context.Context) ([]models.Office, error) {
	query := `
		SELECT id, COALESCE(slug, ''), COALESCE(ref_key, ''), COALESCE(title, ''), COALESCE(name, ''),
			COALESCE(subtitle, ''), COALESCE(office_type, ''), COALESCE(chamber, ''),
			COALESCE(district_type, ''), COALESCE(district, ''), COALESCE(political_scope, ''),
			COALESCE(election_scope, ''), COALESCE(state, ''), COALESCE(county, ''),
			COALESCE(municipality, ''), COALESCE(seat, ''), COALESCE(term_length, 0)
		FROM ` + s.table("office") + `
		ORDER BY slug, id
	`
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query staging offices: %w", err)
	}
	defer rows.Close()

	var out []models.Office
	for rows.Next() {
		var (
			o  models.Office
			id uuid.UUID
		)
		if err := rows.Scan(&id, &o.Slug, &o.RefKey, &o.Title, &o.Name, &o.Subtitle, &o.OfficeType,
			&o.Chamber, &o.DistrictType, &o.District, &o.PoliticalScope, &o.ElectionScope,
			&o.State, &o.County, &o.Municipality, &o.Seat, &o.TermLength); err != nil {
			return nil, fmt.Errorf("scan staging office: %w", err)
		}
		o.ID = domain.StagingID(id)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate staging offices: %w", err)
	}
	return out, nil
}

// addressColumns selects one joined address; present is false when the join missed.
func addressColumns(alias string) string {
	cols := []string{alias + ".id IS NOT NULL"}
	for _, c := range []string{"line_1", "line_2", "city", "county", "state", "country", "postal_code"} {
		cols = append(cols, "COALESCE("+alias+"."+c+", '')")
	}
	return strings.Join(cols, ", ")
}

type scannedAddress struct {
	present bool
	addr    models.Address
}

func (a *scannedAddress) dest() []any {
	return []any{&a.present, &a.addr.Line1, &a.addr.Line2, &a.addr.City, &a.addr.County,
		&a.addr.State, &a.addr.Country, &a.addr.PostalCode}
}

func (a *scannedAddress) value() *models.Address {
	if !a.present {
		return nil
	}
	addr := a.addr
	return &addr
}

// Politicians returns staged politicians with their addresses joined, ordered
// by slug so suffix assignment is deterministic.
func (s *PostgresStore) Politicians(ctx context.Context) ([]models.Politician, error) {
	query := `
		SELECT p.id, COALESCE(p.slug, ''), COALESCE(p.ref_key, ''), COALESCE(p.first_name, ''),
			COALESCE(p.middle_name, ''), COALESCE(p.last_name, ''), COALESCE(p.suffix, ''),
			COALESCE(p.preferred_name, ''), COALESCE(p.email, ''), COALESCE(p.phone, ''),
			COALESCE(p.home_state, ''), COALESCE(p.party, ''),
			COALESCE(p.treat_exact_slug_as_same, false),
			` + addressColumns("ra") + `,
			` + addressColumns("ca") + `
		FROM ` + s.table("politician") + ` p
		LEFT JOIN ` + s.table("address") + ` ra ON ra.id = p.residence_address_id
		LEFT JOIN ` + s.table("address") + ` ca ON ca.id = p.campaign_address_id
		ORDER BY p.slug, p.id
	`
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query staging politicians: %w", err)
	}
	defer rows.Close()

	var out []models.Politician
	for rows.Next() {
		var (
			p                   models.Politician
			id                  uuid.UUID
			residence, campaign scannedAddress
		)
		dest := []any{&id, &p.Slug, &p.RefKey, &p.FirstName, &p.MiddleName, &p.LastName, &p.Suffix,
			&p.PreferredName, &p.Email, &p.Phone, &p.HomeState, &p.Party, &p.TreatExactSlugAsSame}
		dest = append(dest, residence.dest()...)
		dest = append(dest, campaign.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan staging politician: %w", err)
		}
		p.ID = domain.StagingID(id)
		p.ResidenceAddress = residence.value()
		p.CampaignAddress = campaign.value()
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate staging politicians: %w", err)
	}
	return out, nil
}

// Races returns staged races ordered by slug.
func (s *PostgresStore) Races(ctx context.Context) ([]models.Race, error) {
	query := `
		SELECT id, COALESCE(slug, ''), COALESCE(ref_key, ''), office_id, COALESCE(title, ''),
			COALESCE(race_type, ''), COALESCE(vote_type, ''), COALESCE(party, ''),
			COALESCE(state, ''), COALESCE(description, ''), election_date,
			is_special_election, COALESCE(num_elect, 0)
		FROM ` + s.table("race") + `
		ORDER BY slug, id
	`
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query staging races: %w", err)
	}
	defer rows.Close()

	var out []models.Race
	for rows.Next() {
		var (
			r            models.Race
			id           uuid.UUID
			officeID     *uuid.UUID
			electionDate sql.NullTime
			special      sql.NullBool
		)
		if err := rows.Scan(&id, &r.Slug, &r.RefKey, &officeID, &r.Title, &r.RaceType, &r.VoteType,
			&r.Party, &r.State, &r.Description, &electionDate, &special, &r.NumElect); err != nil {
			return nil, fmt.Errorf("scan staging race: %w", err)
		}
		r.ID = domain.StagingID(id)
		if officeID != nil {
			r.OfficeID = domain.StagingID(*officeID)
		}
		if electionDate.Valid {
			d := electionDate.Time
			r.ElectionDate = &d
		}
		if special.Valid {
			r.IsSpecialElection = &special.Bool
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate staging races: %w", err)
	}
	return out, nil
}

// RaceCandidates returns staged links.
func (s *PostgresStore) RaceCandidates(ctx context.Context) ([]models.RaceCandidate, error) {
	query := `
		SELECT race_id, candidate_id, COALESCE(ref_key, '')
		FROM ` + s.table("race_candidates") + `
		ORDER BY race_id, candidate_id
	`
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query staging race candidates: %w", err)
	}
	defer rows.Close()

	var out []models.RaceCandidate
	for rows.Next() {
		var (
			l                   models.RaceCandidate
			raceID, candidateID *uuid.UUID
		)
		if err := rows.Scan(&raceID, &candidateID, &l.RefKey); err != nil {
			return nil, fmt.Errorf("scan staging race candidate: %w", err)
		}
		if raceID != nil {
			l.RaceID = domain.StagingID(*raceID)
		}
		if candidateID != nil {
			l.CandidateID = domain.StagingID(*candidateID)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate staging race candidates: %w", err)
	}
	return out, nil
}

// Truncate empties all five staging tables in one transaction.
func (s *PostgresStore) Truncate(ctx context.Context) error {
	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		query := "TRUNCATE TABLE " + strings.Join([]string{
			s.table("race_candidates"),
			s.table("race"),
			s.table("politician"),
			s.table("address"),
			s.table("office"),
		}, ", ")
		if _, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, query); err != nil {
			return fmt.Errorf("truncate staging %s: %w", s.namespace, err)
		}
		return nil
	})
}
