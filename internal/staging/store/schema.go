package store

import (
	"context"
	"fmt"

	txcontext "github.com/populist-vote/platform-sub000/pkg/platform/tx"
)

// CreateTables creates the source's staging tables if they are missing.
// Extractors fill them; the merge engine only reads and truncates.
func (s *PostgresStore) CreateTables(ctx context.Context) error {
	statements := []string{
		`CREATE SCHEMA IF NOT EXISTS staging`,
		`CREATE TABLE IF NOT EXISTS ` + s.table("office") + ` (
			id              uuid PRIMARY KEY,
			slug            text,
			ref_key         text,
			title           text,
			name            text,
			subtitle        text,
			office_type     text,
			chamber         text,
			district_type   text,
			district        text,
			political_scope text,
			election_scope  text,
			state           text,
			county          text,
			municipality    text,
			seat            text,
			term_length     integer
		)`,
		`CREATE TABLE IF NOT EXISTS ` + s.table("address") + ` (
			id          uuid PRIMARY KEY,
			line_1      text,
			line_2      text,
			city        text,
			county      text,
			state       text,
			country     text,
			postal_code text
		)`,
		`CREATE TABLE IF NOT EXISTS ` + s.table("politician") + ` (
			id                       uuid PRIMARY KEY,
			slug                     text,
			ref_key                  text,
			first_name               text,
			middle_name              text,
			last_name                text,
			suffix                   text,
			preferred_name           text,
			email                    text,
			phone                    text,
			home_state               text,
			party                    text,
			residence_address_id     uuid,
			campaign_address_id      uuid,
			treat_exact_slug_as_same boolean NOT NULL DEFAULT false
		)`,
		`CREATE TABLE IF NOT EXISTS ` + s.table("race") + ` (
			id                  uuid PRIMARY KEY,
			slug                text,
			ref_key             text,
			office_id           uuid,
			title               text,
			race_type           text,
			vote_type           text,
			party               text,
			state               text,
			description         text,
			election_date       date,
			is_special_election boolean,
			num_elect           integer
		)`,
		`CREATE TABLE IF NOT EXISTS ` + s.table("race_candidates") + ` (
			race_id      uuid,
			candidate_id uuid,
			ref_key      text
		)`,
	}
	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		exec := txcontext.Exec(ctx, s.db)
		for _, stmt := range statements {
			if _, err := exec.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("create staging tables for %s: %w", s.namespace, err)
			}
		}
		return nil
	})
}
