package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/populist-vote/platform-sub000/pkg/domain"
)

// Kind classifies a match audit record. Each kind is stored in its own
// append-only table so reviewers can query one class of decision at a time.
type Kind string

const (
	// KindExactMatch records a staging politician merged into an existing row.
	KindExactMatch Kind = "exact_match"

	// KindQuestionableSlug records a slug candidate that could not be
	// corroborated and was left alone.
	KindQuestionableSlug Kind = "questionable_slug_match"

	// KindQuestionablePhone records a phone hit rejected because the slugs
	// are incompatible.
	KindQuestionablePhone Kind = "questionable_phone_match"

	// KindSlugCollision records an insert made while same-slug candidates
	// already existed.
	KindSlugCollision Kind = "inserted_with_slug_collision"
)

// Kinds lists every kind in a stable order.
var Kinds = []Kind{KindExactMatch, KindQuestionableSlug, KindQuestionablePhone, KindSlugCollision}

// IsQuestionable reports whether records of this kind need human review.
func (k Kind) IsQuestionable() bool {
	return k == KindQuestionableSlug || k == KindQuestionablePhone
}

// Record is the stored shape shared by every kind. Kind-specific fields are
// empty for kinds that do not carry them.
type Record struct {
	ID                uuid.UUID
	RunID             domain.RunID
	SourceID          string
	Kind              Kind
	Tier              string
	MatchedFields     []string
	StagingID         domain.StagingID
	CanonicalID       *domain.PoliticianID
	WasMerged         bool
	Note              string
	StagingSnapshot   json.RawMessage
	CanonicalSnapshot json.RawMessage
	RecordedAt        time.Time

	// questionable kinds
	CandidateSlug string
	Reason        string
	// questionable phone
	Phone string
	// slug collision
	InsertedSlug   string
	CandidateCount int
}

// Event is emitted by the resolver for one decision.
type Event interface {
	Kind() Kind
	// ToRecord converts the event into its stored shape. Run, source, id and
	// timestamp are filled in by the Recorder.
	ToRecord() (Record, error)
}

// ExactMatchEvent captures a merge into an existing canonical politician.
type ExactMatchEvent struct {
	Tier          string
	MatchedFields []string
	StagingID     domain.StagingID
	CanonicalID   domain.PoliticianID
	Staging       any
	Canonical     any
	Note          string
}

func (e ExactMatchEvent) Kind() Kind { return KindExactMatch }

func (e ExactMatchEvent) ToRecord() (Record, error) {
	rec := Record{
		Kind:          KindExactMatch,
		Tier:          e.Tier,
		MatchedFields: e.MatchedFields,
		StagingID:     e.StagingID,
		CanonicalID:   canonicalRef(e.CanonicalID),
		WasMerged:     true,
		Note:          e.Note,
	}
	return rec, rec.snapshot(e.Staging, e.Canonical)
}

// QuestionableSlugEvent captures a slug candidate that was not merged.
type QuestionableSlugEvent struct {
	StagingID     domain.StagingID
	CanonicalID   domain.PoliticianID
	CandidateSlug string
	Reason        string
	Staging       any
	Canonical     any
}

func (e QuestionableSlugEvent) Kind() Kind { return KindQuestionableSlug }

func (e QuestionableSlugEvent) ToRecord() (Record, error) {
	rec := Record{
		Kind:          KindQuestionableSlug,
		Tier:          "slug",
		MatchedFields: []string{"slug"},
		StagingID:     e.StagingID,
		CanonicalID:   canonicalRef(e.CanonicalID),
		CandidateSlug: e.CandidateSlug,
		Reason:        e.Reason,
		Note:          e.Reason,
	}
	return rec, rec.snapshot(e.Staging, e.Canonical)
}

// QuestionablePhoneEvent captures a phone hit vetoed by slug incompatibility.
type QuestionablePhoneEvent struct {
	StagingID     domain.StagingID
	CanonicalID   domain.PoliticianID
	CandidateSlug string
	Phone         string
	Reason        string
	Staging       any
	Canonical     any
}

func (e QuestionablePhoneEvent) Kind() Kind { return KindQuestionablePhone }

func (e QuestionablePhoneEvent) ToRecord() (Record, error) {
	rec := Record{
		Kind:          KindQuestionablePhone,
		Tier:          "phone",
		MatchedFields: []string{"phone"},
		StagingID:     e.StagingID,
		CanonicalID:   canonicalRef(e.CanonicalID),
		CandidateSlug: e.CandidateSlug,
		Phone:         e.Phone,
		Reason:        e.Reason,
		Note:          e.Reason,
	}
	return rec, rec.snapshot(e.Staging, e.Canonical)
}

// SlugCollisionEvent captures an insert made next to existing same-slug rows.
// CanonicalID is the newly inserted politician.
type SlugCollisionEvent struct {
	StagingID      domain.StagingID
	CanonicalID    domain.PoliticianID
	InsertedSlug   string
	CandidateCount int
	Staging        any
	Note           string
}

func (e SlugCollisionEvent) Kind() Kind { return KindSlugCollision }

func (e SlugCollisionEvent) ToRecord() (Record, error) {
	rec := Record{
		Kind:           KindSlugCollision,
		Tier:           "insert",
		MatchedFields:  []string{"slug"},
		StagingID:      e.StagingID,
		CanonicalID:    canonicalRef(e.CanonicalID),
		InsertedSlug:   e.InsertedSlug,
		CandidateCount: e.CandidateCount,
		Note:           e.Note,
	}
	return rec, rec.snapshot(e.Staging, nil)
}

func (r *Record) snapshot(staging, canonical any) error {
	if staging == nil {
		return fmt.Errorf("%s audit event requires a staging snapshot", r.Kind)
	}
	raw, err := json.Marshal(staging)
	if err != nil {
		return fmt.Errorf("marshal staging snapshot: %w", err)
	}
	r.StagingSnapshot = raw
	if canonical != nil {
		raw, err := json.Marshal(canonical)
		if err != nil {
			return fmt.Errorf("marshal canonical snapshot: %w", err)
		}
		r.CanonicalSnapshot = raw
	}
	return nil
}

func canonicalRef(id domain.PoliticianID) *domain.PoliticianID {
	if id.IsNil() {
		return nil
	}
	return &id
}
