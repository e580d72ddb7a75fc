package models

import (
	"sync"
	"time"

	"github.com/populist-vote/platform-sub000/internal/source"
	"github.com/populist-vote/platform-sub000/pkg/domain"
)

// IDMap maps staging ids of one run to the canonical ids they resolved to.
// It is safe for concurrent use.
type IDMap[V any] struct {
	mu sync.RWMutex
	m  map[domain.StagingID]V
}

// NewIDMap returns an empty map.
func NewIDMap[V any]() *IDMap[V] {
	return &IDMap[V]{m: make(map[domain.StagingID]V)}
}

func (m *IDMap[V]) Set(staging domain.StagingID, canonical V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.m[staging] = canonical
}

func (m *IDMap[V]) Get(staging domain.StagingID) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.m[staging]
	return v, ok
}

func (m *IDMap[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.m)
}

// OfficeIDMap maps staging office ids to canonical office ids.
type OfficeIDMap = IDMap[domain.OfficeID]

// PoliticianIDMap maps staging politician ids to canonical politician ids.
type PoliticianIDMap = IDMap[domain.PoliticianID]

// RaceIDMap maps staging race ids to canonical race ids.
type RaceIDMap = IDMap[domain.RaceID]

// RefKeyClaims remembers which staged politician of a run first used each
// ref_key. Two staged records that share a synthesized key are still two
// records; only the first may be recognized through it.
type RefKeyClaims struct {
	mu sync.Mutex
	m  map[string]domain.StagingID
}

func NewRefKeyClaims() *RefKeyClaims {
	return &RefKeyClaims{m: make(map[string]domain.StagingID)}
}

// Claim reports whether staging holds key, taking it when it is free.
func (c *RefKeyClaims) Claim(key string, staging domain.StagingID) bool {
	if key == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	holder, ok := c.m[key]
	if !ok {
		c.m[key] = staging
		return true
	}
	return holder == staging
}

// RunContext is the arena of one orchestrator invocation. Nothing in it
// outlives the run.
type RunContext struct {
	RunID       domain.RunID
	Source      source.Source
	StartedAt   time.Time
	Offices     *OfficeIDMap
	Politicians *PoliticianIDMap
	Races       *RaceIDMap
	RefKeys     *RefKeyClaims
}

// NewRunContext starts a run for src with a fresh run id and empty maps.
func NewRunContext(src source.Source) *RunContext {
	return &RunContext{
		RunID:       domain.NewRunID(),
		Source:      src,
		StartedAt:   time.Now(),
		Offices:     NewIDMap[domain.OfficeID](),
		Politicians: NewIDMap[domain.PoliticianID](),
		Races:       NewIDMap[domain.RaceID](),
		RefKeys:     NewRefKeyClaims(),
	}
}
