package analytics

import (
	"slices"
	"sync"
	"time"
)

// Profile is the cached analytics state of one learner.
type Profile struct {
	UserID     string
	Difficulty int
	Sessions   int
	Metrics    Metrics
	UpdatedAt  time.Time
}

// ProfileCache keeps the latest profile per user. It is safe for concurrent use.
type ProfileCache struct {
	mu                sync.Mutex
	profiles          map[string]*Profile
	initialDifficulty int
	now               func() time.Time
}

// NewProfileCache creates a cache; unknown users start at initialDifficulty.
func NewProfileCache(initialDifficulty int) *ProfileCache {
	return &ProfileCache{
		profiles:          make(map[string]*Profile),
		initialDifficulty: clampLevel(initialDifficulty),
		now:               time.Now,
	}
}

// Get returns a copy of the user's profile, or a fresh one if none is cached.
func (c *ProfileCache) Get(userID string) Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.profiles[userID]; ok {
		return clone(*p)
	}
	return Profile{UserID: userID, Difficulty: c.initialDifficulty}
}

// Seed stores a known difficulty for a user without counting a session.
func (c *ProfileCache) Seed(userID string, difficulty int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.lookup(userID)
	p.Difficulty = clampLevel(difficulty)
}

// Restore replaces the cached profile with a stored one, typically the
// latest snapshot on startup.
func (c *ProfileCache) Restore(p Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p.Difficulty = clampLevel(p.Difficulty)
	cp := clone(p)
	c.profiles[p.UserID] = &cp
}

// Update folds a finished session's metrics into the profile and adapts
// the difficulty one step. Returns the updated profile.
func (c *ProfileCache) Update(userID string, m Metrics) Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.lookup(userID)
	p.Difficulty = AdaptDifficulty(p.Difficulty, m)
	p.Sessions++
	p.Metrics = m
	p.UpdatedAt = c.now()
	return clone(*p)
}

func (c *ProfileCache) lookup(userID string) *Profile {
	p, ok := c.profiles[userID]
	if !ok {
		p = &Profile{UserID: userID, Difficulty: c.initialDifficulty}
		c.profiles[userID] = p
	}
	return p
}

func clone(p Profile) Profile {
	p.Metrics.StrugglingConcepts = slices.Clone(p.Metrics.StrugglingConcepts)
	p.Metrics.MasteredConcepts = slices.Clone(p.Metrics.MasteredConcepts)
	return p
}
