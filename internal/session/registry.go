// Package session keeps one query container per browser session and drops
// containers that have gone idle.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/Ayash-Bera/medquery/internal/container"
	"github.com/sirupsen/logrus"
)

// Factory builds the container for a new session.
type Factory func(sessionID string) *container.Container

type entry struct {
	container *container.Container
	lastSeen  time.Time
}

type Registry struct {
	factory Factory
	ttl     time.Duration
	logger  *logrus.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

func NewRegistry(factory Factory, ttl time.Duration, logger *logrus.Logger) *Registry {
	return &Registry{
		factory:  factory,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Get returns the container for sessionID, creating it on first use.
func (r *Registry) Get(sessionID string) *container.Container {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[sessionID]
	if !ok {
		e = &entry{container: r.factory(sessionID)}
		r.sessions[sessionID] = e
		r.logger.WithField("session_id", sessionID).Debug("Session created")
	}
	e.lastSeen = r.now()
	return e.container
}

// Lookup returns the container only if the session already exists.
func (r *Registry) Lookup(sessionID string) (*container.Container, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[sessionID]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.container, true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the TTL. Sessions with a
// submission still in flight are kept.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.sessions {
		if r.now().Sub(e.lastSeen) <= r.ttl {
			continue
		}
		if e.container.State().IsLoading {
			continue
		}
		delete(r.sessions, id)
		removed++
	}

	if removed > 0 {
		r.logger.WithFields(logrus.Fields{
			"removed":   removed,
			"remaining": len(r.sessions),
		}).Debug("Expired idle sessions")
	}
	return removed
}

// Run sweeps periodically until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
