// Package session keeps one progress tracker per signed-in identity for
// the lifetime of the server.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/doodeurim/internal/db"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/docstore"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/identity"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/progress"
)

var ErrClosed = errors.New("session hub is closed")

type entry struct {
	tracker  *progress.Tracker
	lastUsed time.Time
	leases   int
}

func (e *entry) touch(now time.Time, lease bool) {
	e.lastUsed = now
	if lease {
		e.leases++
	}
}

// Hub owns the live trackers. Trackers subscribe with the hub's context,
// not a request's, so their snapshot subscriptions outlive the request
// that created them.
type Hub struct {
	cfg    progress.Config
	issuer *identity.Issuer
	users  db.Store
	docs   docstore.Store
	ctx    context.Context
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
	closed   bool
}

func NewHub(ctx context.Context, cfg progress.Config, issuer *identity.Issuer, users db.Store, docs docstore.Store) *Hub {
	return &Hub{
		cfg:      cfg,
		issuer:   issuer,
		users:    users,
		docs:     docs,
		ctx:      ctx,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Start signs a new session in and returns its tracker and bearer token.
// A non-empty token is used for sign-in in place of the configured host
// token; with neither, sign-in is anonymous.
func (h *Hub) Start(token string) (*progress.Tracker, string, error) {
	cfg := h.cfg
	if token != "" {
		cfg.InitialAuthToken = token
	}

	sess := identity.NewSession(h.issuer, h.users)
	tr := progress.New(cfg, sess, h.docs)
	if err := tr.Start(h.ctx); err != nil {
		tr.Close()
		return nil, "", err
	}
	bearer, err := sess.Token()
	if err != nil {
		tr.Close()
		return nil, "", err
	}

	if err := h.put(tr.UserID(), tr); err != nil {
		return nil, "", err
	}
	return tr, bearer, nil
}

// Get returns the tracker for uid, restoring one if the user is known but
// has no live session (after a restart or a sweep).
func (h *Hub) Get(ctx context.Context, uid string) (*progress.Tracker, error) {
	e, err := h.lookup(ctx, uid, false)
	if err != nil {
		return nil, err
	}
	return e.tracker, nil
}

// Acquire is Get for long-lived readers. Sweep skips the session until
// release is called; End and Close still close it.
func (h *Hub) Acquire(ctx context.Context, uid string) (*progress.Tracker, func(), error) {
	e, err := h.lookup(ctx, uid, true)
	if err != nil {
		return nil, nil, err
	}
	var once sync.Once
	release := func() {
		once.Do(func() {
			h.mu.Lock()
			e.leases--
			e.lastUsed = h.now()
			h.mu.Unlock()
		})
	}
	return e.tracker, release, nil
}

func (h *Hub) lookup(ctx context.Context, uid string, lease bool) (*entry, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrClosed
	}
	if e, ok := h.sessions[uid]; ok {
		e.touch(h.now(), lease)
		h.mu.Unlock()
		return e, nil
	}
	h.mu.Unlock()

	if err := h.users.TouchUser(ctx, uid); err != nil {
		return nil, fmt.Errorf("%w: %v", identity.ErrAuthentication, err)
	}

	sess := identity.NewSession(h.issuer, h.users)
	sess.Restore(uid)
	tr := progress.New(h.cfg, sess, h.docs)
	if err := tr.Start(h.ctx); err != nil {
		tr.Close()
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		tr.Close()
		return nil, ErrClosed
	}
	// another request may have restored the same user meanwhile
	if e, ok := h.sessions[uid]; ok {
		tr.Close()
		e.touch(h.now(), lease)
		return e, nil
	}
	e := &entry{tracker: tr}
	e.touch(h.now(), lease)
	h.sessions[uid] = e
	log.Info().Str("user", uid).Msg("session restored")
	return e, nil
}

func (h *Hub) put(uid string, tr *progress.Tracker) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		tr.Close()
		return ErrClosed
	}
	previous := h.sessions[uid]
	h.sessions[uid] = &entry{tracker: tr, lastUsed: h.now()}
	h.mu.Unlock()

	if previous != nil {
		previous.tracker.Close()
	}
	log.Info().Str("user", uid).Msg("session started")
	return nil
}

// End closes uid's tracker, if any.
func (h *Hub) End(uid string) {
	h.mu.Lock()
	e, ok := h.sessions[uid]
	delete(h.sessions, uid)
	h.mu.Unlock()

	if ok {
		e.tracker.Close()
		log.Info().Str("user", uid).Msg("session ended")
	}
}

// Sweep closes sessions unused for longer than idle and returns how many.
// Sessions held through Acquire are kept.
func (h *Hub) Sweep(idle time.Duration) int {
	cutoff := h.now().Add(-idle)

	h.mu.Lock()
	var stale []*entry
	for uid, e := range h.sessions {
		if e.leases == 0 && e.lastUsed.Before(cutoff) {
			stale = append(stale, e)
			delete(h.sessions, uid)
		}
	}
	h.mu.Unlock()

	for _, e := range stale {
		e.tracker.Close()
	}
	if len(stale) > 0 {
		log.Debug().Int("count", len(stale)).Msg("swept idle sessions")
	}
	return len(stale)
}

// Len is the number of live sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close ends every session. Later calls to Start and Get fail.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	sessions := h.sessions
	h.sessions = make(map[string]*entry)
	h.mu.Unlock()

	for _, e := range sessions {
		e.tracker.Close()
	}
}
