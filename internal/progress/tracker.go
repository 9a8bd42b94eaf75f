// Package progress tracks one user's way through the challenge calendar:
// which days are open, how far each day's declaration and prayer have
// gone, and whether the whole challenge is finished.
package progress

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/doodeurim/internal/docstore"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/identity"
	"github.com/Nixie-Tech-LLC/doodeurim/internal/model"
)

var (
	ErrLoading            = errors.New("data is still loading, try again shortly")
	ErrPreviousIncomplete = errors.New("complete the previous day's prayer and declaration first")
	ErrNotYetOpen         = errors.New("this day is not open yet")
	ErrDayOutOfRange      = errors.New("day is outside the challenge")
	ErrPrayerNotTracked   = errors.New("this challenge does not track prayers")
)

// Config fixes the rules of one challenge instance.
type Config struct {
	AppID       string
	InstanceKey string

	Days                int
	MaxDeclarationCount int
	RequirePrayer       bool

	// DateGated keeps days closed until their calendar date in
	// Year/Month has arrived in Location.
	DateGated bool
	Year      int
	Month     time.Month
	Location  *time.Location

	// InitialAuthToken, when set, is used instead of anonymous sign-in.
	InitialAuthToken string

	Now func() time.Time
}

// Tracker owns the session's ChallengeState. The store is a mirror: every
// local change is written through, and snapshots from the store are merged
// in without ever moving progress backwards.
type Tracker struct {
	cfg   Config
	auth  identity.Provider
	store docstore.Store

	// writeMu orders writes to the store: it is held from a day's change
	// through its upsert, so the stored record never falls behind.
	writeMu sync.Mutex

	mu          sync.Mutex
	ctx         context.Context
	uid         string
	state       model.ChallengeState
	loading     bool
	loaded      bool
	authErr     error
	selectedDay int
	complete    bool
	closed      bool
	done        chan struct{}
	unsubAuth   func()
	cancelSnap  func()

	nextWatch int
	watchers  map[int]func()
}

func New(cfg Config, auth identity.Provider, store docstore.Store) *Tracker {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Tracker{
		cfg:      cfg,
		auth:     auth,
		store:    store,
		state:    NewState(cfg.Days),
		loading:  true,
		watchers: make(map[int]func()),
		done:     make(chan struct{}),
	}
}

// Start subscribes to identity changes and signs in when nobody is signed
// in yet. It returns the sign-in error, if the provider reported one
// before Start returned.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	t.ctx = ctx
	t.mu.Unlock()

	unsubscribe := t.auth.OnUserChanged(t.onUserChanged)

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		unsubscribe()
		return nil
	}
	t.unsubAuth = unsubscribe
	err := t.authErr
	t.mu.Unlock()
	return err
}

func (t *Tracker) onUserChanged(uid string) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	ctx := t.ctx
	t.mu.Unlock()

	if uid == "" {
		t.signIn(ctx)
		return
	}
	t.attach(ctx, uid)
}

// signIn only reports failure; success arrives as a user change.
func (t *Tracker) signIn(ctx context.Context) {
	var err error
	if t.cfg.InitialAuthToken != "" {
		_, err = t.auth.SignInWithToken(ctx, t.cfg.InitialAuthToken)
	} else {
		_, err = t.auth.SignInAnonymously(ctx)
	}
	if err == nil {
		return
	}

	log.Error().Err(err).Msg("authentication failed")
	t.mu.Lock()
	t.authErr = err
	t.loading = false
	t.mu.Unlock()
}

func (t *Tracker) attach(ctx context.Context, uid string) {
	t.mu.Lock()
	if t.uid == uid {
		t.mu.Unlock()
		return
	}
	previous := t.cancelSnap
	t.cancelSnap = nil
	t.uid = uid
	t.state = NewState(t.cfg.Days)
	t.loading = false
	t.loaded = false
	t.authErr = nil
	t.selectedDay = 0
	t.complete = false
	path := t.pathLocked()
	t.mu.Unlock()

	if previous != nil {
		previous()
	}

	cancel, err := t.store.Subscribe(ctx, path,
		func(snap docstore.Snapshot) { t.applySnapshot(uid, snap) },
		func(err error) { t.snapshotFailed(uid, err) },
	)
	if err != nil {
		t.snapshotFailed(uid, err)
		return
	}

	t.mu.Lock()
	stale := t.closed || t.uid != uid
	if !stale {
		t.cancelSnap = cancel
	}
	t.mu.Unlock()
	if stale {
		cancel()
	}
}

func (t *Tracker) applySnapshot(uid string, snap docstore.Snapshot) {
	merged := Merge(t.cfg.Days, snap)

	t.mu.Lock()
	if t.closed || t.uid != uid {
		t.mu.Unlock()
		return
	}
	for key, incoming := range merged {
		t.state[key] = advance(t.state[key], incoming)
	}
	t.loaded = true
	t.mu.Unlock()
	t.changed()
}

// snapshotFailed leaves the session usable: before the first snapshot the
// state falls back to all-zero, afterwards the last known state is kept.
func (t *Tracker) snapshotFailed(uid string, err error) {
	log.Error().Err(err).Str("user", uid).Msg("error fetching challenge status")

	t.mu.Lock()
	if t.closed || t.uid != uid {
		t.mu.Unlock()
		return
	}
	if !t.loaded {
		t.state = NewState(t.cfg.Days)
	}
	t.loaded = true
	t.mu.Unlock()
	t.changed()
}

// Close releases the identity and snapshot subscriptions. Callbacks that
// arrive afterwards are ignored.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	close(t.done)
	unsubAuth, cancelSnap := t.unsubAuth, t.cancelSnap
	t.unsubAuth, t.cancelSnap = nil, nil
	t.watchers = make(map[int]func())
	t.mu.Unlock()

	if unsubAuth != nil {
		unsubAuth()
	}
	if cancelSnap != nil {
		cancelSnap()
	}
}

// Done is closed once the tracker is closed.
func (t *Tracker) Done() <-chan struct{} {
	return t.done
}

// Watch registers fn to run after the day statuses change, whether from a
// local action or from the store. fn runs on the goroutine that made the
// change and must neither block nor declare or pray.
func (t *Tracker) Watch(fn func()) (cancel func()) {
	t.mu.Lock()
	id := t.nextWatch
	t.nextWatch++
	t.watchers[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.watchers, id)
		t.mu.Unlock()
	}
}

func (t *Tracker) changed() {
	t.mu.Lock()
	fns := make([]func(), 0, len(t.watchers))
	for _, fn := range t.watchers {
		fns = append(fns, fn)
	}
	t.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// UserID returns the signed-in identity, or "" while loading.
func (t *Tracker) UserID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.uid
}

// AuthError returns the last sign-in failure, if any.
func (t *Tracker) AuthError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.authErr
}

// IsUnlocked reports whether day may be opened.
func (t *Tracker) IsUnlocked(day int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lockReasonLocked(day) == nil
}

// lockReasonLocked returns nil when day is open, otherwise why it is not.
func (t *Tracker) lockReasonLocked(day int) error {
	if t.uid == "" {
		return ErrLoading
	}
	if day < 1 || day > t.cfg.Days {
		return ErrDayOutOfRange
	}
	if t.cfg.DateGated && t.isFutureLocked(day) {
		return ErrNotYetOpen
	}
	if day == 1 {
		return nil
	}
	prev := t.state[model.DayKey(day-1)]
	if !prev.Completed || (t.cfg.RequirePrayer && !prev.PrayerCompleted) {
		return ErrPreviousIncomplete
	}
	return nil
}

func (t *Tracker) isFutureLocked(day int) bool {
	now := t.cfg.Now().In(t.cfg.Location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, t.cfg.Location)
	date := time.Date(t.cfg.Year, t.cfg.Month, day, 0, 0, 0, 0, t.cfg.Location)
	return date.After(today)
}

// SelectDay opens day for interaction, or says why it cannot be opened.
func (t *Tracker) SelectDay(day int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.lockReasonLocked(day); err != nil {
		return err
	}
	t.selectedDay = day
	return nil
}

// CloseDay clears the selection.
func (t *Tracker) CloseDay() {
	t.mu.Lock()
	t.selectedDay = 0
	t.mu.Unlock()
}

// Declare records one repetition of day's declaration. Once the day is
// completed further calls change nothing.
func (t *Tracker) Declare(ctx context.Context, day int) (model.DayStatus, error) {
	return t.mutate(ctx, day, func(s *model.DayStatus) bool {
		if s.Completed {
			return false
		}
		s.Count++
		s.Completed = s.Count >= t.cfg.MaxDeclarationCount
		// finishing the last missing part of the open day closes it
		if t.fullyCompleted(*s) && t.selectedDay == day {
			t.selectedDay = 0
		}
		return true
	})
}

// Pray marks day's prayer as done.
func (t *Tracker) Pray(ctx context.Context, day int) (model.DayStatus, error) {
	if !t.cfg.RequirePrayer {
		return model.DayStatus{}, ErrPrayerNotTracked
	}
	return t.mutate(ctx, day, func(s *model.DayStatus) bool {
		if s.PrayerCompleted {
			return false
		}
		s.PrayerCompleted = true
		return true
	})
}

// mutate applies change to day's status locally, then writes that day's
// record through to the store. A failed write is logged and the local
// change stands.
func (t *Tracker) mutate(ctx context.Context, day int, change func(*model.DayStatus) bool) (model.DayStatus, error) {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	t.mu.Lock()
	if err := t.lockReasonLocked(day); err != nil {
		t.mu.Unlock()
		return model.DayStatus{}, err
	}
	key := model.DayKey(day)
	status := t.state[key]
	if !change(&status) {
		t.mu.Unlock()
		return status, nil
	}
	t.state[key] = status
	t.settleLocked(day)
	path := t.pathLocked()
	t.mu.Unlock()
	t.changed()

	if err := t.store.Upsert(ctx, path, map[string]any{key: status}); err != nil {
		log.Error().Err(err).Str("path", path.String()).Int("day", day).Msg("error saving date status")
	}
	return status, nil
}

// settleLocked runs after every mutation and flags the challenge complete
// once the final day has everything it needs, whichever action came last.
func (t *Tracker) settleLocked(day int) {
	if day != t.cfg.Days {
		return
	}
	final := t.state[model.DayKey(day)]
	if t.fullyCompleted(final) {
		t.complete = true
	}
}

// DismissCompletion hides the completion flag until it is earned again.
func (t *Tracker) DismissCompletion() {
	t.mu.Lock()
	t.complete = false
	t.mu.Unlock()
}

func (t *Tracker) fullyCompleted(s model.DayStatus) bool {
	return s.Completed && (!t.cfg.RequirePrayer || s.PrayerCompleted)
}

func (t *Tracker) pathLocked() docstore.Path {
	return docstore.ChallengePath(t.cfg.AppID, t.uid, t.cfg.InstanceKey)
}

// DayView is one calendar cell.
type DayView struct {
	Day            int             `json:"day"`
	Status         model.DayStatus `json:"status"`
	Unlocked       bool            `json:"unlocked"`
	FullyCompleted bool            `json:"fully_completed"`
}

// Progress is a consistent copy of the tracker's state.
type Progress struct {
	UserID            string    `json:"user_id"`
	Loading           bool      `json:"loading"`
	Loaded            bool      `json:"loaded"`
	SelectedDay       int       `json:"selected_day,omitempty"`
	ChallengeComplete bool      `json:"challenge_complete"`
	Days              []DayView `json:"days"`
}

// Progress returns the current state.
func (t *Tracker) Progress() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := Progress{
		UserID:            t.uid,
		Loading:           t.loading,
		Loaded:            t.loaded,
		SelectedDay:       t.selectedDay,
		ChallengeComplete: t.complete,
		Days:              make([]DayView, 0, t.cfg.Days),
	}
	for day := 1; day <= t.cfg.Days; day++ {
		status := t.state[model.DayKey(day)]
		p.Days = append(p.Days, DayView{
			Day:            day,
			Status:         status,
			Unlocked:       t.lockReasonLocked(day) == nil,
			FullyCompleted: t.fullyCompleted(status),
		})
	}
	return p
}

// State returns a copy of the per-day statuses.
func (t *Tracker) State() model.ChallengeState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Clone()
}
