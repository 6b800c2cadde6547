package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/balkashynov/timesheet/internal/apperr"
	"github.com/balkashynov/timesheet/internal/models"
)

// State is the controller's position in the tracking lifecycle
type State int

const (
	Idle State = iota
	Tracking
)

func (s State) String() string {
	if s == Tracking {
		return "tracking"
	}
	return "idle"
}

// Controller owns the current session, the in-memory history and the
// transition of a finished session into the session store.
type Controller struct {
	mu sync.Mutex

	store  SessionStore
	local  ActiveStore
	clock  Clock
	logger *slog.Logger

	selected string
	active   *models.ActiveSession
	history  []models.Session

	// single-flight guards for store calls
	clockingOut bool
	deleting    map[int64]bool
}

// Option configures a Controller
type Option func(*Controller)

// WithClock replaces the system clock
func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithLogger sets the logger used for data-integrity warnings
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// New creates a controller and recovers an unfinished session from local.
// A missing or unreadable local session leaves the controller Idle.
func New(ctx context.Context, store SessionStore, local ActiveStore, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		local:    local,
		clock:    SystemClock{},
		logger:   slog.Default(),
		deleting: make(map[int64]bool),
	}
	for _, opt := range opts {
		opt(c)
	}

	active, err := local.LoadActive(ctx)
	switch {
	case err == nil:
		c.active = &active
		c.logger.Info("recovered active session", "id", active.ID, "label", active.Label)
	case !errors.Is(err, apperr.ErrNoActiveSession):
		c.logger.Warn("could not load active session", "error", err)
	}

	if sel, ok := local.(SelectionStore); ok {
		label, err := sel.LoadSelected(ctx)
		if err != nil {
			c.logger.Warn("could not load selected label", "error", err)
		}
		c.selected = label
	}

	return c
}

// Refresh replaces the in-memory history with the store's list
func (c *Controller) Refresh(ctx context.Context) error {
	sessions, err := c.store.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	c.mu.Lock()
	c.history = sessions
	c.mu.Unlock()
	return nil
}

// State returns Tracking while an active session is held
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	if c.active != nil {
		return Tracking
	}
	return Idle
}

// Select sets the label the next ClockIn will use. It does not affect a
// session that is already running.
func (c *Controller) Select(ctx context.Context, label string) error {
	c.mu.Lock()
	c.selected = label
	c.mu.Unlock()

	if sel, ok := c.local.(SelectionStore); ok {
		if err := sel.SaveSelected(ctx, label); err != nil {
			return fmt.Errorf("save selected label: %w", err)
		}
	}
	return nil
}

// Selected returns the currently selected label
func (c *Controller) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Active returns a copy of the running session
func (c *Controller) Active() (models.ActiveSession, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return models.ActiveSession{}, false
	}
	return *c.active, true
}

// ClockIn starts a session for the selected label. It is a no-op returning
// false when a session is already running or no label is selected.
func (c *Controller) ClockIn(ctx context.Context) (models.ActiveSession, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil || c.selected == "" {
		return models.ActiveSession{}, false, nil
	}

	now := c.now()
	active := models.ActiveSession{
		ID:        now.UnixMilli(),
		Label:     c.selected,
		StartTime: now,
	}
	if err := c.local.SaveActive(ctx, active); err != nil {
		return models.ActiveSession{}, false, fmt.Errorf("save active session: %w", err)
	}

	c.active = &active
	return active, true, nil
}

// Tick returns the elapsed time of the running session for display
func (c *Controller) Tick() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return 0, false
	}
	elapsed := c.clock.Now().Sub(c.active.StartTime)
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed, true
}

// Run calls fn with the elapsed time every interval while tracking.
// It returns when ctx is done or the controller goes Idle.
func (c *Controller) Run(ctx context.Context, interval time.Duration, fn func(time.Duration)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			elapsed, ok := c.Tick()
			if !ok {
				return
			}
			fn(elapsed)
		}
	}
}

// ClockOut completes the running session and submits it to the store.
// On failure the session stays active so the call can be retried.
// It returns false without error when nothing is running.
func (c *Controller) ClockOut(ctx context.Context) (models.Session, bool, error) {
	c.mu.Lock()
	if c.active == nil {
		c.mu.Unlock()
		return models.Session{}, false, nil
	}
	if c.clockingOut {
		c.mu.Unlock()
		return models.Session{}, false, apperr.ErrBusy
	}
	c.clockingOut = true
	active := *c.active
	end := c.now()
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.clockingOut = false
		c.mu.Unlock()
	}()

	if active.Label == "" || active.StartTime.IsZero() {
		return models.Session{}, false, fmt.Errorf("label and startTime are required: %w", apperr.ErrValidation)
	}

	session, clamped := active.Complete(end)
	if clamped {
		c.logger.Warn("negative session duration clamped to zero",
			"id", active.ID, "start", active.StartTime, "end", end)
	}

	objectID, err := c.store.CreateSession(ctx, &session)
	if err != nil {
		return models.Session{}, false, fmt.Errorf("create session: %w", err)
	}
	if session.ObjectID == "" {
		session.ObjectID = objectID
	}

	if err := c.local.ClearActive(ctx); err != nil {
		c.logger.Warn("could not clear active session", "id", active.ID, "error", err)
	}

	c.mu.Lock()
	c.history = append([]models.Session{session}, c.history...)
	c.active = nil
	c.mu.Unlock()

	return session, true, nil
}

// DeleteSession removes a completed session by client id after confirm
// approves it. confirm may be nil to skip confirmation. It returns false
// without error when the user declines.
func (c *Controller) DeleteSession(ctx context.Context, clientID int64, confirm func(models.Session) bool) (bool, error) {
	c.mu.Lock()
	target, ok := c.findLocked(clientID)
	if !ok {
		c.mu.Unlock()
		return false, fmt.Errorf("session %d: %w", clientID, apperr.ErrNotFound)
	}
	if c.deleting[clientID] {
		c.mu.Unlock()
		return false, apperr.ErrBusy
	}
	c.deleting[clientID] = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.deleting, clientID)
		c.mu.Unlock()
	}()

	if confirm != nil && !confirm(target) {
		return false, nil
	}

	err := c.store.DeleteSession(ctx, clientID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return false, fmt.Errorf("delete session %d: %w", clientID, err)
	}

	c.mu.Lock()
	c.removeLocked(clientID)
	c.mu.Unlock()

	if err != nil {
		// already gone from the store; the local copy was stale
		return true, fmt.Errorf("delete session %d: %w", clientID, err)
	}
	return true, nil
}

// History returns a copy of the known completed sessions, newest first
func (c *Controller) History() []models.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Session, len(c.history))
	copy(out, c.history)
	return out
}

// Groups derives the per-label view from the current history
func (c *Controller) Groups() []LabelGroup {
	return GroupByLabel(c.History())
}

// Snapshot is a consistent read of everything a view renders
type Snapshot struct {
	State       State
	Selected    string
	Active      *models.ActiveSession
	Elapsed     time.Duration
	History     []models.Session
	Groups      []LabelGroup
	ClockingOut bool
}

// Snapshot captures the controller state in one lock
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	history := make([]models.Session, len(c.history))
	copy(history, c.history)

	snap := Snapshot{
		State:       c.stateLocked(),
		Selected:    c.selected,
		History:     history,
		Groups:      GroupByLabel(history),
		ClockingOut: c.clockingOut,
	}
	if c.active != nil {
		active := *c.active
		snap.Active = &active
		snap.Elapsed = max(c.clock.Now().Sub(active.StartTime), 0)
	}
	return snap
}

func (c *Controller) findLocked(clientID int64) (models.Session, bool) {
	for _, s := range c.history {
		if s.ClientID == clientID {
			return s, true
		}
	}
	return models.Session{}, false
}

func (c *Controller) removeLocked(clientID int64) {
	kept := make([]models.Session, 0, len(c.history))
	for _, s := range c.history {
		if s.ClientID != clientID {
			kept = append(kept, s)
		}
	}
	c.history = kept
}

// now is truncated to milliseconds so stored timestamps and durations agree
func (c *Controller) now() time.Time {
	return c.clock.Now().Truncate(time.Millisecond)
}
