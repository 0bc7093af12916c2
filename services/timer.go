package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/questlog/questlog/core"
)

// TimerConfig holds the scheduler intervals.
type TimerConfig struct {
	TickInterval     time.Duration
	AutosaveInterval time.Duration
}

// Timer is the single source of truth for the live session, the timer
// phase, and the elapsed time. All mutation goes through Start, Pause,
// Resume, Stop, and Recover.
//
// Elapsed time is wall-clock derived: accumulated holds the total of all
// finished running segments, and segmentStart marks the current one. The
// tick loop only publishes observer events, so a missed tick never skews
// the elapsed time.
type Timer struct {
	config  TimerConfig
	api     core.SessionAPI
	history core.HistoryStore // optional, can be nil
	clock   core.Clock
	log     *zap.Logger

	mu           sync.Mutex
	phase        core.TimerPhase
	live         *core.Session
	accumulated  time.Duration
	segmentStart time.Time
	finished     []*core.Session
	events       []chan core.Event
	closed       bool
	cancelRun    context.CancelFunc
	runDone      chan struct{}
}

func NewTimer(config TimerConfig, api core.SessionAPI, history core.HistoryStore, clock core.Clock, log *zap.Logger) *Timer {
	if config.TickInterval <= 0 {
		config.TickInterval = core.DefaultTickInterval
	}
	if config.AutosaveInterval <= 0 {
		config.AutosaveInterval = core.DefaultAutosaveInterval
	}
	if clock == nil {
		clock = SystemClock()
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Timer{
		config:  config,
		api:     api,
		history: history,
		clock:   clock,
		log:     log,
		phase:   core.PhaseIdle,
	}
}

// Start creates a new session remotely and begins tracking it. Requires
// the idle phase. Local state is mutated only after the remote call
// succeeds, so a remote failure leaves the timer untouched.
func (t *Timer) Start(ctx context.Context, input core.StartSessionInput) (*core.Session, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, core.ErrTimerClosed
	}
	if t.phase != core.PhaseIdle {
		t.mu.Unlock()
		return nil, core.ErrTimerAlreadyRunning
	}
	t.mu.Unlock()

	session, err := t.api.StartSession(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, core.ErrTimerClosed
	}
	// A concurrent Start or Recover may have won while the request was in
	// flight; the committed state keeps ownership.
	if t.phase != core.PhaseIdle {
		t.mu.Unlock()
		return nil, core.ErrTimerAlreadyRunning
	}
	now := t.clock.Now()
	session.Status = core.StatusRunning
	t.live = session
	t.phase = core.PhaseRunning
	t.accumulated = 0
	t.segmentStart = now
	t.startRunLoopLocked()
	t.mu.Unlock()

	t.emit(core.Event{Type: core.EventPhaseChange, Phase: core.PhaseRunning, SessionID: session.ID, At: now})
	t.log.Info("session started", zap.String("session", session.ID))
	return session, nil
}

// Pause freezes the elapsed time. Requires the running phase.
func (t *Timer) Pause(ctx context.Context) error {
	t.mu.Lock()
	if t.live == nil {
		t.mu.Unlock()
		return core.ErrNoActiveTimer
	}
	if t.phase != core.PhaseRunning {
		t.mu.Unlock()
		return core.ErrTimerNotRunning
	}
	id := t.live.ID
	t.mu.Unlock()

	if err := t.api.PauseSession(ctx, id); err != nil {
		return fmt.Errorf("pause session: %w", err)
	}

	t.mu.Lock()
	if t.live == nil || t.live.ID != id || t.phase != core.PhaseRunning {
		t.mu.Unlock()
		return core.ErrTimerNotRunning
	}
	now := t.clock.Now()
	t.accumulated += now.Sub(t.segmentStart)
	t.phase = core.PhasePaused
	t.live.Status = core.StatusPaused
	elapsed := int64(t.accumulated / time.Second)
	t.mu.Unlock()

	t.emit(core.Event{Type: core.EventPhaseChange, Phase: core.PhasePaused, SessionID: id, ElapsedSeconds: elapsed, At: now})
	return nil
}

// Resume continues a paused session. Requires the paused phase.
func (t *Timer) Resume(ctx context.Context) error {
	t.mu.Lock()
	if t.live == nil {
		t.mu.Unlock()
		return core.ErrNoActiveTimer
	}
	if t.phase != core.PhasePaused {
		t.mu.Unlock()
		return core.ErrTimerNotPaused
	}
	id := t.live.ID
	t.mu.Unlock()

	if err := t.api.ResumeSession(ctx, id); err != nil {
		return fmt.Errorf("resume session: %w", err)
	}

	t.mu.Lock()
	if t.live == nil || t.live.ID != id || t.phase != core.PhasePaused {
		t.mu.Unlock()
		return core.ErrTimerNotPaused
	}
	now := t.clock.Now()
	t.segmentStart = now
	t.phase = core.PhaseRunning
	t.live.Status = core.StatusRunning
	elapsed := int64(t.accumulated / time.Second)
	t.mu.Unlock()

	t.emit(core.Event{Type: core.EventPhaseChange, Phase: core.PhaseRunning, SessionID: id, ElapsedSeconds: elapsed, At: now})
	return nil
}

// Stop finalizes the live session. Requires a running or paused phase.
// On success the finalized record is appended to the session history
// exactly once, the live reference is cleared, and the schedulers are
// cancelled, aborting any autosave still in flight.
func (t *Timer) Stop(ctx context.Context) (*core.Session, error) {
	t.mu.Lock()
	if t.live == nil {
		t.mu.Unlock()
		return nil, core.ErrNoActiveTimer
	}
	id := t.live.ID
	elapsed := int64(t.elapsedLocked() / time.Second)
	t.mu.Unlock()

	final, err := t.api.StopSession(ctx, id, elapsed)
	if err != nil {
		return nil, fmt.Errorf("stop session: %w", err)
	}

	t.mu.Lock()
	if t.live == nil || t.live.ID != id {
		t.mu.Unlock()
		return nil, core.ErrNoActiveTimer
	}
	now := t.clock.Now()
	if final == nil {
		final = t.live
	}
	final.Status = core.StatusStopped
	if final.ElapsedSeconds == 0 {
		final.ElapsedSeconds = elapsed
	}
	if final.EndedAt.IsZero() {
		final.EndedAt = now
	}
	t.finished = append(t.finished, final)
	t.live = nil
	t.phase = core.PhaseIdle
	t.accumulated = 0
	t.stopRunLoopLocked()
	t.mu.Unlock()

	if t.history != nil {
		// Best-effort, same policy as autosave: the remote record is
		// already final, so a local archive failure is only logged.
		if err := t.history.AppendSession(final); err != nil {
			t.log.Warn("history archive failed", zap.String("session", final.ID), zap.Error(err))
		}
	}

	t.emit(core.Event{Type: core.EventPhaseChange, Phase: core.PhaseIdle, SessionID: id, ElapsedSeconds: final.ElapsedSeconds, At: now})
	t.log.Info("session stopped", zap.String("session", final.ID), zap.Int64("elapsedSeconds", final.ElapsedSeconds))
	return final, nil
}

// Recover reconstructs timer state from the remote service's live
// session, if any. Any failure is treated as "nothing to recover" and
// logged; recovery never blocks startup. Returns the recovered session,
// or nil when nothing was recovered.
func (t *Timer) Recover(ctx context.Context) *core.Session {
	t.mu.Lock()
	if t.closed || t.phase != core.PhaseIdle {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	session, err := t.api.ActiveSession(ctx)
	if err != nil {
		t.log.Warn("session recovery failed", zap.Error(err))
		return nil
	}
	if session == nil {
		return nil
	}

	t.mu.Lock()
	if t.closed || t.phase != core.PhaseIdle {
		t.mu.Unlock()
		return nil
	}
	now := t.clock.Now()
	switch session.Status {
	case core.StatusPaused:
		t.phase = core.PhasePaused
		// The server saw our autosaves, so its elapsed count excludes
		// the pause; the wall-clock delta would not.
		if session.ElapsedSeconds > 0 {
			t.accumulated = time.Duration(session.ElapsedSeconds) * time.Second
		} else {
			t.accumulated = clampElapsed(now.Sub(session.StartedAt))
		}
	default:
		t.phase = core.PhaseRunning
		t.accumulated = clampElapsed(now.Sub(session.StartedAt))
		t.segmentStart = now
		session.Status = core.StatusRunning
	}
	t.live = session
	phase := t.phase
	elapsed := int64(t.accumulated / time.Second)
	t.startRunLoopLocked()
	t.mu.Unlock()

	t.emit(core.Event{Type: core.EventRecovered, Phase: phase, SessionID: session.ID, ElapsedSeconds: elapsed, At: now})
	t.log.Info("session recovered", zap.String("session", session.ID), zap.String("phase", string(phase)))
	return session
}

// Phase returns the current timer phase.
func (t *Timer) Phase() core.TimerPhase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

// LiveSession returns the live session, or nil while idle.
func (t *Timer) LiveSession() *core.Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live
}

// Elapsed returns the tracked time of the live session.
func (t *Timer) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsedLocked()
}

// ElapsedSeconds returns Elapsed truncated to whole seconds.
func (t *Timer) ElapsedSeconds() int64 {
	return int64(t.Elapsed() / time.Second)
}

// History returns the finalized sessions of this run, oldest first.
func (t *Timer) History() []*core.Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*core.Session(nil), t.finished...)
}

// Subscribe registers a new observer channel. Events are dropped rather
// than blocking when the buffer is full. After Close the returned
// channel is already closed, so a ranging consumer exits immediately.
func (t *Timer) Subscribe(buffer int) <-chan core.Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan core.Event, buffer)
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		close(ch)
		return ch
	}
	t.events = append(t.events, ch)
	return ch
}

// Close stops the schedulers and closes observer channels without ending
// the live session remotely; the session stays recoverable on the server.
// The timer cannot be restarted: Start returns ErrTimerClosed afterwards.
func (t *Timer) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	var done chan struct{}
	if t.cancelRun != nil {
		t.cancelRun()
		t.cancelRun = nil
		done = t.runDone
		t.runDone = nil
	}
	// Detach subscribers under the lock; emit holds the lock through its
	// sends, so once we get here no send can touch these channels again.
	subscribers := t.events
	t.events = nil
	t.mu.Unlock()

	if done != nil {
		<-done
	}
	for _, ch := range subscribers {
		close(ch)
	}
	return nil
}

func (t *Timer) elapsedLocked() time.Duration {
	if t.phase == core.PhaseRunning {
		return t.accumulated + t.clock.Now().Sub(t.segmentStart)
	}
	return t.accumulated
}

// startRunLoopLocked launches the tick and autosave schedulers for the
// live session. The loop owns a context cancelled on Stop/Close so that
// in-flight autosave requests are aborted with it.
func (t *Timer) startRunLoopLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	t.cancelRun = cancel
	t.runDone = done
	go t.run(ctx, done)
}

func (t *Timer) stopRunLoopLocked() {
	if t.cancelRun != nil {
		t.cancelRun()
		t.cancelRun = nil
		t.runDone = nil
	}
}

func (t *Timer) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	tick := time.NewTicker(t.config.TickInterval)
	defer tick.Stop()
	save := time.NewTicker(t.config.AutosaveInterval)
	defer save.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if event, ok := t.tickEvent(); ok {
				t.emit(event)
			}
		case <-save.C:
			t.autosave(ctx)
		}
	}
}

// tickEvent snapshots the running state for a progress event. Missed
// ticks are simply lost; elapsed time is derived from the clock, not
// from tick counting.
func (t *Timer) tickEvent() (core.Event, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.phase != core.PhaseRunning || t.live == nil {
		return core.Event{}, false
	}
	return core.Event{
		Type:           core.EventTick,
		Phase:          core.PhaseRunning,
		SessionID:      t.live.ID,
		ElapsedSeconds: int64(t.elapsedLocked() / time.Second),
		At:             t.clock.Now(),
	}, true
}

// autosave pushes the current elapsed time to the remote service.
// Best-effort durability: failures are logged and emitted as events but
// never retried or surfaced to callers.
func (t *Timer) autosave(ctx context.Context) {
	t.mu.Lock()
	if t.phase != core.PhaseRunning || t.live == nil {
		t.mu.Unlock()
		return
	}
	id := t.live.ID
	elapsed := int64(t.elapsedLocked() / time.Second)
	t.mu.Unlock()

	if err := t.api.UpdateElapsed(ctx, id, elapsed); err != nil {
		t.log.Warn("autosave failed", zap.String("session", id), zap.Int64("elapsedSeconds", elapsed), zap.Error(err))
		t.emit(core.Event{
			Type:           core.EventAutosaveError,
			Phase:          core.PhaseRunning,
			SessionID:      id,
			ElapsedSeconds: elapsed,
			Message:        err.Error(),
			At:             t.clock.Now(),
		})
		return
	}

	t.mu.Lock()
	if t.live != nil && t.live.ID == id {
		t.live.ElapsedSeconds = elapsed
	}
	t.mu.Unlock()
}

// emit delivers the event to all subscribers without blocking. The lock
// is held through the sends so Close can never close a channel mid-send.
func (t *Timer) emit(event core.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, ch := range t.events {
		select {
		case ch <- event:
		default:
		}
	}
}

func clampElapsed(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() core.Clock { return systemClock{} }
