package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/questlog/questlog/core"
)

// FakeSessionAPI is a test-only fake implementing core.SessionAPI.
// It keeps the live session in memory and exposes error fields for
// behavior injection.
type FakeSessionAPI struct {
	mu     sync.Mutex
	active *core.Session
	nextID int
	now    func() time.Time

	startErr  error
	stopErr   error
	pauseErr  error
	resumeErr error
	updateErr error
	activeErr error

	// recorded autosaves, in order
	updates []int64
}

func NewFakeSessionAPI() *FakeSessionAPI {
	return &FakeSessionAPI{now: time.Now}
}

// SetNow overrides the fake's clock source.
func (f *FakeSessionAPI) SetNow(now func() time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

// SetActive seeds a live session for recovery tests.
func (f *FakeSessionAPI) SetActive(session *core.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = session
}

func (f *FakeSessionAPI) Updates() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.updates...)
}

func (f *FakeSessionAPI) StartSession(ctx context.Context, input core.StartSessionInput) (*core.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.nextID++
	session := &core.Session{
		ID:          fmt.Sprintf("sess-%d", f.nextID),
		ProjectID:   input.ProjectID,
		TaskID:      input.TaskID,
		Description: input.Description,
		Status:      core.StatusRunning,
		StartedAt:   f.now(),
	}
	f.active = session
	return session, nil
}

func (f *FakeSessionAPI) StopSession(ctx context.Context, id string, elapsedSeconds int64) (*core.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopErr != nil {
		return nil, f.stopErr
	}
	if f.active == nil || f.active.ID != id {
		return nil, core.ErrSessionNotFound
	}
	final := *f.active
	final.Status = core.StatusStopped
	final.ElapsedSeconds = elapsedSeconds
	final.EndedAt = f.now()
	f.active = nil
	return &final, nil
}

func (f *FakeSessionAPI) PauseSession(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pauseErr != nil {
		return f.pauseErr
	}
	if f.active == nil || f.active.ID != id {
		return core.ErrSessionNotFound
	}
	f.active.Status = core.StatusPaused
	return nil
}

func (f *FakeSessionAPI) ResumeSession(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resumeErr != nil {
		return f.resumeErr
	}
	if f.active == nil || f.active.ID != id {
		return core.ErrSessionNotFound
	}
	f.active.Status = core.StatusRunning
	return nil
}

func (f *FakeSessionAPI) UpdateElapsed(ctx context.Context, id string, elapsedSeconds int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.active == nil || f.active.ID != id {
		return core.ErrSessionNotFound
	}
	f.active.ElapsedSeconds = elapsedSeconds
	f.updates = append(f.updates, elapsedSeconds)
	return nil
}

func (f *FakeSessionAPI) ActiveSession(ctx context.Context) (*core.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.activeErr != nil {
		return nil, f.activeErr
	}
	if f.active == nil {
		return nil, nil
	}
	copied := *f.active
	return &copied, nil
}

// FakeProgressAPI is a test-only fake implementing core.ProgressAPI with
// canned responses, injectable errors, and call counting.
type FakeProgressAPI struct {
	mu sync.Mutex

	stats        *core.UserStats
	achievements []core.Achievement
	skillTree    []core.SkillNode
	leaderboard  []core.LeaderboardEntry

	profileErr     error
	achievementErr error
	skillTreeErr   error
	leaderboardErr error

	calls map[string]int
}

func NewFakeProgressAPI() *FakeProgressAPI {
	return &FakeProgressAPI{
		stats: &core.UserStats{UserID: "user-1", XP: 1200, Level: 5, XPToNextLevel: 300},
		achievements: []core.Achievement{
			{ID: "early-bird", Name: "Early Bird", Progress: 1},
			{ID: "marathon", Name: "Marathon", Progress: 0.4},
		},
		skillTree: []core.SkillNode{
			{ID: "focus", Name: "Focus", Level: 2, MaxLevel: 5, Unlocked: true},
			{ID: "deep-work", ParentID: "focus", Name: "Deep Work", MaxLevel: 3},
		},
		leaderboard: []core.LeaderboardEntry{
			{Rank: 1, UserID: "user-2", Username: "ada", XP: 9000},
			{Rank: 2, UserID: "user-1", Username: "lin", XP: 1200},
		},
		calls: make(map[string]int),
	}
}

// Calls returns how often the named endpoint was hit.
func (f *FakeProgressAPI) Calls(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[endpoint]
}

func (f *FakeProgressAPI) Profile(ctx context.Context) (*core.UserStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["profile"]++
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.stats, nil
}

func (f *FakeProgressAPI) Achievements(ctx context.Context) ([]core.Achievement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["achievements"]++
	if f.achievementErr != nil {
		return nil, f.achievementErr
	}
	return f.achievements, nil
}

func (f *FakeProgressAPI) SkillTree(ctx context.Context) ([]core.SkillNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["skilltree"]++
	if f.skillTreeErr != nil {
		return nil, f.skillTreeErr
	}
	return f.skillTree, nil
}

func (f *FakeProgressAPI) Leaderboard(ctx context.Context, period string, limit int) ([]core.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["leaderboard"]++
	if f.leaderboardErr != nil {
		return nil, f.leaderboardErr
	}
	if limit < len(f.leaderboard) {
		return f.leaderboard[:limit], nil
	}
	return f.leaderboard, nil
}

// FakeHistoryStore is a test-only fake implementing core.HistoryStore.
type FakeHistoryStore struct {
	mu        sync.Mutex
	sessions  []*core.Session
	appendErr error
}

func NewFakeHistoryStore() *FakeHistoryStore {
	return &FakeHistoryStore{}
}

func (f *FakeHistoryStore) AppendSession(session *core.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.sessions = append(f.sessions, session)
	return nil
}

func (f *FakeHistoryStore) ListSessions(from, to time.Time) ([]*core.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*core.Session
	for _, s := range f.sessions {
		if !s.StartedAt.Before(from) && s.StartedAt.Before(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *FakeHistoryStore) Close() error { return nil }

func (f *FakeHistoryStore) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

// FakeClock is a manually advanced clock for elapsed-time tests.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
