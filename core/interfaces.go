package core

import (
	"context"
	"time"
)

// Ports define interfaces for external dependencies

// ============================================
// REMOTE PORTS (the session service)
// ============================================

// SessionAPI is the remote session collaborator. The client treats it as
// an opaque network boundary: no retry or idempotency contract is assumed.
type SessionAPI interface {
	// StartSession creates a new live session and returns it with its
	// server-assigned ID.
	StartSession(ctx context.Context, input StartSessionInput) (*Session, error)

	// StopSession finalizes the session, reporting the client's last
	// elapsed measurement, and returns the finalized record.
	StopSession(ctx context.Context, id string, elapsedSeconds int64) (*Session, error)

	PauseSession(ctx context.Context, id string) error
	ResumeSession(ctx context.Context, id string) error

	// UpdateElapsed pushes the current elapsed time. Best-effort; callers
	// may drop the error after logging it.
	UpdateElapsed(ctx context.Context, id string, elapsedSeconds int64) error

	// ActiveSession returns the caller's live session, or (nil, nil) when
	// there is none.
	ActiveSession(ctx context.Context) (*Session, error)
}

// ProgressAPI exposes the server-computed gamification snapshots.
type ProgressAPI interface {
	Profile(ctx context.Context) (*UserStats, error)
	Achievements(ctx context.Context) ([]Achievement, error)
	SkillTree(ctx context.Context) ([]SkillNode, error)
	Leaderboard(ctx context.Context, period string, limit int) ([]LeaderboardEntry, error)
}

// ============================================
// STORAGE PORT (local session archive)
// ============================================

// HistoryStore archives finalized sessions locally. Entries are immutable
// once appended.
type HistoryStore interface {
	AppendSession(session *Session) error

	// ListSessions returns archived sessions with StartedAt in [from, to),
	// ordered by start time.
	ListSessions(from, to time.Time) ([]*Session, error)

	Close() error
}

// ============================================
// CACHE PORT
// ============================================

// Cache stores remote snapshots for a short TTL.
type Cache interface {
	Get(key string) (any, error)
	Set(key string, value any) error
	Delete(key string) error
	Clear() error
}

// CacheWithStats extends Cache with statistics tracking
type CacheWithStats interface {
	Cache
	Stats() CacheStats
}

// CacheConfig configures cache behavior
type CacheConfig struct {
	TTL     time.Duration
	MaxSize int
}

// CacheStats tracks cache performance metrics
type CacheStats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Sets      int64         `json:"sets"`
	Deletes   int64         `json:"deletes"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}

// ============================================
// CLOCK PORT
// ============================================

// Clock abstracts wall-clock reads so elapsed-time behavior is testable.
type Clock interface {
	Now() time.Time
}
