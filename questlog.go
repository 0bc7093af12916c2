// Package questlog is the client core of a gamified time tracker: a
// timer session state machine with background autosave and startup
// recovery, plus cached access to server-computed progression data.
package questlog

import (
	"go.uber.org/zap"

	"github.com/questlog/questlog/core"
	"github.com/questlog/questlog/pkg/cache"
	"github.com/questlog/questlog/services"
)

// interfaces
type (
	SessionAPI   = core.SessionAPI
	ProgressAPI  = core.ProgressAPI
	HistoryStore = core.HistoryStore
	Cache        = core.Cache
	Clock        = core.Clock
)

// structs
type (
	Config      = core.Config
	CacheConfig = core.CacheConfig

	Session           = core.Session
	StartSessionInput = core.StartSessionInput
	Project           = core.Project
	Task              = core.Task
	UserStats         = core.UserStats
	Achievement       = core.Achievement
	SkillNode         = core.SkillNode
	LeaderboardEntry  = core.LeaderboardEntry

	Event = core.Event

	Timer    = services.Timer
	Progress = services.Progress
)

// TimerPhase values
const (
	PhaseIdle    = core.PhaseIdle
	PhaseRunning = core.PhaseRunning
	PhasePaused  = core.PhasePaused
)

// Constructors & helpers (convenience re-exports)
var (
	NewInMemoryCache = cache.New
	SystemClock      = services.SystemClock
)

var (
	ErrNoActiveTimer       = core.ErrNoActiveTimer
	ErrTimerAlreadyRunning = core.ErrTimerAlreadyRunning
	ErrTimerNotRunning     = core.ErrTimerNotRunning
	ErrTimerNotPaused      = core.ErrTimerNotPaused
	ErrTimerClosed         = core.ErrTimerClosed
)

var (
	ErrSessionAPIRequired = core.ErrSessionAPIRequired
	ErrInvalidPeriod      = core.ErrInvalidPeriod
	ErrInvalidLimit       = core.ErrInvalidLimit
)

// Questlog bundles the assembled services.
type Questlog struct {
	Timer    *services.Timer
	Progress *services.Progress

	history core.HistoryStore
}

func New(config Config) (*Questlog, error) {
	if config.API == nil {
		return nil, ErrSessionAPIRequired
	}

	// Set Defaults

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	clock := config.Clock
	if clock == nil {
		clock = services.SystemClock()
	}

	cacheAdapter := config.CacheAdapter
	if cacheAdapter == nil && !config.DisableCache {
		cacheAdapter = cache.New(core.CacheConfig{
			TTL:     config.SnapshotTTL,
			MaxSize: core.DefaultSnapshotMaxSize,
		})
	}

	timer := services.NewTimer(
		services.TimerConfig{
			TickInterval:     config.TickInterval,
			AutosaveInterval: config.AutosaveInterval,
		},
		config.API,
		config.History,
		clock,
		logger,
	)

	questlog := &Questlog{Timer: timer, history: config.History}
	if config.Progress != nil {
		questlog.Progress = services.NewProgress(config.Progress, cacheAdapter, logger)
	}

	return questlog, nil
}

// Close stops the timer's schedulers and, when a history store was
// configured, closes it. The live session, if any, is left running on
// the server for later recovery.
func (q *Questlog) Close() error {
	err := q.Timer.Close()
	if q.history != nil {
		if closeErr := q.history.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}
