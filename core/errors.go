package core

import "errors"

// Timer precondition errors. These are rejected locally and never reach
// the network.
var (
	ErrNoActiveTimer       = errors.New("no active timer")
	ErrTimerAlreadyRunning = errors.New("a timer session is already active")
	ErrTimerNotRunning     = errors.New("timer is not running")
	ErrTimerNotPaused      = errors.New("timer is not paused")
	ErrTimerClosed         = errors.New("timer is closed")
)

// Remote errors
var (
	ErrSessionNotFound = errors.New("session not found")
)

// Cache errors
var (
	ErrCacheMiss = errors.New("key not found in cache")
)

// Config errors (host application wiring)
var (
	ErrSessionAPIRequired = errors.New("session API adapter is required")
)

// Input validation errors
var (
	ErrInvalidPeriod = errors.New("leaderboard period must be one of: daily, weekly, alltime")
	ErrInvalidLimit  = errors.New("leaderboard limit must be positive")
)
