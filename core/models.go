package core

import "time"

// SessionStatus mirrors the status field the remote service stores
// with each session.
type SessionStatus string

const (
	StatusRunning SessionStatus = "running"
	StatusPaused  SessionStatus = "paused"
	StatusStopped SessionStatus = "stopped"
)

// TimerPhase is the local timer state. Running and paused both imply a
// live session; idle implies none.
type TimerPhase string

const (
	PhaseIdle    TimerPhase = "idle"
	PhaseRunning TimerPhase = "running"
	PhasePaused  TimerPhase = "paused"
)

// Session represents one tracked interval of work.
//
// The ID is assigned by the remote service on start. ElapsedSeconds is
// the server-known elapsed time, refreshed by autosave; the local timer
// derives its own elapsed time from wall-clock deltas.
type Session struct {
	ID             string        `json:"id"`
	ProjectID      string        `json:"projectId,omitempty"`
	TaskID         string        `json:"taskId,omitempty"`
	Description    string        `json:"description,omitempty"`
	Status         SessionStatus `json:"status"`
	StartedAt      time.Time     `json:"startedAt"`
	EndedAt        time.Time     `json:"endedAt"`
	ElapsedSeconds int64         `json:"elapsedSeconds"`
}

// StartSessionInput carries the optional associations for a new session.
type StartSessionInput struct {
	ProjectID   string `json:"projectId,omitempty"`
	TaskID      string `json:"taskId,omitempty"`
	Description string `json:"description,omitempty"`
}

// Project represents a client or category sessions can be booked against.
type Project struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Client   string `json:"client,omitempty"`
	ColorHex string `json:"colorHex,omitempty"`
}

// Task is a unit of work within a project.
type Task struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
}

// Gamification snapshots below are computed server-side. The client only
// fetches and displays them; none of the progression rules live here.

// UserStats is the user's progression snapshot.
type UserStats struct {
	UserID        string `json:"userId"`
	XP            int64  `json:"xp"`
	Level         int    `json:"level"`
	XPToNextLevel int64  `json:"xpToNextLevel"`
	StreakDays    int    `json:"streakDays"`
	TotalSeconds  int64  `json:"totalSeconds"`
}

// Achievement is a server-defined badge and its unlock state.
type Achievement struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Icon        string     `json:"icon,omitempty"`
	Progress    float64    `json:"progress"`
	UnlockedAt  *time.Time `json:"unlockedAt,omitempty"`
}

// SkillNode is one node of the server-defined skill tree.
type SkillNode struct {
	ID       string `json:"id"`
	ParentID string `json:"parentId,omitempty"`
	Name     string `json:"name"`
	Level    int    `json:"level"`
	MaxLevel int    `json:"maxLevel"`
	Unlocked bool   `json:"unlocked"`
}

// LeaderboardEntry is one row of a ranked leaderboard page.
type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	UserID       string `json:"userId"`
	Username     string `json:"username"`
	XP           int64  `json:"xp"`
	TotalSeconds int64  `json:"totalSeconds"`
}
