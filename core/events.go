package core

import "time"

// EventType defines the type of timer event.
type EventType string

const (
	EventPhaseChange   EventType = "phase_change"
	EventTick          EventType = "tick"
	EventAutosaveError EventType = "autosave_error"
	EventRecovered     EventType = "recovered"
)

// Event represents a timer update for observers.
type Event struct {
	Type           EventType
	Phase          TimerPhase
	SessionID      string
	ElapsedSeconds int64
	Message        string
	At             time.Time
}
