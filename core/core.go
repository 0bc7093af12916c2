package core

import (
	"time"

	"go.uber.org/zap"
)

// Defaults applied by the facade when the corresponding Config field is
// zero.
const (
	DefaultTickInterval     = time.Second
	DefaultAutosaveInterval = 30 * time.Second
	DefaultSnapshotTTL      = 30 * time.Second
	DefaultSnapshotMaxSize  = 128
)

type Config struct {
	API SessionAPI

	// Optional config
	Progress         ProgressAPI
	History          HistoryStore
	CacheAdapter     Cache
	DisableCache     bool
	Logger           *zap.Logger
	Clock            Clock
	TickInterval     time.Duration
	AutosaveInterval time.Duration
	SnapshotTTL      time.Duration
}
