package indexer

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/vector"
)

// State is the index lifecycle state. The service starts Uninitialized, moves
// through Loading (and Building when a rebuild is needed), and settles in
// Ready or Failed.
type State int32

const (
	StateUninitialized State = iota
	StateLoading
	StateBuilding
	StateReady
	StateFailed
)

// String returns the lowercase state name used in health and status responses.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateBuilding:
		return "building"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Manager owns the index lifecycle: restore a persisted index when one exists
// and is compatible, rebuild from the corpus otherwise. A failed restore never
// fails the service; it degrades to a rebuild. A failed rebuild leaves the
// manager Failed with the cause retained, and the process keeps serving health.
type Manager struct {
	builder *Builder
	logger  *zap.Logger

	mu      sync.RWMutex
	state   State
	err     error
	readyAt time.Time
}

// NewManager creates a manager in the Uninitialized state.
func NewManager(builder *Builder, logger *zap.Logger) *Manager {
	return &Manager{builder: builder, logger: logger}
}

// Initialize brings the index to Ready. With forceRebuild false it first
// tries to restore the persisted index; restore failures of any kind (missing
// files, dimension mismatch, corrupt data) are logged and degraded to a
// rebuild rather than surfaced.
func (m *Manager) Initialize(ctx context.Context, forceRebuild bool) error {
	m.setState(StateLoading, nil)

	if !forceRebuild {
		if err := m.restore(ctx); err == nil {
			m.setState(StateReady, nil)
			return nil
		}
	}

	m.setState(StateBuilding, nil)
	if err := m.builder.Build(ctx); err != nil {
		m.logger.Error("index build failed", zap.Error(err))
		m.setState(StateFailed, err)
		return err
	}
	m.setState(StateReady, nil)
	return nil
}

// restore loads the persisted vector index and checks it against the chunk
// store. Returns an error when a rebuild is needed instead.
func (m *Manager) restore(ctx context.Context) error {
	b := m.builder
	vectorsPath := VectorsPath(b.cfg.Index.Path)

	if err := b.index.Load(vectorsPath); err != nil {
		if errors.Is(err, vector.ErrNotFound) {
			m.logger.Info("no persisted index, building from corpus",
				zap.String("path", vectorsPath))
		} else {
			m.logger.Warn("persisted index unusable, rebuilding",
				zap.String("path", vectorsPath), zap.Error(err))
		}
		return err
	}

	count, err := b.store.CountChunks(ctx)
	if err != nil {
		m.logger.Warn("chunk store unreadable, rebuilding", zap.Error(err))
		b.index.Reset()
		return err
	}
	if int(count) != b.index.Size() {
		m.logger.Warn("index and chunk store out of sync, rebuilding",
			zap.Int("vectors", b.index.Size()), zap.Int64("chunks", count))
		b.index.Reset()
		return errors.New("index and chunk store out of sync")
	}

	m.logger.Info("index restored",
		zap.Int("vectors", b.index.Size()), zap.String("path", vectorsPath))
	return nil
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Err returns the retained failure cause, nil unless Failed.
func (m *Manager) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

// Ready reports whether queries can be served.
func (m *Manager) Ready() bool {
	return m.State() == StateReady
}

// ReadyAt returns when the index last became Ready, zero if it never has.
func (m *Manager) ReadyAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.readyAt
}

func (m *Manager) setState(s State, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
	m.err = err
	if s == StateReady {
		m.readyAt = time.Now()
	}
}
