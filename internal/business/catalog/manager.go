package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrViewNotFound is returned for unknown or expired view IDs.
var ErrViewNotFound = errors.New("view not found")

// ManagerConfig tunes view lifetimes.
type ManagerConfig struct {
	// TTL is how long a view survives without being read.
	TTL time.Duration
	// LoadTimeout bounds a view's background load. Zero means no bound.
	LoadTimeout time.Duration
}

type managedView struct {
	view     *View
	cancel   context.CancelFunc
	lastSeen time.Time
}

// Manager owns the live views and the cancel functions of their loads.
// It allows external cancellation of a view's fetches by its ID.
type Manager struct {
	prices  PriceSource
	catalog CatalogSource
	cfg     ManagerConfig
	now     func() time.Time

	mu    sync.RWMutex
	views map[string]*managedView
}

// NewManager creates a Manager whose views load from the given sources.
func NewManager(prices PriceSource, catalog CatalogSource, cfg ManagerConfig) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	return &Manager{
		prices:  prices,
		catalog: catalog,
		cfg:     cfg,
		now:     time.Now,
		views:   make(map[string]*managedView),
	}
}

// Create registers a new view and starts loading it in the background.
func (m *Manager) Create() *View {
	v := NewView(uuid.NewString(), m.prices, m.catalog)

	ctx, cancel := context.WithCancel(context.Background())
	if m.cfg.LoadTimeout > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, m.cfg.LoadTimeout)
		parent := cancel
		cancel = func() {
			timeoutCancel()
			parent()
		}
	}

	m.mu.Lock()
	m.views[v.ID()] = &managedView{view: v, cancel: cancel, lastSeen: m.now()}
	m.mu.Unlock()

	go func() {
		defer cancel()
		start := time.Now()
		if err := v.Load(ctx); err != nil {
			slog.Warn("view load failed", "view", v.ID(), "error", err, "elapsed", time.Since(start))
			return
		}
		slog.Debug("view loaded", "view", v.ID(), "elapsed", time.Since(start))
	}()
	return v
}

// Once loads a throwaway view synchronously on the caller's context.
func (m *Manager) Once(ctx context.Context) (*View, error) {
	v := NewView(uuid.NewString(), m.prices, m.catalog)
	return v, v.Load(ctx)
}

// Get returns a live view and refreshes its expiry.
func (m *Manager) Get(id string) (*View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mv, ok := m.views[id]
	if !ok {
		return nil, ErrViewNotFound
	}
	mv.lastSeen = m.now()
	return mv.view, nil
}

// Close cancels a view's in-flight fetches and forgets it.
// Returns true if the view was found.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	mv, ok := m.views[id]
	if !ok {
		return false
	}
	mv.cancel()
	delete(m.views, id)
	return true
}

// Sweep closes views not read within the TTL and returns how many it removed.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.cfg.TTL)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, mv := range m.views {
		if mv.lastSeen.Before(cutoff) {
			mv.cancel()
			delete(m.views, id)
			removed++
		}
	}
	return removed
}

// Len reports how many views are live.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.views)
}

// Run sweeps expired views periodically until ctx is done, then closes the rest.
func (m *Manager) Run(ctx context.Context) {
	interval := m.cfg.TTL / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				slog.Debug("swept expired views", "count", n)
			}
		}
	}
}

func (m *Manager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, mv := range m.views {
		mv.cancel()
		delete(m.views, id)
	}
}
