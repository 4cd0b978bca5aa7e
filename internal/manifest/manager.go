package manifest

import (
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/docserve/internal/logfields"
)

// Manager holds the active version Set and swaps it atomically when
// configuration reloads. Readers always see a complete, consistent Set;
// in-flight requests keep the Set they started with.
type Manager struct {
	mu  sync.RWMutex
	set *Set
}

// NewManager creates a manager seeded with the initial version set.
func NewManager(set *Set) *Manager {
	return &Manager{set: set}
}

// Current returns the active version set.
func (m *Manager) Current() *Set {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.set
}

// Replace installs a new version set, typically after a config reload.
func (m *Manager) Replace(set *Set) {
	m.mu.Lock()
	old := m.set
	m.set = set
	m.mu.Unlock()

	if old != nil && old.Default().Name != set.Default().Name {
		slog.Info("Default manual version changed",
			logfields.Version(set.Default().Name))
	}
	slog.Debug("Version manifest replaced", slog.Int("versions", set.Len()))
}
