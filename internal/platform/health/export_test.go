package health

import "runtime"

// SetReadStats replaces the MemStats source for tests.
func (m *MemoryChecker) SetReadStats(fn func(*runtime.MemStats)) {
	m.readStats = fn
}
