package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	RequestDurationCount   uint64
	RequestDurationTotalNs int64
	NotModified            uint64
	PagesOutOfRange        uint64
	AccessDenied           uint64
	RateLimited            uint64
	PrincipalCacheHits     uint64
	PrincipalCacheMisses   uint64
	UsersCreated           uint64
	UsersUpdated           uint64
	UsersDeleted           uint64
}

// InMemoryRecorder keeps counters in process memory.
// It backs the /metrics endpoint and is used directly by tests.
type InMemoryRecorder struct {
	requestDurationCount   atomic.Uint64
	requestDurationTotalNs atomic.Int64
	notModified            atomic.Uint64
	pagesOutOfRange        atomic.Uint64
	accessDenied           atomic.Uint64
	rateLimited            atomic.Uint64
	principalCacheHits     atomic.Uint64
	principalCacheMisses   atomic.Uint64
	usersCreated           atomic.Uint64
	usersUpdated           atomic.Uint64
	usersDeleted           atomic.Uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		RequestDurationCount:   m.requestDurationCount.Load(),
		RequestDurationTotalNs: m.requestDurationTotalNs.Load(),
		NotModified:            m.notModified.Load(),
		PagesOutOfRange:        m.pagesOutOfRange.Load(),
		AccessDenied:           m.accessDenied.Load(),
		RateLimited:            m.rateLimited.Load(),
		PrincipalCacheHits:     m.principalCacheHits.Load(),
		PrincipalCacheMisses:   m.principalCacheMisses.Load(),
		UsersCreated:           m.usersCreated.Load(),
		UsersUpdated:           m.usersUpdated.Load(),
		UsersDeleted:           m.usersDeleted.Load(),
	}
}

// ObserveRequestDuration records one handled request.
func (m *InMemoryRecorder) ObserveRequestDuration(duration time.Duration) {
	m.requestDurationCount.Add(1)
	m.requestDurationTotalNs.Add(duration.Nanoseconds())
}

func (m *InMemoryRecorder) IncNotModified() { m.notModified.Add(1) }
func (m *InMemoryRecorder) IncPageOutOfRange() { m.pagesOutOfRange.Add(1) }
func (m *InMemoryRecorder) IncAccessDenied() { m.accessDenied.Add(1) }
func (m *InMemoryRecorder) IncRateLimited() { m.rateLimited.Add(1) }
func (m *InMemoryRecorder) IncPrincipalCacheHit() { m.principalCacheHits.Add(1) }
func (m *InMemoryRecorder) IncPrincipalCacheMiss() { m.principalCacheMisses.Add(1) }
func (m *InMemoryRecorder) IncUserCreated() { m.usersCreated.Add(1) }
func (m *InMemoryRecorder) IncUserUpdated() { m.usersUpdated.Add(1) }
func (m *InMemoryRecorder) IncUserDeleted() { m.usersDeleted.Add(1) }
