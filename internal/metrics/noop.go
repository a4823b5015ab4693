package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) ObserveRequestDuration(time.Duration) {}
func (n *NoopRecorder) IncNotModified() {}
func (n *NoopRecorder) IncPageOutOfRange() {}
func (n *NoopRecorder) IncAccessDenied() {}
func (n *NoopRecorder) IncRateLimited() {}
func (n *NoopRecorder) IncPrincipalCacheHit() {}
func (n *NoopRecorder) IncPrincipalCacheMiss() {}
func (n *NoopRecorder) IncUserCreated() {}
func (n *NoopRecorder) IncUserUpdated() {}
func (n *NoopRecorder) IncUserDeleted() {}
