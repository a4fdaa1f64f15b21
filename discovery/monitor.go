package discovery

import "time"

// Monitor observes discovery runs. Implementations must be safe for
// concurrent use since one Orchestrator serves many runs at once.
type Monitor interface {
	Start(runID string, req Request)
	EnterStage(runID string, stage Stage)
	StageFailed(runID string, stage Stage, err error)
	Finish(runID string, resp *Response, err error, elapsed time.Duration)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = noopMonitor{}

func (noopMonitor) Start(_ string, _ Request)                              {}
func (noopMonitor) EnterStage(_ string, _ Stage)                           {}
func (noopMonitor) StageFailed(_ string, _ Stage, _ error)                 {}
func (noopMonitor) Finish(_ string, _ *Response, _ error, _ time.Duration) {}
