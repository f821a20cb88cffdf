package metrics

import "time"

// ResultLabel enumerates outcome labels for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultError   ResultLabel = "error"
)

// Recorder defines the observability hooks of the site generator.
type Recorder interface {
	ObserveRenderDuration(kind string, d time.Duration, result ResultLabel)
	IncCacheLookup(hit bool)
	ObserveBuildDuration(d time.Duration)
	AddPagesBuilt(n int)
	IncLongPoll(woken bool)
	IncEpochBump()
	SetWaitingClients(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are off).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRenderDuration(string, time.Duration, ResultLabel) {}
func (NoopRecorder) IncCacheLookup(bool)                                      {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)                       {}
func (NoopRecorder) AddPagesBuilt(int)                                        {}
func (NoopRecorder) IncLongPoll(bool)                                         {}
func (NoopRecorder) IncEpochBump()                                            {}
func (NoopRecorder) SetWaitingClients(int)                                    {}

// ResultFor maps an error to its result label.
func ResultFor(err error) ResultLabel {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}
