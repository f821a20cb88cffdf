// Package metrics records render, cache, build and live reload metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no call site needs a nil check:
//
//	r := render.New(deps) // NoopRecorder
//	r.WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// The preview server exposes the registry at /metrics when metrics are
// enabled in the configuration.
package metrics
