// Package metrics provides the observability hooks for page serving.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection never requires nil checks at call
// sites. When monitoring is enabled, the daemon swaps in the Prometheus
// recorder and exposes the registry on the admin port.
package metrics
