// Package metrics provides observability hooks for library builds.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics stay optional without nil checks at call sites:
//
//	recorder := metrics.NewPrometheusRecorder(registry)
//	orch := orchestrator.New(builder, store, orchestrator.WithRecorder(recorder))
//
// HTTPHandler exposes a registry for scraping on the admin listener.
package metrics
