// Package metric provides Prometheus metrics for the KubeCloudsInc client.
//
// The client is short-lived, so metrics are not scraped from it. They are
// gathered into a private registry and, when configured, written to a
// node_exporter textfile on exit. The fake API server exposes the same
// registry type over HTTP.
//
// Metrics:
//
//	kci_client_requests_total{op,result}
//	kci_client_request_duration_seconds{op}
//	kci_session_authenticated
//	kci_store_* (badger engine sizes)
package metric
