package metric

import "github.com/prometheus/client_golang/prometheus"

// SessionCollector reports whether the session is authenticated at
// gather time.
type SessionCollector struct {
	authenticated func() bool
	desc          *prometheus.Desc
}

// NewSessionCollector creates a collector reading state from authenticated.
func NewSessionCollector(authenticated func() bool) *SessionCollector {
	return &SessionCollector{
		authenticated: authenticated,
		desc: prometheus.NewDesc(
			"kci_session_authenticated",
			"1 when the client holds a session token.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *SessionCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *SessionCollector) Collect(ch chan<- prometheus.Metric) {
	v := 0.0
	if c.authenticated() {
		v = 1
	}
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, v)
}
