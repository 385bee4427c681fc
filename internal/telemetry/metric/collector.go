package metric

import "github.com/prometheus/client_golang/prometheus"

// Stats is a point-in-time view of server state.
type Stats struct {
	OutstandingNonces int
	LimitedClients    int
	Routes            int
}

// Collector samples Stats on every scrape.
type Collector struct {
	stats func() Stats

	nonces  *prometheus.Desc
	clients *prometheus.Desc
	routes  *prometheus.Desc
}

// NewCollector creates a collector reading from stats.
func NewCollector(stats func() Stats) *Collector {
	return &Collector{
		stats: stats,
		nonces: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "auth", "nonces_outstanding"),
			"Issued digest nonces still tracked.", nil, nil),
		clients: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "rate_limited_clients"),
			"Clients with a live rate limiter.", nil, nil),
		routes: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "routes"),
			"Registered exact-path handlers.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.nonces
	ch <- c.clients
	ch <- c.routes
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats()
	ch <- prometheus.MustNewConstMetric(c.nonces, prometheus.GaugeValue, float64(s.OutstandingNonces))
	ch <- prometheus.MustNewConstMetric(c.clients, prometheus.GaugeValue, float64(s.LimitedClients))
	ch <- prometheus.MustNewConstMetric(c.routes, prometheus.GaugeValue, float64(s.Routes))
}
