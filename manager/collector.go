package manager

import "github.com/prometheus/client_golang/prometheus"

// Collector exports manager statistics to Prometheus.
type Collector struct {
	m *Manager

	resources   *prometheus.Desc
	referenced  *prometheus.Desc
	opens       *prometheus.Desc
	evictions   *prometheus.Desc
	cacheLen    *prometheus.Desc
	cacheHits   *prometheus.Desc
	cacheMisses *prometheus.Desc
	cacheEvicts *prometheus.Desc
}

// NewCollector creates a Collector for m. Metric names are prefixed with
// namespace, for example "app_imgres_resources".
func NewCollector(m *Manager, namespace string) *Collector {
	name := func(n string) string {
		return prometheus.BuildFQName(namespace, "imgres", n)
	}
	return &Collector{
		m: m,
		resources: prometheus.NewDesc(name("resources"),
			"Open resources by load state", []string{"state"}, nil),
		referenced: prometheus.NewDesc(name("referenced_resources"),
			"Resources with at least one reference", nil, nil),
		opens: prometheus.NewDesc(name("opens_total"),
			"Resources opened", nil, nil),
		evictions: prometheus.NewDesc(name("evictions_total"),
			"Resources disposed", nil, nil),
		cacheLen: prometheus.NewDesc(name("cpu_cache_entries"),
			"CPU frame cache entries across resources", nil, nil),
		cacheHits: prometheus.NewDesc(name("cpu_cache_hits_total"),
			"CPU frame cache hits", nil, nil),
		cacheMisses: prometheus.NewDesc(name("cpu_cache_misses_total"),
			"CPU frame cache misses", nil, nil),
		cacheEvicts: prometheus.NewDesc(name("cpu_cache_evictions_total"),
			"CPU frame cache evictions", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.resources
	ch <- c.referenced
	ch <- c.opens
	ch <- c.evictions
	ch <- c.cacheLen
	ch <- c.cacheHits
	ch <- c.cacheMisses
	ch <- c.cacheEvicts
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.m.Stats()
	ch <- prometheus.MustNewConstMetric(c.resources, prometheus.GaugeValue, float64(s.Resources-s.Failed), "loaded")
	ch <- prometheus.MustNewConstMetric(c.resources, prometheus.GaugeValue, float64(s.Failed), "failed")
	ch <- prometheus.MustNewConstMetric(c.referenced, prometheus.GaugeValue, float64(s.Referenced))
	ch <- prometheus.MustNewConstMetric(c.opens, prometheus.CounterValue, float64(s.Opens))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.Evictions))
	ch <- prometheus.MustNewConstMetric(c.cacheLen, prometheus.GaugeValue, float64(s.Cache.Len))
	ch <- prometheus.MustNewConstMetric(c.cacheHits, prometheus.CounterValue, float64(s.Cache.Hits))
	ch <- prometheus.MustNewConstMetric(c.cacheMisses, prometheus.CounterValue, float64(s.Cache.Misses))
	ch <- prometheus.MustNewConstMetric(c.cacheEvicts, prometheus.CounterValue, float64(s.Cache.Evictions))
}
