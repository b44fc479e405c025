package metrics

import "time"

// FleetSample is one point-in-time snapshot of fleet/workflow counts,
// supplied by the caller. Collector stays decoupled from
// internal/registry and internal/reconciler the same way
// internal/placement.NodeSnapshot decouples placement from the
// registry's lock — letting registry and reconciler import this package
// directly for their own inline counters without creating an import cycle
// back through a collector that held concrete registry/reconciler types.
type FleetSample struct {
	// NodeCounts is keyed by role ("worker"/"proxy") then status
	// ("healthy"/"unhealthy").
	NodeCounts map[string]map[string]int
	// ClusterCounts is keyed by status.
	ClusterCounts map[string]int
	Workflows     int
}

// FleetSampler produces the current FleetSample on demand.
type FleetSampler func() FleetSample

// Collector periodically samples fleet/workflow counts into gauges, the
// way the teacher's Collector polls its manager on a ticker.
type Collector struct {
	sample FleetSampler
	stopCh chan struct{}
}

// NewCollector creates a new metrics collector.
func NewCollector(sample FleetSampler) *Collector {
	return &Collector{
		sample: sample,
		stopCh: make(chan struct{}),
	}
}

// Start begins collecting metrics.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	s := c.sample()

	for role, statuses := range s.NodeCounts {
		for status, count := range statuses {
			NodesTotal.WithLabelValues(role, status).Set(float64(count))
		}
	}
	for status, count := range s.ClusterCounts {
		ClustersTotal.WithLabelValues(status).Set(float64(count))
	}
	WorkflowsTotal.Set(float64(s.Workflows))
}
