package metrics

import (
	"time"

	"github.com/driftstore/driftstore/pkg/relib"
)

// Collector periodically samples a TableStore's shape into the
// store-level gauges (table count, per-table row count, metadata
// version).
type Collector struct {
	store  *relib.TableStore
	stopCh chan struct{}
}

// NewCollector creates a new metrics collector over store.
func NewCollector(store *relib.TableStore) *Collector {
	return &Collector{
		store:  store,
		stopCh: make(chan struct{}),
	}
}

// Start begins collecting metrics on a fixed interval.
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
	tables := c.store.Tables()
	TablesTotal.Set(float64(len(tables)))

	for _, t := range tables {
		RowsTotal.WithLabelValues(t.Name()).Set(float64(t.Count()))
	}

	meta := c.store.MetaSnapshot()
	StoreVersion.Set(float64(meta.Version))
}
