package checkpoint

import "github.com/prometheus/client_golang/prometheus"

// PromCollector adapts a File's counters to a prometheus.Collector for
// callers that want to register the store with a Prometheus registry.
// Using a Collector rather than directly exposing prometheus types on
// File keeps this store a plain library: Prometheus wiring is opt-in.
type PromCollector struct {
	file *File
	pgID PartitionGroupID

	readBlocks   *prometheus.Desc
	writeBlocks  *prometheus.Desc
	readRetries  *prometheus.Desc
	writeRetries *prometheus.Desc
	freeBlocks   *prometheus.Desc
	blockNum     *prometheus.Desc
}

// NewPromCollector builds a Collector exporting f's counters, labeled by
// its partition group id.
func NewPromCollector(f *File) *PromCollector {
	pgID := f.cfg.PgID
	labels := prometheus.Labels{"pg_id": pgID.String()}
	constLabels := prometheus.Labels{}
	for k, v := range labels {
		constLabels[k] = v
	}
	return &PromCollector{
		file:         f,
		pgID:         pgID,
		readBlocks:   prometheus.NewDesc("checkpointfile_read_blocks_total", "Blocks read from the checkpoint store.", nil, constLabels),
		writeBlocks:  prometheus.NewDesc("checkpointfile_write_blocks_total", "Blocks written to the checkpoint store.", nil, constLabels),
		readRetries:  prometheus.NewDesc("checkpointfile_read_retries_total", "Retried partial reads.", nil, constLabels),
		writeRetries: prometheus.NewDesc("checkpointfile_write_retries_total", "Retried partial writes.", nil, constLabels),
		freeBlocks:   prometheus.NewDesc("checkpointfile_free_blocks", "Currently free blocks.", nil, constLabels),
		blockNum:     prometheus.NewDesc("checkpointfile_block_num", "Logical block count.", nil, constLabels),
	}
}

// Describe implements prometheus.Collector.
func (c *PromCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.readBlocks
	ch <- c.writeBlocks
	ch <- c.readRetries
	ch <- c.writeRetries
	ch <- c.freeBlocks
	ch <- c.blockNum
}

// Collect implements prometheus.Collector.
func (c *PromCollector) Collect(ch chan<- prometheus.Metric) {
	m := c.file.Metrics()
	ch <- prometheus.MustNewConstMetric(c.readBlocks, prometheus.CounterValue, float64(m.ReadBlockCount))
	ch <- prometheus.MustNewConstMetric(c.writeBlocks, prometheus.CounterValue, float64(m.WriteBlockCount))
	ch <- prometheus.MustNewConstMetric(c.readRetries, prometheus.CounterValue, float64(m.ReadRetryCount))
	ch <- prometheus.MustNewConstMetric(c.writeRetries, prometheus.CounterValue, float64(m.WriteRetryCount))
	ch <- prometheus.MustNewConstMetric(c.freeBlocks, prometheus.GaugeValue, float64(m.FreeUseBitNum))
	ch <- prometheus.MustNewConstMetric(c.blockNum, prometheus.GaugeValue, float64(m.BlockNum))
}
