package ports

// Metric names understood by Observability implementations.
const (
	MetricSamplesTotal         = "diystatus_samples_total"
	MetricSampleErrorsTotal    = "diystatus_sample_errors_total"
	MetricPublicationsTotal    = "diystatus_publications_total"
	MetricPublishErrorsTotal   = "diystatus_publish_errors_total"
	MetricArchiveErrorsTotal   = "diystatus_archive_errors_total"
	MetricControlMessagesTotal = "diystatus_control_messages_total"
	MetricControlDroppedTotal  = "diystatus_control_dropped_total"

	MetricCPUPercentAvg      = "diystatus_cpu_percent_avg"
	MetricCPUCelsiusAvg      = "diystatus_cpu_celsius_avg"
	MetricDiskFreeGiBAvg     = "diystatus_disk_free_gib_avg"
	MetricPendingSamples     = "diystatus_pending_samples"
	MetricControlQueueLength = "diystatus_control_queue_length"

	MetricSampleDurationSeconds = "diystatus_sample_duration_seconds"
)

type Observability interface {
	LogInfo(msg string, fields ...Field)
	LogError(msg string, err error, fields ...Field)
	LogCritical(msg string, err error, fields ...Field)

	IncCounter(name string, v float64)
	ObserveLatency(name string, seconds float64)

	SetGauge(name string, v float64)
}

type Field struct {
	Key   string
	Value any
}
