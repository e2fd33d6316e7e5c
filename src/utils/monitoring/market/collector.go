package monitor_market

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	// Run
	UpForSeconds *prometheus.Desc

	// Indexer
	PassesFinished     *prometheus.Desc
	PassFailures       *prometheus.Desc
	AssetsPresent      *prometheus.Desc
	AssetsUnresolvable *prometheus.Desc
	LastPassDurationMs *prometheus.Desc
	LastAssetCount     *prometheus.Desc

	// Content
	Resolved            *prometheus.Desc
	GatewayRequests     *prometheus.Desc
	GatewayFailures     *prometheus.Desc
	MalformedContent    *prometheus.Desc
	GatewayFailureRatio *prometheus.Desc

	// Coordinator
	TransactionsSubmitted *prometheus.Desc
	TransactionsConfirmed *prometheus.Desc
	TransactionsPending   *prometheus.Desc
	AlreadyPending        *prometheus.Desc
	Rejected              *prometheus.Desc
	Reverted              *prometheus.Desc

	// Pinning
	DocumentsUploaded *prometheus.Desc
	BytesUploaded     *prometheus.Desc
	UploadErrors      *prometheus.Desc

	// Redis publisher
	MessagesPublished *prometheus.Desc
	PublishErrors     *prometheus.Desc
}

func NewCollector() *Collector {
	labels := prometheus.Labels{
		"app": "market",
	}

	return &Collector{
		UpForSeconds: prometheus.NewDesc("up_for_seconds", "", nil, labels),

		PassesFinished:     prometheus.NewDesc("indexer_passes_finished", "", nil, labels),
		PassFailures:       prometheus.NewDesc("indexer_pass_failures", "", nil, labels),
		AssetsPresent:      prometheus.NewDesc("indexer_assets_present", "", nil, labels),
		AssetsUnresolvable: prometheus.NewDesc("indexer_assets_unresolvable", "", nil, labels),
		LastPassDurationMs: prometheus.NewDesc("indexer_last_pass_duration_ms", "", nil, labels),
		LastAssetCount:     prometheus.NewDesc("indexer_last_asset_count", "", nil, labels),

		Resolved:            prometheus.NewDesc("content_resolved", "", nil, labels),
		GatewayRequests:     prometheus.NewDesc("content_gateway_requests", "", nil, labels),
		GatewayFailures:     prometheus.NewDesc("content_gateway_failures", "", nil, labels),
		MalformedContent:    prometheus.NewDesc("content_malformed", "", nil, labels),
		GatewayFailureRatio: prometheus.NewDesc("content_gateway_failure_ratio", "", nil, labels),

		TransactionsSubmitted: prometheus.NewDesc("coordinator_submitted", "", nil, labels),
		TransactionsConfirmed: prometheus.NewDesc("coordinator_confirmed", "", nil, labels),
		TransactionsPending:   prometheus.NewDesc("coordinator_pending", "", nil, labels),
		AlreadyPending:        prometheus.NewDesc("coordinator_already_pending", "", nil, labels),
		Rejected:              prometheus.NewDesc("coordinator_rejected", "", nil, labels),
		Reverted:              prometheus.NewDesc("coordinator_reverted", "", nil, labels),

		DocumentsUploaded: prometheus.NewDesc("pinning_documents_uploaded", "", nil, labels),
		BytesUploaded:     prometheus.NewDesc("pinning_bytes_uploaded", "", nil, labels),
		UploadErrors:      prometheus.NewDesc("pinning_upload_errors", "", nil, labels),

		MessagesPublished: prometheus.NewDesc("redis_messages_published", "", nil, labels),
		PublishErrors:     prometheus.NewDesc("redis_publish_errors", "", nil, labels),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- self.UpForSeconds
	ch <- self.PassesFinished
	ch <- self.PassFailures
	ch <- self.AssetsPresent
	ch <- self.AssetsUnresolvable
	ch <- self.LastPassDurationMs
	ch <- self.LastAssetCount
	ch <- self.Resolved
	ch <- self.GatewayRequests
	ch <- self.GatewayFailures
	ch <- self.MalformedContent
	ch <- self.GatewayFailureRatio
	ch <- self.TransactionsSubmitted
	ch <- self.TransactionsConfirmed
	ch <- self.TransactionsPending
	ch <- self.AlreadyPending
	ch <- self.Rejected
	ch <- self.Reverted
	ch <- self.DocumentsUploaded
	ch <- self.BytesUploaded
	ch <- self.UploadErrors
	ch <- self.MessagesPublished
	ch <- self.PublishErrors
}

// Collect implements required collect function for all prometheus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	r := &self.monitor.Report
	r.Run.Fill()

	ch <- prometheus.MustNewConstMetric(self.UpForSeconds, prometheus.GaugeValue, float64(r.Run.State.UpForSeconds.Load()))

	ch <- prometheus.MustNewConstMetric(self.PassesFinished, prometheus.CounterValue, float64(r.Indexer.State.PassesFinished.Load()))
	ch <- prometheus.MustNewConstMetric(self.PassFailures, prometheus.CounterValue, float64(r.Indexer.Errors.PassFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.AssetsPresent, prometheus.CounterValue, float64(r.Indexer.State.AssetsPresent.Load()))
	ch <- prometheus.MustNewConstMetric(self.AssetsUnresolvable, prometheus.CounterValue, float64(r.Indexer.State.AssetsUnresolvable.Load()))
	ch <- prometheus.MustNewConstMetric(self.LastPassDurationMs, prometheus.GaugeValue, float64(r.Indexer.State.LastPassDurationMs.Load()))
	ch <- prometheus.MustNewConstMetric(self.LastAssetCount, prometheus.GaugeValue, float64(r.Indexer.State.LastAssetCount.Load()))

	ch <- prometheus.MustNewConstMetric(self.Resolved, prometheus.CounterValue, float64(r.Content.State.Resolved.Load()))
	ch <- prometheus.MustNewConstMetric(self.GatewayRequests, prometheus.CounterValue, float64(r.Content.State.GatewayRequests.Load()))
	ch <- prometheus.MustNewConstMetric(self.GatewayFailures, prometheus.CounterValue, float64(r.Content.Errors.GatewayFailures.Load()))
	ch <- prometheus.MustNewConstMetric(self.MalformedContent, prometheus.CounterValue, float64(r.Content.Errors.Malformed.Load()))
	ch <- prometheus.MustNewConstMetric(self.GatewayFailureRatio, prometheus.GaugeValue, r.Content.State.AverageGatewayFailureRatio.Load())

	ch <- prometheus.MustNewConstMetric(self.TransactionsSubmitted, prometheus.CounterValue, float64(r.Coordinator.State.Submitted.Load()))
	ch <- prometheus.MustNewConstMetric(self.TransactionsConfirmed, prometheus.CounterValue, float64(r.Coordinator.State.Confirmed.Load()))
	ch <- prometheus.MustNewConstMetric(self.TransactionsPending, prometheus.GaugeValue, float64(r.Coordinator.State.Pending.Load()))
	ch <- prometheus.MustNewConstMetric(self.AlreadyPending, prometheus.CounterValue, float64(r.Coordinator.Errors.AlreadyPending.Load()))
	ch <- prometheus.MustNewConstMetric(self.Rejected, prometheus.CounterValue, float64(r.Coordinator.Errors.Rejected.Load()))
	ch <- prometheus.MustNewConstMetric(self.Reverted, prometheus.CounterValue, float64(r.Coordinator.Errors.Reverted.Load()))

	ch <- prometheus.MustNewConstMetric(self.DocumentsUploaded, prometheus.CounterValue, float64(r.Pinning.State.DocumentsUploaded.Load()))
	ch <- prometheus.MustNewConstMetric(self.BytesUploaded, prometheus.CounterValue, float64(r.Pinning.State.BytesUploaded.Load()))
	ch <- prometheus.MustNewConstMetric(self.UploadErrors, prometheus.CounterValue, float64(r.Pinning.Errors.Upload.Load()))

	ch <- prometheus.MustNewConstMetric(self.MessagesPublished, prometheus.CounterValue, float64(r.RedisPublisher.State.MessagesPublished.Load()))
	ch <- prometheus.MustNewConstMetric(self.PublishErrors, prometheus.CounterValue, float64(r.RedisPublisher.Errors.Publish.Load()))
}
