package monitor_market

import (
	"math"
	"net/http"
	"time"

	"github.com/warp-contracts/market/src/utils/config"
	"github.com/warp-contracts/market/src/utils/monitoring/report"
	"github.com/warp-contracts/market/src/utils/task"

	"github.com/gammazero/deque"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type sample struct {
	requests uint64
	failures uint64
}

// Stores and computes monitor counters
type Monitor struct {
	*task.Task

	Report    report.Report
	collector *Collector

	historySize int

	// Gateway failures sampled every minute
	gatewaySamples *deque.Deque[sample]
}

func NewMonitor(config *config.Config) (self *Monitor) {
	self = new(Monitor)

	self.Report = report.Report{
		Run:            &report.RunReport{},
		Indexer:        &report.IndexerReport{},
		Content:        &report.ContentReport{},
		Coordinator:    &report.CoordinatorReport{},
		Pinning:        &report.PinningReport{},
		RedisPublisher: &report.RedisPublisherReport{},
	}
	self.Report.Run.State.StartTimestamp.Store(time.Now().Unix())

	self.collector = NewCollector().WithMonitor(self)

	self.Task = task.NewTask(config, "monitor").
		WithPeriodicSubtaskFunc(time.Minute, self.monitorGateways)

	return self.WithMaxHistorySize(15)
}

func (self *Monitor) WithMaxHistorySize(maxHistorySize int) *Monitor {
	self.historySize = maxHistorySize
	self.gatewaySamples = deque.New[sample](self.historySize)
	return self
}

func round(f float64) float64 {
	return math.Round(f*100) / 100
}

// Ratio of failed gateway requests over the history window
func (self *Monitor) monitorGateways() (err error) {
	self.gatewaySamples.PushBack(sample{
		requests: self.Report.Content.State.GatewayRequests.Load(),
		failures: self.Report.Content.Errors.GatewayFailures.Load(),
	})
	if self.gatewaySamples.Len() > self.historySize {
		self.gatewaySamples.PopFront()
	}

	first, last := self.gatewaySamples.Front(), self.gatewaySamples.Back()
	requests := last.requests - first.requests
	if requests == 0 {
		self.Report.Content.State.AverageGatewayFailureRatio.Store(0)
		return
	}

	value := float64(last.failures-first.failures) / float64(requests)
	self.Report.Content.State.AverageGatewayFailureRatio.Store(round(value))
	return
}

func (self *Monitor) GetReport() *report.Report {
	return &self.Report
}

func (self *Monitor) GetPrometheusCollector() (collector prometheus.Collector) {
	return self.collector
}

// Unhealthy when almost every gateway request fails
func (self *Monitor) IsOK() bool {
	now := time.Now().Unix()
	if now-self.Report.Run.State.StartTimestamp.Load() < 300 {
		return true
	}
	return self.Report.Content.State.AverageGatewayFailureRatio.Load() < 0.9
}

func (self *Monitor) OnGetState(c *gin.Context) {
	self.Report.Run.Fill()
	c.JSON(http.StatusOK, &self.Report)
}

func (self *Monitor) OnGetHealth(c *gin.Context) {
	if self.IsOK() {
		c.Status(http.StatusOK)
	} else {
		c.Status(http.StatusServiceUnavailable)
	}
}
