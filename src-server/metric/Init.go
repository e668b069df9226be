package metric

import (
	"joincal/src-server/model"
	"joincal/src-server/utils"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// register returns the collector already registered under the same name when
// there is one, so Init can run more than once per process.
func register(gauge prometheus.Gauge, name string) prometheus.Gauge {
	if err := prometheus.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			slog.Debug(name + " metric already registered")
			return are.ExistingCollector.(prometheus.Gauge)
		}
		slog.Error("can't register "+name+" metric", "error", err)
		return gauge
	}
	slog.Debug(name + " metric registered")
	return gauge
}

func unregister(gauge prometheus.Gauge, name string) {
	switch prometheus.Unregister(gauge) {
	case true:
		slog.Debug(name + " metric unregistered")
	case false:
		slog.Warn(name + " metric not registered")
	}
}

// latencyGauge shows the last latency received on ch, reset to 0 when no
// sample arrives for clearTickerInterval.
func latencyGauge(as *utils.AppState, name, help string, ch chan float64, clearTickerInterval time.Duration) {
	gauge := register(prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: help,
	}), name)
	gauge.Set(0)

	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		clearTicker := time.NewTicker(clearTickerInterval)
		defer clearTicker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				unregister(gauge, name)
				return
			case latency := <-ch:
				gauge.Set(latency)
				clearTicker.Reset(clearTickerInterval)
			case <-clearTicker.C:
				gauge.Set(0)
			}
		}
	}()
}

// storageProbe times a read of the event slot every tickerInterval.
func storageProbe(as *utils.AppState, tickerInterval time.Duration) {
	const name = "joincal_storage_probe_read_microsec"
	gauge := register(prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: "The latency of a periodic read of the event storage slot in microseconds",
	}), name)
	gauge.Set(0)

	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		ticker := time.NewTicker(tickerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				unregister(gauge, name)
				return
			case <-ticker.C:
				latency, err := storage(as)
				if err != nil {
					slog.Error("can't probe storage latency", "error", err)
					continue
				}
				gauge.Set(float64(latency.Microseconds()))
			}
		}
	}()
}

// eventCount follows the store through a subscription.
func eventCount(as *utils.AppState) {
	const name = "joincal_events"
	gauge := register(prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: "The number of calendar events held by the store",
	}), name)
	gauge.Set(float64(len(as.Events.Events())))

	unsubscribe := as.Events.Subscribe(func(events []model.CalendarEvent) {
		gauge.Set(float64(len(events)))
	})
	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		<-*gracefulShutdownCh
		unsubscribe()
		unregister(gauge, name)
	}()
}

func Init(as *utils.AppState) {
	tickerInterval := as.Config.GetMetricCollectionInterval()
	clearTickerInterval := as.Config.GetMetricCollectionInterval() * 2

	storageProbe(as, tickerInterval)
	latencyGauge(as, "joincal_storage_read_microsec",
		"The latency of an event storage read in microseconds",
		as.MetricChans.StorageRead, clearTickerInterval)
	latencyGauge(as, "joincal_storage_write_microsec",
		"The latency of an event storage write in microseconds",
		as.MetricChans.StorageWrite, clearTickerInterval)
	latencyGauge(as, "joincal_http_request_microsec",
		"The latency of an HTTP request in microseconds",
		as.MetricChans.HTTPRequest, clearTickerInterval)
	eventCount(as)
}
