package utils

import "time"

// Metric carries latencies (microseconds) from hot paths to the gauges in the
// metric package. Sends never block: a sample is dropped when nobody listens.
type Metric struct {
	StorageRead  chan float64
	StorageWrite chan float64
	HTTPRequest  chan float64
}

func NewMetric() *Metric {
	return &Metric{
		StorageRead:  make(chan float64, 1),
		StorageWrite: make(chan float64, 1),
		HTTPRequest:  make(chan float64, 1),
	}
}

func send(ch chan float64, latency time.Duration) {
	select {
	case ch <- float64(latency.Microseconds()):
	default:
	}
}

func (m *Metric) ReportStorageRead(latency time.Duration)  { send(m.StorageRead, latency) }
func (m *Metric) ReportStorageWrite(latency time.Duration) { send(m.StorageWrite, latency) }
func (m *Metric) ReportHTTPRequest(latency time.Duration)  { send(m.HTTPRequest, latency) }
