package storage

import (
	"context"
	"time"
)

// LatencyReporter receives how long backend calls take.
type LatencyReporter interface {
	ReportStorageRead(latency time.Duration)
	ReportStorageWrite(latency time.Duration)
}

type instrumented struct {
	next     Storage
	reporter LatencyReporter
}

// Instrument wraps next so every call reports its latency to reporter.
func Instrument(next Storage, reporter LatencyReporter) Storage {
	if reporter == nil {
		return next
	}
	return &instrumented{next: next, reporter: reporter}
}

func (i *instrumented) GetItem(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	value, ok, err := i.next.GetItem(ctx, key)
	i.reporter.ReportStorageRead(time.Since(start))
	return value, ok, err
}

func (i *instrumented) SetItem(ctx context.Context, key, value string) error {
	start := time.Now()
	err := i.next.SetItem(ctx, key, value)
	i.reporter.ReportStorageWrite(time.Since(start))
	return err
}

func (i *instrumented) RemoveItem(ctx context.Context, key string) error {
	start := time.Now()
	err := i.next.RemoveItem(ctx, key)
	i.reporter.ReportStorageWrite(time.Since(start))
	return err
}
