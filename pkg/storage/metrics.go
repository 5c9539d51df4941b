package storage

import "time"

// MetricsObserver defines the interface for observing engine events.
type MetricsObserver interface {
	// OnOperation is called when a public engine operation returns.
	OnOperation(op, collection string, duration time.Duration, err error)

	// OnFlush is called when a collection artifact write completes.
	OnFlush(collection string, duration time.Duration, bytes int64, err error)

	// OnVerify is called after a background verification of one collection.
	OnVerify(collection string, err error)

	// OnCollections reports the number of live collections.
	OnCollections(count int)
}

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
type NoopMetricsObserver struct{}

func (o *NoopMetricsObserver) OnOperation(op, collection string, duration time.Duration, err error) {}
func (o *NoopMetricsObserver) OnFlush(collection string, duration time.Duration, bytes int64, err error) {
}
func (o *NoopMetricsObserver) OnVerify(collection string, err error) {}
func (o *NoopMetricsObserver) OnCollections(count int)               {}
