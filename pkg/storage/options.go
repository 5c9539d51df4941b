package storage

import "time"

type StorageOption func(*StorageEngine)

func WithDataDir(dir string) StorageOption {
	return func(engine *StorageEngine) {
		engine.dataDir = dir
	}
}

// WithCodec selects the artifact encoding (default: JSONCodec).
func WithCodec(codec Codec) StorageOption {
	return func(engine *StorageEngine) {
		engine.codec = codec
	}
}

// WithVerifyInterval enables a background worker that periodically reloads
// every artifact and compares it with memory. Zero disables it.
func WithVerifyInterval(interval time.Duration) StorageOption {
	return func(engine *StorageEngine) {
		engine.verifyInterval = interval
	}
}

// WithRecoveryWorkers bounds how many artifacts are loaded concurrently at
// startup.
func WithRecoveryWorkers(n int) StorageOption {
	return func(engine *StorageEngine) {
		if n > 0 {
			engine.recoveryWorkers = n
		}
	}
}

// WithIDGenerator replaces the identifier generator used for documents
// inserted without an _id.
func WithIDGenerator(newID func() string) StorageOption {
	return func(engine *StorageEngine) {
		engine.newID = newID
	}
}

func WithMetrics(observer MetricsObserver) StorageOption {
	return func(engine *StorageEngine) {
		if observer != nil {
			engine.metrics = observer
		}
	}
}
