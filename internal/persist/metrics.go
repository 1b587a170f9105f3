package persist

import "sync/atomic"

type metrics struct {
	localWrites         atomic.Int64
	localWriteFailures  atomic.Int64
	remoteWrites        atomic.Int64
	remoteWriteFailures atomic.Int64
	remoteReadFailures  atomic.Int64
	migrations          atomic.Int64
	hydrations          atomic.Int64
}

// Metrics is a point-in-time snapshot of the adapter's counters. Writes
// are best-effort and never surface errors, so the counters are the only
// visibility into persistence health.
type Metrics struct {
	LocalWrites         int64 `json:"localWrites"`
	LocalWriteFailures  int64 `json:"localWriteFailures"`
	RemoteWrites        int64 `json:"remoteWrites"`
	RemoteWriteFailures int64 `json:"remoteWriteFailures"`
	RemoteReadFailures  int64 `json:"remoteReadFailures"`
	Migrations          int64 `json:"migrations"`
	Hydrations          int64 `json:"hydrations"`
}

// Metrics returns the current counter values.
func (a *Adapter) Metrics() Metrics {
	return Metrics{
		LocalWrites:         a.metrics.localWrites.Load(),
		LocalWriteFailures:  a.metrics.localWriteFailures.Load(),
		RemoteWrites:        a.metrics.remoteWrites.Load(),
		RemoteWriteFailures: a.metrics.remoteWriteFailures.Load(),
		RemoteReadFailures:  a.metrics.remoteReadFailures.Load(),
		Migrations:          a.metrics.migrations.Load(),
		Hydrations:          a.metrics.hydrations.Load(),
	}
}
