package interfaces

type SchedulerInterface interface {
	Init()
	Stop()
	Restore() error
	Persist() error
}

type CompressorInterface interface {
	Compress(val []byte) ([]byte, error)
	Decompress(val []byte) ([]byte, error)
	Close()
}

// SaverInterface is the best-effort persistence hook mutating paths
// call after a state change. Failures are logged, never surfaced.
type SaverInterface interface {
	SaveBestEffort()
}
