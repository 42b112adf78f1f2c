package verifier

import "time"

const (
	defaultBatchSize   = 100
	defaultWorkerCount = 8
	defaultReorgDepth  = 100

	sleepDuration     = 5 * time.Second
	longSleepDuration = 1 * time.Minute

	blockBatcherFlushInterval = 1 * time.Second
	blockBatcherRPS           = 20
)
