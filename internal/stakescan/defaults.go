package stakescan

import "time"

const (
	defaultMinDepth    = 10
	defaultWindow      = 10 * time.Minute
	defaultInterval    = 1 * time.Minute
	defaultWorkerCount = 4
)
