package worker

import "time"

// DefaultJobTimeout bounds a single job run
const DefaultJobTimeout = 2 * time.Minute

// JobNameJanitor identifies the janitor job in logs
const JobNameJanitor = "janitor"

// Log messages - worker pool
const (
	LogMsgWorkerJobFailed = "Worker job failed"
	LogMsgWorkerJobDone   = "Worker job finished"
)

// Log messages - janitor
const (
	LogMsgJanitorNudged     = "Janitor sweep queued on demand"
	LogMsgJanitorQueueFull  = "Janitor sweep skipped, queue full"
	LogMsgJanitorSweepError = "Janitor sweep returned error"
)
