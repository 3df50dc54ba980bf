package worker

// Log Messages
const (
	LogMsgWorkerJobFailed = "Worker job failed"
)
