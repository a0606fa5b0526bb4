package common

type contextKey string

const (
	TraceIdKey       contextKey = "trace_id"
	ClientIPKey      contextKey = "client_ip"
	SubjectKey       contextKey = "subject"
	FeedSemaphoreKey contextKey = "feed_semaphore"

	TraceIDHeader = "X-Trace-Id"
)
