package kafka

import "time"

const (
	TopicCreateRequest = "product.create.req"
	TopicGetRequest    = "product.get.req"
	TopicUndoRequest   = "product.undo.req"
	TopicCreateRetry   = "product.create.retry"
	TopicGetRetry      = "product.get.retry"
	TopicUndoRetry     = "product.undo.retry"
	TopicReplyPrefix   = "product.reply."
	TopicRequestSuffix = ".req"
	TopicRetrySuffix   = ".retry"
	TopicDLQSuffix     = ".dlq"

	RequestTimeout = 3 * time.Second

	RetryHeaderNextAt  = "x-next-at"
	RetryHeaderAttempt = "x-attempt"
	ErrorHeaderKey     = "x-error"

	MaxRetryAttempts = 3
	RetryBackoff     = 500 * time.Millisecond
)

var requestTopics = []string{TopicCreateRequest, TopicGetRequest, TopicUndoRequest}

var retryTopics = []string{TopicCreateRetry, TopicGetRetry, TopicUndoRetry}

// RequestTopics lists the topics the main consumer group subscribes to.
func RequestTopics() []string {
	return append([]string(nil), requestTopics...)
}

func RetryTopics() []string {
	return append([]string(nil), retryTopics...)
}

func ReplyTopic(instanceID string) string {
	return TopicReplyPrefix + instanceID
}
