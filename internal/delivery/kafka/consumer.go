package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/azizikri/storefront-rules/internal/domain"
	"github.com/azizikri/storefront-rules/internal/stack"
	"github.com/azizikri/storefront-rules/internal/usecase"
	"github.com/twmb/franz-go/pkg/kgo"
)

type Consumer struct {
	client   *kgo.Client
	producer producer
	service  *usecase.ProductService
	ready    chan struct{}
}

func NewConsumer(client *kgo.Client, service *usecase.ProductService) *Consumer {
	return &Consumer{
		client:   client,
		producer: client,
		service:  service,
		ready:    make(chan struct{}),
	}
}

func (c *Consumer) Start(ctx context.Context) {
	close(c.ready)
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return
		}
		if errs := fetches.Errors(); len(errs) > 0 {
			log.Printf("Consumer poll errors: %v", errs)
		}

		iter := fetches.RecordIter()
		for !iter.Done() {
			c.processRecord(ctx, iter.Next())
		}

		if err := c.client.CommitRecords(ctx, fetches.Records()...); err != nil {
			log.Printf("Failed to commit records: %v", err)
		}
	}
}

// StartRetry moves records from the retry topics back to their request
// topics once their x-next-at deadline has passed.
func (c *Consumer) StartRetry(ctx context.Context) {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return
		}
		iter := fetches.RecordIter()
		for !iter.Done() {
			record := iter.Next()

			if nextAt, ok := retryNextAt(record); ok {
				if !sleepUntil(ctx, nextAt) {
					return
				}
			}

			if err := c.producer.ProduceSync(ctx, requeueRecord(record)).FirstErr(); err != nil {
				log.Printf("Failed to requeue retry record: %v", err)
			}
		}
		if err := c.client.CommitRecords(ctx, fetches.Records()...); err != nil {
			log.Printf("Failed to commit retry records: %v", err)
		}
	}
}

func (c *Consumer) Ready() <-chan struct{} {
	return c.ready
}

func (c *Consumer) processRecord(ctx context.Context, record *kgo.Record) {
	var req RequestPayload
	if err := json.Unmarshal(record.Value, &req); err != nil {
		c.sendError(ctx, record, ErrCodeInvalidRequest, "invalid request payload")
		return
	}

	var resp *ResponsePayload
	switch record.Topic {
	case TopicCreateRequest:
		resp = c.handleCreate(ctx, req)
	case TopicGetRequest:
		resp = c.handleGet(ctx, req)
	case TopicUndoRequest:
		resp = c.handleUndo(ctx, req)
	default:
		log.Printf("Ignoring record from unexpected topic %s", record.Topic)
		return
	}

	if resp.ErrorCode == ErrCodeInternalError {
		if c.scheduleRetry(ctx, record) {
			return
		}
		c.writeDLQ(ctx, record, resp.ErrorMessage)
	}

	c.sendResponse(ctx, req.ReplyTo, resp)
}

// scheduleRetry parks a failed request on its retry topic. It returns false
// once the record has used up its attempts or the retry cannot be written.
func (c *Consumer) scheduleRetry(ctx context.Context, record *kgo.Record) bool {
	attempt := retryAttempt(record)
	if attempt >= MaxRetryAttempts {
		return false
	}
	attempt++

	nextAt := time.Now().Add(RetryBackoff * time.Duration(attempt))
	retryRecord := &kgo.Record{
		Topic: strings.TrimSuffix(record.Topic, TopicRequestSuffix) + TopicRetrySuffix,
		Key:   record.Key,
		Value: record.Value,
		Headers: []kgo.RecordHeader{
			{Key: RetryHeaderNextAt, Value: []byte(nextAt.UTC().Format(time.RFC3339Nano))},
			{Key: RetryHeaderAttempt, Value: []byte(strconv.Itoa(attempt))},
		},
	}
	if err := c.producer.ProduceSync(ctx, retryRecord).FirstErr(); err != nil {
		log.Printf("Failed to schedule retry for %s: %v", record.Topic, err)
		return false
	}
	return true
}

func (c *Consumer) handleCreate(ctx context.Context, req RequestPayload) *ResponsePayload {
	result, err := c.service.CreateProduct(ctx, domain.ProductInput{Name: req.Name, Price: req.Price})
	if err != nil {
		return errorResponse(req.CorrelationID, errorCode(err), err.Error())
	}
	resp := successResponse(req.CorrelationID, nil)
	resp.Result = &result
	return resp
}

func (c *Consumer) handleGet(ctx context.Context, req RequestPayload) *ResponsePayload {
	product, err := c.service.GetProduct(ctx, req.Name)
	if err != nil {
		return errorResponse(req.CorrelationID, errorCode(err), err.Error())
	}
	return successResponse(req.CorrelationID, product)
}

func (c *Consumer) handleUndo(ctx context.Context, req RequestPayload) *ResponsePayload {
	product, err := c.service.UndoLastProduct(ctx)
	if err != nil {
		return errorResponse(req.CorrelationID, errorCode(err), err.Error())
	}
	return successResponse(req.CorrelationID, product)
}

func (c *Consumer) sendResponse(ctx context.Context, topic string, resp *ResponsePayload) {
	if topic == "" {
		log.Printf("Dropping response %s without reply topic", resp.CorrelationID)
		return
	}
	payload, _ := json.Marshal(resp)
	record := &kgo.Record{
		Topic: topic,
		Value: payload,
	}
	if err := c.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		log.Printf("Failed to send response to %s: %v", topic, err)
	}
}

// sendError replies when the request carries enough to route a reply, and
// always parks the raw record on the topic's DLQ.
func (c *Consumer) sendError(ctx context.Context, record *kgo.Record, code, message string) {
	var req RequestPayload
	_ = json.Unmarshal(record.Value, &req)

	if req.ReplyTo != "" {
		c.sendResponse(ctx, req.ReplyTo, errorResponse(req.CorrelationID, code, message))
	}
	c.writeDLQ(ctx, record, message)
}

func (c *Consumer) writeDLQ(ctx context.Context, record *kgo.Record, message string) {
	dlqRecord := &kgo.Record{
		Topic: record.Topic + TopicDLQSuffix,
		Key:   record.Key,
		Value: record.Value,
		Headers: []kgo.RecordHeader{
			{Key: ErrorHeaderKey, Value: []byte(message)},
		},
	}
	if err := c.producer.ProduceSync(ctx, dlqRecord).FirstErr(); err != nil {
		log.Printf("Failed to write %s to DLQ: %v", record.Topic, err)
	}
}

func requeueRecord(record *kgo.Record) *kgo.Record {
	return &kgo.Record{
		Topic:   strings.TrimSuffix(record.Topic, TopicRetrySuffix) + TopicRequestSuffix,
		Key:     record.Key,
		Value:   record.Value,
		Headers: record.Headers,
	}
}

func retryAttempt(record *kgo.Record) int {
	for _, header := range record.Headers {
		if header.Key == RetryHeaderAttempt {
			n, err := strconv.Atoi(string(header.Value))
			if err != nil {
				return 0
			}
			return n
		}
	}
	return 0
}

func retryNextAt(record *kgo.Record) (time.Time, bool) {
	for _, header := range record.Headers {
		if header.Key != RetryHeaderNextAt {
			continue
		}
		nextAt, err := time.Parse(time.RFC3339, string(header.Value))
		if err != nil {
			return time.Time{}, false
		}
		return nextAt, true
	}

	return time.Time{}, false
}

// sleepUntil returns false if ctx ends first.
func sleepUntil(ctx context.Context, t time.Time) bool {
	d := time.Until(t)
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func successResponse(correlationID string, product *domain.Product) *ResponsePayload {
	return &ResponsePayload{
		SchemaVersion: schemaVersion,
		CorrelationID: correlationID,
		Status:        StatusSuccess,
		Product:       product,
	}
}

func errorResponse(correlationID, code, message string) *ResponsePayload {
	return &ResponsePayload{
		SchemaVersion: schemaVersion,
		CorrelationID: correlationID,
		Status:        StatusError,
		ErrorCode:     code,
		ErrorMessage:  message,
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateProduct):
		return ErrCodeDuplicateProduct
	case errors.Is(err, domain.ErrNotFound):
		return ErrCodeNotFound
	case errors.Is(err, stack.ErrEmpty):
		return ErrCodeEmptyHistory
	}
	return ErrCodeInternalError
}
