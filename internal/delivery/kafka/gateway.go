package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/azizikri/storefront-rules/internal/config"
	"github.com/azizikri/storefront-rules/internal/domain"
	"github.com/azizikri/storefront-rules/internal/stack"
	"github.com/azizikri/storefront-rules/internal/usecase"
	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"
)

// commandKey routes every product command to the same partition index, so
// a single consumer owns the undo history. The request topics share a
// partition count and the consumer group uses the range balancer.
const commandKey = "products"

type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Gateway sends product commands to the consumers over Kafka and waits for
// the reply on this instance's reply topic.
type Gateway struct {
	client      producer
	cfg         *config.Config
	timeout     time.Duration
	pendingResp sync.Map
}

func NewGateway(cfg *config.Config, client *kgo.Client) *Gateway {
	return &Gateway{
		client:  client,
		cfg:     cfg,
		timeout: RequestTimeout,
	}
}

func (g *Gateway) newRequest() RequestPayload {
	return RequestPayload{
		SchemaVersion: schemaVersion,
		CorrelationID: uuid.New().String(),
		ReplyTo:       ReplyTopic(g.cfg.KafkaInstanceID),
	}
}

func (g *Gateway) CreateProduct(ctx context.Context, in domain.ProductInput) (domain.ProductResult, error) {
	req := g.newRequest()
	req.Name = in.Name
	req.Price = in.Price

	resp, err := g.requestReply(ctx, TopicCreateRequest, []byte(commandKey), req)
	if err != nil {
		return domain.ProductResult{}, err
	}
	if resp.Status == StatusError {
		return domain.ProductResult{}, mapError(resp.ErrorCode, resp.ErrorMessage)
	}
	if resp.Result == nil {
		return domain.ProductResult{}, errors.New("missing result in response")
	}
	return *resp.Result, nil
}

func (g *Gateway) GetProduct(ctx context.Context, name string) (*domain.Product, error) {
	req := g.newRequest()
	req.Name = name

	resp, err := g.requestReply(ctx, TopicGetRequest, []byte(commandKey), req)
	if err != nil {
		return nil, err
	}
	if resp.Status == StatusError {
		return nil, mapError(resp.ErrorCode, resp.ErrorMessage)
	}
	return resp.Product, nil
}

func (g *Gateway) UndoLastProduct(ctx context.Context) (*domain.Product, error) {
	resp, err := g.requestReply(ctx, TopicUndoRequest, []byte(commandKey), g.newRequest())
	if err != nil {
		return nil, err
	}
	if resp.Status == StatusError {
		return nil, mapError(resp.ErrorCode, resp.ErrorMessage)
	}
	return resp.Product, nil
}

func (g *Gateway) requestReply(ctx context.Context, topic string, key []byte, req RequestPayload) (*ResponsePayload, error) {
	respChan := make(chan *ResponsePayload, 1)
	g.pendingResp.Store(req.CorrelationID, respChan)
	defer g.pendingResp.Delete(req.CorrelationID)

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	record := &kgo.Record{
		Topic: topic,
		Key:   key,
		Value: payload,
	}

	if err := g.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return nil, err
	}

	timer := time.NewTimer(g.timeout)
	defer timer.Stop()

	select {
	case resp := <-respChan:
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, errors.New("timeout waiting for response")
	}
}

// HandleResponse routes a reply record to the request waiting on it.
func (g *Gateway) HandleResponse(payload []byte) {
	var resp ResponsePayload
	if err := json.Unmarshal(payload, &resp); err != nil {
		log.Printf("Failed to decode response payload: %v", err)
		return
	}

	if ch, ok := g.pendingResp.Load(resp.CorrelationID); ok {
		select {
		case ch.(chan *ResponsePayload) <- &resp:
		default:
			log.Printf("Duplicate response for correlation ID %s", resp.CorrelationID)
		}
		return
	}

	log.Printf("No pending response for correlation ID %s", resp.CorrelationID)
}

func mapError(code, message string) error {
	switch code {
	case ErrCodeDuplicateProduct:
		return domain.ErrDuplicateProduct
	case ErrCodeNotFound:
		return domain.ErrNotFound
	case ErrCodeEmptyHistory:
		return stack.ErrEmpty
	default:
		return errors.New(message)
	}
}

var _ usecase.ProductGateway = (*Gateway)(nil)
