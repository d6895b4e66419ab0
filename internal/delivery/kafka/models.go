package kafka

import "github.com/azizikri/storefront-rules/internal/domain"

const schemaVersion = 1

const (
	StatusSuccess = "SUCCESS"
	StatusError   = "ERROR"
)

const (
	ErrCodeDuplicateProduct = "DUPLICATE_PRODUCT"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeEmptyHistory     = "EMPTY_HISTORY"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

type RequestPayload struct {
	SchemaVersion int     `json:"schema_version"`
	CorrelationID string  `json:"correlation_id"`
	ReplyTo       string  `json:"reply_to"`
	Name          string  `json:"name,omitempty"`
	Price         float64 `json:"price,omitempty"`
}

type ResponsePayload struct {
	SchemaVersion int                   `json:"schema_version"`
	CorrelationID string                `json:"correlation_id"`
	Status        string                `json:"status"`
	ErrorCode     string                `json:"error_code,omitempty"`
	ErrorMessage  string                `json:"error_message,omitempty"`
	Result        *domain.ProductResult `json:"result,omitempty"`
	Product       *domain.Product       `json:"product,omitempty"`
}
