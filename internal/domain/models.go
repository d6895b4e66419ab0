package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("product not found")
	ErrDuplicateProduct = errors.New("product already exists")
)

const (
	MsgInvalidPrice        = "Invalid price"
	MsgInvalidDiscountCode = "Invalid discount code"
	MsgInvalidUsername     = "Invalid username"
	MsgInvalidAge          = "Invalid age"
	MsgValidationOK        = "Validation successful"
	MsgInvalidCountryCode  = "Invalid country code"
)

type Coupon struct {
	Code     string  `json:"code"`
	Discount float64 `json:"discount"`
}

type ProductInput struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type ProductError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ProductResult struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Error   *ProductError `json:"error,omitempty"`
}

type Product struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}
