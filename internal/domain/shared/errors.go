package shared

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound               = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists          = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput           = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidQuantity        = NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	ErrItemNotFound           = NewDomainError("ITEM_NOT_FOUND", "Line item not found")
	ErrEmptyCart              = NewDomainError("EMPTY_CART", "Cart has no items")
	ErrInvalidTotal           = NewDomainError("INVALID_TOTAL", "Order total cannot be negative")
	ErrInvalidTransition      = NewDomainError("INVALID_TRANSITION", "Status transition not allowed from current state")
	ErrConcurrentModification = NewDomainError("CONCURRENT_MODIFICATION", "Resource was modified by another process")
	ErrPersistenceCorrupt     = NewDomainError("PERSISTENCE_CORRUPT", "Stored payload could not be decoded")
	ErrPersistenceWriteFailed = NewDomainError("PERSISTENCE_WRITE_FAILED", "Durable write failed; in-memory state remains authoritative")
)

// InsufficientStockError is returned when an order references more units of a
// product than the catalog has available. It carries the product and the
// quantity still available so callers can report both.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Available decimal.Decimal
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: %s available", e.ProductID, e.Available)
}

// DomainCode returns the stable error code for this error kind
func (e *InsufficientStockError) DomainCode() string {
	return "INSUFFICIENT_STOCK"
}

// NewInsufficientStockError creates a new InsufficientStockError
func NewInsufficientStockError(productID uuid.UUID, available decimal.Decimal) *InsufficientStockError {
	return &InsufficientStockError{ProductID: productID, Available: available}
}
