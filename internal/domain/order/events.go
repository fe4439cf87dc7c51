package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated       = "OrderCreated"
	EventTypeOrderPaid          = "OrderPaid"
	EventTypeOrderPaymentFailed = "OrderPaymentFailed"
	EventTypeOrderRefunded      = "OrderRefunded"
	EventTypeOrderProcessing    = "OrderProcessing"
	EventTypeOrderShipped       = "OrderShipped"
	EventTypeOrderDelivered     = "OrderDelivered"
	EventTypeOrderCancelled     = "OrderCancelled"
)

// ItemInfo represents item information carried on order events
type ItemInfo struct {
	ItemID      uuid.UUID       `json:"item_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSKU  string          `json:"product_sku"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

func itemInfos(o *Order) []ItemInfo {
	items := make([]ItemInfo, len(o.Items))
	for i, item := range o.Items {
		items[i] = ItemInfo{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductSKU:  item.ProductSKU,
			Price:       item.Price,
			Quantity:    item.Quantity,
		}
	}
	return items
}

// CreatedEvent is raised when a new order is created
type CreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	UserID      uuid.UUID       `json:"user_id"`
	Items       []ItemInfo      `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Total       decimal.Decimal `json:"total"`
}

// NewCreatedEvent creates a new CreatedEvent
func NewCreatedEvent(o *Order) *CreatedEvent {
	return &CreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		Items:           itemInfos(o),
		Subtotal:        o.Subtotal,
		Total:           o.Total,
	}
}

// statusEvent carries the fields shared by all status-change events
type statusEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      uuid.UUID `json:"user_id"`
}

func newStatusEvent(eventType string, o *Order) statusEvent {
	return statusEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
	}
}

// PaidEvent is raised when an order payment succeeds
type PaidEvent struct {
	statusEvent
	Total decimal.Decimal `json:"total"`
}

// NewPaidEvent creates a new PaidEvent
func NewPaidEvent(o *Order) *PaidEvent {
	return &PaidEvent{statusEvent: newStatusEvent(EventTypeOrderPaid, o), Total: o.Total}
}

// PaymentFailedEvent is raised when an order payment fails
type PaymentFailedEvent struct {
	statusEvent
}

// NewPaymentFailedEvent creates a new PaymentFailedEvent
func NewPaymentFailedEvent(o *Order) *PaymentFailedEvent {
	return &PaymentFailedEvent{newStatusEvent(EventTypeOrderPaymentFailed, o)}
}

// RefundedEvent is raised when a paid order is refunded
type RefundedEvent struct {
	statusEvent
	Total decimal.Decimal `json:"total"`
}

// NewRefundedEvent creates a new RefundedEvent
func NewRefundedEvent(o *Order) *RefundedEvent {
	return &RefundedEvent{statusEvent: newStatusEvent(EventTypeOrderRefunded, o), Total: o.Total}
}

// ProcessingEvent is raised when fulfillment starts
type ProcessingEvent struct {
	statusEvent
}

// NewProcessingEvent creates a new ProcessingEvent
func NewProcessingEvent(o *Order) *ProcessingEvent {
	return &ProcessingEvent{newStatusEvent(EventTypeOrderProcessing, o)}
}

// ShippedEvent is raised when an order ships
type ShippedEvent struct {
	statusEvent
	TrackingNumber string     `json:"tracking_number,omitempty"`
	Items          []ItemInfo `json:"items"`
}

// NewShippedEvent creates a new ShippedEvent
func NewShippedEvent(o *Order) *ShippedEvent {
	return &ShippedEvent{
		statusEvent:    newStatusEvent(EventTypeOrderShipped, o),
		TrackingNumber: o.TrackingNumber,
		Items:          itemInfos(o),
	}
}

// DeliveredEvent is raised when an order is delivered
type DeliveredEvent struct {
	statusEvent
}

// NewDeliveredEvent creates a new DeliveredEvent
func NewDeliveredEvent(o *Order) *DeliveredEvent {
	return &DeliveredEvent{newStatusEvent(EventTypeOrderDelivered, o)}
}

// CancelledEvent is raised when an order is cancelled
type CancelledEvent struct {
	statusEvent
	Reason string     `json:"reason,omitempty"`
	Items  []ItemInfo `json:"items"`
}

// NewCancelledEvent creates a new CancelledEvent
func NewCancelledEvent(o *Order) *CancelledEvent {
	return &CancelledEvent{
		statusEvent: newStatusEvent(EventTypeOrderCancelled, o),
		Reason:      o.CancelReason,
		Items:       itemInfos(o),
	}
}
