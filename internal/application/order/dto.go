package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// AddressRequest represents a postal address in API requests
type AddressRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=100"`
	Street  string `json:"street" binding:"required,min=1,max=200"`
	City    string `json:"city" binding:"required,min=1,max=100"`
	State   string `json:"state" binding:"required,min=1,max=100"`
	ZipCode string `json:"zip_code" binding:"required,min=1,max=20"`
	Country string `json:"country"`
	Phone   string `json:"phone"`
}

func (r AddressRequest) toAddress() (valueobject.Address, error) {
	opts := make([]valueobject.AddressOption, 0, 2)
	if r.Phone != "" {
		opts = append(opts, valueobject.WithPhone(r.Phone))
	}
	if r.Country != "" {
		opts = append(opts, valueobject.WithCountry(r.Country))
	}
	return valueobject.NewAddress(r.Name, r.Street, r.City, r.State, r.ZipCode, opts...)
}

// CreateOrderRequest represents a checkout request. The item list comes
// from the user's cart, not from the request body.
type CreateOrderRequest struct {
	ShippingAddress AddressRequest   `json:"shipping_address" binding:"required"`
	BillingAddress  *AddressRequest  `json:"billing_address"`
	PaymentMethod   string           `json:"payment_method" binding:"required,oneof=credit_card debit_card paypal stripe"`
	Discount        *decimal.Decimal `json:"discount"`
	Notes           string           `json:"notes"`
}

// UpdateStatusRequest represents a fulfillment status change
type UpdateStatusRequest struct {
	Status         string `json:"status" binding:"required,oneof=processing shipped delivered cancelled"`
	TrackingNumber string `json:"tracking_number"`
	CancelReason   string `json:"cancel_reason"`
}

// UpdatePaymentStatusRequest represents a payment status change
type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required,oneof=paid failed refunded"`
}

// SetTrackingRequest attaches a carrier tracking number without a status change
type SetTrackingRequest struct {
	TrackingNumber string `json:"tracking_number" binding:"required,min=1,max=100"`
}

// ListFilter represents order list query parameters
type ListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Status   string `form:"status"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
}

// ItemResponse represents a frozen order line in API responses
type ItemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSKU  string          `json:"product_sku"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// AddressResponse represents a postal address in API responses
type AddressResponse struct {
	Name    string `json:"name"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
	Phone   string `json:"phone,omitempty"`
}

// OrderResponse represents a full order in API responses
type OrderResponse struct {
	ID              uuid.UUID       `json:"id"`
	OrderNumber     string          `json:"order_number"`
	UserID          uuid.UUID       `json:"user_id"`
	Items           []ItemResponse  `json:"items"`
	ShippingAddress AddressResponse `json:"shipping_address"`
	BillingAddress  AddressResponse `json:"billing_address"`
	PaymentMethod   string          `json:"payment_method"`
	PaymentStatus   string          `json:"payment_status"`
	Status          string          `json:"status"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	Shipping        decimal.Decimal `json:"shipping"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	TrackingNumber  string          `json:"tracking_number,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	ShippedAt       *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason    string          `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ListItemResponse represents an order in list responses
type ListItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	OrderNumber   string          `json:"order_number"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	ItemCount     int             `json:"item_count"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toAddressResponse(a valueobject.Address) AddressResponse {
	return AddressResponse{
		Name:    a.Name(),
		Street:  a.Street(),
		City:    a.City(),
		State:   a.State(),
		ZipCode: a.ZipCode(),
		Country: a.Country(),
		Phone:   a.Phone(),
	}
}

// ToOrderResponse converts an order aggregate to a response DTO
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]ItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, ItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductSKU:  item.ProductSKU,
			Price:       item.Price,
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal(),
		})
	}
	return OrderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		Items:           items,
		ShippingAddress: toAddressResponse(o.ShippingAddress),
		BillingAddress:  toAddressResponse(o.BillingAddress),
		PaymentMethod:   o.PaymentMethod.String(),
		PaymentStatus:   o.PaymentStatus.String(),
		Status:          o.Status.String(),
		Subtotal:        o.Subtotal,
		Tax:             o.Tax,
		Shipping:        o.Shipping,
		Discount:        o.Discount,
		Total:           o.Total,
		TrackingNumber:  o.TrackingNumber,
		Notes:           o.Notes,
		PaidAt:          o.PaidAt,
		ShippedAt:       o.ShippedAt,
		DeliveredAt:     o.DeliveredAt,
		CancelledAt:     o.CancelledAt,
		CancelReason:    o.CancelReason,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// ToListItemResponse converts an order aggregate to a list row DTO
func ToListItemResponse(o *order.Order) ListItemResponse {
	return ListItemResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		Status:        o.Status.String(),
		PaymentStatus: o.PaymentStatus.String(),
		ItemCount:     o.ItemCount(),
		Total:         o.Total,
		CreatedAt:     o.CreatedAt,
	}
}
