package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// PaymentMethod represents how the customer pays for an order
type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodDebitCard  PaymentMethod = "debit_card"
	PaymentMethodPayPal     PaymentMethod = "paypal"
	PaymentMethodStripe     PaymentMethod = "stripe"
)

// IsValid checks if the value is a known payment method
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodPayPal, PaymentMethodStripe:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentStatus represents the payment state of an order
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// IsValid checks if the value is a known payment status
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the payment status can transition to the target.
// Every payment starts pending; failed and refunded are terminal.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return target == PaymentStatusPaid || target == PaymentStatusFailed
	case PaymentStatusPaid:
		return target == PaymentStatusRefunded
	case PaymentStatusFailed, PaymentStatusRefunded:
		return false
	}
	return false
}

// IsTerminal returns true if no further payment transitions are possible
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusFailed || s == PaymentStatusRefunded
}

// Status represents the fulfillment state of an order
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// IsValid checks if the value is a known order status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the order status can transition to the target.
// Fulfillment advances one step at a time; cancellation is only possible
// before shipment.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusProcessing || target == StatusCancelled
	case StatusProcessing:
		return target == StatusShipped || target == StatusCancelled
	case StatusShipped:
		return target == StatusDelivered
	case StatusDelivered, StatusCancelled:
		return false
	}
	return false
}

// IsTerminal returns true if no further fulfillment transitions are possible
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Item is a frozen order line: the product reference, the quantity ordered
// and the price locked at order-creation time. Items never change after the
// order is created - catalog edits do not reach back into placed orders.
type Item struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	ProductSKU  string          `gorm:"type:varchar(50)"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity    int             `gorm:"not null"`
	CreatedAt   time.Time
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "order_items"
}

// Subtotal returns Price * Quantity for this line
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the aggregate root for a committed purchase. Its item list and
// monetary fields are frozen at creation; only the two status fields, the
// tracking number and the notes are mutable afterwards, through explicit
// transition operations.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber     string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	UserID          uuid.UUID           `gorm:"type:uuid;not null;index"`
	Items           []Item              `gorm:"foreignKey:OrderID;references:ID"`
	ShippingAddress valueobject.Address `gorm:"type:jsonb"`
	BillingAddress  valueobject.Address `gorm:"type:jsonb"`
	PaymentMethod   PaymentMethod       `gorm:"type:varchar(20);not null"`
	PaymentStatus   PaymentStatus       `gorm:"type:varchar(20);not null;default:'pending'"`
	Status          Status              `gorm:"type:varchar(20);not null;default:'pending';index"`
	Subtotal        decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Tax             decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Shipping        decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Discount        decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Total           decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	TrackingNumber  string              `gorm:"type:varchar(100)"`
	Notes           string              `gorm:"type:text"`
	PaidAt          *time.Time
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
	CancelReason    string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// ItemSpec describes one line of a new order before it is frozen
type ItemSpec struct {
	ProductID   uuid.UUID
	ProductName string
	ProductSKU  string
	Price       decimal.Decimal
	Quantity    int
}

// New assembles an order from frozen line specs and externally supplied
// tax, shipping and discount amounts. Subtotal and total are derived here,
// once, and never recomputed from live catalog data afterwards.
//
// Orders are only ever created through this factory; both status fields
// start at pending.
func New(orderNumber string, userID uuid.UUID, specs []ItemSpec, shippingAddr, billingAddr valueobject.Address, method PaymentMethod, tax, shipping, discount decimal.Decimal) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if len(specs) == 0 {
		return nil, shared.ErrEmptyCart
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Unknown payment method %q", method))
	}
	if tax.IsNegative() || shipping.IsNegative() || discount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Tax, shipping and discount cannot be negative")
	}

	root := shared.NewBaseAggregateRoot()
	subtotal := decimal.Zero
	items := make([]Item, 0, len(specs))
	for _, spec := range specs {
		if spec.ProductID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
		}
		if spec.Quantity < 1 {
			return nil, shared.ErrInvalidQuantity
		}
		if spec.Price.IsNegative() {
			return nil, shared.NewDomainError("INVALID_PRICE", "Item price cannot be negative")
		}
		item := Item{
			ID:          uuid.New(),
			OrderID:     root.ID,
			ProductID:   spec.ProductID,
			ProductName: spec.ProductName,
			ProductSKU:  spec.ProductSKU,
			Price:       spec.Price,
			Quantity:    spec.Quantity,
			CreatedAt:   root.CreatedAt,
		}
		items = append(items, item)
		subtotal = subtotal.Add(item.Subtotal())
	}

	total := subtotal.Add(tax).Add(shipping).Sub(discount)
	if total.IsNegative() {
		return nil, shared.ErrInvalidTotal
	}

	o := &Order{
		BaseAggregateRoot: root,
		OrderNumber:       orderNumber,
		UserID:            userID,
		Items:             items,
		ShippingAddress:   shippingAddr,
		BillingAddress:    billingAddr,
		PaymentMethod:     method,
		PaymentStatus:     PaymentStatusPending,
		Status:            StatusPending,
		Subtotal:          subtotal,
		Tax:               tax,
		Shipping:          shipping,
		Discount:          discount,
		Total:             total,
	}

	o.AddDomainEvent(NewCreatedEvent(o))

	return o, nil
}

// MarkPaid transitions the payment status from pending to paid
func (o *Order) MarkPaid() error {
	if err := o.transitionPayment(PaymentStatusPaid); err != nil {
		return err
	}
	now := time.Now()
	o.PaidAt = &now
	o.AddDomainEvent(NewPaidEvent(o))
	return nil
}

// MarkPaymentFailed transitions the payment status from pending to failed
func (o *Order) MarkPaymentFailed() error {
	if err := o.transitionPayment(PaymentStatusFailed); err != nil {
		return err
	}
	o.AddDomainEvent(NewPaymentFailedEvent(o))
	return nil
}

// Refund transitions the payment status from paid to refunded
func (o *Order) Refund() error {
	if err := o.transitionPayment(PaymentStatusRefunded); err != nil {
		return err
	}
	o.AddDomainEvent(NewRefundedEvent(o))
	return nil
}

// TransitionPaymentTo applies an arbitrary payment status transition,
// validating it against the payment state graph
func (o *Order) TransitionPaymentTo(target PaymentStatus) error {
	switch target {
	case PaymentStatusPaid:
		return o.MarkPaid()
	case PaymentStatusFailed:
		return o.MarkPaymentFailed()
	case PaymentStatusRefunded:
		return o.Refund()
	default:
		return shared.ErrInvalidTransition
	}
}

// StartProcessing transitions the order from pending to processing
func (o *Order) StartProcessing() error {
	if err := o.transitionStatus(StatusProcessing); err != nil {
		return err
	}
	o.AddDomainEvent(NewProcessingEvent(o))
	return nil
}

// Ship transitions the order to shipped, optionally recording the carrier
// tracking number in the same step
func (o *Order) Ship(trackingNumber string) error {
	if err := o.transitionStatus(StatusShipped); err != nil {
		return err
	}
	now := time.Now()
	o.ShippedAt = &now
	if trackingNumber != "" {
		o.TrackingNumber = trackingNumber
	}
	o.AddDomainEvent(NewShippedEvent(o))
	return nil
}

// Deliver transitions the order from shipped to delivered
func (o *Order) Deliver() error {
	if err := o.transitionStatus(StatusDelivered); err != nil {
		return err
	}
	now := time.Now()
	o.DeliveredAt = &now
	o.AddDomainEvent(NewDeliveredEvent(o))
	return nil
}

// Cancel cancels the order. Only allowed while the order is pending or
// processing; a shipped or later order cannot be cancelled.
func (o *Order) Cancel(reason string) error {
	if err := o.transitionStatus(StatusCancelled); err != nil {
		return err
	}
	now := time.Now()
	o.CancelledAt = &now
	o.CancelReason = reason
	o.AddDomainEvent(NewCancelledEvent(o))
	return nil
}

// TransitionTo applies an arbitrary fulfillment status transition,
// validating it against the order state graph
func (o *Order) TransitionTo(target Status, trackingNumber string) error {
	switch target {
	case StatusProcessing:
		return o.StartProcessing()
	case StatusShipped:
		return o.Ship(trackingNumber)
	case StatusDelivered:
		return o.Deliver()
	case StatusCancelled:
		return o.Cancel("")
	default:
		return shared.ErrInvalidTransition
	}
}

// SetTrackingNumber records a tracking number without changing status
func (o *Order) SetTrackingNumber(trackingNumber string) {
	o.TrackingNumber = trackingNumber
	o.UpdatedAt = time.Now()
}

// SetNotes sets the order notes
func (o *Order) SetNotes(notes string) {
	o.Notes = notes
	o.UpdatedAt = time.Now()
}

// ItemCount returns the number of distinct line items
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// TotalQuantity returns the sum of all item quantities
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// SubtotalMoney returns the subtotal as a Money value object
func (o *Order) SubtotalMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(o.Subtotal)
}

// TotalMoney returns the total as a Money value object
func (o *Order) TotalMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(o.Total)
}

// IsCancelled returns true if the order is cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == StatusCancelled
}

// IsDelivered returns true if the order is delivered
func (o *Order) IsDelivered() bool {
	return o.Status == StatusDelivered
}

func (o *Order) transitionStatus(target Status) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.ErrInvalidTransition
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

func (o *Order) transitionPayment(target PaymentStatus) error {
	if !o.PaymentStatus.CanTransitionTo(target) {
		return shared.ErrInvalidTransition
	}
	o.PaymentStatus = target
	o.UpdatedAt = time.Now()
	return nil
}
