package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// LineItem is one prospective purchase within a cart: a weak reference to a
// catalog product (identifier plus denormalized display fields) together with
// the quantity and the unit price captured when the item was added.
// The price is a snapshot; later catalog price changes do not touch it.
type LineItem struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	ProductSKU  string          `json:"productSku"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
}

// Subtotal returns UnitPrice * Quantity for this line
func (i LineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is a user's pending, mutable collection of line items.
// ItemCount and Total are derived aggregates: they are recomputed
// synchronously inside every mutating operation before it returns, so callers
// never observe items and aggregates that disagree.
type Cart struct {
	UserID    uuid.UUID
	Items     []LineItem
	ItemCount int
	Total     decimal.Decimal
	UpdatedAt time.Time
}

// NewCart creates an empty cart for a user
func NewCart(userID uuid.UUID) *Cart {
	return &Cart{
		UserID: userID,
		Items:  make([]LineItem, 0),
		Total:  decimal.Zero,
	}
}

// Restore rebuilds a cart from persisted line items. Aggregates are always
// recomputed here, never trusted from storage. Duplicate product references
// in the payload are merged to re-establish the uniqueness invariant.
func Restore(userID uuid.UUID, items []LineItem) *Cart {
	c := NewCart(userID)
	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		if existing := c.find(item.ProductID); existing != nil {
			existing.Quantity += item.Quantity
			continue
		}
		c.Items = append(c.Items, item)
	}
	c.recalculateTotals()
	return c
}

// AddItem adds a product to the cart, merging with an existing line item for
// the same product. The unit price is snapshotted from the given Money value.
func (c *Cart) AddItem(productID uuid.UUID, productName, productSKU string, unitPrice valueobject.Money, quantity int) error {
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity < 1 {
		return shared.ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	if existing := c.find(productID); existing != nil {
		existing.Quantity += quantity
	} else {
		c.Items = append(c.Items, LineItem{
			ProductID:   productID,
			ProductName: productName,
			ProductSKU:  productSKU,
			UnitPrice:   unitPrice.Amount(),
			Quantity:    quantity,
		})
	}

	c.recalculateTotals()
	c.UpdatedAt = time.Now()
	return nil
}

// RemoveItem removes the line item for a product. Removing an absent product
// is a no-op, not an error.
func (c *Cart) RemoveItem(productID uuid.UUID) {
	for idx, item := range c.Items {
		if item.ProductID == productID {
			c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
			break
		}
	}
	c.recalculateTotals()
	c.UpdatedAt = time.Now()
}

// SetQuantity sets the exact quantity of an existing line item. A quantity of
// zero or less removes the item. Setting a quantity on a product that is not
// in the cart fails; it is not a substitute for AddItem.
func (c *Cart) SetQuantity(productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		c.RemoveItem(productID)
		return nil
	}

	existing := c.find(productID)
	if existing == nil {
		return shared.ErrItemNotFound
	}

	existing.Quantity = quantity
	c.recalculateTotals()
	c.UpdatedAt = time.Now()
	return nil
}

// Clear empties the cart. The cart itself survives; it is emptied, not destroyed.
func (c *Cart) Clear() {
	c.Items = make([]LineItem, 0)
	c.recalculateTotals()
	c.UpdatedAt = time.Now()
}

// QuantityOf returns the quantity of a product in the cart, 0 if absent
func (c *Cart) QuantityOf(productID uuid.UUID) int {
	if item := c.find(productID); item != nil {
		return item.Quantity
	}
	return 0
}

// Contains returns true if the cart has a line item for the product
func (c *Cart) Contains(productID uuid.UUID) bool {
	return c.find(productID) != nil
}

// IsEmpty returns true if the cart has no line items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// TotalMoney returns the cart total as a Money value object
func (c *Cart) TotalMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(c.Total)
}

// Snapshot returns a copy of the line items, detached from the cart so later
// mutations do not alias into order creation
func (c *Cart) Snapshot() []LineItem {
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	return items
}

func (c *Cart) find(productID uuid.UUID) *LineItem {
	for idx := range c.Items {
		if c.Items[idx].ProductID == productID {
			return &c.Items[idx]
		}
	}
	return nil
}

// recalculateTotals recomputes the derived aggregates from the item list
func (c *Cart) recalculateTotals() {
	count := 0
	total := decimal.Zero
	for _, item := range c.Items {
		count += item.Quantity
		total = total.Add(item.Subtotal())
	}
	c.ItemCount = count
	c.Total = total
}
