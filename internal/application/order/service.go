package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	cartapp "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Pricing applied at checkout. Shipping is a flat fee waived above the
// free-shipping threshold.
var (
	taxRate               = decimal.NewFromFloat(0.08)
	flatShippingFee       = decimal.NewFromInt(5)
	freeShippingThreshold = decimal.NewFromInt(100)
)

// Carts is the slice of the cart service the order service needs: reading
// the lines to freeze and clearing the cart after checkout.
type Carts interface {
	Snapshot(ctx context.Context, userID uuid.UUID) ([]cart.LineItem, error)
	Clear(ctx context.Context, userID uuid.UUID) (*cartapp.CartResponse, error)
}

// Service handles order business operations
type Service struct {
	orderRepo   order.Repository
	productRepo catalog.ProductRepository
	carts       Carts
	logger      *zap.Logger
}

// NewService creates a new order service
func NewService(orderRepo order.Repository, productRepo catalog.ProductRepository, carts Carts, logger *zap.Logger) *Service {
	return &Service{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		carts:       carts,
		logger:      logger,
	}
}

// Create checks out the user's cart: it verifies and reserves stock,
// freezes the cart lines into order items, reserves an order number and
// persists the order. The cart is cleared after the order is committed.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "create",
		telemetry.WithAttribute(telemetry.SpanAttrUserID, userID.String()))
	defer span.End()

	resp, err := s.create(ctx, userID, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrOrderNumber, resp.OrderNumber)
	telemetry.SetAttribute(span, telemetry.SpanAttrItemCount, len(resp.Items))
	return resp, nil
}

func (s *Service) create(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	items, err := s.carts.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, shared.ErrEmptyCart
	}

	shippingAddr, err := req.ShippingAddress.toAddress()
	if err != nil {
		return nil, err
	}
	billingAddr := shippingAddr
	if req.BillingAddress != nil {
		billingAddr, err = req.BillingAddress.toAddress()
		if err != nil {
			return nil, err
		}
	}

	if err := s.reserveStock(ctx, items); err != nil {
		return nil, err
	}

	specs := make([]order.ItemSpec, 0, len(items))
	subtotal := decimal.Zero
	for _, item := range items {
		specs = append(specs, order.ItemSpec{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductSKU:  item.ProductSKU,
			Price:       item.UnitPrice,
			Quantity:    item.Quantity,
		})
		subtotal = subtotal.Add(item.Subtotal())
	}

	tax := subtotal.Mul(taxRate).Round(2)
	shipping := flatShippingFee
	if subtotal.GreaterThanOrEqual(freeShippingThreshold) {
		shipping = decimal.Zero
	}
	discount := decimal.Zero
	if req.Discount != nil {
		discount = *req.Discount
	}

	orderNumber, err := s.orderRepo.NextOrderNumber(ctx, time.Now())
	if err != nil {
		s.releaseReserved(ctx, items)
		return nil, err
	}

	o, err := order.New(orderNumber, userID, specs, shippingAddr, billingAddr,
		order.PaymentMethod(req.PaymentMethod), tax, shipping, discount)
	if err != nil {
		s.releaseReserved(ctx, items)
		return nil, err
	}
	if req.Notes != "" {
		o.SetNotes(req.Notes)
	}

	if err := s.orderRepo.Save(ctx, o); err != nil {
		s.releaseReserved(ctx, items)
		return nil, err
	}

	// The order is committed; a cart that fails to clear is an
	// inconvenience, not a checkout failure.
	if _, err := s.carts.Clear(ctx, userID); err != nil {
		s.logger.Warn("cart clear after checkout failed",
			zap.String("user_id", userID.String()),
			zap.String("order_number", o.OrderNumber),
			zap.Error(err))
	}

	response := ToOrderResponse(o)
	return &response, nil
}

// reserveStock deducts the requested quantities from the catalog, failing
// with InsufficientStockError before anything is deducted if any line
// exceeds the available stock. A deduction that fails to persist
// mid-loop releases the lines already saved before returning.
func (s *Service) reserveStock(ctx context.Context, items []cart.LineItem) error {
	products := make([]*catalog.Product, 0, len(items))
	for _, item := range items {
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if !product.HasStock(item.Quantity) {
			return shared.NewInsufficientStockError(product.ID, product.Stock)
		}
		products = append(products, product)
	}

	for i, item := range items {
		if err := products[i].ReserveStock(item.Quantity); err != nil {
			s.releaseReserved(ctx, items[:i])
			return err
		}
		if err := s.productRepo.SaveWithLock(ctx, products[i]); err != nil {
			s.releaseReserved(ctx, items[:i])
			return err
		}
	}
	return nil
}

// releaseReserved compensates a checkout that failed after stock was
// deducted: every listed line is returned to the catalog. Failures are
// logged per line and do not stop the remaining releases.
func (s *Service) releaseReserved(ctx context.Context, items []cart.LineItem) {
	for _, item := range items {
		s.returnStock(ctx, item.ProductID, item.Quantity)
	}
}

// GetByID retrieves an order by ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// GetByOrderNumber retrieves an order by its order number
func (s *Service) GetByOrderNumber(ctx context.Context, orderNumber string) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(o)
	return &response, nil
}

// ListByUser retrieves the user's orders with pagination
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]ListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != "" {
		status := order.Status(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown order status filter")
		}
		domainFilter.Filters["status"] = filter.Status
	}

	orders, err := s.orderRepo.FindByUser(ctx, userID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.CountByUser(ctx, userID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ListItemResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, ToListItemResponse(&orders[i]))
	}
	return responses, total, nil
}

// UpdateStatus applies a fulfillment status transition with optimistic
// locking. Cancelling before shipment returns the reserved stock.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	target := order.Status(req.Status)
	if target == order.StatusCancelled {
		if err := o.Cancel(req.CancelReason); err != nil {
			return nil, err
		}
	} else if err := o.TransitionTo(target, req.TrackingNumber); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	if target == order.StatusCancelled {
		s.releaseStock(ctx, o)
	}

	response := ToOrderResponse(o)
	return &response, nil
}

// UpdatePaymentStatus applies a payment status transition with optimistic
// locking
func (s *Service) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, req UpdatePaymentStatusRequest) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := o.TransitionPaymentTo(order.PaymentStatus(req.PaymentStatus)); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	response := ToOrderResponse(o)
	return &response, nil
}

// SetTrackingNumber attaches a tracking number without changing status
func (s *Service) SetTrackingNumber(ctx context.Context, id uuid.UUID, trackingNumber string) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	o.SetTrackingNumber(trackingNumber)

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	response := ToOrderResponse(o)
	return &response, nil
}

// releaseStock returns a cancelled order's quantities to the catalog.
// Failures are logged; the cancellation itself already committed.
func (s *Service) releaseStock(ctx context.Context, o *order.Order) {
	for _, item := range o.Items {
		s.returnStock(ctx, item.ProductID, item.Quantity)
	}
}

// returnStock adds a quantity back to a product's stock, logging instead
// of failing when the product cannot be loaded, updated, or saved.
func (s *Service) returnStock(ctx context.Context, productID uuid.UUID, quantity int) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		s.logger.Warn("stock release lookup failed",
			zap.String("product_id", productID.String()),
			zap.Int("quantity", quantity),
			zap.Error(err))
		return
	}
	if err := product.ReleaseStock(quantity); err != nil {
		s.logger.Warn("stock release rejected",
			zap.String("product_id", productID.String()),
			zap.Int("quantity", quantity),
			zap.Error(err))
		return
	}
	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		s.logger.Warn("stock release save failed",
			zap.String("product_id", productID.String()),
			zap.Int("quantity", quantity),
			zap.Error(err))
	}
}
