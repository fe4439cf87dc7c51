package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	cartapp "github.com/storefront/backend/internal/application/cart"
	orderapp "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// MockOrderRepository implements order.Repository for handler tests
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]order.Order, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) CountByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) NextOrderNumber(ctx context.Context, day time.Time) (string, error) {
	args := m.Called(ctx, day)
	return args.String(0), args.Error(1)
}

type orderTestEnv struct {
	router      *gin.Engine
	orderRepo   *MockOrderRepository
	productRepo *MockProductRepository
	cartService *cartapp.Service
	handler     *OrderHandler
}

func setupOrderTestRouter() *orderTestEnv {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	cartService := cartapp.NewService(cache.NewInMemoryCartStore(), productRepo, zap.NewNop())
	orderService := orderapp.NewService(orderRepo, productRepo, cartService, zap.NewNop())
	return &orderTestEnv{
		router:      gin.New(),
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartService: cartService,
		handler:     NewOrderHandler(orderService),
	}
}

func testAddressRequest() orderapp.AddressRequest {
	return orderapp.AddressRequest{
		Name:    "Jane Doe",
		Street:  "1 Main St",
		City:    "Springfield",
		State:   "IL",
		ZipCode: "62701",
	}
}

func newPlacedOrder(t *testing.T, userID uuid.UUID) *order.Order {
	t.Helper()
	addr := valueobject.MustNewAddress("Jane Doe", "1 Main St", "Springfield", "IL", "62701")
	specs := []order.ItemSpec{
		{
			ProductID:   uuid.New(),
			ProductName: "Desk Lamp",
			ProductSKU:  "LAMP-1",
			Price:       decimal.NewFromInt(25),
			Quantity:    1,
		},
	}
	o, err := order.New("ORD-20260901-00001", userID, specs, addr, addr,
		order.PaymentMethodCreditCard, decimal.NewFromInt(2), decimal.NewFromInt(5), decimal.Zero)
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

func TestOrderHandler_Create(t *testing.T) {
	t.Run("places order from cart", func(t *testing.T) {
		env := setupOrderTestRouter()
		env.router.POST("/orders", env.handler.Create)

		userID := uuid.New()
		product := newCatalogProduct(t, "Desk Lamp", 25, 10)
		env.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
		env.productRepo.On("SaveWithLock", mock.Anything, product).Return(nil)

		ctx := context.Background()
		_, err := env.cartService.AddItem(ctx, userID, cartapp.AddItemRequest{ProductID: product.ID, Quantity: 1})
		require.NoError(t, err)

		env.orderRepo.On("NextOrderNumber", mock.Anything, mock.AnythingOfType("time.Time")).
			Return("ORD-20260901-00001", nil)
		env.orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)

		body, _ := json.Marshal(orderapp.CreateOrderRequest{
			ShippingAddress: testAddressRequest(),
			PaymentMethod:   "credit_card",
		})
		req, _ := http.NewRequest(http.MethodPost, "/orders", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(UserIDHeader, userID.String())

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)

		data := resp.Data.(map[string]any)
		assert.Equal(t, "ORD-20260901-00001", data["order_number"])
		assert.Equal(t, "pending", data["status"])
		assert.Equal(t, "pending", data["payment_status"])
		assert.Equal(t, "32", data["total"]) // 25 + 2 tax + 5 shipping

		env.orderRepo.AssertExpectations(t)
	})

	t.Run("empty cart yields 422", func(t *testing.T) {
		env := setupOrderTestRouter()
		env.router.POST("/orders", env.handler.Create)

		body, _ := json.Marshal(orderapp.CreateOrderRequest{
			ShippingAddress: testAddressRequest(),
			PaymentMethod:   "credit_card",
		})
		req, _ := http.NewRequest(http.MethodPost, "/orders", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(UserIDHeader, uuid.New().String())

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeEmptyCart, resp.Error.Code)
	})

	t.Run("insufficient stock yields 422 with product detail", func(t *testing.T) {
		env := setupOrderTestRouter()
		env.router.POST("/orders", env.handler.Create)

		userID := uuid.New()
		product := newCatalogProduct(t, "Desk Lamp", 25, 10)
		env.productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)

		ctx := context.Background()
		_, err := env.cartService.AddItem(ctx, userID, cartapp.AddItemRequest{ProductID: product.ID, Quantity: 5})
		require.NoError(t, err)

		// Stock drops between add-to-cart and checkout
		require.NoError(t, product.SetStock(decimal.NewFromInt(1)))

		body, _ := json.Marshal(orderapp.CreateOrderRequest{
			ShippingAddress: testAddressRequest(),
			PaymentMethod:   "credit_card",
		})
		req, _ := http.NewRequest(http.MethodPost, "/orders", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(UserIDHeader, userID.String())

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeInsufficientStock, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, product.ID.String())
	})

	t.Run("invalid payment method rejected by binding", func(t *testing.T) {
		env := setupOrderTestRouter()
		env.router.POST("/orders", env.handler.Create)

		body, _ := json.Marshal(map[string]any{
			"shipping_address": testAddressRequest(),
			"payment_method":   "barter",
		})
		req, _ := http.NewRequest(http.MethodPost, "/orders", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(UserIDHeader, uuid.New().String())

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing user ID yields 401", func(t *testing.T) {
		env := setupOrderTestRouter()
		env.router.POST("/orders", env.handler.Create)

		body, _ := json.Marshal(orderapp.CreateOrderRequest{
			ShippingAddress: testAddressRequest(),
			PaymentMethod:   "credit_card",
		})
		req, _ := http.NewRequest(http.MethodPost, "/orders", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestOrderHandler_GetByID(t *testing.T) {
	t.Run("returns order", func(t *testing.T) {
		env := setupOrderTestRouter()
		env.router.GET("/orders/:id", env.handler.GetByID)

		o := newPlacedOrder(t, uuid.New())
		env.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		req, _ := http.NewRequest(http.MethodGet, "/orders/"+o.ID.String(), nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]any)
		assert.Equal(t, o.OrderNumber, data["order_number"])
	})

	t.Run("unknown order yields 404", func(t *testing.T) {
		env := setupOrderTestRouter()
		env.router.GET("/orders/:id", env.handler.GetByID)

		id := uuid.New()
		env.orderRepo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		req, _ := http.NewRequest(http.MethodGet, "/orders/"+id.String(), nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid ID yields 400", func(t *testing.T) {
		env := setupOrderTestRouter()
		env.router.GET("/orders/:id", env.handler.GetByID)

		req, _ := http.NewRequest(http.MethodGet, "/orders/not-a-uuid", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_GetByOrderNumber(t *testing.T) {
	env := setupOrderTestRouter()
	env.router.GET("/orders/number/:order_number", env.handler.GetByOrderNumber)

	o := newPlacedOrder(t, uuid.New())
	env.orderRepo.On("FindByOrderNumber", mock.Anything, o.OrderNumber).Return(o, nil)

	req, _ := http.NewRequest(http.MethodGet, "/orders/number/"+o.OrderNumber, nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOrderHandler_List(t *testing.T) {
	env := setupOrderTestRouter()
	env.router.GET("/orders", env.handler.List)

	userID := uuid.New()
	orders := []order.Order{*newPlacedOrder(t, userID)}
	env.orderRepo.On("FindByUser", mock.Anything, userID, mock.AnythingOfType("shared.Filter")).
		Return(orders, nil)
	env.orderRepo.On("CountByUser", mock.Anything, userID, mock.AnythingOfType("shared.Filter")).
		Return(int64(1), nil)

	req, _ := http.NewRequest(http.MethodGet, "/orders?page=1&page_size=10", nil)
	req.Header.Set(UserIDHeader, userID.String())

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
	assert.Equal(t, 10, resp.Meta.PageSize)
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	t.Run("advances to processing", func(t *testing.T) {
		env := setupOrderTestRouter()
		env.router.PUT("/orders/:id/status", env.handler.UpdateStatus)

		o := newPlacedOrder(t, uuid.New())
		env.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		env.orderRepo.On("SaveWithLock", mock.Anything, o).Return(nil)

		body, _ := json.Marshal(orderapp.UpdateStatusRequest{Status: "processing"})
		req, _ := http.NewRequest(http.MethodPut, "/orders/"+o.ID.String()+"/status", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]any)
		assert.Equal(t, "processing", data["status"])
	})

	t.Run("skipping a stage yields 422", func(t *testing.T) {
		env := setupOrderTestRouter()
		env.router.PUT("/orders/:id/status", env.handler.UpdateStatus)

		o := newPlacedOrder(t, uuid.New())
		env.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		body, _ := json.Marshal(orderapp.UpdateStatusRequest{Status: "delivered"})
		req, _ := http.NewRequest(http.MethodPut, "/orders/"+o.ID.String()+"/status", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeInvalidState, resp.Error.Code)
	})

	t.Run("stale write yields 409", func(t *testing.T) {
		env := setupOrderTestRouter()
		env.router.PUT("/orders/:id/status", env.handler.UpdateStatus)

		o := newPlacedOrder(t, uuid.New())
		env.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		env.orderRepo.On("SaveWithLock", mock.Anything, o).Return(shared.ErrConcurrentModification)

		body, _ := json.Marshal(orderapp.UpdateStatusRequest{Status: "processing"})
		req, _ := http.NewRequest(http.MethodPut, "/orders/"+o.ID.String()+"/status", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown status rejected by binding", func(t *testing.T) {
		env := setupOrderTestRouter()
		env.router.PUT("/orders/:id/status", env.handler.UpdateStatus)

		body, _ := json.Marshal(map[string]string{"status": "teleported"})
		req, _ := http.NewRequest(http.MethodPut, "/orders/"+uuid.New().String()+"/status", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_UpdatePaymentStatus(t *testing.T) {
	t.Run("marks order paid", func(t *testing.T) {
		env := setupOrderTestRouter()
		env.router.PUT("/orders/:id/payment-status", env.handler.UpdatePaymentStatus)

		o := newPlacedOrder(t, uuid.New())
		env.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		env.orderRepo.On("SaveWithLock", mock.Anything, o).Return(nil)

		body, _ := json.Marshal(orderapp.UpdatePaymentStatusRequest{PaymentStatus: "paid"})
		req, _ := http.NewRequest(http.MethodPut, "/orders/"+o.ID.String()+"/payment-status", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]any)
		assert.Equal(t, "paid", data["payment_status"])
		assert.NotNil(t, data["paid_at"])
	})

	t.Run("refund before payment yields 422", func(t *testing.T) {
		env := setupOrderTestRouter()
		env.router.PUT("/orders/:id/payment-status", env.handler.UpdatePaymentStatus)

		o := newPlacedOrder(t, uuid.New())
		env.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		body, _ := json.Marshal(orderapp.UpdatePaymentStatusRequest{PaymentStatus: "refunded"})
		req, _ := http.NewRequest(http.MethodPut, "/orders/"+o.ID.String()+"/payment-status", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestOrderHandler_SetTracking(t *testing.T) {
	env := setupOrderTestRouter()
	env.router.PUT("/orders/:id/tracking", env.handler.SetTracking)

	o := newPlacedOrder(t, uuid.New())
	env.orderRepo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	env.orderRepo.On("SaveWithLock", mock.Anything, o).Return(nil)

	body, _ := json.Marshal(orderapp.SetTrackingRequest{TrackingNumber: "1Z999AA10123456784"})
	req, _ := http.NewRequest(http.MethodPut, "/orders/"+o.ID.String()+"/tracking", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]any)
	assert.Equal(t, "1Z999AA10123456784", data["tracking_number"])
	assert.Equal(t, "pending", data["status"])
}
