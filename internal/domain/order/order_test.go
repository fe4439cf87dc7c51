package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddress(t *testing.T) valueobject.Address {
	t.Helper()
	return valueobject.MustNewAddress("Jane Doe", "1 Main St", "Springfield", "IL", "62701")
}

func testSpecs() []ItemSpec {
	return []ItemSpec{
		{ProductID: uuid.New(), ProductName: "A", ProductSKU: "SKU-A", Price: decimal.NewFromInt(10), Quantity: 2},
		{ProductID: uuid.New(), ProductName: "B", ProductSKU: "SKU-B", Price: decimal.NewFromInt(5), Quantity: 1},
	}
}

func createTestOrder(t *testing.T) *Order {
	t.Helper()
	addr := testAddress(t)
	o, err := New("ORD-20260901-00001", uuid.New(), testSpecs(), addr, addr,
		PaymentMethodCreditCard, decimal.NewFromInt(2), decimal.NewFromInt(5), decimal.Zero)
	require.NoError(t, err)
	return o
}

func TestPaymentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     PaymentStatus
		to       PaymentStatus
		canTrans bool
	}{
		{PaymentStatusPending, PaymentStatusPaid, true},
		{PaymentStatusPending, PaymentStatusFailed, true},
		{PaymentStatusPending, PaymentStatusRefunded, false},
		{PaymentStatusPaid, PaymentStatusRefunded, true},
		{PaymentStatusPaid, PaymentStatusPending, false},
		{PaymentStatusPaid, PaymentStatusFailed, false},
		{PaymentStatusFailed, PaymentStatusPaid, false},
		{PaymentStatusFailed, PaymentStatusPending, false},
		{PaymentStatusRefunded, PaymentStatusPaid, false},
		{PaymentStatusRefunded, PaymentStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     Status
		to       Status
		canTrans bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusPending, StatusDelivered, false},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusProcessing, StatusDelivered, false},
		{StatusProcessing, StatusPending, false},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusShipped, StatusPending, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusDelivered, StatusShipped, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusProcessing, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.False(t, StatusShipped.IsTerminal())
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}

func TestPaymentMethod_IsValid(t *testing.T) {
	assert.True(t, PaymentMethodCreditCard.IsValid())
	assert.True(t, PaymentMethodStripe.IsValid())
	assert.False(t, PaymentMethod("bitcoin").IsValid())
	assert.False(t, PaymentMethod("").IsValid())
}

func TestNew(t *testing.T) {
	t.Run("creates order with valid inputs", func(t *testing.T) {
		o := createTestOrder(t)

		assert.Equal(t, "ORD-20260901-00001", o.OrderNumber)
		assert.Equal(t, PaymentStatusPending, o.PaymentStatus)
		assert.Equal(t, StatusPending, o.Status)
		assert.Len(t, o.Items, 2)
		assert.Equal(t, 3, o.TotalQuantity())
		assert.True(t, o.Subtotal.Equal(decimal.NewFromInt(25)))
		assert.True(t, o.Total.Equal(decimal.NewFromInt(32)))
		assert.Equal(t, 1, o.Version)

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeOrderCreated, events[0].EventType())
	})

	t.Run("total identity holds", func(t *testing.T) {
		o := createTestOrder(t)
		expected := o.Subtotal.Add(o.Tax).Add(o.Shipping).Sub(o.Discount)
		assert.True(t, o.Total.Equal(expected))
	})

	t.Run("empty item list fails", func(t *testing.T) {
		addr := testAddress(t)
		_, err := New("ORD-20260901-00002", uuid.New(), nil, addr, addr,
			PaymentMethodCreditCard, decimal.Zero, decimal.Zero, decimal.Zero)
		assert.ErrorIs(t, err, shared.ErrEmptyCart)
	})

	t.Run("negative total fails", func(t *testing.T) {
		addr := testAddress(t)
		specs := []ItemSpec{{ProductID: uuid.New(), ProductName: "A", Price: decimal.NewFromInt(10), Quantity: 1}}
		_, err := New("ORD-20260901-00003", uuid.New(), specs, addr, addr,
			PaymentMethodCreditCard, decimal.Zero, decimal.Zero, decimal.NewFromInt(50))
		assert.ErrorIs(t, err, shared.ErrInvalidTotal)
	})

	t.Run("invalid payment method fails", func(t *testing.T) {
		addr := testAddress(t)
		_, err := New("ORD-20260901-00004", uuid.New(), testSpecs(), addr, addr,
			PaymentMethod("cash"), decimal.Zero, decimal.Zero, decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("invalid item quantity fails", func(t *testing.T) {
		addr := testAddress(t)
		specs := []ItemSpec{{ProductID: uuid.New(), ProductName: "A", Price: decimal.NewFromInt(10), Quantity: 0}}
		_, err := New("ORD-20260901-00005", uuid.New(), specs, addr, addr,
			PaymentMethodCreditCard, decimal.Zero, decimal.Zero, decimal.Zero)
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
	})

	t.Run("frozen prices are copies of the specs", func(t *testing.T) {
		specs := testSpecs()
		addr := testAddress(t)
		o, err := New("ORD-20260901-00006", uuid.New(), specs, addr, addr,
			PaymentMethodPayPal, decimal.Zero, decimal.Zero, decimal.Zero)
		require.NoError(t, err)

		// Changing the source spec afterwards must not reach the order
		specs[0].Price = decimal.NewFromInt(999)
		assert.True(t, o.Items[0].Price.Equal(decimal.NewFromInt(10)))
	})
}

func TestOrder_PaymentTransitions(t *testing.T) {
	t.Run("pending to paid", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.MarkPaid())
		assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)
		assert.NotNil(t, o.PaidAt)
	})

	t.Run("pending to failed", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.MarkPaymentFailed())
		assert.Equal(t, PaymentStatusFailed, o.PaymentStatus)
	})

	t.Run("paid to refunded", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.MarkPaid())
		require.NoError(t, o.Refund())
		assert.Equal(t, PaymentStatusRefunded, o.PaymentStatus)
	})

	t.Run("refund before payment fails", func(t *testing.T) {
		o := createTestOrder(t)
		err := o.Refund()
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
		assert.Equal(t, PaymentStatusPending, o.PaymentStatus)
	})

	t.Run("paying twice fails", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.MarkPaid())
		assert.ErrorIs(t, o.MarkPaid(), shared.ErrInvalidTransition)
	})
}

func TestOrder_StatusTransitions(t *testing.T) {
	t.Run("full fulfillment sequence", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.StartProcessing())
		require.NoError(t, o.Ship("TRACK-123"))
		require.NoError(t, o.Deliver())

		assert.Equal(t, StatusDelivered, o.Status)
		assert.Equal(t, "TRACK-123", o.TrackingNumber)
		assert.NotNil(t, o.ShippedAt)
		assert.NotNil(t, o.DeliveredAt)
	})

	t.Run("skipping processing fails", func(t *testing.T) {
		o := createTestOrder(t)
		err := o.Ship("TRACK-123")
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
		assert.Equal(t, StatusPending, o.Status)
		assert.Empty(t, o.TrackingNumber)
	})

	t.Run("skipping shipped fails", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.StartProcessing())
		assert.ErrorIs(t, o.Deliver(), shared.ErrInvalidTransition)
	})

	t.Run("cancel while pending", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.Cancel("changed my mind"))
		assert.Equal(t, StatusCancelled, o.Status)
		assert.Equal(t, "changed my mind", o.CancelReason)
		assert.NotNil(t, o.CancelledAt)
	})

	t.Run("cancel while processing", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.StartProcessing())
		require.NoError(t, o.Cancel("out of stock"))
		assert.Equal(t, StatusCancelled, o.Status)
	})

	t.Run("cancel after shipment fails", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.StartProcessing())
		require.NoError(t, o.Ship(""))

		err := o.Cancel("too late")
		assert.ErrorIs(t, err, shared.ErrInvalidTransition)
		assert.Equal(t, StatusShipped, o.Status)
	})

	t.Run("cancel after delivery fails", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.StartProcessing())
		require.NoError(t, o.Ship(""))
		require.NoError(t, o.Deliver())

		assert.ErrorIs(t, o.Cancel("too late"), shared.ErrInvalidTransition)
		assert.Equal(t, StatusDelivered, o.Status)
	})
}

func TestOrder_TransitionTo(t *testing.T) {
	t.Run("dispatches to the matching operation", func(t *testing.T) {
		o := createTestOrder(t)
		require.NoError(t, o.TransitionTo(StatusProcessing, ""))
		require.NoError(t, o.TransitionTo(StatusShipped, "TRACK-9"))
		assert.Equal(t, "TRACK-9", o.TrackingNumber)
		require.NoError(t, o.TransitionTo(StatusDelivered, ""))
	})

	t.Run("unknown target fails", func(t *testing.T) {
		o := createTestOrder(t)
		assert.ErrorIs(t, o.TransitionTo(Status("unknown"), ""), shared.ErrInvalidTransition)
		assert.ErrorIs(t, o.TransitionTo(StatusPending, ""), shared.ErrInvalidTransition)
	})
}

func TestOrder_SetTrackingNumber(t *testing.T) {
	o := createTestOrder(t)
	o.SetTrackingNumber("TRACK-77")

	assert.Equal(t, "TRACK-77", o.TrackingNumber)
	assert.Equal(t, StatusPending, o.Status)
}

func TestOrder_DomainEvents(t *testing.T) {
	o := createTestOrder(t)
	o.ClearDomainEvents()

	require.NoError(t, o.StartProcessing())
	require.NoError(t, o.Ship("TRACK-1"))
	require.NoError(t, o.Deliver())

	events := o.GetDomainEvents()
	require.Len(t, events, 3)
	assert.Equal(t, EventTypeOrderProcessing, events[0].EventType())
	assert.Equal(t, EventTypeOrderShipped, events[1].EventType())
	assert.Equal(t, EventTypeOrderDelivered, events[2].EventType())
}
