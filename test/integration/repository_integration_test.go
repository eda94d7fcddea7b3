package integration

import (
	"context"
	"strings"
	"testing"
	"time"

	"luxe/internal/model"
	"luxe/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int       { return &n }
func int64Ptr(n int64) *int64 { return &n }

// newTestOrder builds a pending order for the given payment method with a
// unique order number.
func newTestOrder(method model.PaymentMethod, items []model.OrderLineItem) *model.Order {
	now := time.Now().UTC()
	suffix := strings.ToUpper(uuid.NewString()[:8])

	var subtotal int64
	for _, item := range items {
		subtotal += item.EffectivePrice() * int64(item.Quantity)
	}

	var codCharges int64
	status := model.OrderStatusPending
	if method == model.PaymentMethodCOD {
		codCharges = 30000
		status = model.OrderStatusConfirmed
	}

	return &model.Order{
		ID:            uuid.New(),
		OrderNumber:   "LUXTEST" + suffix,
		CustomerName:  "Asha Rao",
		CustomerPhone: "+919876543210",
		CustomerEmail: "asha@example.com",
		ShippingAddress: model.ShippingAddress{
			Line1:   "12 MG Road",
			City:    "Bengaluru",
			State:   "Karnataka",
			Pincode: "560001",
		},
		Items:           items,
		Subtotal:        subtotal,
		ShippingCharges: 4900,
		CODCharges:      codCharges,
		TotalAmount:     subtotal + 4900 + codCharges,
		PaymentMethod:   method,
		PaymentStatus:   model.PaymentStatusPending,
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// getStock reads a product's raw stock_quantity for assertions.
func getStock(t *testing.T, pool *pgxpool.Pool, productID string) *int {
	t.Helper()

	var stock *int
	err := pool.QueryRow(context.Background(),
		"SELECT stock_quantity FROM products WHERE id = $1", productID).Scan(&stock)
	require.NoError(t, err)
	return stock
}

func TestProductRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	repo := repository.NewProductRepository(testDB.Pool, logger)

	ctx := context.Background()

	t.Run("GetAll returns only active products", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		products, err := repo.GetAll(ctx, 50, 0)
		require.NoError(t, err)
		assert.Len(t, products, 4)
		for _, p := range products {
			assert.True(t, p.IsActive)
			assert.NotEqual(t, "LUX-TEE-OLD", p.ID)
		}
	})

	t.Run("GetAll respects pagination", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		first, err := repo.GetAll(ctx, 2, 0)
		require.NoError(t, err)
		assert.Len(t, first, 2)

		second, err := repo.GetAll(ctx, 2, 2)
		require.NoError(t, err)
		assert.Len(t, second, 2)
		assert.NotEqual(t, first[0].ID, second[0].ID)
	})

	t.Run("GetByID returns product with sale price", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		product, err := repo.GetByID(ctx, "LUX-TEE-001")
		require.NoError(t, err)
		require.NotNil(t, product)
		assert.Equal(t, "Classic Tee", product.Title)
		assert.Equal(t, int64(79900), product.Price)
		require.NotNil(t, product.SalePrice)
		assert.Equal(t, int64(59900), *product.SalePrice)
		require.NotNil(t, product.StockQuantity)
		assert.Equal(t, 10, *product.StockQuantity)
	})

	t.Run("GetByID returns nil for unknown product", func(t *testing.T) {
		product, err := repo.GetByID(ctx, "LUX-NOPE")
		require.NoError(t, err)
		assert.Nil(t, product)
	})

	t.Run("GetByIDs skips missing ids", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		products, err := repo.GetByIDs(ctx, []string{"LUX-TEE-001", "LUX-NOPE", "LUX-HOOD-001"})
		require.NoError(t, err)
		assert.Len(t, products, 2)
	})

	t.Run("AdjustStock increment starts tracking untracked products", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		product, err := repo.AdjustStock(ctx, "LUX-HOOD-001", model.StockOpIncrement, 7)
		require.NoError(t, err)
		require.NotNil(t, product)
		require.NotNil(t, product.StockQuantity)
		assert.Equal(t, 7, *product.StockQuantity)
	})

	t.Run("AdjustStock decrement clamps at zero", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		product, err := repo.AdjustStock(ctx, "LUX-TEE-002", model.StockOpDecrement, 50)
		require.NoError(t, err)
		require.NotNil(t, product)
		require.NotNil(t, product.StockQuantity)
		assert.Equal(t, 0, *product.StockQuantity)
	})

	t.Run("AdjustStock set overwrites stock", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		product, err := repo.AdjustStock(ctx, "LUX-CAP-001", model.StockOpSet, 25)
		require.NoError(t, err)
		require.NotNil(t, product)
		require.NotNil(t, product.StockQuantity)
		assert.Equal(t, 25, *product.StockQuantity)
	})

	t.Run("AdjustStock returns nil for unknown product", func(t *testing.T) {
		product, err := repo.AdjustStock(ctx, "LUX-NOPE", model.StockOpIncrement, 1)
		require.NoError(t, err)
		assert.Nil(t, product)
	})

	t.Run("Upsert inserts and updates catalog entries", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		err := repo.Upsert(ctx, []model.Product{
			{
				ID:            "LUX-TEE-001",
				Title:         "Classic Tee v2",
				Price:         84900,
				Category:      "tops",
				StockQuantity: intPtr(20),
				IsActive:      true,
			},
			{
				ID:       "LUX-SOCK-001",
				Title:    "Crew Socks",
				Price:    29900,
				Category: "accessories",
				IsActive: true,
			},
		})
		require.NoError(t, err)

		updated, err := repo.GetByID(ctx, "LUX-TEE-001")
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, "Classic Tee v2", updated.Title)
		assert.Equal(t, int64(84900), updated.Price)
		assert.Nil(t, updated.SalePrice)
		require.NotNil(t, updated.StockQuantity)
		assert.Equal(t, 20, *updated.StockQuantity)

		inserted, err := repo.GetByID(ctx, "LUX-SOCK-001")
		require.NoError(t, err)
		require.NotNil(t, inserted)
		assert.Equal(t, "Crew Socks", inserted.Title)
		assert.Nil(t, inserted.StockQuantity)
	})
}

func TestOrderRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	repo := repository.NewOrderRepository(testDB.Pool, logger)

	ctx := context.Background()

	codItems := func() []model.OrderLineItem {
		return []model.OrderLineItem{
			{ProductID: "LUX-TEE-001", Title: "Classic Tee", UnitPrice: 79900, SalePrice: int64Ptr(59900), Quantity: 2, Size: strPtr("M")},
			{ProductID: "LUX-HOOD-001", Title: "Fleece Hoodie", UnitPrice: 199900, Quantity: 1},
		}
	}

	t.Run("Create with stock decrement round-trips and adjusts stock", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		order := newTestOrder(model.PaymentMethodCOD, codItems())
		require.NoError(t, repo.Create(ctx, order, true))

		got, err := repo.GetByOrderNumber(ctx, order.OrderNumber)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, order.ID, got.ID)
		assert.Equal(t, order.TotalAmount, got.TotalAmount)
		assert.Equal(t, model.PaymentMethodCOD, got.PaymentMethod)
		assert.Equal(t, model.PaymentStatusPending, got.PaymentStatus)
		assert.Equal(t, model.OrderStatusConfirmed, got.Status)
		assert.Equal(t, "560001", got.ShippingAddress.Pincode)

		require.Len(t, got.Items, 2)
		assert.Equal(t, "LUX-TEE-001", got.Items[0].ProductID)
		require.NotNil(t, got.Items[0].SalePrice)
		assert.Equal(t, int64(59900), *got.Items[0].SalePrice)
		require.NotNil(t, got.Items[0].Size)
		assert.Equal(t, "M", *got.Items[0].Size)
		assert.Equal(t, "LUX-HOOD-001", got.Items[1].ProductID)

		// Tracked stock decremented, untracked left NULL.
		stock := getStock(t, testDB.Pool, "LUX-TEE-001")
		require.NotNil(t, stock)
		assert.Equal(t, 8, *stock)
		assert.Nil(t, getStock(t, testDB.Pool, "LUX-HOOD-001"))
	})

	t.Run("Create without stock decrement leaves stock untouched", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		order := newTestOrder(model.PaymentMethodRazorpay, codItems())
		require.NoError(t, repo.Create(ctx, order, false))

		stock := getStock(t, testDB.Pool, "LUX-TEE-001")
		require.NotNil(t, stock)
		assert.Equal(t, 10, *stock)
	})

	t.Run("GetByOrderNumber returns nil for unknown number", func(t *testing.T) {
		got, err := repo.GetByOrderNumber(ctx, "LUXNOPE")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("SetGatewayOrder enables gateway lookups", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		order := newTestOrder(model.PaymentMethodRazorpay, codItems())
		require.NoError(t, repo.Create(ctx, order, false))
		require.NoError(t, repo.SetGatewayOrder(ctx, order.ID, "order_rzp_abc"))

		got, err := repo.GetByGatewayOrderID(ctx, "order_rzp_abc")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, order.ID, got.ID)
		require.NotNil(t, got.RazorpayOrderID)
		assert.Equal(t, "order_rzp_abc", *got.RazorpayOrderID)
	})

	t.Run("MarkPaid confirms once and decrements stock exactly once", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		order := newTestOrder(model.PaymentMethodRazorpay, codItems())
		require.NoError(t, repo.Create(ctx, order, false))

		// First confirmation path wins.
		updated, err := repo.MarkPaid(ctx, order.ID, "pay_abc", "sig_abc")
		require.NoError(t, err)
		assert.True(t, updated)

		stock := getStock(t, testDB.Pool, "LUX-TEE-001")
		require.NotNil(t, stock)
		assert.Equal(t, 8, *stock)

		// Second path (the webhook racing the client callback) is a no-op.
		updated, err = repo.MarkPaid(ctx, order.ID, "pay_abc", "")
		require.NoError(t, err)
		assert.False(t, updated)

		stock = getStock(t, testDB.Pool, "LUX-TEE-001")
		require.NotNil(t, stock)
		assert.Equal(t, 8, *stock)

		got, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, model.PaymentStatusPaid, got.PaymentStatus)
		assert.Equal(t, model.OrderStatusConfirmed, got.Status)
		require.NotNil(t, got.RazorpayPaymentID)
		assert.Equal(t, "pay_abc", *got.RazorpayPaymentID)

		// Paid orders are reachable by payment id for refund webhooks.
		byPayment, err := repo.GetByPaymentID(ctx, "pay_abc")
		require.NoError(t, err)
		require.NotNil(t, byPayment)
		assert.Equal(t, order.ID, byPayment.ID)
	})

	t.Run("MarkPaid clamps stock at zero on oversell", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		// LUX-TEE-002 has 3 in stock; pay for 5.
		order := newTestOrder(model.PaymentMethodRazorpay, []model.OrderLineItem{
			{ProductID: "LUX-TEE-002", Title: "Oversized Tee", UnitPrice: 89900, Quantity: 5},
		})
		require.NoError(t, repo.Create(ctx, order, false))

		updated, err := repo.MarkPaid(ctx, order.ID, "pay_oversell", "sig")
		require.NoError(t, err)
		assert.True(t, updated)

		stock := getStock(t, testDB.Pool, "LUX-TEE-002")
		require.NotNil(t, stock)
		assert.Equal(t, 0, *stock)
	})

	t.Run("MarkPaymentFailed only moves pending payments", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		order := newTestOrder(model.PaymentMethodRazorpay, codItems())
		require.NoError(t, repo.Create(ctx, order, false))

		updated, err := repo.MarkPaymentFailed(ctx, order.ID)
		require.NoError(t, err)
		assert.True(t, updated)

		got, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusFailed, got.PaymentStatus)
		assert.Equal(t, model.OrderStatusCancelled, got.Status)

		// Failing twice, or failing after a successful payment, is a no-op.
		updated, err = repo.MarkPaymentFailed(ctx, order.ID)
		require.NoError(t, err)
		assert.False(t, updated)
	})

	t.Run("MarkPaymentFailed does not cancel paid orders", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		order := newTestOrder(model.PaymentMethodRazorpay, codItems())
		require.NoError(t, repo.Create(ctx, order, false))

		updated, err := repo.MarkPaid(ctx, order.ID, "pay_def", "sig")
		require.NoError(t, err)
		require.True(t, updated)

		updated, err = repo.MarkPaymentFailed(ctx, order.ID)
		require.NoError(t, err)
		assert.False(t, updated)

		got, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusPaid, got.PaymentStatus)
	})

	t.Run("MarkRefunded only applies to paid orders", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		order := newTestOrder(model.PaymentMethodRazorpay, codItems())
		require.NoError(t, repo.Create(ctx, order, false))

		updated, err := repo.MarkRefunded(ctx, order.ID)
		require.NoError(t, err)
		assert.False(t, updated)

		_, err = repo.MarkPaid(ctx, order.ID, "pay_ref", "sig")
		require.NoError(t, err)

		updated, err = repo.MarkRefunded(ctx, order.ID)
		require.NoError(t, err)
		assert.True(t, updated)

		got, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, model.PaymentStatusRefunded, got.PaymentStatus)
	})

	t.Run("UpdateFulfillment stamps shipped_at and delivered_at once", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		order := newTestOrder(model.PaymentMethodCOD, codItems())
		require.NoError(t, repo.Create(ctx, order, true))

		err := repo.UpdateFulfillment(ctx, order.ID, model.OrderStatusShipped,
			strPtr("AWB123"), strPtr("https://track.example.com/AWB123"))
		require.NoError(t, err)

		shipped, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusShipped, shipped.Status)
		require.NotNil(t, shipped.TrackingNumber)
		assert.Equal(t, "AWB123", *shipped.TrackingNumber)
		require.NotNil(t, shipped.ShippedAt)
		assert.Nil(t, shipped.DeliveredAt)

		// Delivering without tracking args keeps the stored tracking fields.
		err = repo.UpdateFulfillment(ctx, order.ID, model.OrderStatusDelivered, nil, nil)
		require.NoError(t, err)

		delivered, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusDelivered, delivered.Status)
		require.NotNil(t, delivered.TrackingNumber)
		assert.Equal(t, "AWB123", *delivered.TrackingNumber)
		require.NotNil(t, delivered.DeliveredAt)
		require.NotNil(t, delivered.ShippedAt)
		assert.Equal(t, shipped.ShippedAt.UTC(), delivered.ShippedAt.UTC())
	})

	t.Run("FindByPhone returns newest first", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		first := newTestOrder(model.PaymentMethodCOD, codItems())
		first.CreatedAt = time.Now().UTC().Add(-time.Hour)
		first.UpdatedAt = first.CreatedAt
		require.NoError(t, repo.Create(ctx, first, false))

		second := newTestOrder(model.PaymentMethodCOD, codItems())
		require.NoError(t, repo.Create(ctx, second, false))

		other := newTestOrder(model.PaymentMethodCOD, codItems())
		other.CustomerPhone = "+918888888888"
		require.NoError(t, repo.Create(ctx, other, false))

		orders, err := repo.FindByPhone(ctx, "+919876543210")
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, second.ID, orders[0].ID)
		assert.Equal(t, first.ID, orders[1].ID)
		require.Len(t, orders[0].Items, 2)
	})

	t.Run("List and Count paginate over all orders", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		for i := 0; i < 5; i++ {
			order := newTestOrder(model.PaymentMethodCOD, codItems())
			order.CreatedAt = time.Now().UTC().Add(time.Duration(-i) * time.Minute)
			order.UpdatedAt = order.CreatedAt
			require.NoError(t, repo.Create(ctx, order, false))
		}

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(5), count)

		page, err := repo.List(ctx, 2, 0)
		require.NoError(t, err)
		assert.Len(t, page, 2)

		rest, err := repo.List(ctx, 10, 2)
		require.NoError(t, err)
		assert.Len(t, rest, 3)
	})

	t.Run("Delete removes the order and its items", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedProducts(t, testDB.Pool)

		order := newTestOrder(model.PaymentMethodRazorpay, codItems())
		require.NoError(t, repo.Create(ctx, order, false))
		require.NoError(t, repo.Delete(ctx, order.ID))

		got, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		var itemCount int
		err = testDB.Pool.QueryRow(ctx,
			"SELECT COUNT(*) FROM order_items WHERE order_id = $1", order.ID).Scan(&itemCount)
		require.NoError(t, err)
		assert.Zero(t, itemCount)
	})
}

func TestPincodeRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()
	repo := repository.NewPincodeRepository(testDB.Pool, logger)

	ctx := context.Background()

	CleanupDB(t, testDB.Pool)
	SeedPincodes(t, testDB.Pool)

	t.Run("serviceable pincode with COD", func(t *testing.T) {
		p, err := repo.GetByPincode(ctx, "560001")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.True(t, p.CODAvailable)
		assert.Equal(t, 3, p.DeliveryDays)
		require.NotNil(t, p.City)
		assert.Equal(t, "Bengaluru", *p.City)
	})

	t.Run("serviceable pincode without COD", func(t *testing.T) {
		p, err := repo.GetByPincode(ctx, "110001")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.False(t, p.CODAvailable)
	})

	t.Run("unserviceable pincode returns nil", func(t *testing.T) {
		p, err := repo.GetByPincode(ctx, "999999")
		require.NoError(t, err)
		assert.Nil(t, p)
	})
}

func strPtr(s string) *string { return &s }
