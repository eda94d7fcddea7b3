package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS products (
			id VARCHAR(64) PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			price BIGINT NOT NULL,
			sale_price BIGINT,
			category VARCHAR(100) NOT NULL,
			image TEXT NOT NULL DEFAULT '',
			stock_quantity INTEGER,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			order_number VARCHAR(32) NOT NULL UNIQUE,
			customer_name VARCHAR(255) NOT NULL,
			customer_phone VARCHAR(20) NOT NULL,
			customer_email VARCHAR(255) NOT NULL DEFAULT '',
			shipping_address JSONB NOT NULL,
			subtotal BIGINT NOT NULL,
			shipping_charges BIGINT NOT NULL,
			cod_charges BIGINT NOT NULL,
			total_amount BIGINT NOT NULL,
			payment_method VARCHAR(16) NOT NULL,
			payment_status VARCHAR(16) NOT NULL,
			razorpay_order_id VARCHAR(64),
			razorpay_payment_id VARCHAR(64),
			razorpay_signature VARCHAR(128),
			status VARCHAR(16) NOT NULL,
			tracking_number VARCHAR(64),
			tracking_url TEXT,
			shipped_at TIMESTAMPTZ,
			delivered_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS order_items (
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			product_id VARCHAR(64) NOT NULL,
			title VARCHAR(255) NOT NULL,
			unit_price BIGINT NOT NULL,
			sale_price BIGINT,
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			size VARCHAR(16),
			image TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (order_id, position)
		);

		CREATE TABLE IF NOT EXISTS pincodes (
			pincode VARCHAR(6) PRIMARY KEY,
			city VARCHAR(100),
			state VARCHAR(100),
			cod_available BOOLEAN NOT NULL DEFAULT FALSE,
			delivery_days INTEGER NOT NULL DEFAULT 5
		);

		CREATE INDEX IF NOT EXISTS idx_orders_customer_phone ON orders(customer_phone);
		CREATE INDEX IF NOT EXISTS idx_orders_razorpay_order_id ON orders(razorpay_order_id);
		CREATE INDEX IF NOT EXISTS idx_orders_razorpay_payment_id ON orders(razorpay_payment_id);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedProducts inserts test catalog data into the database.
func SeedProducts(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	type seedProduct struct {
		id        string
		title     string
		price     int64
		salePrice *int64
		category  string
		stock     *int
		isActive  bool
	}

	intPtr := func(n int) *int { return &n }
	int64Ptr := func(n int64) *int64 { return &n }

	products := []seedProduct{
		{"LUX-TEE-001", "Classic Tee", 79900, int64Ptr(59900), "tops", intPtr(10), true},
		{"LUX-TEE-002", "Oversized Tee", 89900, nil, "tops", intPtr(3), true},
		{"LUX-HOOD-001", "Fleece Hoodie", 199900, nil, "outerwear", nil, true},
		{"LUX-CAP-001", "Logo Cap", 49900, nil, "accessories", intPtr(0), true},
		{"LUX-TEE-OLD", "Discontinued Tee", 69900, nil, "tops", intPtr(5), false},
	}

	for _, p := range products {
		_, err := pool.Exec(ctx,
			`INSERT INTO products (id, title, price, sale_price, category, image, stock_quantity, is_active)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			p.id, p.title, p.price, p.salePrice, p.category, "https://cdn.example.com/"+p.id+".jpg", p.stock, p.isActive,
		)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", p.id, err)
		}
	}
}

// SeedPincodes inserts serviceability test data into the database.
func SeedPincodes(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	pincodes := []struct {
		pincode      string
		city         string
		state        string
		codAvailable bool
		deliveryDays int
	}{
		{"560001", "Bengaluru", "Karnataka", true, 3},
		{"400001", "Mumbai", "Maharashtra", true, 4},
		{"110001", "New Delhi", "Delhi", false, 5},
	}

	for _, p := range pincodes {
		_, err := pool.Exec(ctx,
			`INSERT INTO pincodes (pincode, city, state, cod_available, delivery_days)
			 VALUES ($1, $2, $3, $4, $5)`,
			p.pincode, p.city, p.state, p.codAvailable, p.deliveryDays,
		)
		if err != nil {
			t.Fatalf("failed to seed pincode %s: %v", p.pincode, err)
		}
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_items", "orders", "products", "pincodes"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
