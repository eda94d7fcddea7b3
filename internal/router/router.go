package router

import (
	"net/http"
	"strings"

	"luxe/internal/handler"
	"luxe/internal/middleware"

	"github.com/rs/zerolog"
)

// notFound writes the same JSON error body the handlers use.
func notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error": "not found"}`))
}

// Handlers bundles the HTTP handlers the router wires up.
type Handlers struct {
	Product *handler.ProductHandler
	Order   *handler.OrderHandler
	Payment *handler.PaymentHandler
	Webhook *handler.WebhookHandler
	Stock   *handler.StockHandler
	Pincode *handler.PincodeHandler
	Admin   *handler.AdminHandler
}

// New creates the HTTP router with all routes and middleware configured.
//
// The webhook route bypasses the rate limiter: gateway redeliveries must
// never be throttled. Admin routes sit behind the API-key check.
func New(h Handlers, adminAPIKey string, limiter middleware.Limiter, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Product routes
	productRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/products" && r.URL.Path != "/api/products/" {
			h.Product.GetByID(w, r)
			return
		}
		h.Product.GetAll(w, r)
	}
	mux.HandleFunc("/api/products", productRouteHandler)
	mux.HandleFunc("/api/products/", productRouteHandler)

	// Order routes
	orderRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && (r.URL.Path == "/api/orders" || r.URL.Path == "/api/orders/") {
			h.Order.Create(w, r)
			return
		}
		if r.Method == http.MethodGet && (r.URL.Path == "/api/orders" || r.URL.Path == "/api/orders/") {
			h.Order.Find(w, r)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/api/orders/") && r.URL.Path != "/api/orders/" {
			h.Order.GetByNumber(w, r)
			return
		}
		notFound(w)
	}
	mux.HandleFunc("/api/orders", orderRouteHandler)
	mux.HandleFunc("/api/orders/", orderRouteHandler)

	// Payment callback routes
	mux.HandleFunc("/api/payments/verify", h.Payment.Verify)
	mux.HandleFunc("/api/payments/failed", h.Payment.Failed)

	// Stock routes: the batch check is public, per-product updates are admin-only
	adminAuth := middleware.AdminAuth(adminAPIKey, logger)
	stockAdjust := adminAuth(http.HandlerFunc(h.Stock.Adjust))
	mux.HandleFunc("/api/stock/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/stock/check" {
			h.Stock.Check(w, r)
			return
		}
		stockAdjust.ServeHTTP(w, r)
	})

	// Pincode serviceability
	mux.HandleFunc("/api/pincodes/", h.Pincode.Lookup)

	// Admin routes
	adminOrders := adminAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/admin/orders" || r.URL.Path == "/api/admin/orders/" {
			h.Admin.ListOrders(w, r)
			return
		}
		if strings.HasSuffix(r.URL.Path, "/status") {
			h.Admin.UpdateStatus(w, r)
			return
		}
		notFound(w)
	}))
	mux.Handle("/api/admin/orders", adminOrders)
	mux.Handle("/api/admin/orders/", adminOrders)

	// Rate-limited public surface
	var public http.Handler = mux
	if limiter != nil {
		public = middleware.RateLimit(limiter, logger)(public)
	}

	// Webhook route skips the limiter; signature verification is its gate.
	root := http.NewServeMux()
	root.HandleFunc("/api/webhooks/razorpay", h.Webhook.Handle)
	root.Handle("/", public)

	// Apply middleware in order: Recovery -> Logging -> CORS
	var chain http.Handler = root
	chain = middleware.CORS(chain)
	chain = middleware.Logging(logger)(chain)
	chain = middleware.Recovery(logger)(chain)

	return chain
}
