package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"luxe/internal/model"
	"luxe/internal/razorpay"
	"luxe/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// orderNumberPrefix prefixes every human-facing order number.
const orderNumberPrefix = "LUX"

// CheckoutRules holds the pricing thresholds applied at order creation.
// All amounts are integer paise.
type CheckoutRules struct {
	FreeShippingThreshold int64
	ShippingCharge        int64
	CODCharge             int64
	CODMinimum            int64
}

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	pincodeRepo repository.PincodeRepository
	gateway     razorpay.Gateway
	rules       CheckoutRules
	logger      zerolog.Logger
}

// NewOrderService creates the order lifecycle controller.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	pincodeRepo repository.PincodeRepository,
	gateway razorpay.Gateway,
	rules CheckoutRules,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		pincodeRepo: pincodeRepo,
		gateway:     gateway,
		rules:       rules,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder validates the cart, re-runs the stock gate, computes totals,
// persists the order and, for gateway payments, creates the remote order.
func (s *orderService) CreateOrder(ctx context.Context, req *model.CreateOrderRequest) (*model.CreateOrderResponse, error) {
	if err := validateCreateOrderRequest(req); err != nil {
		return nil, err
	}

	if err := s.checkServiceable(ctx, req.ShippingAddress.Pincode); err != nil {
		return nil, err
	}

	// Authoritative stock gate. The standalone check endpoint is advisory
	// only; this is the one that matters.
	items, err := s.gateItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	var subtotal int64
	for _, item := range items {
		subtotal += item.EffectivePrice() * int64(item.Quantity)
	}

	var shipping int64
	if subtotal < s.rules.FreeShippingThreshold {
		shipping = s.rules.ShippingCharge
	}

	var codCharges int64
	if req.PaymentMethod == model.PaymentMethodCOD {
		if subtotal < s.rules.CODMinimum {
			return nil, model.ErrCODMinimum
		}
		codCharges = s.rules.CODCharge
	}

	now := time.Now()
	order := &model.Order{
		ID:              uuid.New(),
		OrderNumber:     newOrderNumber(now),
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		ShippingAddress: req.ShippingAddress,
		Items:           items,
		Subtotal:        subtotal,
		ShippingCharges: shipping,
		CODCharges:      codCharges,
		TotalAmount:     subtotal + shipping + codCharges,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   model.PaymentStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if req.PaymentMethod == model.PaymentMethodCOD {
		return s.createCODOrder(ctx, order)
	}
	return s.createGatewayOrder(ctx, order)
}

// createCODOrder persists a COD order. COD needs no upfront payment proof, so
// the order is confirmed immediately and stock is decremented in the same
// transaction as the insert.
func (s *orderService) createCODOrder(ctx context.Context, order *model.Order) (*model.CreateOrderResponse, error) {
	order.Status = model.OrderStatusConfirmed

	if err := s.orderRepo.Create(ctx, order, true); err != nil {
		s.logger.Error().Err(err).Str("order_number", order.OrderNumber).Msg("failed to create COD order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_number", order.OrderNumber).
		Int64("total_amount", order.TotalAmount).
		Msg("COD order created")

	return &model.CreateOrderResponse{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		TotalAmount: order.TotalAmount,
	}, nil
}

// createGatewayOrder persists a pending order and creates the remote gateway
// order. If the gateway call fails, the local row is deleted so no orphaned
// pending orders accumulate from this path.
func (s *orderService) createGatewayOrder(ctx context.Context, order *model.Order) (*model.CreateOrderResponse, error) {
	order.Status = model.OrderStatusPending

	if err := s.orderRepo.Create(ctx, order, false); err != nil {
		s.logger.Error().Err(err).Str("order_number", order.OrderNumber).Msg("failed to create gateway order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	remote, err := s.gateway.CreateOrder(ctx, order.TotalAmount, order.OrderNumber, map[string]string{
		"order_number": order.OrderNumber,
		"phone":        order.CustomerPhone,
	})
	if err != nil {
		// Compensate: the delete is not transactional with the insert, so a
		// crash right here can still leave an orphan.
		if delErr := s.orderRepo.Delete(ctx, order.ID); delErr != nil {
			s.logger.Error().
				Err(delErr).
				Str("order_number", order.OrderNumber).
				Msg("failed to delete order after gateway failure")
		}
		s.logger.Error().Err(err).Str("order_number", order.OrderNumber).Msg("gateway order creation failed")
		return nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	if err := s.orderRepo.SetGatewayOrder(ctx, order.ID, remote.ID); err != nil {
		return nil, fmt.Errorf("failed to store gateway order id: %w", err)
	}

	s.logger.Info().
		Str("order_number", order.OrderNumber).
		Str("gateway_order_id", remote.ID).
		Int64("total_amount", order.TotalAmount).
		Msg("gateway order created")

	return &model.CreateOrderResponse{
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		TotalAmount:     order.TotalAmount,
		RazorpayOrderID: remote.ID,
	}, nil
}

// gateItems applies the fail-open stock policy and snapshots catalog prices
// onto the line items. Catalog values win over client-sent values when the
// product is known; unknown products pass through untouched.
func (s *orderService) gateItems(ctx context.Context, items []model.OrderLineItem) ([]model.OrderLineItem, error) {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		// Fail open: a store read error must not lose the sale.
		s.logger.Warn().Err(err).Msg("stock gate lookup failed, proceeding without catalog check")
		return items, nil
	}

	byID := make(map[string]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	snapshotted := make([]model.OrderLineItem, len(items))
	for i, item := range items {
		p, ok := byID[item.ProductID]
		if !ok {
			snapshotted[i] = item
			continue
		}
		if !p.IsActive {
			return nil, &model.OutOfStockError{ProductID: item.ProductID, Inactive: true}
		}
		if p.StockQuantity != nil && *p.StockQuantity <= 0 {
			return nil, &model.OutOfStockError{ProductID: item.ProductID}
		}
		item.Title = p.Title
		item.UnitPrice = p.Price
		item.SalePrice = p.SalePrice
		if item.Image == "" {
			item.Image = p.Image
		}
		snapshotted[i] = item
	}

	return snapshotted, nil
}

// checkServiceable rejects orders shipped to a pincode the serviceability
// table does not know. Like the stock gate it fails open on lookup errors;
// only an explicit miss blocks the order.
func (s *orderService) checkServiceable(ctx context.Context, pincode string) error {
	record, err := s.pincodeRepo.GetByPincode(ctx, pincode)
	if err != nil {
		s.logger.Warn().Err(err).Str("pincode", pincode).Msg("serviceability lookup failed, accepting order")
		return nil
	}
	if record == nil {
		return model.ErrUnserviceable
	}
	return nil
}

// VerifyPayment handles the client-side payment callback.
//
// Signature validity alone is not trusted as proof of a successful charge: a
// secondary status fetch must report captured or authorized. If that fetch
// itself fails, verification proceeds on the signature alone rather than
// failing the whole flow.
func (s *orderService) VerifyPayment(ctx context.Context, req *model.VerifyPaymentRequest) (*model.Order, error) {
	order, err := s.orderRepo.GetByOrderNumber(ctx, req.OrderNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	// Idempotent replay: re-verifying an already-paid order succeeds without
	// reapplying side effects.
	if order.PaymentStatus == model.PaymentStatusPaid {
		s.logger.Debug().Str("order_number", order.OrderNumber).Msg("order already paid, verification is a no-op")
		return order, nil
	}

	if order.RazorpayOrderID == nil || *order.RazorpayOrderID != req.RazorpayOrderID {
		s.logger.Warn().
			Str("order_number", order.OrderNumber).
			Str("claimed_gateway_order", req.RazorpayOrderID).
			Msg("gateway order id mismatch on verification")
		return nil, model.ErrInvalidSignature
	}

	if !s.gateway.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		s.logger.Warn().Str("order_number", order.OrderNumber).Msg("payment signature rejected")
		return nil, model.ErrInvalidSignature
	}

	payment, err := s.gateway.FetchPayment(ctx, req.RazorpayPaymentID)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("order_number", order.OrderNumber).
			Msg("secondary payment fetch failed, proceeding on signature alone")
	} else if !payment.IsSettled() {
		s.logger.Warn().
			Str("order_number", order.OrderNumber).
			Str("payment_status", payment.Status).
			Msg("payment not captured or authorized")
		return nil, model.ErrPaymentNotCapture
	}

	applied, err := s.orderRepo.MarkPaid(ctx, order.ID, req.RazorpayPaymentID, req.RazorpaySignature)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}
	if !applied {
		s.logger.Debug().Str("order_number", order.OrderNumber).Msg("payment already confirmed by webhook")
	}

	confirmed, err := s.orderRepo.GetByID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}
	return confirmed, nil
}

// MarkPaymentFailed is the best-effort cancel path. Losing this call is
// acceptable; the webhook remains the source of truth for failures.
func (s *orderService) MarkPaymentFailed(ctx context.Context, orderNumber string) error {
	order, err := s.orderRepo.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return model.ErrOrderNotFound
	}

	// The widget-dismiss notification only exists for gateway checkouts. A
	// COD order is payment-pending until delivery, so without this guard
	// anyone could cancel it through the public endpoint.
	if order.PaymentMethod != model.PaymentMethodRazorpay {
		s.logger.Warn().
			Str("order_number", orderNumber).
			Str("payment_method", string(order.PaymentMethod)).
			Msg("ignoring payment-failed notification for non-gateway order")
		return nil
	}

	applied, err := s.orderRepo.MarkPaymentFailed(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}
	if applied {
		s.logger.Info().Str("order_number", orderNumber).Msg("payment marked failed, order cancelled")
	}
	return nil
}

// ProcessWebhookEvent consumes an asynchronous gateway notification. The
// confirmation events funnel into the same conditional mark-paid update as
// the client callback, so whichever path runs first wins and the other is a
// no-op.
func (s *orderService) ProcessWebhookEvent(ctx context.Context, event *razorpay.WebhookEvent) error {
	switch event.Event {
	case razorpay.EventPaymentCaptured, razorpay.EventOrderPaid:
		return s.confirmFromWebhook(ctx, event)
	case razorpay.EventPaymentFailed:
		return s.failFromWebhook(ctx, event)
	case razorpay.EventRefundCreated, razorpay.EventRefundProcessed:
		return s.refundFromWebhook(ctx, event)
	default:
		s.logger.Info().Str("event", event.Event).Msg("ignoring unhandled webhook event")
		return nil
	}
}

func (s *orderService) confirmFromWebhook(ctx context.Context, event *razorpay.WebhookEvent) error {
	gatewayOrderID := event.GatewayOrderID()
	if gatewayOrderID == "" {
		return fmt.Errorf("webhook event %s carries no gateway order id", event.Event)
	}

	order, err := s.orderRepo.GetByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		return fmt.Errorf("failed to load order for webhook: %w", err)
	}
	if order == nil {
		s.logger.Warn().
			Str("event", event.Event).
			Str("gateway_order_id", gatewayOrderID).
			Msg("webhook references unknown gateway order")
		return nil
	}

	applied, err := s.orderRepo.MarkPaid(ctx, order.ID, event.PaymentID(), "")
	if err != nil {
		return fmt.Errorf("failed to confirm payment from webhook: %w", err)
	}

	s.logger.Info().
		Str("event", event.Event).
		Str("order_number", order.OrderNumber).
		Bool("applied", applied).
		Msg("webhook payment confirmation processed")

	return nil
}

func (s *orderService) failFromWebhook(ctx context.Context, event *razorpay.WebhookEvent) error {
	gatewayOrderID := event.GatewayOrderID()
	if gatewayOrderID == "" {
		return fmt.Errorf("webhook event %s carries no gateway order id", event.Event)
	}

	order, err := s.orderRepo.GetByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		return fmt.Errorf("failed to load order for webhook: %w", err)
	}
	if order == nil {
		s.logger.Warn().
			Str("gateway_order_id", gatewayOrderID).
			Msg("payment.failed webhook references unknown gateway order")
		return nil
	}

	applied, err := s.orderRepo.MarkPaymentFailed(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("failed to mark payment failed from webhook: %w", err)
	}

	s.logger.Info().
		Str("order_number", order.OrderNumber).
		Bool("applied", applied).
		Msg("webhook payment failure processed")

	return nil
}

func (s *orderService) refundFromWebhook(ctx context.Context, event *razorpay.WebhookEvent) error {
	var order *model.Order
	var err error

	if gatewayOrderID := event.GatewayOrderID(); gatewayOrderID != "" {
		order, err = s.orderRepo.GetByGatewayOrderID(ctx, gatewayOrderID)
	} else if paymentID := event.PaymentID(); paymentID != "" {
		order, err = s.orderRepo.GetByPaymentID(ctx, paymentID)
	}
	if err != nil {
		return fmt.Errorf("failed to load order for refund webhook: %w", err)
	}
	if order == nil {
		s.logger.Warn().Str("event", event.Event).Msg("refund webhook references unknown order")
		return nil
	}

	applied, err := s.orderRepo.MarkRefunded(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("failed to mark order refunded: %w", err)
	}

	s.logger.Info().
		Str("event", event.Event).
		Str("order_number", order.OrderNumber).
		Bool("applied", applied).
		Msg("refund webhook processed")

	return nil
}

// GetOrder retrieves an order by its order number.
func (s *orderService) GetOrder(ctx context.Context, orderNumber string) (*model.Order, error) {
	if orderNumber == "" {
		return nil, model.ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// FindOrdersByPhone retrieves a customer's orders by phone number.
func (s *orderService) FindOrdersByPhone(ctx context.Context, phone string) ([]model.Order, error) {
	if phone == "" {
		return []model.Order{}, nil
	}
	orders, err := s.orderRepo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to find orders by phone: %w", err)
	}
	return orders, nil
}

// FindOrdersByIDs retrieves orders by internal ids.
func (s *orderService) FindOrdersByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Order, error) {
	orders, err := s.orderRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to find orders by ids: %w", err)
	}
	return orders, nil
}

// ListOrders retrieves a page of orders plus the total count.
func (s *orderService) ListOrders(ctx context.Context, limit, offset int) ([]model.Order, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var (
		eg     errgroup.Group
		orders []model.Order
		total  int64
	)
	eg.Go(func() error {
		var err error
		orders, err = s.orderRepo.List(ctx, limit, offset)
		return err
	})
	eg.Go(func() error {
		var err error
		total, err = s.orderRepo.Count(ctx)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, total, nil
}

// UpdateFulfillment applies an admin fulfillment change.
func (s *orderService) UpdateFulfillment(ctx context.Context, orderNumber string, req *model.UpdateFulfillmentRequest) (*model.Order, error) {
	order, err := s.orderRepo.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if req.Status == model.OrderStatusCancelled {
		if order.Status.IsTerminal() {
			return nil, model.ErrInvalidTransition
		}
	} else if !order.Status.CanAdvanceTo(req.Status) {
		return nil, model.ErrInvalidTransition
	}

	if err := s.orderRepo.UpdateFulfillment(ctx, order.ID, req.Status, req.TrackingNumber, req.TrackingURL); err != nil {
		return nil, fmt.Errorf("failed to update fulfillment: %w", err)
	}

	s.logger.Info().
		Str("order_number", orderNumber).
		Str("from", string(order.Status)).
		Str("to", string(req.Status)).
		Msg("fulfillment updated")

	return s.orderRepo.GetByID(ctx, order.ID)
}

// newOrderNumber builds a collision-resistant order number: prefix, base-36
// millisecond timestamp, 4-char random suffix, upper-cased. There is no
// retry loop; the unique constraint on order_number surfaces the (negligible
// probability) collision instead of silently reusing a number.
func newOrderNumber(now time.Time) string {
	ts := strconv.FormatInt(now.UnixMilli(), 36)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
	return orderNumberPrefix + strings.ToUpper(ts+suffix)
}

// validateCreateOrderRequest rejects malformed payloads before any side effect.
func validateCreateOrderRequest(req *model.CreateOrderRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeMissingField, "Request body is required")
	}
	if req.CustomerName == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "Customer name is required")
	}
	if req.CustomerPhone == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "Customer phone is required")
	}
	addr := req.ShippingAddress
	if addr.Line1 == "" || addr.City == "" || addr.State == "" || addr.Pincode == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "Shipping address is incomplete")
	}
	if len(req.Items) == 0 {
		return model.NewDomainError(model.ErrCodeMissingField, "Order must contain at least one item")
	}
	for _, item := range req.Items {
		if item.ProductID == "" {
			return model.NewDomainError(model.ErrCodeMissingField, "Line item product ID is required")
		}
		if item.Quantity <= 0 {
			return model.ErrInvalidQuantity
		}
		if item.UnitPrice < 0 || (item.SalePrice != nil && *item.SalePrice < 0) {
			return model.NewDomainError(model.ErrCodeMissingField, "Line item price must be non-negative")
		}
	}
	if req.PaymentMethod != model.PaymentMethodCOD && req.PaymentMethod != model.PaymentMethodRazorpay {
		return model.NewDomainError(model.ErrCodeMissingField, "Payment method must be cod or razorpay")
	}
	return nil
}
