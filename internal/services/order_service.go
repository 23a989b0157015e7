package services

import (
	"context"
	"errors"
	"strings"

	"bookstore/internal/apperror"
	"bookstore/internal/events"
	"bookstore/internal/metrics"
	"bookstore/internal/models"
	"bookstore/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LineItemInput is one requested line of a new order.
type LineItemInput struct {
	BookID   string `json:"book_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

// PlaceOrderInput is the body of an order placement.
type PlaceOrderInput struct {
	Items           []LineItemInput        `json:"items" validate:"dive"`
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orders  repositories.OrderRepository
	books   repositories.BookRepository
	events  eventSink
	metrics *metrics.Orders
	log     zerolog.Logger
}

// NewOrderService creates a new OrderService. publisher and m may be nil.
func NewOrderService(
	orders repositories.OrderRepository,
	books repositories.BookRepository,
	publisher events.Publisher,
	m *metrics.Orders,
	log zerolog.Logger,
) *OrderService {
	if m == nil {
		m = metrics.NewOrders(nil)
	}
	log = log.With().Str("component", "order_service").Logger()
	return &OrderService{
		orders:  orders,
		books:   books,
		events:  newEventSink(publisher, log),
		metrics: m,
		log:     log,
	}
}

type reservation struct {
	bookID   string
	quantity int
}

// PlaceOrder reserves stock for every line and records a PENDING order.
// Either every line is reserved and the order exists, or inventory is left
// exactly as it was found.
func (s *OrderService) PlaceOrder(ctx context.Context, identity *Identity, input PlaceOrderInput) (*models.Order, error) {
	order, err := s.placeOrder(ctx, identity, input)
	if err != nil {
		s.metrics.PlacementFailures.WithLabelValues(string(apperror.KindOf(err))).Inc()
		return nil, err
	}
	s.metrics.Placed.Inc()
	return order, nil
}

func (s *OrderService) placeOrder(ctx context.Context, identity *Identity, input PlaceOrderInput) (*models.Order, error) {
	if err := requireAuth(identity); err != nil {
		return nil, err
	}
	if len(input.Items) == 0 {
		return nil, apperror.Validation("Order must have at least one item")
	}
	for i := range input.Items {
		input.Items[i].BookID = strings.TrimSpace(input.Items[i].BookID)
	}
	input.ShippingAddress = input.ShippingAddress.Trimmed()
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	// Validation pass: nothing is mutated until every line looks satisfiable.
	titles := make(map[string]string, len(input.Items))
	for _, item := range input.Items {
		book, err := s.books.GetByID(ctx, item.BookID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, apperror.NotFound("Book with ID %s not found", item.BookID)
			}
			return nil, apperror.Internal(err, "Could not load book %s", item.BookID)
		}
		if book.Stock < item.Quantity {
			return nil, apperror.Validation("Insufficient stock for book %s", book.Title)
		}
		titles[book.ID] = book.Title
	}

	// Reservation pass: each decrement is conditional and atomic in the store.
	reserved := make([]reservation, 0, len(input.Items))
	items := make([]models.OrderItem, 0, len(input.Items))
	stockAfter := make([]int, 0, len(input.Items))
	for _, item := range input.Items {
		book, err := s.books.TryReserve(ctx, item.BookID, item.Quantity)
		if err != nil {
			s.releaseAll(ctx, reserved)
			switch {
			case errors.Is(err, repositories.ErrInsufficientStock):
				return nil, apperror.Validation("Insufficient stock for book %s", titles[item.BookID])
			case errors.Is(err, repositories.ErrNotFound):
				return nil, apperror.NotFound("Book with ID %s not found", item.BookID)
			default:
				return nil, apperror.Internal(err, "Could not reserve stock for book %s", item.BookID)
			}
		}
		reserved = append(reserved, reservation{bookID: item.BookID, quantity: item.Quantity})
		stockAfter = append(stockAfter, book.Stock)
		items = append(items, models.OrderItem{
			BookID:   item.BookID,
			Quantity: item.Quantity,
			Price:    book.Price,
		})
	}

	order := &models.Order{
		ID:              uuid.New().String(),
		UserID:          identity.UserID,
		Items:           items,
		Status:          models.OrderStatusPending,
		ShippingAddress: input.ShippingAddress,
	}
	order.TotalAmount = order.ComputeTotal()

	if err := s.orders.Create(ctx, order); err != nil {
		s.releaseAll(ctx, reserved)
		return nil, apperror.Internal(err, "Could not create order")
	}

	s.log.Info().
		Str("order_id", order.ID).
		Str("user_id", order.UserID).
		Int("lines", len(order.Items)).
		Str("total", order.TotalAmount.StringFixed(2)).
		Msg("order placed")

	lines := make([]events.OrderLine, 0, len(order.Items))
	for i, item := range order.Items {
		stock := stockAfter[i]
		s.events.emit(ctx, events.TypeBookStockChanged, events.BookStockChangedPayload{
			BookID:  item.BookID,
			Delta:   -item.Quantity,
			Stock:   &stock,
			OrderID: order.ID,
		})
		lines = append(lines, events.OrderLine{BookID: item.BookID, Quantity: item.Quantity, Price: item.Price})
	}
	s.events.emit(ctx, events.TypeOrderPlaced, events.OrderPlacedPayload{
		OrderID:     order.ID,
		UserID:      order.UserID,
		Items:       lines,
		TotalAmount: order.TotalAmount,
		Status:      string(order.Status),
	})

	return order, nil
}

// releaseAll undoes reservations made for a request that is being abandoned.
// It runs even when the request context is already cancelled.
func (s *OrderService) releaseAll(ctx context.Context, reserved []reservation) {
	ctx = context.WithoutCancel(ctx)
	for _, r := range reserved {
		if err := s.books.Release(ctx, r.bookID, r.quantity); err != nil {
			s.log.Error().Err(err).Str("book_id", r.bookID).Int("quantity", r.quantity).Msg("failed to release reserved stock")
		}
	}
}

// CancelOrder cancels an order owned by the caller (or any order for an
// admin) and puts its stock back.
func (s *OrderService) CancelOrder(ctx context.Context, identity *Identity, orderID string) (*models.Order, error) {
	if err := requireAuth(identity); err != nil {
		return nil, err
	}
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsOwnedBy(identity.UserID) && !identity.IsAdmin() {
		return nil, apperror.Forbidden("Access denied")
	}
	if err := cancellable(order.Status); err != nil {
		return nil, err
	}

	updated, err := s.orders.TransitionStatus(ctx, order.ID, order.Status, models.OrderStatusCancelled)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrStatusConflict):
			return nil, s.cancelConflict(ctx, order.ID)
		case errors.Is(err, repositories.ErrNotFound):
			return nil, apperror.NotFound("Order not found")
		default:
			return nil, apperror.Internal(err, "Could not cancel order")
		}
	}

	for _, item := range updated.Items {
		if err := s.books.Release(ctx, item.BookID, item.Quantity); err != nil {
			s.metrics.StockRestoreSkips.Inc()
			s.log.Warn().Err(err).
				Str("order_id", updated.ID).
				Str("book_id", item.BookID).
				Int("quantity", item.Quantity).
				Msg("stock not restored for cancelled order line")
			continue
		}
		s.events.emit(ctx, events.TypeBookStockChanged, events.BookStockChangedPayload{
			BookID:  item.BookID,
			Delta:   item.Quantity,
			OrderID: updated.ID,
		})
	}

	s.metrics.Cancelled.Inc()
	s.log.Info().Str("order_id", updated.ID).Str("by", identity.UserID).Str("from", string(order.Status)).Msg("order cancelled")
	s.events.emit(ctx, events.TypeOrderStatusChanged, events.OrderStatusChangedPayload{
		OrderID: updated.ID,
		UserID:  updated.UserID,
		From:    string(order.Status),
		To:      string(updated.Status),
	})
	return updated, nil
}

func cancellable(status models.OrderStatus) error {
	switch status {
	case models.OrderStatusCancelled:
		return apperror.Validation("Order is already cancelled")
	case models.OrderStatusDelivered:
		return apperror.Validation("Cannot cancel delivered order")
	}
	return nil
}

// cancelConflict explains a lost compare-and-set using the status that won.
func (s *OrderService) cancelConflict(ctx context.Context, orderID string) error {
	current, err := s.orders.GetByID(ctx, orderID)
	if err == nil {
		if verr := cancellable(current.Status); verr != nil {
			return verr
		}
	}
	return apperror.Validation("Order status changed while cancelling, please retry")
}

// UpdateOrderStatus lets an admin set any status. No transition rules apply
// and stock is never touched.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, identity *Identity, orderID, status string) (*models.Order, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	newStatus, ok := models.ParseOrderStatus(status)
	if !ok {
		return nil, apperror.Validation("Invalid order status: %s", status)
	}
	previous, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	updated, err := s.orders.UpdateStatus(ctx, orderID, newStatus)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.NotFound("Order not found")
		}
		return nil, apperror.Internal(err, "Could not update order status")
	}

	s.metrics.StatusUpdates.WithLabelValues(string(newStatus)).Inc()
	s.log.Info().Str("order_id", updated.ID).Str("from", string(previous.Status)).Str("to", string(newStatus)).Msg("order status updated")
	s.events.emit(ctx, events.TypeOrderStatusChanged, events.OrderStatusChangedPayload{
		OrderID: updated.ID,
		UserID:  updated.UserID,
		From:    string(previous.Status),
		To:      string(updated.Status),
	})
	return updated, nil
}

// GetOrder returns an order to its owner or an admin.
func (s *OrderService) GetOrder(ctx context.Context, identity *Identity, orderID string) (*models.Order, error) {
	if err := requireAuth(identity); err != nil {
		return nil, err
	}
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsOwnedBy(identity.UserID) && !identity.IsAdmin() {
		return nil, apperror.Forbidden("Access denied")
	}
	return order, nil
}

// ListOrdersForUser returns the caller's orders, newest first.
func (s *OrderService) ListOrdersForUser(ctx context.Context, identity *Identity) ([]models.Order, error) {
	if err := requireAuth(identity); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListByUser(ctx, identity.UserID)
	if err != nil {
		return nil, apperror.Internal(err, "Could not retrieve orders")
	}
	return orders, nil
}

// ListAllOrders returns every order, newest first.
func (s *OrderService) ListAllOrders(ctx context.Context, identity *Identity) ([]models.Order, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "Could not retrieve orders")
	}
	return orders, nil
}

func (s *OrderService) loadOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.NotFound("Order not found")
		}
		return nil, apperror.Internal(err, "Could not retrieve order")
	}
	return order, nil
}
