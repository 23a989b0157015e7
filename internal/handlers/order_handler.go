package handlers

import (
	"bookstore/internal/middleware"
	"bookstore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes registers the order routes. Every route needs a signed-in
// caller; ownership and the admin role are checked by the service.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders", middleware.AuthRequired())
	orderRoutes.Get("/", h.HandleListAllOrders)
	orderRoutes.Get("/mine", h.HandleListMyOrders)
	orderRoutes.Get("/:id", h.HandleGetOrder)
	orderRoutes.Post("/", h.HandlePlaceOrder)
	orderRoutes.Post("/:id/cancel", h.HandleCancelOrder)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
}

// HandleListAllOrders lists every order. Admin only.
func (h *OrderHandler) HandleListAllOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListAllOrders(c.UserContext(), middleware.IdentityFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

// HandleListMyOrders lists the caller's own orders.
func (h *OrderHandler) HandleListMyOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrdersForUser(c.UserContext(), middleware.IdentityFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(orders)
}

func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), middleware.IdentityFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(order)
}

// HandlePlaceOrder places an order for the caller.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	var input services.PlaceOrderInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	order, err := h.service.PlaceOrder(c.UserContext(), middleware.IdentityFrom(c), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	order, err := h.service.CancelOrder(c.UserContext(), middleware.IdentityFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(order)
}

// UpdateStatusRequest represents the request body for a status change.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req UpdateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	order, err := h.service.UpdateOrderStatus(c.UserContext(), middleware.IdentityFrom(c), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(order)
}
