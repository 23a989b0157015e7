package handlers

import (
	"bookstore/internal/middleware"
	"bookstore/internal/repositories"
	"bookstore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// BookHandler handles HTTP requests for the catalog.
type BookHandler struct {
	service *services.BookService
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(service *services.BookService) *BookHandler {
	return &BookHandler{service: service}
}

// RegisterRoutes registers the book routes. Writes are checked for the admin
// role by the service.
func (h *BookHandler) RegisterRoutes(router fiber.Router) {
	bookRoutes := router.Group("/books")
	bookRoutes.Get("/", h.HandleListBooks)
	bookRoutes.Get("/:id", h.HandleGetBook)
	bookRoutes.Post("/", middleware.AuthRequired(), h.HandleCreateBook)
	bookRoutes.Put("/:id", middleware.AuthRequired(), h.HandleUpdateBook)
	bookRoutes.Delete("/:id", middleware.AuthRequired(), h.HandleDeleteBook)
}

func bookFilter(c *fiber.Ctx) repositories.BookFilter {
	return repositories.BookFilter{
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
		Search: c.Query("search"),
	}
}

// HandleListBooks lists visible books. Supports limit, offset and search.
func (h *BookHandler) HandleListBooks(c *fiber.Ctx) error {
	books, err := h.service.ListBooks(c.UserContext(), bookFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(books)
}

func (h *BookHandler) HandleGetBook(c *fiber.Ctx) error {
	book, err := h.service.GetBook(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(book)
}

func (h *BookHandler) HandleCreateBook(c *fiber.Ctx) error {
	var input services.BookInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	book, err := h.service.CreateBook(c.UserContext(), middleware.IdentityFrom(c), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(book)
}

func (h *BookHandler) HandleUpdateBook(c *fiber.Ctx) error {
	var patch services.BookPatch
	if err := parseBody(c, &patch); err != nil {
		return err
	}
	book, err := h.service.UpdateBook(c.UserContext(), middleware.IdentityFrom(c), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(book)
}

func (h *BookHandler) HandleDeleteBook(c *fiber.Ctx) error {
	if err := h.service.DeleteBook(c.UserContext(), middleware.IdentityFrom(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
