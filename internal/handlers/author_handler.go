package handlers

import (
	"bookstore/internal/middleware"
	"bookstore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthorHandler handles HTTP requests for authors.
type AuthorHandler struct {
	authors *services.AuthorService
	books   *services.BookService
}

func NewAuthorHandler(authors *services.AuthorService, books *services.BookService) *AuthorHandler {
	return &AuthorHandler{authors: authors, books: books}
}

func (h *AuthorHandler) RegisterRoutes(router fiber.Router) {
	authorRoutes := router.Group("/authors")
	authorRoutes.Get("/", h.HandleListAuthors)
	authorRoutes.Get("/:id", h.HandleGetAuthor)
	authorRoutes.Get("/:id/books", h.HandleAuthorBooks)
	authorRoutes.Post("/", middleware.AuthRequired(), h.HandleCreateAuthor)
	authorRoutes.Put("/:id", middleware.AuthRequired(), h.HandleUpdateAuthor)
	authorRoutes.Delete("/:id", middleware.AuthRequired(), h.HandleDeleteAuthor)
}

func (h *AuthorHandler) HandleListAuthors(c *fiber.Ctx) error {
	authors, err := h.authors.ListAuthors(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(authors)
}

func (h *AuthorHandler) HandleGetAuthor(c *fiber.Ctx) error {
	author, err := h.authors.GetAuthor(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(author)
}

// HandleAuthorBooks lists an author's books alphabetically.
func (h *AuthorHandler) HandleAuthorBooks(c *fiber.Ctx) error {
	books, err := h.books.BooksByAuthor(c.UserContext(), c.Params("id"), bookFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(books)
}

func (h *AuthorHandler) HandleCreateAuthor(c *fiber.Ctx) error {
	var input services.AuthorInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	author, err := h.authors.CreateAuthor(c.UserContext(), middleware.IdentityFrom(c), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(author)
}

func (h *AuthorHandler) HandleUpdateAuthor(c *fiber.Ctx) error {
	var patch services.AuthorPatch
	if err := parseBody(c, &patch); err != nil {
		return err
	}
	author, err := h.authors.UpdateAuthor(c.UserContext(), middleware.IdentityFrom(c), c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(author)
}

func (h *AuthorHandler) HandleDeleteAuthor(c *fiber.Ctx) error {
	if err := h.authors.DeleteAuthor(c.UserContext(), middleware.IdentityFrom(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
