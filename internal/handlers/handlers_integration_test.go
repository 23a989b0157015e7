package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookstore/internal/database"
	"bookstore/internal/handlers"
	"bookstore/internal/middleware"
	"bookstore/internal/models"
	"bookstore/internal/repositories"
	"bookstore/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	app        *fiber.App
	adminToken string
	bookID     string
	authorID   string
}

// setupApp wires the full HTTP stack on a private in-memory SQLite database
// with one admin, one author and one book (stock 5, price 10.00).
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	log := zerolog.Nop()
	bookRepo := repositories.NewGORMBookRepository(db)
	authorRepo := repositories.NewGORMAuthorRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	authService := services.NewAuthService(userRepo, "test_jwt_secret", time.Hour, log)
	authorService := services.NewAuthorService(authorRepo, log)
	bookService := services.NewBookService(bookRepo, authorRepo, nil, log)
	orderService := services.NewOrderService(orderRepo, bookRepo, nil, nil, log)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(log)})
	apiV1 := app.Group("/api/v1", middleware.Authenticate(authService))
	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1)
	handlers.NewBookHandler(bookService).RegisterRoutes(apiV1)
	handlers.NewAuthorHandler(authorService, bookService).RegisterRoutes(apiV1)
	handlers.NewOrderHandler(orderService).RegisterRoutes(apiV1)

	ctx := context.Background()
	adminResult, err := authService.RegisterWithRole(ctx, services.RegisterInput{
		Email: "admin@example.com", Password: "adminpass", Name: "Admin",
	}, models.RoleAdmin)
	require.NoError(t, err)
	adminIdentity, err := authService.ValidateToken(adminResult.Token)
	require.NoError(t, err)

	author, err := authorService.CreateAuthor(ctx, adminIdentity, services.AuthorInput{Name: "Alan Donovan"})
	require.NoError(t, err)
	book, err := bookService.CreateBook(ctx, adminIdentity, services.BookInput{
		Title:    "The Go Programming Language",
		ISBN:     "9780134190440",
		Price:    decimal.RequireFromString("10.00"),
		Stock:    5,
		AuthorID: author.ID,
	})
	require.NoError(t, err)

	return &testEnv{app: app, adminToken: adminResult.Token, bookID: book.ID, authorID: author.ID}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func (e *testEnv) register(t *testing.T, email string) string {
	t.Helper()
	status, data := e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": email, "password": "password123", "name": "Reader",
	})
	require.Equal(t, http.StatusCreated, status, string(data))
	var result services.AuthResult
	require.NoError(t, json.Unmarshal(data, &result))
	return result.Token
}

func (e *testEnv) stock(t *testing.T) int {
	t.Helper()
	status, data := e.do(t, http.MethodGet, "/api/v1/books/"+e.bookID, "", nil)
	require.Equal(t, http.StatusOK, status)
	var book models.Book
	require.NoError(t, json.Unmarshal(data, &book))
	return book.Stock
}

func decodeError(t *testing.T, data []byte) handlers.ErrorResponse {
	t.Helper()
	var errResp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(data, &errResp))
	return errResp
}

func placeOrderBody(bookID string, qty int) map[string]any {
	return map[string]any{
		"items": []map[string]any{{"book_id": bookID, "quantity": qty}},
		"shipping_address": map[string]string{
			"street": "1 Main St", "city": "Springfield", "zip_code": "12345", "country": "US",
		},
	}
}

func TestAuthRegisterAndLogin(t *testing.T) {
	env := setupApp(t)

	token := env.register(t, "test@example.com")
	assert.NotEmpty(t, token)

	// Duplicate registration
	status, data := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "TEST@example.com", "password": "password123", "name": "Again",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, data).Code)

	// Login
	status, data = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "test@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, status)
	var loginResp services.AuthResult
	require.NoError(t, json.Unmarshal(data, &loginResp))
	assert.NotEmpty(t, loginResp.Token)
	assert.Equal(t, models.RoleUser, loginResp.User.Role)
	assert.NotContains(t, string(data), "password")

	status, data = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "test@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, handlers.ErrorResponse{Code: "UNAUTHENTICATED", Message: "invalid credentials"}, decodeError(t, data))

	status, data = env.do(t, http.MethodGet, "/api/v1/auth/me", loginResp.Token, nil)
	require.Equal(t, http.StatusOK, status)
	var me models.User
	require.NoError(t, json.Unmarshal(data, &me))
	assert.Equal(t, "test@example.com", me.Email)

	status, _ = env.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = env.do(t, http.MethodGet, "/api/v1/auth/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestBookEndpoints(t *testing.T) {
	env := setupApp(t)
	userToken := env.register(t, "reader@example.com")

	// Reads are public
	status, data := env.do(t, http.MethodGet, "/api/v1/books?limit=10", "", nil)
	require.Equal(t, http.StatusOK, status)
	var books []models.Book
	require.NoError(t, json.Unmarshal(data, &books))
	assert.Len(t, books, 1)

	newBook := map[string]any{
		"title": "Concurrency in Go", "isbn": "9781491941195", "price": "39.99", "stock": 3, "author_id": env.authorID,
	}

	status, _ = env.do(t, http.MethodPost, "/api/v1/books", "", newBook)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, data = env.do(t, http.MethodPost, "/api/v1/books", userToken, newBook)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", decodeError(t, data).Code)

	status, data = env.do(t, http.MethodPost, "/api/v1/books", env.adminToken, newBook)
	require.Equal(t, http.StatusCreated, status, string(data))
	var created models.Book
	require.NoError(t, json.Unmarshal(data, &created))
	assert.NotEmpty(t, created.ID)
	assert.True(t, decimal.RequireFromString("39.99").Equal(created.Price))

	status, data = env.do(t, http.MethodPut, "/api/v1/books/"+created.ID, env.adminToken, map[string]any{"stock": 9})
	require.Equal(t, http.StatusOK, status, string(data))
	var updated models.Book
	require.NoError(t, json.Unmarshal(data, &updated))
	assert.Equal(t, 9, updated.Stock)
	assert.Equal(t, "Concurrency in Go", updated.Title)

	status, data = env.do(t, http.MethodGet, "/api/v1/authors/"+env.authorID+"/books", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(data, &books))
	assert.Len(t, books, 2)

	status, _ = env.do(t, http.MethodDelete, "/api/v1/books/"+created.ID, env.adminToken, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, data = env.do(t, http.MethodGet, "/api/v1/books/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", decodeError(t, data).Code)

	status, _ = env.do(t, http.MethodPost, "/api/v1/books", env.adminToken, newBook)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestOrderLifecycle(t *testing.T) {
	env := setupApp(t)
	owner := env.register(t, "owner@example.com")
	other := env.register(t, "other@example.com")

	status, _ := env.do(t, http.MethodPost, "/api/v1/orders", "", placeOrderBody(env.bookID, 2))
	assert.Equal(t, http.StatusUnauthorized, status)

	status, data := env.do(t, http.MethodPost, "/api/v1/orders", owner, placeOrderBody(env.bookID, 2))
	require.Equal(t, http.StatusCreated, status, string(data))
	var placed models.Order
	require.NoError(t, json.Unmarshal(data, &placed))
	assert.Equal(t, models.OrderStatusPending, placed.Status)
	assert.True(t, decimal.RequireFromString("20.00").Equal(placed.TotalAmount))
	assert.Equal(t, "Springfield", placed.ShippingAddress.City)
	assert.Equal(t, 3, env.stock(t))

	status, data = env.do(t, http.MethodGet, "/api/v1/orders/mine", owner, nil)
	require.Equal(t, http.StatusOK, status)
	var mine []models.Order
	require.NoError(t, json.Unmarshal(data, &mine))
	require.Len(t, mine, 1)
	require.Len(t, mine[0].Items, 1)
	assert.Equal(t, 2, mine[0].Items[0].Quantity)

	status, _ = env.do(t, http.MethodGet, "/api/v1/orders/"+placed.ID, other, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = env.do(t, http.MethodPost, "/api/v1/orders/"+placed.ID+"/cancel", other, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = env.do(t, http.MethodGet, "/api/v1/orders", owner, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = env.do(t, http.MethodPatch, "/api/v1/orders/"+placed.ID+"/status", owner, map[string]string{"status": "SHIPPED"})
	assert.Equal(t, http.StatusForbidden, status)

	status, data = env.do(t, http.MethodPatch, "/api/v1/orders/"+placed.ID+"/status", env.adminToken, map[string]string{"status": "processing"})
	require.Equal(t, http.StatusOK, status, string(data))
	status, data = env.do(t, http.MethodPatch, "/api/v1/orders/"+placed.ID+"/status", env.adminToken, map[string]string{"status": "LOST"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, data = env.do(t, http.MethodPost, "/api/v1/orders/"+placed.ID+"/cancel", owner, nil)
	require.Equal(t, http.StatusOK, status, string(data))
	var cancelled models.Order
	require.NoError(t, json.Unmarshal(data, &cancelled))
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 5, env.stock(t))

	status, data = env.do(t, http.MethodPost, "/api/v1/orders/"+placed.ID+"/cancel", owner, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, handlers.ErrorResponse{Code: "VALIDATION_ERROR", Message: "Order is already cancelled"}, decodeError(t, data))
	assert.Equal(t, 5, env.stock(t))

	status, data = env.do(t, http.MethodGet, "/api/v1/orders", env.adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	var all []models.Order
	require.NoError(t, json.Unmarshal(data, &all))
	assert.Len(t, all, 1)

	status, _ = env.do(t, http.MethodGet, "/api/v1/orders/does-not-exist", owner, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPlaceOrder_Rejections(t *testing.T) {
	env := setupApp(t)
	token := env.register(t, "reader@example.com")

	status, data := env.do(t, http.MethodPost, "/api/v1/orders", token, placeOrderBody(env.bookID, 6))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Insufficient stock for book The Go Programming Language", decodeError(t, data).Message)

	status, data = env.do(t, http.MethodPost, "/api/v1/orders", token, map[string]any{
		"items": []any{}, "shipping_address": placeOrderBody(env.bookID, 1)["shipping_address"],
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Order must have at least one item", decodeError(t, data).Message)

	status, _ = env.do(t, http.MethodPost, "/api/v1/orders", token, placeOrderBody("missing-book", 1))
	assert.Equal(t, http.StatusNotFound, status)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Equal(t, 5, env.stock(t))
}
