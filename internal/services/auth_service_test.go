package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bookstore/internal/apperror"
	"bookstore/internal/models"
	"bookstore/internal/repositories"
	"bookstore/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestAuthService_Register(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour, zerolog.Nop())
	ctx := context.Background()

	input := services.RegisterInput{Email: " Reader@Example.com ", Password: "password123", Name: "Reader"}

	mockRepo.On("GetByEmail", ctx, "reader@example.com").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Email == "reader@example.com" &&
			u.Role == models.RoleUser &&
			bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("password123")) == nil
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.User).ID = "user-123"
	}).Return(nil).Once()

	result, err := authService.Register(ctx, input)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "user-123", result.User.ID)
	mockRepo.AssertExpectations(t)

	// Email already registered
	mockRepo.On("GetByEmail", ctx, "reader@example.com").Return(&models.User{ID: "user-123"}, nil).Once()
	_, err = authService.Register(ctx, input)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Contains(t, apperror.MessageOf(err), "already registered")
	mockRepo.AssertExpectations(t)

	// Invalid input never reaches the repository
	_, err = authService.Register(ctx, services.RegisterInput{Email: "not-an-email", Password: "password123", Name: "X"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	_, err = authService.Register(ctx, services.RegisterInput{Email: "a@b.co", Password: "123", Name: "X"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour, zerolog.Nop())
	ctx := context.Background()

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:       "user-123",
		Email:    "test@example.com",
		Name:     "Test",
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
	}

	// Successful login
	mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()
	result, err := authService.Login(ctx, "test@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	parsedToken, err := jwt.Parse(result.Token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, user.Email, claims["email"])
	assert.Equal(t, "ADMIN", claims["role"])
	mockRepo.AssertExpectations(t)

	// Wrong password
	mockRepo.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()
	_, err = authService.Login(ctx, "test@example.com", "wrongpassword")
	assert.True(t, apperror.Is(err, apperror.KindUnauthenticated))
	assert.Equal(t, "invalid credentials", apperror.MessageOf(err))

	// Unknown user gets the same answer
	mockRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, fmt.Errorf("user with email nobody@example.com: %w", repositories.ErrNotFound)).Once()
	_, err = authService.Login(ctx, "nobody@example.com", "password123")
	assert.Equal(t, "invalid credentials", apperror.MessageOf(err))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService := services.NewAuthService(new(MockUserRepository), testJWTSecret, time.Hour, zerolog.Nop())

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"email":   "test@example.com",
		"role":    "ADMIN",
		"exp":     jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	validTokenString, _ := token.SignedString([]byte(testJWTSecret))

	identity, err := authService.ValidateToken(validTokenString)
	require.NoError(t, err)
	assert.Equal(t, "user-123", identity.UserID)
	assert.True(t, identity.IsAdmin())

	_, err = authService.ValidateToken("invalid.token.string")
	assert.True(t, apperror.Is(err, apperror.KindUnauthenticated))

	otherSecret, _ := token.SignedString([]byte("some_other_secret"))
	_, err = authService.ValidateToken(otherSecret)
	assert.True(t, apperror.Is(err, apperror.KindUnauthenticated))

	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     jwt.TimeFunc().Add(-time.Hour).Unix(),
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.True(t, apperror.Is(err, apperror.KindUnauthenticated))

	// Unknown roles degrade to a plain user
	oddRole := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-9",
		"role":    "ROOT",
		"exp":     jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	oddRoleString, _ := oddRole.SignedString([]byte(testJWTSecret))
	identity, err = authService.ValidateToken(oddRoleString)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, identity.Role)
}

func TestAuthService_CurrentUser(t *testing.T) {
	users := repositories.NewMockUserRepository()
	authService := services.NewAuthService(users, testJWTSecret, 0, zerolog.Nop())
	ctx := context.Background()

	result, err := authService.Register(ctx, services.RegisterInput{Email: "me@example.com", Password: "secret1", Name: "Me"})
	require.NoError(t, err)

	identity, err := authService.ValidateToken(result.Token)
	require.NoError(t, err)

	user, err := authService.CurrentUser(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", user.Email)

	_, err = authService.CurrentUser(ctx, nil)
	assert.True(t, apperror.Is(err, apperror.KindUnauthenticated))
}
