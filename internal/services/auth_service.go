package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookstore/internal/apperror"
	"bookstore/internal/models"
	"bookstore/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput is the body of a sign-up request.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
}

// AuthResult is returned by a successful registration or login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	log       zerolog.Logger
}

// NewAuthService creates a new AuthService. A zero ttl falls back to a week.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, ttl time.Duration, log zerolog.Logger) *AuthService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  ttl,
		log:       log.With().Str("component", "auth_service").Logger(),
	}
}

// Register creates a customer account and signs it in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	return s.RegisterWithRole(ctx, input, models.RoleUser)
}

// RegisterWithRole creates an account with an explicit role. It backs the
// admin seeding at startup; the HTTP surface only ever registers customers.
func (s *AuthService) RegisterWithRole(ctx context.Context, input RegisterInput, role models.Role) (*AuthResult, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperror.Validation("Email %s is already registered", input.Email)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperror.Internal(err, "Could not register user")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal(err, "Could not register user")
	}

	user := &models.User{
		Email:    input.Email,
		Name:     input.Name,
		Password: string(hashedPassword),
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperror.Validation("Email %s is already registered", input.Email)
		}
		return nil, apperror.Internal(err, "Could not register user")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, apperror.Internal(err, "Could not register user")
	}
	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return &AuthResult{Token: token, User: user}, nil
}

// Login authenticates a user by email and password. Unknown emails and wrong
// passwords are reported identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.Unauthenticated("invalid credentials")
		}
		return nil, apperror.Internal(err, "Could not log in")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperror.Unauthenticated("invalid credentials")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, apperror.Internal(err, "Could not log in")
	}
	return &AuthResult{Token: token, User: user}, nil
}

// CurrentUser loads the account behind an identity.
func (s *AuthService) CurrentUser(ctx context.Context, identity *Identity) (*models.User, error) {
	if err := requireAuth(identity); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal(err, "Could not load user")
	}
	return user, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token and returns the identity it
// carries.
func (s *AuthService) ValidateToken(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		s.log.Debug().Err(err).Msg("token validation failed")
		return nil, apperror.Unauthenticated("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperror.Unauthenticated("Invalid or expired token")
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil, apperror.Unauthenticated("Invalid or expired token")
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if models.Role(role) != models.RoleAdmin {
		role = string(models.RoleUser)
	}

	return &Identity{UserID: userID, Email: email, Role: models.Role(role)}, nil
}
