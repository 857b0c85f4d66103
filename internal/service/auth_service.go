package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"esfhub/internal/config"
	"esfhub/internal/domain"
	"esfhub/internal/port"
)

const accessAudience = "access"

// Claims represents the JWT claims carried by an access token.
type Claims struct {
	jwt.RegisteredClaims
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	TIN      *string   `json:"tin,omitempty"`
}

// Identity projects the claims onto the caller identity.
func (c *Claims) Identity() *domain.Identity {
	return &domain.Identity{ID: c.UserID, Username: c.Username, TIN: c.TIN}
}

// AccessToken is the login response.
type AccessToken struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// RegisterInput is the DTO for account registration.
type RegisterInput struct {
	Username string  `json:"username" binding:"required,min=3,max=64"`
	Password string  `json:"password" binding:"required,min=6"`
	TIN      *string `json:"tin"`
}

// LoginInput is the DTO for login requests.
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthService defines the authentication contract.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Identity, error)
	Login(ctx context.Context, input LoginInput) (*AccessToken, error)
	ValidateToken(tokenString string) (*Claims, error)
	// ResolveIdentity validates the token and confirms the user still exists.
	ResolveIdentity(ctx context.Context, token string) (*domain.Identity, error)
}

type authService struct {
	userRepo port.UserRepository
	cfg      config.JWTConfig
}

// NewAuthService creates a new AuthService implementation.
func NewAuthService(userRepo port.UserRepository, cfg config.JWTConfig) AuthService {
	return &authService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*domain.Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth.Register hashing password: %w", err)
	}

	user := &domain.User{
		Username:     strings.TrimSpace(input.Username),
		PasswordHash: string(hash),
		TIN:          normalizeTIN(input.TIN),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			return nil, err
		}
		return nil, fmt.Errorf("auth.Register: %w", err)
	}
	return user.Identity(), nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*AccessToken, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth.Login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.generateAccessToken(user)
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	return parseAccessToken(tokenString, s.cfg)
}

func (s *authService) ResolveIdentity(ctx context.Context, token string) (*domain.Identity, error) {
	claims, err := s.ValidateToken(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("auth.ResolveIdentity: %w", err)
	}
	return user.Identity(), nil
}

func (s *authService) generateAccessToken(user *domain.User) (*AccessToken, error) {
	now := time.Now()
	expiry := now.Add(s.cfg.AccessTokenExpiry)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{accessAudience},
		},
		UserID:   user.ID,
		Username: user.Username,
		TIN:      user.TIN,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	return &AccessToken{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresAt:   expiry,
	}, nil
}

// tokenIdentityResolver validates tokens with the shared secret and trusts
// the identity carried in the claims. The ESF service uses it when no auth
// service URL is configured.
type tokenIdentityResolver struct {
	cfg config.JWTConfig
}

// NewTokenIdentityResolver creates an IdentityResolver that needs no user store.
func NewTokenIdentityResolver(cfg config.JWTConfig) port.IdentityResolver {
	return &tokenIdentityResolver{cfg: cfg}
}

func (r *tokenIdentityResolver) ResolveIdentity(_ context.Context, token string) (*domain.Identity, error) {
	claims, err := parseAccessToken(token, r.cfg)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	return claims.Identity(), nil
}

func parseAccessToken(tokenString string, cfg config.JWTConfig) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithAudience(accessAudience))
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

func normalizeTIN(tin *string) *string {
	if tin == nil {
		return nil
	}
	v := strings.TrimSpace(*tin)
	if v == "" {
		return nil
	}
	return &v
}
