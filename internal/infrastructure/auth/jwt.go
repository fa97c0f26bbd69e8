// Package auth issues and validates the bearer tokens used by cashiers and
// managers, and keeps the list of revoked tokens.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/infrastructure/config"
)

// TokenType tells access tokens from refresh tokens
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"

	roleManager = "manager"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidTokenType   = errors.New("invalid token type")
	ErrInvalidClaims      = errors.New("invalid token claims")
	ErrTokenNotYetValid   = errors.New("token is not yet valid")
	ErrMissingUserID      = errors.New("missing user_id in claims")
	ErrMaxRefreshExceeded = errors.New("maximum refresh count exceeded")
	ErrTokenBlacklisted   = errors.New("token has been revoked")
)

// Claims carried by POS tokens. Refresh tokens leave Username and Role
// empty; both are reloaded from the user on rotation.
type Claims struct {
	jwt.RegisteredClaims
	UserID       string    `json:"user_id"`
	Username     string    `json:"username,omitempty"`
	Role         string    `json:"role,omitempty"`
	TokenType    TokenType `json:"token_type"`
	RefreshCount int       `json:"refresh_count,omitempty"`
}

func (c *Claims) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

func (c *Claims) IsManager() bool {
	return c.Role == roleManager
}

// GetIssuedAtTime is compared against per-user invalidation marks
func (c *Claims) GetIssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// GetRemainingTTL is how long the token must stay on the blacklist after logout
func (c *Claims) GetRemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(time.Until(c.ExpiresAt.Time), 0)
}

// TokenPair is returned by login and refresh
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// GenerateTokenInput identifies the user a pair is issued for
type GenerateTokenInput struct {
	UserID   uuid.UUID
	Username string
	Role     string
}

// keyring holds the secret and lifetime of one token type
type keyring struct {
	secret []byte
	ttl    time.Duration
}

// JWTService signs and verifies HS256 tokens
type JWTService struct {
	access     keyring
	refresh    keyring
	issuer     string
	maxRefresh int
	now        func() time.Time
}

// NewJWTService builds the service from config. Refresh tokens are signed
// with the access secret when no separate refresh secret is configured.
func NewJWTService(cfg config.JWTConfig) *JWTService {
	refreshSecret := cfg.RefreshSecret
	if refreshSecret == "" {
		refreshSecret = cfg.Secret
	}
	return &JWTService{
		access:     keyring{secret: []byte(cfg.Secret), ttl: cfg.AccessTokenExpiration},
		refresh:    keyring{secret: []byte(refreshSecret), ttl: cfg.RefreshTokenExpiration},
		issuer:     cfg.Issuer,
		maxRefresh: cfg.MaxRefreshCount,
		now:        time.Now,
	}
}

// GetRefreshTokenExpiration is the refresh token lifetime, which bounds how
// long a per-user invalidation must be remembered
func (s *JWTService) GetRefreshTokenExpiration() time.Duration {
	return s.refresh.ttl
}

// GenerateTokenPair issues the first pair after a successful login
func (s *JWTService) GenerateTokenPair(input GenerateTokenInput) (*TokenPair, error) {
	return s.issuePair(input, 0)
}

// RefreshTokenPair rotates a validated refresh token for the same user
func (s *JWTService) RefreshTokenPair(refreshClaims *Claims, input GenerateTokenInput) (*TokenPair, error) {
	switch {
	case refreshClaims.TokenType != TokenTypeRefresh:
		return nil, ErrInvalidTokenType
	case refreshClaims.RefreshCount >= s.maxRefresh:
		return nil, ErrMaxRefreshExceeded
	case refreshClaims.UserID != input.UserID.String():
		return nil, ErrInvalidClaims
	}
	return s.issuePair(input, refreshClaims.RefreshCount+1)
}

func (s *JWTService) issuePair(input GenerateTokenInput, refreshCount int) (*TokenPair, error) {
	if input.UserID == uuid.Nil {
		return nil, ErrMissingUserID
	}
	now := s.now()
	uid := input.UserID.String()

	accessToken, err := s.sign(s.access, &Claims{
		RegisteredClaims: s.registered(uid, now, s.access.ttl),
		UserID:           uid,
		Username:         input.Username,
		Role:             input.Role,
		TokenType:        TokenTypeAccess,
	})
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.sign(s.refresh, &Claims{
		RegisteredClaims: s.registered(uid, now, s.refresh.ttl),
		UserID:           uid,
		TokenType:        TokenTypeRefresh,
		RefreshCount:     refreshCount,
	})
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  now.Add(s.access.ttl),
		RefreshTokenExpiresAt: now.Add(s.refresh.ttl),
		TokenType:             "Bearer",
	}, nil
}

func (s *JWTService) registered(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.issuer,
		Subject:   subject,
		Audience:  jwt.ClaimStrings{s.issuer},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *JWTService) sign(k keyring, claims *Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(k.secret)
}

// ValidateAccessToken verifies an access token and returns its claims
func (s *JWTService) ValidateAccessToken(token string) (*Claims, error) {
	return s.verify(token, s.access, TokenTypeAccess)
}

// ValidateRefreshToken verifies a refresh token and returns its claims
func (s *JWTService) ValidateRefreshToken(token string) (*Claims, error) {
	return s.verify(token, s.refresh, TokenTypeRefresh)
}

func (s *JWTService) verify(raw string, k keyring, want TokenType) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (interface{}, error) { return k.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return nil, ErrTokenNotYetValid
	case err != nil:
		return nil, ErrInvalidToken
	case claims.TokenType != want:
		return nil, ErrInvalidTokenType
	case claims.UserID == "":
		return nil, ErrMissingUserID
	}
	return claims, nil
}
