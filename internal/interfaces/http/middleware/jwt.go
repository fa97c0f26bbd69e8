package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/retailpos/backend/internal/infrastructure/auth"
	"github.com/retailpos/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = logger.GinUserIDKey
	JWTUsernameKey = "jwt_username"
	JWTRoleKey     = "jwt_role"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// JWTMiddlewareConfig configures bearer token authentication
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// TokenBlacklist, when set, rejects logged-out tokens and tokens issued
	// before a password change or deactivation
	TokenBlacklist   auth.TokenBlacklist
	SkipPaths        []string
	SkipPathPrefixes []string
	// OnError replaces the default 401 response
	OnError func(c *gin.Context, err error)
	Logger  *zap.Logger
}

// DefaultJWTConfig leaves health, metrics, login and refresh public
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/metrics",
			"/api/v1/health",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
		Logger: zap.NewNop(),
	}
}

func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(jwtService))
}

// JWTAuthMiddlewareWithConfig authenticates every request outside the skip
// lists and stores the claims on the gin context
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if cfg.skips(c.Request.URL.Path) {
			c.Next()
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			handleAuthError(c, cfg, auth.ErrInvalidToken)
			return
		}
		claims, err := cfg.JWTService.ValidateAccessToken(token)
		if err != nil {
			handleAuthError(c, cfg, err)
			return
		}
		if err := cfg.checkRevoked(c.Request.Context(), claims); err != nil {
			handleAuthError(c, cfg, err)
			return
		}

		setClaims(c, claims)
		ctx, _ := logger.WithUserID(c.Request.Context(), logger.FromContext(c.Request.Context()), claims.UserID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (cfg JWTMiddlewareConfig) skips(path string) bool {
	if slices.Contains(cfg.SkipPaths, path) {
		return true
	}
	return slices.ContainsFunc(cfg.SkipPathPrefixes, func(p string) bool {
		return strings.HasPrefix(path, p)
	})
}

// checkRevoked consults the blacklist. Lookup failures are logged and the
// request is let through so a Redis outage does not lock every till.
func (cfg JWTMiddlewareConfig) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	if cfg.TokenBlacklist == nil {
		return nil
	}
	if claims.ID != "" {
		revoked, err := cfg.TokenBlacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			cfg.Logger.Error("Token blacklist lookup failed", zap.String("jti", claims.ID), zap.Error(err))
		} else if revoked {
			return auth.ErrTokenBlacklisted
		}
	}
	invalidated, err := cfg.TokenBlacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
	if err != nil {
		cfg.Logger.Error("User token invalidation lookup failed", zap.String("user_id", claims.UserID), zap.Error(err))
		return nil
	}
	if invalidated {
		return auth.ErrTokenBlacklisted
	}
	return nil
}

func bearerToken(c *gin.Context) (string, bool) {
	token, found := strings.CutPrefix(c.GetHeader(AuthHeaderKey), BearerPrefix)
	token = strings.TrimSpace(token)
	return token, found && token != ""
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(JWTClaimsKey, claims)
	c.Set(JWTUserIDKey, claims.UserID)
	c.Set(JWTUsernameKey, claims.Username)
	c.Set(JWTRoleKey, claims.Role)
}

// authFailures maps token errors to the code and message returned with 401
var authFailures = []struct {
	err     error
	code    string
	message string
}{
	{auth.ErrExpiredToken, "TOKEN_EXPIRED", "Token has expired"},
	{auth.ErrTokenBlacklisted, "TOKEN_REVOKED", "Token has been revoked"},
	{auth.ErrInvalidTokenType, "TOKEN_INVALID", "Invalid token type"},
	{auth.ErrTokenNotYetValid, "TOKEN_INVALID", "Token is not yet valid"},
	{auth.ErrInvalidToken, "TOKEN_INVALID", "Invalid token"},
}

func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		return
	}
	cfg.Logger.Warn("Authentication failed", zap.Error(err), zap.String("path", c.Request.URL.Path))

	code, message := "UNAUTHORIZED", "Authentication required"
	for _, f := range authFailures {
		if errors.Is(err, f.err) {
			code, message = f.code, f.message
			break
		}
	}
	abortWithError(c, http.StatusUnauthorized, code, message)
}

// abortWithError writes the standard error envelope and stops the chain
func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":       code,
			"message":    message,
			"request_id": c.GetString(RequestIDKey),
		},
	})
}

// GetJWTClaims returns the authenticated claims, or nil on public routes
func GetJWTClaims(c *gin.Context) *auth.Claims {
	v, _ := c.Get(JWTClaimsKey)
	claims, _ := v.(*auth.Claims)
	return claims
}

func GetJWTUserID(c *gin.Context) string   { return c.GetString(JWTUserIDKey) }
func GetJWTUsername(c *gin.Context) string { return c.GetString(JWTUsernameKey) }
func GetJWTRole(c *gin.Context) string     { return c.GetString(JWTRoleKey) }
