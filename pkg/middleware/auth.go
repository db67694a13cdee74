package middleware

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-armada/pkg/config"

	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
)

// AuthContextKey key for storing caller info in context
type AuthContextKey string

const (
	AuthContextKeyCaller = AuthContextKey("authenticated_caller")

	authCookieName = "armada_auth_token"
)

// Caller identifies an authenticated API client. The service is fronted
// by chat integrations that act on behalf of guild members, so the
// token carries both the integration identity and the acting user.
type Caller struct {
	Subject string `json:"sub"`
	GuildID string `json:"guild_id,omitempty"`
	UserID  string `json:"user_id,omitempty"`
	Scopes  string `json:"scopes,omitempty"`
}

// AuthMiddleware provides authentication utilities for API operations
type AuthMiddleware struct {
	secret []byte
	issuer string
}

// NewAuthMiddleware creates a new authentication middleware. The signing
// secret comes from JWT_SECRET.
func NewAuthMiddleware() *AuthMiddleware {
	return &AuthMiddleware{
		secret: []byte(config.MustGetEnv("JWT_SECRET")),
		issuer: config.GetEnv("JWT_ISSUER", "armada"),
	}
}

// ValidateAuthFromHeaders validates authentication from request headers
func (m *AuthMiddleware) ValidateAuthFromHeaders(authHeader, cookieHeader string) (*Caller, error) {
	token := m.ExtractTokenFromHeaders(authHeader)
	if token == "" && cookieHeader != "" {
		token = m.ExtractTokenFromCookie(cookieHeader)
	}
	if token == "" {
		return nil, huma.Error401Unauthorized("Authentication required")
	}

	caller, err := m.ValidateToken(token)
	if err != nil {
		return nil, huma.Error401Unauthorized("Invalid authentication token", err)
	}
	return caller, nil
}

// ExtractTokenFromHeaders extracts a bearer token from an Authorization header
func (m *AuthMiddleware) ExtractTokenFromHeaders(authHeader string) string {
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// ExtractTokenFromCookie extracts the auth token from a Cookie header
func (m *AuthMiddleware) ExtractTokenFromCookie(cookieHeader string) string {
	for _, cookie := range strings.Split(cookieHeader, ";") {
		cookie = strings.TrimSpace(cookie)
		if strings.HasPrefix(cookie, authCookieName+"=") {
			return strings.TrimPrefix(cookie, authCookieName+"=")
		}
	}
	return ""
}

// ValidateToken parses and verifies a JWT and returns the caller it identifies
func (m *AuthMiddleware) ValidateToken(tokenString string) (*Caller, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("no authentication token provided")
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	caller := &Caller{}
	if sub, ok := claims["sub"].(string); ok {
		caller.Subject = sub
	}
	if guildID, ok := claims["guild_id"].(string); ok {
		caller.GuildID = guildID
	}
	if userID, ok := claims["user_id"].(string); ok {
		caller.UserID = userID
	}
	if scopes, ok := claims["scopes"].(string); ok {
		caller.Scopes = scopes
	}
	return caller, nil
}

// IssueToken signs a token for a caller, used by integration setup tooling
func (m *AuthMiddleware) IssueToken(caller *Caller, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": m.issuer,
		"sub": caller.Subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if caller.GuildID != "" {
		claims["guild_id"] = caller.GuildID
	}
	if caller.UserID != "" {
		claims["user_id"] = caller.UserID
	}
	if caller.Scopes != "" {
		claims["scopes"] = caller.Scopes
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// GetCaller retrieves the authenticated caller from a context
func GetCaller(ctx context.Context) *Caller {
	if caller, ok := ctx.Value(AuthContextKeyCaller).(*Caller); ok {
		return caller
	}
	return nil
}
