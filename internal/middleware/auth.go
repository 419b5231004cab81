package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"rideboard/internal/dto"
	"rideboard/internal/models"
)

// IdentityResolver turns a verified identity-provider token into a local
// user row, provisioning one on first sight.
type IdentityResolver interface {
	EnsureUser(ctx context.Context, authUID, email string) (*models.User, error)
}

// RequireAuth verifies the bearer token and stores the local user id in the
// echo context under "user_id".
func RequireAuth(secret string, users IdentityResolver) echo.MiddlewareFunc {
	key := []byte(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return unauthorized("missing or invalid Authorization header")
			}

			tokenString := strings.TrimPrefix(header, "Bearer ")
			token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return key, nil
			})
			if err != nil || !token.Valid {
				return unauthorized("invalid or expired token")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return unauthorized("invalid token claims")
			}
			sub, _ := claims["sub"].(string)
			email, _ := claims["email"].(string)
			if sub == "" {
				return unauthorized("token has no subject")
			}

			user, err := users.EnsureUser(c.Request().Context(), sub, email)
			if err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable,
					dto.ErrorResponse{Code: dto.CodeUnavailable, Message: "identity lookup failed"})
			}

			c.Set("user_id", user.ID)
			c.Set("auth_uid", sub)
			return next(c)
		}
	}
}

// UserID reads the authenticated user's id set by RequireAuth.
func UserID(c echo.Context) uint {
	id, _ := c.Get("user_id").(uint)
	return id
}

// GenerateToken mints a token in the shape the identity provider issues.
// Used by local tooling and tests.
func GenerateToken(secret, authUID, email string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   authUID,
		"email": email,
		"exp":   time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func unauthorized(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized,
		dto.ErrorResponse{Code: dto.CodeUnauthorized, Message: msg})
}
