package auth

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// contextKey is the echo context key under which validated claims are stored.
const contextKey = "user"

// Required returns middleware that rejects requests without a valid,
// non-revoked bearer token.
func Required(jwtService *JWTService, tokenStore TokenStoreInterface) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  contextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, tokenString string) (interface{}, error) {
			claims, err := jwtService.ValidateToken(tokenString)
			if err != nil {
				return nil, err
			}
			if revoked, _ := tokenStore.IsTokenBlacklisted(c.Request().Context(), claims.ID); revoked {
				return nil, echo.NewHTTPError(http.StatusUnauthorized, "token revoked")
			}
			return claims, nil
		},
	})
}

// Optional returns middleware that attaches claims when a valid bearer token
// is present but never rejects the request. Search and media routes use it so
// anonymous callers pass through while authenticated searches get recorded.
func Optional(jwtService *JWTService, tokenStore TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
				if claims, err := jwtService.ValidateToken(token); err == nil {
					if revoked, _ := tokenStore.IsTokenBlacklisted(c.Request().Context(), claims.ID); !revoked {
						c.Set(contextKey, claims)
					}
				}
			}
			return next(c)
		}
	}
}

// ClaimsFromContext returns the validated claims for the request, if any.
func ClaimsFromContext(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(contextKey).(*Claims)
	return claims, ok
}

// UserIDFromContext returns the authenticated user's ID, if any.
func UserIDFromContext(c echo.Context) (uuid.UUID, bool) {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		return uuid.Nil, false
	}
	id, err := claims.SubjectID()
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
