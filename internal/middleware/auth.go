package middleware

import (
	"strings"

	"orchid-shop/internal/auth"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthCookie is the cookie login sets and the gate falls back to.
const AuthCookie = "authToken"

const identityKey = "identity"

// Identity is the verified principal attached to a request.
type Identity struct {
	AccountName string
	Role        string
	AccountID   uint
}

// IdentityFrom returns the identity set by AuthMiddleware, if any.
func IdentityFrom(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityKey).(Identity)
	return id, ok
}

// AuthMiddleware verifies the bearer token (or the auth cookie) and stores the
// identity on success. It never rejects a request; Policy decides access.
func AuthMiddleware(tokens *auth.TokenIssuer, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := tokenFromRequest(c)
			if token == "" {
				return next(c)
			}

			subject, err := tokens.Subject(token)
			if err != nil {
				log.Debug("unreadable token", zap.Error(err))
				return next(c)
			}
			claims, err := tokens.Verify(token, subject)
			if err != nil {
				log.Debug("token rejected", zap.String("subject", subject), zap.Error(err))
				return next(c)
			}

			c.Set(identityKey, Identity{
				AccountName: subject,
				Role:        claims.Role,
				AccountID:   claims.AccountID,
			})
			return next(c)
		}
	}
}

func tokenFromRequest(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if rest, ok := strings.CutPrefix(header, "Bearer "); ok {
		if t := strings.TrimSpace(rest); t != "" {
			return t
		}
	}
	if cookie, err := c.Cookie(AuthCookie); err == nil {
		return cookie.Value
	}
	return ""
}
