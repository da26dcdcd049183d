package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"orchid-shop/internal/apperr"
	"orchid-shop/internal/auth"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEcho(tokens *auth.TokenIssuer, rules []Rule) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		_ = c.String(apperr.HTTPStatus(err), apperr.KindOf(err).String())
	}
	e.Use(AuthMiddleware(tokens, zap.NewNop()))
	e.Use(Policy(rules))

	whoami := func(c echo.Context) error {
		id, ok := IdentityFrom(c)
		if !ok {
			return c.String(http.StatusOK, "anonymous")
		}
		return c.String(http.StatusOK, id.AccountName+":"+id.Role)
	}
	e.Any("/*", whoami)
	return e
}

func do(e *echo.Echo, method, path string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+token) }
}

func TestAuthMiddlewareSetsIdentity(t *testing.T) {
	tokens := auth.NewTokenIssuer("mw-secret", time.Hour)
	token, _, err := tokens.Issue("alice", "USER", 7)
	require.NoError(t, err)
	e := newTestEcho(tokens, []Rule{Allow("", "/**")})

	rec := do(e, http.MethodGet, "/api/anything", bearer(token))
	assert.Equal(t, "alice:USER", rec.Body.String())

	rec = do(e, http.MethodGet, "/api/anything", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: AuthCookie, Value: token})
	})
	assert.Equal(t, "alice:USER", rec.Body.String())

	// tokens signed with another key are ignored
	foreign, _, err := auth.NewTokenIssuer("other", time.Hour).Issue("mallory", "ADMIN", 1)
	require.NoError(t, err)
	rec = do(e, http.MethodGet, "/api/anything", bearer(foreign))
	assert.Equal(t, "anonymous", rec.Body.String())

	rec = do(e, http.MethodGet, "/api/anything", bearer("garbage"))
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestAuthMiddlewareIgnoresExpiredToken(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	old := auth.NewTokenIssuer("mw-secret", time.Hour).WithClock(func() time.Time { return past })
	token, _, err := old.Issue("alice", "USER", 7)
	require.NoError(t, err)

	e := newTestEcho(auth.NewTokenIssuer("mw-secret", time.Hour), []Rule{Allow("", "/**")})
	rec := do(e, http.MethodGet, "/x", bearer(token))
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestPolicy(t *testing.T) {
	tokens := auth.NewTokenIssuer("mw-secret", time.Hour)
	userToken, _, err := tokens.Issue("alice", "USER", 7)
	require.NoError(t, err)
	adminToken, _, err := tokens.Issue("root", "ADMIN", 1)
	require.NoError(t, err)

	e := newTestEcho(tokens, []Rule{
		Allow(http.MethodPost, "/api/auth/*"),
		Allow(http.MethodGet, "/api/orchids/**"),
		RequireLogin(http.MethodGet, "/api/accounts/me"),
		RequireRole("", "/api/accounts/**", "ADMIN"),
		RequireRole("", "/api/orchids/**", "ADMIN"),
	})

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"public login", http.MethodPost, "/api/auth/login", "", http.StatusOK},
		{"public catalog root", http.MethodGet, "/api/orchids", "", http.StatusOK},
		{"public catalog item", http.MethodGet, "/api/orchids/3", "", http.StatusOK},
		{"catalog write anonymous", http.MethodPost, "/api/orchids", "", http.StatusUnauthorized},
		{"catalog write as user", http.MethodPost, "/api/orchids", userToken, http.StatusForbidden},
		{"catalog write as admin", http.MethodDelete, "/api/orchids/3", adminToken, http.StatusOK},
		{"me as user", http.MethodGet, "/api/accounts/me", userToken, http.StatusOK},
		{"me anonymous", http.MethodGet, "/api/accounts/me", "", http.StatusUnauthorized},
		{"accounts as user", http.MethodGet, "/api/accounts/9", userToken, http.StatusForbidden},
		{"unmatched needs login", http.MethodGet, "/api/orders", "", http.StatusUnauthorized},
		{"unmatched with login", http.MethodGet, "/api/orders", userToken, http.StatusOK},
		{"login wildcard is one segment", http.MethodPost, "/api/auth/a/b", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mutate func(*http.Request)
			if tt.token != "" {
				mutate = bearer(tt.token)
			}
			rec := do(e, tt.method, tt.path, mutate)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestMatchPath(t *testing.T) {
	assert.True(t, matchPath(splitPath("/api/**"), splitPath("/api")))
	assert.True(t, matchPath(splitPath("/api/*/x"), splitPath("/api/1/x")))
	assert.False(t, matchPath(splitPath("/api/*"), splitPath("/api")))
	assert.False(t, matchPath(splitPath("/api/a"), splitPath("/api/a/b")))
	assert.True(t, matchPath(splitPath("/"), splitPath("")))
}
