package middleware

import (
	"net/http"
	"strings"

	"orchid-shop/internal/apperr"

	"github.com/labstack/echo/v4"
)

type Access int

const (
	Authenticated Access = iota
	Public
	RoleOnly
)

// Rule grants access to requests whose method and path match. An empty
// Method matches any method. In Pattern, "*" matches one path segment and
// "**" matches any number of trailing segments, including none.
type Rule struct {
	Method  string
	Pattern string
	Access  Access
	Role    string
}

func Allow(method, pattern string) Rule {
	return Rule{Method: method, Pattern: pattern, Access: Public}
}

func RequireRole(method, pattern, role string) Rule {
	return Rule{Method: method, Pattern: pattern, Access: RoleOnly, Role: role}
}

func RequireLogin(method, pattern string) Rule {
	return Rule{Method: method, Pattern: pattern, Access: Authenticated}
}

func (r Rule) matches(method, path string) bool {
	if r.Method != "" && r.Method != method {
		return false
	}
	return matchPath(splitPath(r.Pattern), splitPath(path))
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchPath(pattern, path []string) bool {
	for i, seg := range pattern {
		if seg == "**" {
			return true
		}
		if i >= len(path) {
			return false
		}
		if seg != "*" && seg != path[i] {
			return false
		}
	}
	return len(pattern) == len(path)
}

// Policy enforces the first rule matching the request. Requests no rule
// matches need an authenticated identity.
func Policy(rules []Rule) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rule := Rule{Access: Authenticated}
			for _, r := range rules {
				if r.matches(req.Method, req.URL.Path) {
					rule = r
					break
				}
			}
			if rule.Access == Public || req.Method == http.MethodOptions {
				return next(c)
			}

			id, ok := IdentityFrom(c)
			if !ok {
				return apperr.Unauthorized("Authentication required")
			}
			if rule.Access == RoleOnly && id.Role != rule.Role {
				return apperr.PermissionDenied("Access denied")
			}
			return next(c)
		}
	}
}
