// Package identity assigns and extracts the opaque per-visitor id that
// scopes endpoint ownership and log visibility. Identity is a cookie, not
// an account: the first visit mints a uuid and every later request
// carries it back.
package identity

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// CookieName is the visitor id cookie.
const CookieName = "x-user-id"

// Anonymous is the identity used for requests that carry no cookie on
// paths where one cannot be assigned (e.g. WebSocket upgrades).
const Anonymous = "guest"

type contextKey struct{}

// Middleware ensures every request carries a visitor id, minting one and
// setting the cookie when absent, and stores it on the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := FromRequest(r)
		if userID == "" {
			userID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    userID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(WithVisitor(r.Context(), userID)))
	})
}

// WithVisitor returns a context carrying the visitor id.
func WithVisitor(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// Visitor returns the visitor id stored on the context, or empty.
func Visitor(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// FromRequest reads the visitor id cookie directly, without minting one.
func FromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return ""
}

// ClientIP resolves the client address, preferring proxy-set headers so
// the logged IP survives reverse proxies.
func ClientIP(r *http.Request) string {
	if xfwd := r.Header.Get("X-Forwarded-For"); xfwd != "" {
		if first, _, ok := strings.Cut(xfwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(xfwd)
	}
	if real := r.Header.Get("X-Real-Ip"); real != "" {
		return strings.TrimSpace(real)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
