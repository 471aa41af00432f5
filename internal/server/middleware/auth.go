package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/powershield/shield/internal/model"
	"github.com/powershield/shield/internal/service"
)

type contextKeyAuth string

const (
	// ClaimsKey is the context key for the authenticated claims.
	ClaimsKey contextKeyAuth = "auth_claims"
	// AdminKey is the context key for the authenticated admin account.
	AdminKey contextKeyAuth = "auth_admin"
)

// Authenticator verifies a bearer token and re-checks the identity behind
// it is still active.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.AdminUser, *service.Claims, error)
}

// Authenticate returns the authentication gate: it extracts the bearer
// token from the Authorization header, verifies it, re-reads the account's
// active status, and attaches the claims and account to the request
// context. Any failure is a 401; the response body never distinguishes
// expired from tampered from malformed tokens.
func Authenticate(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeAuthError(w, http.StatusUnauthorized, "Access denied. No token provided.")
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")
			if token == "" || token == header {
				writeAuthError(w, http.StatusUnauthorized, "Access denied. Invalid token.")
				return
			}

			admin, claims, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Access denied. Invalid token.")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			ctx = context.WithValue(ctx, AdminKey, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole returns the authorization gate for a minimum role. It must
// run after Authenticate and operates only on the in-process claims; the
// token is never re-parsed. A super admin satisfies an admin requirement.
func RequireRole(required model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r.Context())
			if claims == nil || !roleSatisfies(claims.Role, required) {
				writeAuthError(w, http.StatusForbidden, "Access denied. Insufficient privileges.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func roleSatisfies(have, required model.Role) bool {
	switch required {
	case model.RoleSuperAdmin:
		return have == model.RoleSuperAdmin
	case model.RoleAdmin:
		return have == model.RoleAdmin || have == model.RoleSuperAdmin
	default:
		return false
	}
}

// GetClaims extracts the authenticated claims from the context. Returns nil
// on an unauthenticated request.
func GetClaims(ctx context.Context) *service.Claims {
	if c, ok := ctx.Value(ClaimsKey).(*service.Claims); ok {
		return c
	}
	return nil
}

// GetAdmin extracts the authenticated admin account from the context.
func GetAdmin(ctx context.Context) *model.AdminUser {
	if a, ok := ctx.Value(AdminKey).(*model.AdminUser); ok {
		return a
	}
	return nil
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Manually constructed JSON to avoid an import cycle with the handler
	// package.
	w.Write([]byte(`{"success":false,"message":"` + message + `"}`))
}
