package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/powershield/shield/internal/model"
	"github.com/powershield/shield/internal/service"
)

// fakeAuth authenticates any token equal to its configured value.
type fakeAuth struct {
	token  string
	admin  *model.AdminUser
	claims *service.Claims
}

func (f *fakeAuth) Authenticate(ctx context.Context, token string) (*model.AdminUser, *service.Claims, error) {
	if token == f.token {
		return f.admin, f.claims, nil
	}
	return nil, nil, errors.New("invalid token")
}

func newFakeAuth(role model.Role) *fakeAuth {
	admin := &model.AdminUser{ID: "admin_1", Username: "admin", Role: role, IsActive: true}
	return &fakeAuth{
		token:  "valid-token",
		admin:  admin,
		claims: &service.Claims{ID: admin.ID, Username: admin.Username, Role: role},
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	gate := Authenticate(newFakeAuth(model.RoleAdmin))(okHandler())

	rr := httptest.NewRecorder()
	gate.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
	if body := rr.Body.String(); body != `{"success":false,"message":"Access denied. No token provided."}` {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestAuthenticate_BadScheme(t *testing.T) {
	gate := Authenticate(newFakeAuth(model.RoleAdmin))(okHandler())

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rr := httptest.NewRecorder()
	gate.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestAuthenticate_RejectedToken(t *testing.T) {
	gate := Authenticate(newFakeAuth(model.RoleAdmin))(okHandler())

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	rr := httptest.NewRecorder()
	gate.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestAuthenticate_AttachesIdentity(t *testing.T) {
	auth := newFakeAuth(model.RoleAdmin)
	var gotClaims *service.Claims
	var gotAdmin *model.AdminUser

	gate := Authenticate(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims = GetClaims(r.Context())
		gotAdmin = GetAdmin(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rr := httptest.NewRecorder()
	gate.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if gotClaims == nil || gotClaims.ID != "admin_1" {
		t.Errorf("claims = %+v, want admin_1", gotClaims)
	}
	if gotAdmin == nil || gotAdmin.Username != "admin" {
		t.Errorf("admin = %+v, want username admin", gotAdmin)
	}
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name     string
		have     model.Role
		required model.Role
		want     int
	}{
		{"admin meets admin", model.RoleAdmin, model.RoleAdmin, http.StatusOK},
		{"super meets admin", model.RoleSuperAdmin, model.RoleAdmin, http.StatusOK},
		{"super meets super", model.RoleSuperAdmin, model.RoleSuperAdmin, http.StatusOK},
		{"admin denied super", model.RoleAdmin, model.RoleSuperAdmin, http.StatusForbidden},
		{"unknown role denied", model.Role("owner"), model.RoleAdmin, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := newFakeAuth(tc.have)
			handler := Authenticate(auth)(RequireRole(tc.required)(okHandler()))

			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set("Authorization", "Bearer valid-token")
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tc.want {
				t.Errorf("status = %d, want %d", rr.Code, tc.want)
			}
		})
	}
}

func TestRequireRole_WithoutAuthentication(t *testing.T) {
	handler := RequireRole(model.RoleAdmin)(okHandler())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rr.Code)
	}
}

func TestRequestID_Generated(t *testing.T) {
	var got string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetRequestID(r.Context())
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if got == "" {
		t.Error("expected a generated request ID")
	}
	if rr.Header().Get("X-Request-ID") != got {
		t.Error("response header does not match context request ID")
	}
}

func TestRequestID_Passthrough(t *testing.T) {
	var got string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "client-supplied-id")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got != "client-supplied-id" {
		t.Errorf("request ID = %q, want client-supplied-id", got)
	}
}

func TestLogger_WriterSupportsFlush(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("partial"))
		if err := http.NewResponseController(w).Flush(); err != nil {
			t.Errorf("flush through logging wrapper: %v", err)
		}
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if !rr.Flushed {
		t.Error("flush did not reach the underlying writer")
	}
}
