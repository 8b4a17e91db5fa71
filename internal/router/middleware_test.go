package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/boxmart-next/internal/constants"
	"github.com/boxmart-next/internal/models"
	"github.com/boxmart-next/internal/service"

	"github.com/gin-gonic/gin"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	generated := w2.Header().Get(requestIDHeader)
	if generated == "" {
		t.Fatalf("generated request id should not be empty")
	}
	if resp := strings.TrimSpace(generated); resp == "" {
		t.Fatalf("generated request id should not be blank")
	}
}

type fakeAuthenticator struct {
	users map[string]*models.User
	err   error
}

func (f fakeAuthenticator) Authenticate(token string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[token]
	if !ok {
		return nil, service.ErrInvalidToken
	}
	return user, nil
}

type fakeEnforcer struct {
	allowed map[string]bool
	err     error
}

func (f fakeEnforcer) EnforceRole(role, object, action string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.allowed[role+" "+action+" "+object], nil
}

func decodeStatusCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("http status want 200 got %d", w.Code)
	}
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp.StatusCode
}

func TestJWTAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	auth := fakeAuthenticator{users: map[string]*models.User{
		"good": {ID: 7, Email: "a@example.com", Role: constants.UserRoleCustomer},
	}}
	r := gin.New()
	r.Use(JWTAuthMiddleware(auth))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status_code": 0,
			"user_id":     c.GetUint(userIDContextKey),
			"role":        c.GetString(userRoleContextKey),
		})
	})

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: 401},
		{name: "bad scheme", header: "Basic abc", want: 401},
		{name: "unknown token", header: "Bearer nope", want: 401},
		{name: "valid token", header: "Bearer good", want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			if got := decodeStatusCode(t, w); got != tc.want {
				t.Fatalf("status_code want %d got %d body=%s", tc.want, got, w.Body.String())
			}
			if tc.want == 0 && !strings.Contains(w.Body.String(), `"user_id":7`) {
				t.Fatalf("user id should be set in context, body=%s", w.Body.String())
			}
		})
	}
}

func TestJWTAuthMiddlewareDisabledUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(JWTAuthMiddleware(fakeAuthenticator{err: service.ErrUserDisabled}))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status_code": 0})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer any")
	r.ServeHTTP(w, req)
	if got := decodeStatusCode(t, w); got != 401 {
		t.Fatalf("disabled user status_code want 401 got %d", got)
	}
}

func TestRBACMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	enforcer := fakeEnforcer{allowed: map[string]bool{
		"staff GET /admin/orders": true,
	}}
	newRouter := func(role string, e RoleEnforcer) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			if role != "" {
				c.Set(userRoleContextKey, role)
			}
			c.Next()
		})
		r.Use(RBACMiddleware(e))
		r.GET("/admin/orders", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status_code": 0})
		})
		r.POST("/admin/orders", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status_code": 0})
		})
		return r
	}

	cases := []struct {
		name     string
		role     string
		method   string
		enforcer RoleEnforcer
		want     int
	}{
		{name: "allowed", role: "staff", method: http.MethodGet, enforcer: enforcer, want: 0},
		{name: "denied", role: "staff", method: http.MethodPost, enforcer: enforcer, want: 403},
		{name: "customer", role: "customer", method: http.MethodGet, enforcer: enforcer, want: 403},
		{name: "no role", role: "", method: http.MethodGet, enforcer: enforcer, want: 401},
		{name: "enforce error", role: "staff", method: http.MethodGet, enforcer: fakeEnforcer{err: errors.New("boom")}, want: 401},
		{name: "nil enforcer", role: "staff", method: http.MethodGet, enforcer: nil, want: 401},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tc.method, "/admin/orders", nil)
			newRouter(tc.role, tc.enforcer).ServeHTTP(w, req)
			if got := decodeStatusCode(t, w); got != tc.want {
				t.Fatalf("status_code want %d got %d", tc.want, got)
			}
		})
	}
}
