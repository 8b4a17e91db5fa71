package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestKeyByIPAndJSONField(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader(`{"email":" Test@Example.com "}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.RemoteAddr = "1.2.3.4:5678"

	key := KeyByIPAndJSONField("email")(c)
	if key != "test@example.com|1.2.3.4" {
		t.Fatalf("key want test@example.com|1.2.3.4 got %s", key)
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		t.Fatalf("read body after key extraction failed: %v", err)
	}
	if !strings.Contains(string(body), "Test@Example.com") {
		t.Fatalf("request body should be restored after reading field")
	}
}

func TestRateLimitMiddlewareWithoutClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("expected handler response body, got %s", w.Body.String())
	}
}

func TestToInt64(t *testing.T) {
	cases := []struct {
		name  string
		input interface{}
		want  int64
		ok    bool
	}{
		{name: "int64", input: int64(10), want: 10, ok: true},
		{name: "int", input: int(11), want: 11, ok: true},
		{name: "uint8", input: uint8(12), want: 12, ok: true},
		{name: "float64", input: float64(13.9), want: 13, ok: true},
		{name: "string", input: "bad", want: 0, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := toInt64(tc.input)
			if ok != tc.ok {
				t.Fatalf("ok want %v got %v", tc.ok, ok)
			}
			if got != tc.want {
				t.Fatalf("value want %d got %d", tc.want, got)
			}
		})
	}
}

func TestKeyByUserPrefersUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/orders/checkout", nil)
	c.Request.RemoteAddr = "9.8.7.6:1234"

	if key := KeyByUser(c); key != "9.8.7.6" {
		t.Fatalf("anonymous key want client ip got %s", key)
	}
	c.Set(userIDContextKey, uint(42))
	if key := KeyByUser(c); key != "user:42" {
		t.Fatalf("user key want user:42 got %s", key)
	}
}

func TestKeyByUserAndOrder(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/payments/payos/link", strings.NewReader(`{"order_id": 42}`))
	c.Request.RemoteAddr = "9.8.7.6:1234"
	c.Set(userIDContextKey, uint(7))

	if key := KeyByUserAndOrder(c); key != "user:7|order:42" {
		t.Fatalf("key want user:7|order:42 got %s", key)
	}
	body, _ := io.ReadAll(c.Request.Body)
	if string(body) != `{"order_id": 42}` {
		t.Fatalf("request body should be restored, got %s", body)
	}

	c.Request = httptest.NewRequest(http.MethodPost, "/payments/payos/link", strings.NewReader(`{}`))
	if key := KeyByUserAndOrder(c); key != "user:7" {
		t.Fatalf("missing order id should fall back to user key, got %s", key)
	}
}

func TestRateLimitRuleHelpers(t *testing.T) {
	rule := RateLimitRule{Name: "checkout", Prefix: "bx:rate:checkout", WindowSeconds: 60}
	if got := rule.retryAfter(12); got != 12 {
		t.Fatalf("retry after want ttl 12 got %d", got)
	}
	if got := rule.retryAfter(-1); got != 60 {
		t.Fatalf("expired ttl should fall back to window, got %d", got)
	}
	if got := (RateLimitRule{}).retryAfter(0); got != 1 {
		t.Fatalf("retry after should be at least 1, got %d", got)
	}
	if rule.messageKey() != "error.rate_limited" {
		t.Fatalf("default message key want error.rate_limited got %s", rule.messageKey())
	}

	count, ttl, ok := parseRateLimitResult([]interface{}{int64(3), int64(40)})
	if !ok || count != 3 || ttl != 40 {
		t.Fatalf("unexpected parse result %d %d %v", count, ttl, ok)
	}
	if _, _, ok := parseRateLimitResult("bad"); ok {
		t.Fatalf("malformed script result should be rejected")
	}

	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/checkout", nil)
	c.Set(userIDContextKey, uint(5))
	if key := rule.key(c, KeyByUser); key != "bx:rate:checkout:user:5" {
		t.Fatalf("unexpected prefixed key %s", key)
	}
}
