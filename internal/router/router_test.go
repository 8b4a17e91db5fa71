package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/boxmart-next/internal/config"
	"github.com/boxmart-next/internal/models"
	"github.com/boxmart-next/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

type apiEnvelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func setupRouterTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	models.DB = db
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	v := viper.New()
	config.SetDefaults(v)
	v.Set("server.mode", "debug")
	v.Set("redis.enabled", false)
	v.Set("queue.enabled", false)
	v.Set("payos.client_id", "test-client")
	v.Set("payos.api_key", "test-api-key")
	v.Set("payos.checksum_key", "test-checksum-key")
	cfg, err := config.Unmarshal(v)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	return SetupRouter(cfg, provider.NewContainer(cfg)), db
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiEnvelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env apiEnvelope
	if w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("unmarshal %s %s response failed: %v body=%s", method, path, err, w.Body.String())
		}
	}
	return w, env
}

func loginToken(t *testing.T, r *gin.Engine, email, password string) string {
	t.Helper()
	_, env := doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": password})
	if env.StatusCode != 0 {
		t.Fatalf("login %s failed: %+v", email, env)
	}
	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil || result.Token == "" {
		t.Fatalf("login token missing: %v data=%s", err, string(env.Data))
	}
	return result.Token
}

func TestCheckoutFlowThroughRouter(t *testing.T) {
	r, db := setupRouterTest(t)

	boxType := &models.BoxType{Name: "Classic", Slug: "classic", Price: models.NewMoneyFromInt(100000), IsActive: true}
	if err := db.Create(boxType).Error; err != nil {
		t.Fatalf("create box type failed: %v", err)
	}

	_, env := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":    "buyer@example.com",
		"password": "buyer-pass-123",
	})
	if env.StatusCode != 0 {
		t.Fatalf("register failed: %+v", env)
	}
	token := loginToken(t, r, "buyer@example.com", "buyer-pass-123")

	_, env = doJSON(t, r, http.MethodGet, "/api/v1/cart", token, nil)
	if env.StatusCode != 0 {
		t.Fatalf("empty cart should be returned as success, got %+v", env)
	}

	_, env = doJSON(t, r, http.MethodPost, "/api/v1/cart/items", token, gin.H{"box_type_id": boxType.ID, "quantity": 2})
	if env.StatusCode != 0 {
		t.Fatalf("add cart item failed: %+v", env)
	}
	var cart struct {
		ItemCount  int    `json:"item_count"`
		TotalPrice string `json:"total_price"`
	}
	if err := json.Unmarshal(env.Data, &cart); err != nil {
		t.Fatalf("decode cart failed: %v", err)
	}
	if cart.ItemCount != 2 || cart.TotalPrice != "200000.00" {
		t.Fatalf("unexpected cart: %+v", cart)
	}

	_, env = doJSON(t, r, http.MethodPost, "/api/v1/checkout", token, gin.H{
		"delivery_method": "Standard",
		"payment_method":  "COD",
		"recipient_name":  "Buyer",
		"phone":           "0900000000",
		"address":         "1 Main St",
		"city":            "HCMC",
	})
	if env.StatusCode != 0 {
		t.Fatalf("checkout failed: %+v", env)
	}
	var order struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &order); err != nil {
		t.Fatalf("decode order failed: %v", err)
	}
	if order.ID == 0 || order.Status != "Pending" {
		t.Fatalf("unexpected order: %+v", order)
	}

	_, env = doJSON(t, r, http.MethodPost, "/api/v1/checkout", token, gin.H{
		"delivery_method": "Standard",
		"payment_method":  "COD",
		"recipient_name":  "Buyer",
		"phone":           "0900000000",
		"address":         "1 Main St",
	})
	if env.StatusCode != 404 && env.StatusCode != 400 {
		t.Fatalf("second checkout on empty cart should fail, got %+v", env)
	}

	_, env = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", order.ID), token, nil)
	if env.StatusCode != 0 {
		t.Fatalf("get own order failed: %+v", env)
	}
}

func TestAdminRoutesRequireRole(t *testing.T) {
	r, _ := setupRouterTest(t)

	_, env := doJSON(t, r, http.MethodGet, "/api/v1/admin/orders", "", nil)
	if env.StatusCode != 401 {
		t.Fatalf("anonymous admin access want 401 got %+v", env)
	}

	_, env = doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":    "customer@example.com",
		"password": "customer-pass-1",
	})
	if env.StatusCode != 0 {
		t.Fatalf("register failed: %+v", env)
	}
	customerToken := loginToken(t, r, "customer@example.com", "customer-pass-1")
	_, env = doJSON(t, r, http.MethodGet, "/api/v1/admin/orders", customerToken, nil)
	if env.StatusCode != 403 {
		t.Fatalf("customer admin access want 403 got %+v", env)
	}

	if _, err := models.InitDefaultAdmin("root@example.com", "root-pass-123"); err != nil {
		t.Fatalf("init admin failed: %v", err)
	}
	adminToken := loginToken(t, r, "root@example.com", "root-pass-123")
	_, env = doJSON(t, r, http.MethodGet, "/api/v1/admin/orders", adminToken, nil)
	if env.StatusCode != 0 {
		t.Fatalf("admin list orders failed: %+v", env)
	}
	_, env = doJSON(t, r, http.MethodPost, "/api/v1/admin/box-types", adminToken, gin.H{
		"name":  "Blind Box",
		"price": "150000",
	})
	if env.StatusCode != 0 {
		t.Fatalf("admin create box type failed: %+v", env)
	}
}

func TestPayOSWebhookRejectsBadSignature(t *testing.T) {
	r, _ := setupRouterTest(t)

	body := []byte(`{"code":"00","desc":"success","success":true,"data":{"orderCode":123,"amount":1000},"signature":"bad"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/payos/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad signature want http 400 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestDeriveAdminPermissionModule(t *testing.T) {
	cases := map[string]string{
		"/admin/orders/:id":     "orders",
		"/admin/authz/policies": "authz",
		"/admin":                "admin",
		"":                      "system",
		"/public/box-types":     "public",
	}
	for input, want := range cases {
		if got := deriveAdminPermissionModule(input); got != want {
			t.Fatalf("module of %q want %s got %s", input, want, got)
		}
	}
}
