package payos

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testConfig(baseURL string) *Config {
	cfg := &Config{
		BaseURL:     baseURL,
		ClientID:    "client",
		APIKey:      "api-key",
		ChecksumKey: "checksum",
		ReturnURL:   "https://shop.example/ok",
		CancelURL:   "https://shop.example/cancel",
		Timeout:     2 * time.Second,
	}
	cfg.Normalize()
	return cfg
}

func signedWebhookBody(t *testing.T, data map[string]interface{}, key string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"code":      "00",
		"desc":      "success",
		"success":   true,
		"data":      data,
		"signature": SignData(data, key),
	})
	if err != nil {
		t.Fatalf("marshal webhook failed: %v", err)
	}
	return body
}

func TestSanitizeDescription(t *testing.T) {
	cases := map[string]string{
		"Đơn hàng #BX123":                  "Don hang BX123",
		"  Hộp quà   tết!! ":               "Hop qua tet",
		"abcdefghijklmnopqrstuvwxyz0123456": "abcdefghijklmnopqrstuvwxy",
		"&=?":                              "",
	}
	for raw, want := range cases {
		if got := SanitizeDescription(raw, 25); got != want {
			t.Fatalf("sanitize %q want %q got %q", raw, want, got)
		}
	}
}

func TestGenerateOrderCodeFitsBudget(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	first := generateOrderCode(now)
	second := generateOrderCode(now)
	if first == second {
		t.Fatalf("order codes in the same millisecond should differ")
	}
	if first <= 0 || first >= 1_000_000_000_000_000 {
		t.Fatalf("order code out of 15-digit budget: %d", first)
	}
}

func TestSignRoundTrip(t *testing.T) {
	data := map[string]interface{}{
		"orderCode":     json.Number("123456"),
		"amount":        json.Number("180000"),
		"description":   "DH 123456",
		"paymentLinkId": "link-1",
		"code":          "00",
		"reference":     nil,
	}
	body := signedWebhookBody(t, data, "checksum")
	cfg := testConfig("")

	got, err := VerifyWebhook(cfg, body, "")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if got.OrderCode != 123456 || got.Amount != 180000 || got.Status != StatusPaid {
		t.Fatalf("unexpected webhook data: %+v", got)
	}

	tampered := strings.Replace(string(body), "180000", "1", 1)
	if _, err := VerifyWebhook(cfg, []byte(tampered), ""); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("tampered payload should fail, got %v", err)
	}
}

func TestVerifyWebhookRejectsWrongSecret(t *testing.T) {
	data := map[string]interface{}{"orderCode": 42, "amount": 1000, "code": "00"}
	body := signedWebhookBody(t, data, "wrong-secret")

	if _, err := VerifyWebhook(testConfig(""), body, ""); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("want ErrSignatureInvalid got %v", err)
	}
}

func TestVerifyWebhookPrefersHeaderSignature(t *testing.T) {
	data := map[string]interface{}{"orderCode": 7, "amount": 5000, "status": "cancelled"}
	body, _ := json.Marshal(map[string]interface{}{"code": "00", "data": data, "signature": "bogus"})

	got, err := VerifyWebhook(testConfig(""), body, SignData(data, "checksum"))
	if err != nil {
		t.Fatalf("header signature should be used: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Fatalf("status want CANCELLED got %s", got.Status)
	}
}

func TestCanonicalDataString(t *testing.T) {
	got := CanonicalDataString(map[string]interface{}{
		"b":    "x",
		"a":    json.Number("1"),
		"c":    nil,
		"flag": true,
	})
	if got != "a=1&b=x&c=&flag=true" {
		t.Fatalf("unexpected canonical string: %s", got)
	}
}

func TestCreatePaymentLink(t *testing.T) {
	var captured map[string]interface{}
	var headers http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/payment-requests" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		headers = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &captured)
		_, _ = w.Write([]byte(`{"code":"00","desc":"success","data":{"paymentLinkId":"pl_1","checkoutUrl":"https://pay.example/pl_1","orderCode":99,"amount":1,"status":"PENDING"}}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	result, err := CreatePaymentLink(context.Background(), cfg, CreateInput{
		OrderCode:   99,
		Amount:      0,
		Description: "Đơn BX-20261018",
		Items:       []Item{{Name: "Gift", Quantity: 0, Price: -5}},
	})
	if err != nil {
		t.Fatalf("create payment link failed: %v", err)
	}
	if result.PaymentLinkID != "pl_1" || result.CheckoutURL != "https://pay.example/pl_1" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if headers.Get("x-client-id") != "client" || headers.Get("x-api-key") != "api-key" || headers.Get("x-idempotency-key") == "" {
		t.Fatalf("missing auth headers: %v", headers)
	}
	if captured["amount"].(float64) != 1 {
		t.Fatalf("amount should be clamped to 1, got %v", captured["amount"])
	}
	item := captured["items"].([]interface{})[0].(map[string]interface{})
	if item["quantity"].(float64) != 1 || item["price"].(float64) != 1 {
		t.Fatalf("item should be clamped, got %v", item)
	}
	description := captured["description"].(string)
	if description != "Don BX 20261018" {
		t.Fatalf("unexpected description: %q", description)
	}
	want := Sign(CreateSignatureString(1, cfg.CancelURL, description, 99, cfg.ReturnURL), cfg.ChecksumKey)
	if captured["signature"] != want {
		t.Fatalf("signature mismatch: %v", captured["signature"])
	}
}

func TestCreatePaymentLinkReadsIDField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"00","desc":"success","data":{"id":"pl_2","checkoutUrl":"https://pay.example/pl_2","amount":1000,"description":"DH 1"}}`))
	}))
	defer server.Close()

	result, err := CreatePaymentLink(context.Background(), testConfig(server.URL), CreateInput{
		OrderCode:   100,
		Amount:      1000,
		Description: "DH 1",
	})
	if err != nil {
		t.Fatalf("create payment link failed: %v", err)
	}
	if result.PaymentLinkID != "pl_2" || result.CheckoutURL != "https://pay.example/pl_2" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Amount != 1000 || result.Description != "DH 1" {
		t.Fatalf("unexpected amount or description: %+v", result)
	}
}

func TestCreatePaymentLinkRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"code":"231","desc":"Đơn thanh toán đã tồn tại","data":null}`))
	}))
	defer server.Close()

	_, err := CreatePaymentLink(context.Background(), testConfig(server.URL), CreateInput{OrderCode: 1, Amount: 1000})
	if !errors.Is(err, ErrRequestRejected) || !strings.Contains(err.Error(), "231") {
		t.Fatalf("want ErrRequestRejected with gateway code, got %v", err)
	}
}

func TestCreatePaymentLinkTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{"code":"00"}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Timeout = 50 * time.Millisecond
	if _, err := CreatePaymentLink(context.Background(), cfg, CreateInput{OrderCode: 1, Amount: 1000}); !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("want ErrRequestFailed on timeout, got %v", err)
	}
}

func TestCancelPaymentLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/payment-requests/pl_9/cancel" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"code":"00","desc":"success","data":{"id":"pl_9","orderCode":9,"status":"CANCELLED"}}`))
	}))
	defer server.Close()

	info, err := CancelPaymentLink(context.Background(), testConfig(server.URL), "pl_9", "user cancelled")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if info.Status != StatusCancelled || info.OrderCode != 9 {
		t.Fatalf("unexpected info: %+v", info)
	}
}
