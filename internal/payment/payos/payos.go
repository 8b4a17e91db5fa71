package payos

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrConfigInvalid    = errors.New("payos config invalid")
	ErrRequestFailed    = errors.New("payos request failed")
	ErrRequestRejected  = errors.New("payos request rejected")
	ErrResponseInvalid  = errors.New("payos response invalid")
	ErrSignatureInvalid = errors.New("payos signature invalid")
)

// 网关状态常量
const (
	StatusPaid      = "PAID"
	StatusPending   = "PENDING"
	StatusCancelled = "CANCELLED"
	StatusExpired   = "EXPIRED"

	codeSuccess = "00"
)

const (
	defaultBaseURL              = "https://api-merchant.payos.vn"
	defaultTimeout              = 15 * time.Second
	defaultDescriptionMaxLength = 25
	orderCodeTimestampModulo    = 1_000_000_000_000
	orderCodeSequenceSize       = 1000

	// HeaderSignature 回调签名可选请求头
	HeaderSignature = "x-signature"
)

var orderCodeSeq atomic.Uint64

// Config PayOS 配置
type Config struct {
	BaseURL              string        // 接口地址
	ClientID             string        // x-client-id
	APIKey               string        // x-api-key
	ChecksumKey          string        // HMAC 密钥
	ReturnURL            string        // 支付成功跳转
	CancelURL            string        // 取消支付跳转
	Timeout              time.Duration // 单次请求超时
	DescriptionMaxLength int           // 描述最大长度
}

// Item 支付链接商品行
type Item struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
	Price    int64  `json:"price"`
}

// CreateInput 创建支付链接输入
type CreateInput struct {
	OrderCode      int64
	Amount         int64
	Description    string
	Items          []Item
	BuyerName      string
	BuyerEmail     string
	BuyerPhone     string
	ExpiredAt      time.Time
	IdempotencyKey string
}

// CreateResult 创建支付链接结果
type CreateResult struct {
	PaymentLinkID string
	CheckoutURL   string
	OrderCode     int64
	Amount        int64
	Description   string
	Status        string
	QRCode        string
}

// PaymentLinkInfo 支付链接详情
type PaymentLinkInfo struct {
	ID              string `json:"id"`
	OrderCode       int64  `json:"orderCode"`
	Amount          int64  `json:"amount"`
	AmountPaid      int64  `json:"amountPaid"`
	AmountRemaining int64  `json:"amountRemaining"`
	Status          string `json:"status"`
	CreatedAt       string `json:"createdAt"`
	CanceledAt      string `json:"canceledAt"`
}

// WebhookData 回调数据（已验签）
type WebhookData struct {
	OrderCode           int64
	Amount              int64
	Description         string
	Reference           string
	TransactionDateTime string
	PaymentLinkID       string
	Code                string
	Desc                string
	Status              string
	Raw                 map[string]interface{}
}

type apiResponse struct {
	Code      string          `json:"code"`
	Desc      string          `json:"desc"`
	Data      json.RawMessage `json:"data"`
	Signature string          `json:"signature"`
}

// Normalize 补全默认值并去除首尾空白
func (c *Config) Normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	c.ClientID = strings.TrimSpace(c.ClientID)
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.ChecksumKey = strings.TrimSpace(c.ChecksumKey)
	c.ReturnURL = strings.TrimSpace(c.ReturnURL)
	c.CancelURL = strings.TrimSpace(c.CancelURL)
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.DescriptionMaxLength <= 0 {
		c.DescriptionMaxLength = defaultDescriptionMaxLength
	}
}

// ValidateConfig 校验创建支付链接所需配置
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if cfg.ClientID == "" {
		return fmt.Errorf("%w: client_id is required", ErrConfigInvalid)
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("%w: api_key is required", ErrConfigInvalid)
	}
	if cfg.ChecksumKey == "" {
		return fmt.Errorf("%w: checksum_key is required", ErrConfigInvalid)
	}
	if cfg.ReturnURL == "" || cfg.CancelURL == "" {
		return fmt.Errorf("%w: return_url and cancel_url are required", ErrConfigInvalid)
	}
	return nil
}

// GenerateOrderCode 生成网关订单号：毫秒时间戳取模 10^12 后拼接 3 位自增序号，不超过 15 位
func GenerateOrderCode() int64 {
	return generateOrderCode(time.Now())
}

func generateOrderCode(now time.Time) int64 {
	seq := orderCodeSeq.Add(1) % orderCodeSequenceSize
	return (now.UnixMilli()%orderCodeTimestampModulo)*orderCodeSequenceSize + int64(seq)
}

// SanitizeDescription 去除变音符号，仅保留字母数字与空格，并按最大长度截断
func SanitizeDescription(raw string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = defaultDescriptionMaxLength
	}
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(stripper, raw)
	if err != nil {
		plain = raw
	}
	var b strings.Builder
	lastSpace := true
	for _, r := range plain {
		switch {
		case r == 'đ':
			r = 'd'
		case r == 'Đ':
			r = 'D'
		}
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '#':
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	cleaned := []rune(strings.TrimSpace(b.String()))
	if len(cleaned) > maxLength {
		cleaned = cleaned[:maxLength]
	}
	return strings.TrimSpace(string(cleaned))
}

// CreateSignatureString 创建支付链接的签名原文（字段按字母序固定）
func CreateSignatureString(amount int64, cancelURL, description string, orderCode int64, returnURL string) string {
	return fmt.Sprintf("amount=%d&cancelUrl=%s&description=%s&orderCode=%d&returnUrl=%s",
		amount, cancelURL, description, orderCode, returnURL)
}

// Sign HMAC-SHA256 签名（十六进制小写）
func Sign(data, checksumKey string) string {
	mac := hmac.New(sha256.New, []byte(checksumKey))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// CreatePaymentLink 创建支付链接
func CreatePaymentLink(ctx context.Context, cfg *Config, input CreateInput) (*CreateResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if input.OrderCode <= 0 {
		input.OrderCode = GenerateOrderCode()
	}
	amount := clampMin(input.Amount, 1)
	description := SanitizeDescription(input.Description, cfg.DescriptionMaxLength)
	if description == "" {
		description = SanitizeDescription(fmt.Sprintf("DH %d", input.OrderCode), cfg.DescriptionMaxLength)
	}
	items := make([]Item, 0, len(input.Items))
	for _, item := range input.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			name = "Box"
		}
		items = append(items, Item{
			Name:     name,
			Quantity: clampMin(item.Quantity, 1),
			Price:    clampMin(item.Price, 1),
		})
	}

	body := map[string]interface{}{
		"orderCode":   input.OrderCode,
		"amount":      amount,
		"description": description,
		"items":       items,
		"cancelUrl":   cfg.CancelURL,
		"returnUrl":   cfg.ReturnURL,
		"signature":   Sign(CreateSignatureString(amount, cfg.CancelURL, description, input.OrderCode, cfg.ReturnURL), cfg.ChecksumKey),
	}
	if !input.ExpiredAt.IsZero() {
		body["expiredAt"] = input.ExpiredAt.Unix()
	}
	if v := strings.TrimSpace(input.BuyerName); v != "" {
		body["buyerName"] = v
	}
	if v := strings.TrimSpace(input.BuyerEmail); v != "" {
		body["buyerEmail"] = v
	}
	if v := strings.TrimSpace(input.BuyerPhone); v != "" {
		body["buyerPhone"] = v
	}

	idempotencyKey := strings.TrimSpace(input.IdempotencyKey)
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}
	resp, err := doRequest(ctx, cfg, http.MethodPost, "/v2/payment-requests", body, idempotencyKey)
	if err != nil {
		return nil, err
	}

	var data struct {
		ID            string `json:"id"`
		PaymentLinkID string `json:"paymentLinkId"`
		CheckoutURL   string `json:"checkoutUrl"`
		OrderCode     int64  `json:"orderCode"`
		Amount        int64  `json:"amount"`
		Description   string `json:"description"`
		Status        string `json:"status"`
		QRCode        string `json:"qrCode"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	// 新版接口返回 id，旧版返回 paymentLinkId
	if data.PaymentLinkID == "" {
		data.PaymentLinkID = data.ID
	}
	if data.PaymentLinkID == "" || data.CheckoutURL == "" {
		return nil, fmt.Errorf("%w: missing payment link", ErrResponseInvalid)
	}
	return &CreateResult{
		PaymentLinkID: data.PaymentLinkID,
		CheckoutURL:   data.CheckoutURL,
		OrderCode:     data.OrderCode,
		Amount:        data.Amount,
		Description:   data.Description,
		Status:        data.Status,
		QRCode:        data.QRCode,
	}, nil
}

// GetPaymentLink 查询支付链接（id 可为 paymentLinkId 或 orderCode）
func GetPaymentLink(ctx context.Context, cfg *Config, id string) (*PaymentLinkInfo, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: payment link id is required", ErrConfigInvalid)
	}
	resp, err := doRequest(ctx, cfg, http.MethodGet, "/v2/payment-requests/"+id, nil, "")
	if err != nil {
		return nil, err
	}
	var info PaymentLinkInfo
	if err := json.Unmarshal(resp.Data, &info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	return &info, nil
}

// CancelPaymentLink 取消支付链接
func CancelPaymentLink(ctx context.Context, cfg *Config, id, reason string) (*PaymentLinkInfo, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: payment link id is required", ErrConfigInvalid)
	}
	body := map[string]interface{}{}
	if reason = strings.TrimSpace(reason); reason != "" {
		body["cancellationReason"] = reason
	}
	resp, err := doRequest(ctx, cfg, http.MethodPost, "/v2/payment-requests/"+id+"/cancel", body, "")
	if err != nil {
		return nil, err
	}
	var info PaymentLinkInfo
	if len(resp.Data) > 0 && string(resp.Data) != "null" {
		if err := json.Unmarshal(resp.Data, &info); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
		}
	}
	return &info, nil
}

// VerifyWebhook 校验回调签名并解析数据
// 签名原文为 data 对象按键名升序拼接的 key=value（null 记为空串），签名优先取请求头。
func VerifyWebhook(cfg *Config, body []byte, headerSignature string) (*WebhookData, error) {
	if cfg == nil || cfg.ChecksumKey == "" {
		return nil, fmt.Errorf("%w: checksum_key is required", ErrConfigInvalid)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrResponseInvalid)
	}

	var envelope struct {
		Code      string          `json:"code"`
		Desc      string          `json:"desc"`
		Data      json.RawMessage `json:"data"`
		Signature string          `json:"signature"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	raw, err := decodeObject(envelope.Data)
	if err != nil {
		return nil, err
	}

	signature := strings.TrimSpace(headerSignature)
	if signature == "" {
		signature = strings.TrimSpace(envelope.Signature)
	}
	if signature == "" {
		return nil, ErrSignatureInvalid
	}
	expected := Sign(CanonicalDataString(raw), cfg.ChecksumKey)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return nil, ErrSignatureInvalid
	}

	data := &WebhookData{
		OrderCode:           int64Value(raw["orderCode"]),
		Amount:              int64Value(raw["amount"]),
		Description:         stringValue(raw["description"]),
		Reference:           stringValue(raw["reference"]),
		TransactionDateTime: stringValue(raw["transactionDateTime"]),
		PaymentLinkID:       stringValue(raw["paymentLinkId"]),
		Code:                stringValue(raw["code"]),
		Desc:                stringValue(raw["desc"]),
		Status:              strings.ToUpper(stringValue(raw["status"])),
		Raw:                 raw,
	}
	if data.Code == "" {
		data.Code = envelope.Code
	}
	if data.Status == "" && data.Code == codeSuccess {
		data.Status = StatusPaid
	}
	return data, nil
}

// SignData 对 data 对象签名，供测试与回调模拟使用
func SignData(data map[string]interface{}, checksumKey string) string {
	return Sign(CanonicalDataString(data), checksumKey)
}

// CanonicalDataString 按键名升序拼接 key=value
func CanonicalDataString(data map[string]interface{}) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+canonicalValue(data[k]))
	}
	return strings.Join(pairs, "&")
}

func canonicalValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		if val == "null" || val == "undefined" {
			return ""
		}
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(encoded)
	}
}

func decodeObject(raw json.RawMessage) (map[string]interface{}, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("%w: missing data", ErrResponseInvalid)
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var out map[string]interface{}
	if err := decoder.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	return out, nil
}

func doRequest(ctx context.Context, cfg *Config, method, path string, body interface{}, idempotencyKey string) (*apiResponse, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, cfg.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-client-id", cfg.ClientID)
	req.Header.Set("x-api-key", cfg.APIKey)
	if idempotencyKey != "" {
		req.Header.Set("x-idempotency-key", idempotencyKey)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &http.Client{Timeout: timeout}
	httpResp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer httpResp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	var resp apiResponse
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: http status %d", ErrRequestFailed, httpResp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if resp.Code != codeSuccess {
		return nil, fmt.Errorf("%w: code=%s desc=%s", ErrRequestRejected, resp.Code, resp.Desc)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: http status %d", ErrRequestFailed, httpResp.StatusCode)
	}
	return &resp, nil
}

func clampMin(v, floor int64) int64 {
	if v < floor {
		return floor
	}
	return v
}

func stringValue(v interface{}) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(canonicalValue(v))
}

func int64Value(v interface{}) int64 {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		if f, err := val.Float64(); err == nil {
			return int64(f)
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64); err == nil {
			return n
		}
	case float64:
		return int64(val)
	case int64:
		return val
	case int:
		return int64(val)
	}
	return 0
}
