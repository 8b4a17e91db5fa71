package service

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/boxmart-next/internal/config"
	"github.com/boxmart-next/internal/constants"
	"github.com/boxmart-next/internal/i18n"
	"github.com/boxmart-next/internal/models"
)

func TestBuildOrderStatusContent(t *testing.T) {
	order := &models.Order{OrderNo: "BX-1", Status: constants.OrderStatusCancelled, FinalPrice: models.NewMoneyFromInt(180000)}
	subject, body := buildOrderStatusContent(order, i18n.LocaleEN)
	if !strings.Contains(subject, "Cancelled") {
		t.Fatalf("subject should contain status label, got %s", subject)
	}
	if !strings.Contains(body, "BX-1") || !strings.Contains(body, "180000.00") {
		t.Fatalf("body should contain order no and amount, got %s", body)
	}

	order.Status = constants.OrderStatusProcessing
	subject, _ = buildOrderStatusContent(order, i18n.LocaleVI)
	if !strings.Contains(subject, "Đang xử lý") {
		t.Fatalf("vi subject should be localized, got %s", subject)
	}
}

func TestBuildOrderConfirmationContent(t *testing.T) {
	order := &models.Order{
		OrderNo:        "BX-2",
		RecipientName:  "An",
		PaymentMethod:  constants.PaymentMethodCOD,
		DeliveryMethod: constants.DeliveryMethodStandard,
		TotalPrice:     models.NewMoneyFromInt(200000),
		FinalPrice:     models.NewMoneyFromInt(180000),
		Items:          []models.OrderItem{{BoxName: "Gift", Quantity: 2, UnitPrice: models.NewMoneyFromInt(100000)}},
	}
	subject, body := buildOrderConfirmationContent(order, "", i18n.LocaleEN)
	if subject != "Order BX-2 received" {
		t.Fatalf("unexpected subject: %s", subject)
	}
	for _, want := range []string{"Hi An", "- Gift x2 @ 100000.00", "Amount due: 180000.00", "COD"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body should contain %q, got %s", want, body)
		}
	}
}

func TestEmailServiceUsesConfiguredTransport(t *testing.T) {
	svc := NewEmailService(&config.EmailConfig{Enabled: true, Provider: "smtp"})
	var sentTo, sentSubject string
	svc.transport = func(_ *config.EmailConfig, toEmail, subject, _ string) error {
		sentTo, sentSubject = toEmail, subject
		return nil
	}
	if err := svc.SendCustomEmail("buyer@example.com", " hello ", "body"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if sentTo != "buyer@example.com" || sentSubject != "hello" {
		t.Fatalf("unexpected transport call: %s %s", sentTo, sentSubject)
	}
	if err := svc.SendCustomEmail("not-an-email", "s", "b"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("invalid address want ErrInvalidEmail got %v", err)
	}

	disabled := NewEmailService(&config.EmailConfig{Enabled: false})
	if err := disabled.SendCustomEmail("buyer@example.com", "s", "b"); !errors.Is(err, ErrEmailServiceDisabled) {
		t.Fatalf("disabled service want ErrEmailServiceDisabled got %v", err)
	}
}

func TestSendWithSendGridRequiresKey(t *testing.T) {
	err := sendWithSendGrid(&config.EmailConfig{Provider: "sendgrid", From: "shop@example.com"}, "a@example.com", "s", "b")
	if !errors.Is(err, ErrEmailServiceNotConfigured) {
		t.Fatalf("missing api key want ErrEmailServiceNotConfigured got %v", err)
	}
}

func TestIsEmailRecipientRejected(t *testing.T) {
	if !isEmailRecipientRejected(errors.New("550 5.1.1 recipient address rejected")) {
		t.Fatalf("550 recipient rejection should be detected")
	}
	if isEmailRecipientRejected(errors.New("connection reset")) {
		t.Fatalf("network errors are not recipient rejections")
	}
	if !errors.Is(normalizeEmailSendError(errors.New("dial tcp: timeout")), ErrEmailSendFailed) {
		t.Fatalf("generic send error should wrap ErrEmailSendFailed")
	}
}

func TestSendWithSMTPTimesOutOnSilentServer(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	defer listener.Close()
	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := listener.Accept()
		if err == nil {
			accepted <- conn
		}
	}()
	defer func() {
		select {
		case conn := <-accepted:
			conn.Close()
		default:
		}
	}()

	host, portText, _ := net.SplitHostPort(listener.Addr().String())
	port, _ := strconv.Atoi(portText)
	cfg := &config.EmailConfig{Host: host, Port: port, From: "shop@example.com", TimeoutSeconds: 1}

	started := time.Now()
	err = sendWithSMTP(cfg, "buyer@example.com", "s", "b")
	if !errors.Is(err, ErrEmailSendFailed) {
		t.Fatalf("silent server want ErrEmailSendFailed got %v", err)
	}
	if elapsed := time.Since(started); elapsed > 5*time.Second {
		t.Fatalf("send should give up after the configured timeout, took %v", elapsed)
	}
}

func TestEmailTimeoutDefaults(t *testing.T) {
	if got := emailTimeout(nil); got != defaultEmailTimeout {
		t.Fatalf("nil config want default got %v", got)
	}
	if got := emailTimeout(&config.EmailConfig{TimeoutSeconds: 3}); got != 3*time.Second {
		t.Fatalf("want 3s got %v", got)
	}
}
