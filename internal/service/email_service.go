package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/boxmart-next/internal/config"
	"github.com/boxmart-next/internal/constants"
	"github.com/boxmart-next/internal/i18n"
	"github.com/boxmart-next/internal/models"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	emailProviderSendGrid = "sendgrid"
	defaultEmailTimeout   = 10 * time.Second
)

func emailTimeout(cfg *config.EmailConfig) time.Duration {
	if cfg == nil || cfg.TimeoutSeconds <= 0 {
		return defaultEmailTimeout
	}
	return time.Duration(cfg.TimeoutSeconds) * time.Second
}

// EmailService 邮件发送服务（SMTP / SendGrid）
type EmailService struct {
	cfg       *config.EmailConfig
	transport func(cfg *config.EmailConfig, toEmail, subject, body string) error
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// Enabled 邮件服务是否可用
func (s *EmailService) Enabled() bool {
	return s != nil && s.cfg != nil && s.cfg.Enabled
}

// SendOrderConfirmation 发送下单确认邮件
func (s *EmailService) SendOrderConfirmation(toEmail string, order *models.Order, customerName, locale string) error {
	subject, body := buildOrderConfirmationContent(order, customerName, locale)
	return s.sendTextEmail(toEmail, subject, body)
}

// SendOrderStatusEmail 发送订单状态通知
func (s *EmailService) SendOrderStatusEmail(toEmail string, order *models.Order, locale string) error {
	subject, body := buildOrderStatusContent(order, locale)
	return s.sendTextEmail(toEmail, subject, body)
}

// SendCustomEmail 发送自定义邮件
func (s *EmailService) SendCustomEmail(toEmail, subject, body string) error {
	return s.sendTextEmail(toEmail, strings.TrimSpace(subject), strings.TrimSpace(body))
}

func (s *EmailService) sendTextEmail(toEmail, subject, body string) error {
	if !s.Enabled() {
		return ErrEmailServiceDisabled
	}
	if _, err := mail.ParseAddress(toEmail); err != nil {
		return ErrInvalidEmail
	}
	transport := s.transport
	if transport == nil {
		transport = resolveEmailTransport(s.cfg)
	}
	return transport(s.cfg, toEmail, subject, body)
}

func resolveEmailTransport(cfg *config.EmailConfig) func(cfg *config.EmailConfig, toEmail, subject, body string) error {
	if strings.EqualFold(strings.TrimSpace(cfg.Provider), emailProviderSendGrid) {
		return sendWithSendGrid
	}
	return sendWithSMTP
}

func sendWithSendGrid(cfg *config.EmailConfig, toEmail, subject, body string) error {
	if strings.TrimSpace(cfg.SendGridAPIKey) == "" || strings.TrimSpace(cfg.From) == "" {
		return ErrEmailServiceNotConfigured
	}
	message := sgmail.NewSingleEmail(
		sgmail.NewEmail(cfg.FromName, cfg.From),
		subject,
		sgmail.NewEmail("", toEmail),
		body,
		fmt.Sprintf("<pre>%s</pre>", body),
	)
	ctx, cancel := context.WithTimeout(context.Background(), emailTimeout(cfg))
	defer cancel()
	resp, err := sendgrid.NewSendClient(cfg.SendGridAPIKey).SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEmailSendFailed, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: sendgrid status=%d body=%s", ErrEmailSendFailed, resp.StatusCode, resp.Body)
	}
	return nil
}

func sendWithSMTP(cfg *config.EmailConfig, toEmail, subject, body string) error {
	if cfg.Host == "" || cfg.Port == 0 || cfg.From == "" {
		return ErrEmailServiceNotConfigured
	}
	from := buildFromAddress(cfg.From, cfg.FromName)
	msg := []byte(buildEmailMessage(from, toEmail, subject, body))

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	var auth smtp.Auth
	if cfg.Username != "" || cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	timeout := emailTimeout(cfg)
	var err error
	switch {
	case cfg.UseSSL:
		err = sendMailWithSSL(addr, timeout, auth, cfg.Host, cfg.From, []string{toEmail}, msg)
	case cfg.UseTLS:
		err = sendMailWithStartTLS(addr, timeout, auth, cfg.Host, cfg.From, []string{toEmail}, msg)
	default:
		err = sendMailPlain(addr, timeout, auth, cfg.From, []string{toEmail}, msg)
	}
	return normalizeEmailSendError(err)
}

func buildOrderConfirmationContent(order *models.Order, customerName, locale string) (string, string) {
	var lines strings.Builder
	for _, item := range order.Items {
		lines.WriteString(fmt.Sprintf("- %s x%d @ %s\n", item.BoxName, item.Quantity, item.UnitPrice.String()))
	}
	name := strings.TrimSpace(customerName)
	if name == "" {
		name = order.RecipientName
	}
	subject := i18n.Sprintf(locale, "email.order_confirmation.subject", order.OrderNo)
	body := i18n.Sprintf(locale, "email.order_confirmation.body",
		name, order.OrderNo, lines.String(), order.TotalPrice.String(), order.FinalPrice.String(),
		order.PaymentMethod, order.DeliveryMethod)
	return subject, body
}

func buildOrderStatusContent(order *models.Order, locale string) (string, string) {
	statusKey := "order.status." + strings.ToLower(strings.TrimSpace(order.Status))
	statusLabel := i18n.T(locale, statusKey)
	if statusLabel == statusKey {
		statusLabel = order.Status
	}
	amount := order.FinalPrice.String()
	subject := i18n.Sprintf(locale, "email.order_status.subject", statusLabel)
	switch order.Status {
	case constants.OrderStatusCancelled:
		return subject, i18n.Sprintf(locale, "email.order_status.body_cancelled", order.OrderNo, amount)
	case constants.OrderStatusCompleted:
		return subject, i18n.Sprintf(locale, "email.order_status.body_completed", order.OrderNo, amount)
	default:
		return subject, i18n.Sprintf(locale, "email.order_status.body", order.OrderNo, statusLabel, amount)
	}
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, subject, body string) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	buf.WriteString(body)
	return buf.String()
}

// dialSMTP 建立连接并为整个会话设置截止时间
func dialSMTP(addr string, timeout time.Duration, tlsConfig *tls.Config) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: timeout}
	var (
		conn net.Conn
		err  error
	)
	if tlsConfig != nil {
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, tlsConfig)
	} else {
		conn, err = dialer.Dial("tcp", addr)
	}
	if err != nil {
		return nil, err
	}
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func sendMailWithSSL(addr string, timeout time.Duration, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	conn, err := dialSMTP(addr, timeout, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Close()
	return authAndSend(client, auth, from, to, msg)
}

func sendMailWithStartTLS(addr string, timeout time.Duration, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	conn, err := dialSMTP(addr, timeout, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return err
	}
	return authAndSend(client, auth, from, to, msg)
}

func sendMailPlain(addr string, timeout time.Duration, auth smtp.Auth, from string, to []string, msg []byte) error {
	conn, err := dialSMTP(addr, timeout, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	host, _, _ := net.SplitHostPort(addr)
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Close()
	return authAndSend(client, auth, from, to, msg)
}

func authAndSend(client *smtp.Client, auth smtp.Auth, from string, to []string, msg []byte) error {
	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return ErrEmailRecipientRejected
	}
	return fmt.Errorf("%w: %v", ErrEmailSendFailed, err)
}

func isEmailRecipientRejected(err error) bool {
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	if message == "" {
		return false
	}
	for _, keyword := range []string{
		"no such recipient",
		"no such user",
		"recipient address rejected",
		"user unknown",
		"unknown mailbox",
		"mailbox unavailable",
	} {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	if strings.Contains(message, "550") {
		for _, hint := range []string{"recipient", "user", "mailbox", "rcpt"} {
			if strings.Contains(message, hint) {
				return true
			}
		}
	}
	return false
}
