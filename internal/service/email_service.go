package service

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/mail"
	"strings"

	"github.com/devfolio-next/internal/config"

	"gopkg.in/gomail.v2"
)

// EmailSender 邮件发送契约，模板中的 {{Key}} 按 placeholders 原样替换
type EmailSender interface {
	Send(ctx context.Context, to, subject, templateName string, placeholders map[string]string) error
}

// mailDialer SMTP 投递抽象，便于测试替换
type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailService 邮件发送服务
type EmailService struct {
	cfg       *config.EmailConfig
	templates *EmailTemplates
	dialer    mailDialer
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	if cfg == nil {
		cfg = &config.EmailConfig{}
	}
	return &EmailService{
		cfg:       cfg,
		templates: NewEmailTemplates(cfg.TemplateDir),
		dialer:    newSMTPDialer(cfg),
	}
}

func newSMTPDialer(cfg *config.EmailConfig) *gomail.Dialer {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.SSL = cfg.UseSSL
	dialer.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.SkipTLSVerify, //nolint:gosec // 仅用于自签名测试服务器
	}
	return dialer
}

// Send 渲染模板并发送 HTML 邮件
func (s *EmailService) Send(ctx context.Context, to, subject, templateName string, placeholders map[string]string) error {
	if s.cfg == nil || !s.cfg.Enabled {
		return ErrEmailServiceDisabled
	}
	if strings.TrimSpace(s.cfg.Host) == "" || s.cfg.Port == 0 || strings.TrimSpace(s.cfg.From) == "" {
		return ErrEmailServiceNotConfigured
	}
	if _, err := mail.ParseAddress(to); err != nil {
		return ErrInvalidEmail
	}

	body, err := s.templates.Render(templateName, placeholders)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", s.cfg.From, strings.TrimSpace(s.cfg.FromName))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	return normalizeEmailSendError(s.dialer.DialAndSend(msg))
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return fmt.Errorf("%w: %w", ErrEmailDeliveryFailed, ErrEmailRecipientRejected)
	}
	return fmt.Errorf("%w: %v", ErrEmailDeliveryFailed, err)
}

func isEmailRecipientRejected(err error) bool {
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	if message == "" {
		return false
	}
	keywords := []string{
		"no such recipient",
		"no such user",
		"recipient address rejected",
		"user unknown",
		"unknown mailbox",
		"mailbox unavailable",
	}
	for _, keyword := range keywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	return strings.Contains(message, "550") && strings.Contains(message, "recipient")
}
