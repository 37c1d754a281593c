package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devfolio-next/internal/config"
	"github.com/devfolio-next/internal/constants"

	"gopkg.in/gomail.v2"
)

type fakeMailDialer struct {
	messages []*gomail.Message
	err      error
}

func (d *fakeMailDialer) DialAndSend(m ...*gomail.Message) error {
	d.messages = append(d.messages, m...)
	return d.err
}

func newTestEmailService(t *testing.T, dialer *fakeMailDialer) *EmailService {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Email2fa.html"), []byte("Hola {{Usuario}}, code {{Codigo}} ({{Minutos}} min)"), 0o600); err != nil {
		t.Fatalf("write template failed: %v", err)
	}
	svc := NewEmailService(&config.EmailConfig{
		Enabled:     true,
		Host:        "smtp.example.com",
		Port:        587,
		From:        "noreply@example.com",
		FromName:    "Portfolio Dev",
		TemplateDir: dir,
	})
	svc.dialer = dialer
	return svc
}

func TestEmailServiceSendRendersTemplate(t *testing.T) {
	dialer := &fakeMailDialer{}
	svc := newTestEmailService(t, dialer)

	err := svc.Send(context.Background(), "ana@example.com", "Your login code", constants.EmailTemplateTwoFactor, map[string]string{
		constants.EmailPlaceholderUser:    "Ana",
		constants.EmailPlaceholderCode:    "012345",
		constants.EmailPlaceholderMinutes: "5",
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if len(dialer.messages) != 1 {
		t.Fatalf("want 1 message got %d", len(dialer.messages))
	}
	msg := dialer.messages[0]
	if to := msg.GetHeader("To"); len(to) != 1 || to[0] != "ana@example.com" {
		t.Fatalf("unexpected To header: %v", to)
	}
	if subject := msg.GetHeader("Subject"); len(subject) != 1 || subject[0] != "Your login code" {
		t.Fatalf("unexpected Subject header: %v", subject)
	}
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("write message failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Hola Ana, code 012345 (5 min)") {
		t.Fatalf("rendered body missing placeholders: %s", buf.String())
	}
}

func TestEmailServiceConfigErrors(t *testing.T) {
	ctx := context.Background()
	disabled := NewEmailService(&config.EmailConfig{Enabled: false})
	if err := disabled.Send(ctx, "ana@example.com", "s", constants.EmailTemplateTwoFactor, nil); !errors.Is(err, ErrEmailServiceDisabled) {
		t.Fatalf("disabled want ErrEmailServiceDisabled got %v", err)
	}
	missingHost := NewEmailService(&config.EmailConfig{Enabled: true, Port: 587, From: "noreply@example.com"})
	if err := missingHost.Send(ctx, "ana@example.com", "s", constants.EmailTemplateTwoFactor, nil); !errors.Is(err, ErrEmailServiceNotConfigured) {
		t.Fatalf("missing host want ErrEmailServiceNotConfigured got %v", err)
	}

	svc := newTestEmailService(t, &fakeMailDialer{})
	if err := svc.Send(ctx, "not-an-email", "s", constants.EmailTemplateTwoFactor, nil); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("bad recipient want ErrInvalidEmail got %v", err)
	}
	if err := svc.Send(ctx, "ana@example.com", "s", "Missing", nil); !errors.Is(err, ErrEmailTemplateNotFound) {
		t.Fatalf("missing template want ErrEmailTemplateNotFound got %v", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if err := svc.Send(canceled, "ana@example.com", "s", constants.EmailTemplateTwoFactor, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("canceled context want context.Canceled got %v", err)
	}
}

func TestEmailServiceDeliveryErrors(t *testing.T) {
	tests := []struct {
		name         string
		dialErr      error
		wantRejected bool
	}{
		{name: "transport", dialErr: errors.New("dial tcp: connection refused")},
		{name: "recipient_rejected", dialErr: errors.New("550 5.1.1 recipient address rejected"), wantRejected: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestEmailService(t, &fakeMailDialer{err: tt.dialErr})
			err := svc.Send(context.Background(), "ana@example.com", "s", constants.EmailTemplateTwoFactor, nil)
			if !errors.Is(err, ErrEmailDeliveryFailed) {
				t.Fatalf("want ErrEmailDeliveryFailed got %v", err)
			}
			if errors.Is(err, ErrEmailRecipientRejected) != tt.wantRejected {
				t.Fatalf("recipient rejected want %v got %v", tt.wantRejected, err)
			}
		})
	}
}

func TestBuiltinEmailTemplates(t *testing.T) {
	templates := NewEmailTemplates("")
	body, err := templates.Render(constants.EmailTemplateTwoFactor, map[string]string{
		constants.EmailPlaceholderUser:    "Ana",
		constants.EmailPlaceholderCode:    "654321",
		constants.EmailPlaceholderMinutes: "5",
	})
	if err != nil {
		t.Fatalf("render builtin template failed: %v", err)
	}
	for _, want := range []string{"Hola Ana", "654321", "5 minutos"} {
		if !strings.Contains(body, want) {
			t.Fatalf("rendered template missing %q", want)
		}
	}
	if strings.Contains(body, "{{Codigo}}") {
		t.Fatalf("placeholder should be replaced")
	}

	if _, err := templates.Render(constants.EmailTemplatePasswordChanged, nil); err != nil {
		t.Fatalf("password changed template should exist: %v", err)
	}
	for _, name := range []string{"", "../Email2fa", "nested/Email2fa"} {
		if _, err := templates.Render(name, nil); !errors.Is(err, ErrEmailTemplateNotFound) {
			t.Fatalf("template %q want ErrEmailTemplateNotFound got %v", name, err)
		}
	}
}

func TestRenderPlaceholdersLeavesUnknownKeys(t *testing.T) {
	got := renderPlaceholders("{{A}} {{B}} {{ A }}", map[string]string{"A": "1"})
	if got != "1 {{B}} {{ A }}" {
		t.Fatalf("want literal replacement only, got %q", got)
	}
}
