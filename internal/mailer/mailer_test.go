package mailer

import (
	"errors"
	"net/smtp"
	"strings"
	"testing"
)

type capturedMail struct {
	addr string
	from string
	to   []string
	body string
}

func newCapturingService(t *testing.T, sendErr error) (*Service, *[]capturedMail) {
	t.Helper()
	sent := []capturedMail{}
	service := NewService(Config{Host: "smtp.example.com", Port: 2525, From: "billing@example.com"},
		func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
			sent = append(sent, capturedMail{addr: addr, from: from, to: to, body: string(msg)})
			return sendErr
		})
	return service, &sent
}

func TestIsConfigured(t *testing.T) {
	if NewService(Config{}, nil).IsConfigured() {
		t.Fatalf("expected empty config to be unconfigured")
	}
	if !NewService(Config{Host: "h", Port: 25, From: "f@example.com"}, nil).IsConfigured() {
		t.Fatalf("expected host, port and sender to configure the mailer")
	}
}

func TestSendHTMLRequiresConfiguration(t *testing.T) {
	if err := NewService(Config{}, nil).SendHTML("a@example.com", "s", "b"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected not configured error, got %v", err)
	}
}

func TestSendPasswordResetRendersLink(t *testing.T) {
	service, sent := newCapturingService(t, nil)

	if err := service.SendPasswordReset("asha@example.com", "Asha", "http://app/reset-password?token=abc"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if len(*sent) != 1 {
		t.Fatalf("expected one message, got %d", len(*sent))
	}
	mail := (*sent)[0]
	if mail.addr != "smtp.example.com:2525" {
		t.Fatalf("unexpected relay address %s", mail.addr)
	}
	if !strings.Contains(mail.body, "Subject: Reset your LegalPro password") {
		t.Fatalf("missing subject header in %q", mail.body)
	}
	if !strings.Contains(mail.body, "http://app/reset-password?token=abc") {
		t.Fatalf("missing reset link in %q", mail.body)
	}
}

func TestSendInvoiceRendersTotals(t *testing.T) {
	service, sent := newCapturingService(t, nil)

	err := service.SendInvoice(InvoiceMail{
		To:            "client@example.com",
		Subject:       "Invoice INV-7",
		InvoiceNumber: "INV-7",
		Currency:      "INR",
		Items:         []InvoiceLine{{Description: "Drafting", Quantity: 2, UnitPrice: 1500, Amount: 3000}},
		Subtotal:      3000,
		TaxAmount:     540,
		Total:         3540,
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	body := (*sent)[0].body
	for _, expected := range []string{"Subject: Invoice INV-7", "Drafting", "INR 3540.00"} {
		if !strings.Contains(body, expected) {
			t.Fatalf("expected %q in %q", expected, body)
		}
	}
}

func TestSendSurfacesRelayErrors(t *testing.T) {
	relayErr := errors.New("relay refused")
	service, _ := newCapturingService(t, relayErr)

	if err := service.SendHTML("a@example.com", "s", "b"); !errors.Is(err, relayErr) {
		t.Fatalf("expected relay error, got %v", err)
	}
}

func TestSendRejectsHeaderInjection(t *testing.T) {
	service, sent := newCapturingService(t, nil)
	if err := service.SendHTML("a@example.com\r\nBcc: x@example.com", "s", "b"); err == nil {
		t.Fatalf("expected header injection to be rejected")
	}
	if len(*sent) != 0 {
		t.Fatalf("expected nothing to be sent")
	}
}
