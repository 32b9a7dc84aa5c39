// Package mailer delivers password reset and invoice emails over SMTP.
package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

// ErrNotConfigured is returned when no SMTP relay is configured.
var ErrNotConfigured = errors.New("mailer: smtp not configured")

// Config holds SMTP configuration.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	AppName  string
}

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Service sends templated HTML mail.
type Service struct {
	config Config
	server string
	auth   smtp.Auth
	send   SendFunc
}

// NewService creates a mail service. A nil send function uses smtp.SendMail.
func NewService(config Config, send SendFunc) *Service {
	if send == nil {
		send = smtp.SendMail
	}
	if strings.TrimSpace(config.AppName) == "" {
		config.AppName = "LegalPro"
	}
	var auth smtp.Auth
	if config.Username != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}
	return &Service{
		config: config,
		server: net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
		auth:   auth,
		send:   send,
	}
}

// IsConfigured returns true if a relay host and sender are set.
func (s *Service) IsConfigured() bool {
	return s != nil && s.config.Host != "" && s.config.Port > 0 && s.config.From != ""
}

// SendHTML sends an HTML message to a single recipient.
func (s *Service) SendHTML(to, subject, htmlBody string) error {
	if !s.IsConfigured() {
		return ErrNotConfigured
	}
	if strings.ContainsAny(to, "\r\n") || strings.ContainsAny(subject, "\r\n") {
		return fmt.Errorf("mailer: header values must not contain line breaks")
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", s.config.AppName, s.config.From)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: text/html; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "%s\r\n", htmlBody)

	return s.send(s.server, s.auth, s.config.From, []string{to}, msg.Bytes())
}

type passwordResetData struct {
	AppName  string
	UserName string
	ResetURL string
}

// SendPasswordReset emails a reset link.
func (s *Service) SendPasswordReset(to, userName, resetURL string) error {
	html, err := render(passwordResetTemplate, passwordResetData{
		AppName:  s.config.AppName,
		UserName: userName,
		ResetURL: resetURL,
	})
	if err != nil {
		return fmt.Errorf("render password reset template: %w", err)
	}
	return s.SendHTML(to, "Reset your "+s.config.AppName+" password", html)
}

// InvoiceLine is one row of an invoice email.
type InvoiceLine struct {
	Description string
	Quantity    float64
	UnitPrice   float64
	Amount      float64
}

// InvoiceMail carries the rendered fields of an invoice email.
type InvoiceMail struct {
	To            string
	Subject       string
	Message       string
	ClientName    string
	InvoiceNumber string
	IssueDate     string
	DueDate       string
	Currency      string
	Items         []InvoiceLine
	Subtotal      float64
	TaxAmount     float64
	Discount      float64
	Total         float64
}

// SendInvoice emails an invoice summary.
func (s *Service) SendInvoice(invoice InvoiceMail) error {
	html, err := render(invoiceTemplate, struct {
		AppName string
		InvoiceMail
	}{AppName: s.config.AppName, InvoiceMail: invoice})
	if err != nil {
		return fmt.Errorf("render invoice template: %w", err)
	}
	return s.SendHTML(invoice.To, invoice.Subject, html)
}

var templateFuncs = template.FuncMap{
	"money": func(value float64) string { return strconv.FormatFloat(value, 'f', 2, 64) },
}

func render(tmpl string, data interface{}) (string, error) {
	t, err := template.New("email").Funcs(templateFuncs).Parse(tmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const passwordResetTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto;">
    <h1>{{.AppName}}</h1>
    <p>Hi {{.UserName}},</p>
    <p>We received a request to reset your password. Use the link below to choose a new one:</p>
    <p><a href="{{.ResetURL}}">Reset Password</a></p>
    <p>{{.ResetURL}}</p>
    <p><strong>This link expires in 1 hour.</strong></p>
    <p>If you didn't request a password reset, you can ignore this email.</p>
</body>
</html>`

const invoiceTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; line-height: 1.6; color: #333; max-width: 700px; margin: 0 auto;">
    <h1>{{.AppName}}</h1>
    <h2>Invoice {{.InvoiceNumber}}</h2>
    {{if .ClientName}}<p>Billed to: {{.ClientName}}</p>{{end}}
    {{if .Message}}<p>{{.Message}}</p>{{end}}
    <p>Issued: {{.IssueDate}}{{if .DueDate}} &middot; Due: {{.DueDate}}{{end}}</p>
    <table style="width: 100%; border-collapse: collapse;">
        <tr><th align="left">Description</th><th align="right">Qty</th><th align="right">Rate</th><th align="right">Amount</th></tr>
        {{range .Items}}<tr><td>{{.Description}}</td><td align="right">{{.Quantity}}</td><td align="right">{{money .UnitPrice}}</td><td align="right">{{money .Amount}}</td></tr>
        {{end}}
    </table>
    <p>Subtotal: {{.Currency}} {{money .Subtotal}}</p>
    <p>Tax: {{.Currency}} {{money .TaxAmount}}</p>
    {{if .Discount}}<p>Discount: {{.Currency}} {{money .Discount}}</p>{{end}}
    <p><strong>Total: {{.Currency}} {{money .Total}}</strong></p>
</body>
</html>`
