package legal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/mailer"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultInvoiceMessage = "Please find your invoice details below."

// InvoiceMailer delivers invoice emails.
type InvoiceMailer interface {
	SendInvoice(invoice mailer.InvoiceMail) error
}

// ServiceConfig describes the dependencies of the domain service.
type ServiceConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider IDProvider
	Logger     *zap.Logger
	Mailer     InvoiceMailer
}

// Service groups the owner-scoped repositories and the operations that span them.
type Service struct {
	Cases       *Repository[Case, *Case]
	Clients     *Repository[Client, *Client]
	Hearings    *Repository[Hearing, *Hearing]
	Alerts      *Repository[Alert, *Alert]
	Invoices    *Repository[Invoice, *Invoice]
	TimeEntries *Repository[TimeEntry, *TimeEntry]

	clock  func() time.Time
	logger *zap.Logger
	mailer InvoiceMailer
}

// Models lists the tables owned by this package for migrations.
func Models() []interface{} {
	return []interface{}{&Case{}, &Client{}, &Hearing{}, &Alert{}, &Invoice{}, &TimeEntry{}}
}

// NewService constructs the repositories.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError("legal.service.new", "missing_database", errMissingDatabase)
	}
	if cfg.IDProvider == nil {
		return nil, newServiceError("legal.service.new", "missing_id_provider", errMissingIDProvider)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	repoConfig := func(resource string, filters map[string]string) RepositoryConfig {
		return RepositoryConfig{
			Database:   cfg.Database,
			Clock:      clock,
			IDProvider: cfg.IDProvider,
			Logger:     logger,
			Resource:   resource,
			Filters:    filters,
		}
	}

	service := &Service{clock: clock, logger: logger, mailer: cfg.Mailer}
	var err error
	if service.Cases, err = NewRepository[Case](repoConfig("cases", map[string]string{
		"status":   "status",
		"priority": "priority",
	})); err != nil {
		return nil, err
	}
	if service.Clients, err = NewRepository[Client](repoConfig("clients", nil)); err != nil {
		return nil, err
	}
	if service.Hearings, err = NewRepository[Hearing](repoConfig("hearings", map[string]string{
		"caseId": "case_id",
		"status": "status",
	})); err != nil {
		return nil, err
	}
	if service.Alerts, err = NewRepository[Alert](repoConfig("alerts", map[string]string{
		"caseId": "case_id",
		"type":   "type",
	})); err != nil {
		return nil, err
	}
	if service.Invoices, err = NewRepository[Invoice](repoConfig("invoices", map[string]string{
		"clientId": "client_id",
		"caseId":   "case_id",
		"status":   "status",
	})); err != nil {
		return nil, err
	}
	if service.TimeEntries, err = NewRepository[TimeEntry](repoConfig("time_entries", map[string]string{
		"caseId": "case_id",
	})); err != nil {
		return nil, err
	}
	return service, nil
}

// Now returns the current time from the service clock.
func (s *Service) Now() time.Time {
	return s.clock()
}

// MarkAlertRead flags an owned alert as read.
func (s *Service) MarkAlertRead(ctx context.Context, ownerID, alertID string) (Alert, error) {
	return s.Alerts.Mutate(ctx, ownerID, alertID, func(alert *Alert) {
		alert.IsRead = true
	})
}

// SendInvoiceRequest is the body of an invoice send.
type SendInvoiceRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// SendInvoiceResult reports where the invoice was delivered.
type SendInvoiceResult struct {
	OK        bool   `json:"ok"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
}

// SendInvoice emails an owned invoice. Without an explicit recipient the owning client's
// email is used.
func (s *Service) SendInvoice(ctx context.Context, ownerID, invoiceID string, request SendInvoiceRequest) (SendInvoiceResult, error) {
	const operation = "invoices.send"
	invoice, err := s.Invoices.Get(ctx, ownerID, invoiceID)
	if err != nil {
		return SendInvoiceResult{}, err
	}

	recipient := strings.TrimSpace(request.To)
	clientName := ""
	if invoice.ClientID != "" {
		client, clientErr := s.Clients.Get(ctx, ownerID, invoice.ClientID)
		if clientErr == nil {
			clientName = client.Name
			if recipient == "" {
				recipient = client.Email
			}
		} else if !errors.Is(clientErr, ErrNotFound) {
			return SendInvoiceResult{}, clientErr
		}
	}
	if recipient == "" {
		return SendInvoiceResult{}, newServiceError(operation, "client_not_found", ErrClientNotFound)
	}

	subject := strings.TrimSpace(request.Subject)
	if subject == "" {
		subject = "Invoice " + invoice.InvoiceNumber
	}
	message := strings.TrimSpace(request.Message)
	if message == "" {
		message = defaultInvoiceMessage
	}

	if s.mailer == nil {
		return SendInvoiceResult{}, newServiceError(operation, "email_send_failed",
			fmt.Errorf("%w: %w", ErrEmailSendFailed, mailer.ErrNotConfigured))
	}
	if err := s.mailer.SendInvoice(buildInvoiceMail(invoice, recipient, subject, message, clientName)); err != nil {
		logError(s.logger, operation, "email_send_failed", err,
			zap.String("owner_id", ownerID), zap.String("invoice_id", invoiceID))
		return SendInvoiceResult{}, newServiceError(operation, "email_send_failed", fmt.Errorf("%w: %w", ErrEmailSendFailed, err))
	}
	return SendInvoiceResult{OK: true, Recipient: recipient, Subject: subject}, nil
}

func buildInvoiceMail(invoice Invoice, recipient, subject, message, clientName string) mailer.InvoiceMail {
	lines := make([]mailer.InvoiceLine, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		lines = append(lines, mailer.InvoiceLine{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		})
	}
	dueDate := ""
	if invoice.DueDate != nil {
		dueDate = invoice.DueDate.Format("02 Jan 2006")
	}
	return mailer.InvoiceMail{
		To:            recipient,
		Subject:       subject,
		Message:       message,
		ClientName:    clientName,
		InvoiceNumber: invoice.InvoiceNumber,
		IssueDate:     invoice.IssueDate.Format("02 Jan 2006"),
		DueDate:       dueDate,
		Currency:      invoice.Currency,
		Items:         lines,
		Subtotal:      invoice.Subtotal,
		TaxAmount:     invoice.TaxAmount,
		Discount:      invoice.DiscountAmount,
		Total:         invoice.Total,
	}
}
