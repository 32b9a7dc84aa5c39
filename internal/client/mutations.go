package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/legal"
)

func (s *Store) AddCase(ctx context.Context, input legal.CaseInput) (legal.Case, error) {
	return create(ctx, s, &s.cases, input)
}

func (s *Store) UpdateCase(ctx context.Context, id string, input legal.CaseInput) (legal.Case, error) {
	return update(ctx, s, &s.cases, id, input)
}

func (s *Store) DeleteCase(ctx context.Context, id string) error {
	return remove(ctx, s, &s.cases, id)
}

func (s *Store) AddClient(ctx context.Context, input legal.ClientInput) (legal.Client, error) {
	return create(ctx, s, &s.clients, input)
}

func (s *Store) UpdateClient(ctx context.Context, id string, input legal.ClientInput) (legal.Client, error) {
	return update(ctx, s, &s.clients, id, input)
}

func (s *Store) DeleteClient(ctx context.Context, id string) error {
	return remove(ctx, s, &s.clients, id)
}

func (s *Store) AddHearing(ctx context.Context, input legal.HearingInput) (legal.Hearing, error) {
	return create(ctx, s, &s.hearings, input)
}

func (s *Store) UpdateHearing(ctx context.Context, id string, input legal.HearingInput) (legal.Hearing, error) {
	return update(ctx, s, &s.hearings, id, input)
}

func (s *Store) DeleteHearing(ctx context.Context, id string) error {
	return remove(ctx, s, &s.hearings, id)
}

func (s *Store) AddAlert(ctx context.Context, input legal.AlertInput) (legal.Alert, error) {
	return create(ctx, s, &s.alerts, input)
}

func (s *Store) UpdateAlert(ctx context.Context, id string, input legal.AlertInput) (legal.Alert, error) {
	return update(ctx, s, &s.alerts, id, input)
}

func (s *Store) DeleteAlert(ctx context.Context, id string) error {
	return remove(ctx, s, &s.alerts, id)
}

// MarkAlertRead flags an alert as read on the server and in the cache.
func (s *Store) MarkAlertRead(ctx context.Context, id string) (legal.Alert, error) {
	var alert legal.Alert
	if err := s.api.do(ctx, http.MethodPatch, "/api/alerts/"+url.PathEscape(id)+"/read", nil, &alert); err != nil {
		return alert, err
	}
	s.mu.Lock()
	s.alerts.upsert(alert)
	s.mu.Unlock()
	return alert, nil
}

func (s *Store) AddInvoice(ctx context.Context, input legal.InvoiceInput) (legal.Invoice, error) {
	return create(ctx, s, &s.invoices, input)
}

func (s *Store) UpdateInvoice(ctx context.Context, id string, input legal.InvoiceInput) (legal.Invoice, error) {
	return update(ctx, s, &s.invoices, id, input)
}

func (s *Store) DeleteInvoice(ctx context.Context, id string) error {
	return remove(ctx, s, &s.invoices, id)
}

// SendInvoice emails an invoice. The cached invoice is unchanged.
func (s *Store) SendInvoice(ctx context.Context, id string, request legal.SendInvoiceRequest) (legal.SendInvoiceResult, error) {
	var result legal.SendInvoiceResult
	err := s.api.do(ctx, http.MethodPost, "/api/invoices/"+url.PathEscape(id)+"/send", request, &result)
	return result, err
}

func (s *Store) AddTimeEntry(ctx context.Context, input legal.TimeEntryInput) (legal.TimeEntry, error) {
	return create(ctx, s, &s.timeEntries, input)
}

func (s *Store) UpdateTimeEntry(ctx context.Context, id string, input legal.TimeEntryInput) (legal.TimeEntry, error) {
	return update(ctx, s, &s.timeEntries, id, input)
}

func (s *Store) DeleteTimeEntry(ctx context.Context, id string) error {
	return remove(ctx, s, &s.timeEntries, id)
}
