package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"

	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/legal"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/scheduling"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

var errMissingAPIClient = errors.New("client: api client is required")

// StoreConfig describes the dependencies of a Store.
type StoreConfig struct {
	API    *APIClient
	Engine scheduling.Engine
	Logger *zap.Logger
}

// Store mirrors the owner's collections in memory. Mutations go through the API and
// patch the local copy from the returned record; changes made by other sessions are
// only seen after the next Load.
type Store struct {
	api    *APIClient
	engine scheduling.Engine
	logger *zap.Logger

	mu          sync.RWMutex
	loaded      bool
	cases       collection[legal.Case, *legal.Case]
	clients     collection[legal.Client, *legal.Client]
	hearings    collection[legal.Hearing, *legal.Hearing]
	alerts      collection[legal.Alert, *legal.Alert]
	invoices    collection[legal.Invoice, *legal.Invoice]
	timeEntries collection[legal.TimeEntry, *legal.TimeEntry]
}

// NewStore constructs an empty Store.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.API == nil {
		return nil, errMissingAPIClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		api:         cfg.API,
		engine:      cfg.Engine,
		logger:      logger,
		cases:       collection[legal.Case, *legal.Case]{path: "/api/cases", normalize: normalizeCase},
		clients:     collection[legal.Client, *legal.Client]{path: "/api/clients", normalize: normalizeClient},
		hearings:    collection[legal.Hearing, *legal.Hearing]{path: "/api/hearings", normalize: normalizeHearing},
		alerts:      collection[legal.Alert, *legal.Alert]{path: "/api/alerts"},
		invoices:    collection[legal.Invoice, *legal.Invoice]{path: "/api/invoices", normalize: normalizeInvoice},
		timeEntries: collection[legal.TimeEntry, *legal.TimeEntry]{path: "/api/time-entries"},
	}, nil
}

// Load replaces every collection with a fresh copy from the API.
func (s *Store) Load(ctx context.Context) error {
	var (
		cases       []legal.Case
		clients     []legal.Client
		hearings    []legal.Hearing
		alerts      []legal.Alert
		invoices    []legal.Invoice
		timeEntries []legal.TimeEntry
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return fetchAll(groupCtx, s.api, &s.cases, &cases) })
	group.Go(func() error { return fetchAll(groupCtx, s.api, &s.clients, &clients) })
	group.Go(func() error { return fetchAll(groupCtx, s.api, &s.hearings, &hearings) })
	group.Go(func() error { return fetchAll(groupCtx, s.api, &s.alerts, &alerts) })
	group.Go(func() error { return fetchAll(groupCtx, s.api, &s.invoices, &invoices) })
	group.Go(func() error { return fetchAll(groupCtx, s.api, &s.timeEntries, &timeEntries) })
	if err := group.Wait(); err != nil {
		s.logger.Warn("client cache load failed", zap.Error(err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases.items = cases
	s.clients.items = clients
	s.hearings.items = hearings
	s.alerts.items = alerts
	s.invoices.items = invoices
	s.timeEntries.items = timeEntries
	s.loaded = true
	s.logger.Debug("client cache loaded",
		zap.Int("cases", len(cases)),
		zap.Int("clients", len(clients)),
		zap.Int("hearings", len(hearings)),
		zap.Int("alerts", len(alerts)),
		zap.Int("invoices", len(invoices)),
		zap.Int("time_entries", len(timeEntries)),
	)
	return nil
}

// Loaded reports whether Load has completed at least once.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Store) Cases() []legal.Case {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cases.snapshot()
}

func (s *Store) Clients() []legal.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clients.snapshot()
}

func (s *Store) Hearings() []legal.Hearing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hearings.snapshot()
}

func (s *Store) Alerts() []legal.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.alerts.snapshot()
}

// UnreadAlerts returns the alerts not yet marked read.
func (s *Store) UnreadAlerts() []legal.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	unread := []legal.Alert{}
	for _, alert := range s.alerts.items {
		if !alert.IsRead {
			unread = append(unread, alert)
		}
	}
	return unread
}

func (s *Store) Invoices() []legal.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.invoices.snapshot()
}

func (s *Store) TimeEntries() []legal.TimeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeEntries.snapshot()
}

// Case returns a cached case by id.
func (s *Store) Case(id string) (legal.Case, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cases.find(id)
}

// collection is one cached resource, newest first.
type collection[T any, P legal.Record[T]] struct {
	path      string
	normalize func(*T)
	items     []T
}

func (c *collection[T, P]) apply(record *T) {
	if c.normalize != nil {
		c.normalize(record)
	}
}

func (c *collection[T, P]) snapshot() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *collection[T, P]) find(id string) (T, bool) {
	for index := range c.items {
		if P(&c.items[index]).Owned().ID == id {
			return c.items[index], true
		}
	}
	var zero T
	return zero, false
}

func (c *collection[T, P]) upsert(record T) {
	id := P(&record).Owned().ID
	for index := range c.items {
		if P(&c.items[index]).Owned().ID == id {
			c.items[index] = record
			return
		}
	}
	c.items = append([]T{record}, c.items...)
}

func (c *collection[T, P]) remove(id string) {
	for index := range c.items {
		if P(&c.items[index]).Owned().ID == id {
			c.items = append(c.items[:index], c.items[index+1:]...)
			return
		}
	}
}

func fetchAll[T any, P legal.Record[T]](ctx context.Context, api *APIClient, c *collection[T, P], out *[]T) error {
	records := []T{}
	if err := api.do(ctx, http.MethodGet, c.path, nil, &records); err != nil {
		return err
	}
	if records == nil {
		records = []T{}
	}
	for index := range records {
		c.apply(&records[index])
	}
	*out = records
	return nil
}

func create[T any, P legal.Record[T]](ctx context.Context, s *Store, c *collection[T, P], input interface{}) (T, error) {
	var record T
	if err := s.api.do(ctx, http.MethodPost, c.path, input, &record); err != nil {
		return record, err
	}
	c.apply(&record)
	s.mu.Lock()
	c.upsert(record)
	s.mu.Unlock()
	return record, nil
}

func update[T any, P legal.Record[T]](ctx context.Context, s *Store, c *collection[T, P], id string, input interface{}) (T, error) {
	var record T
	if err := s.api.do(ctx, http.MethodPut, c.path+"/"+url.PathEscape(id), input, &record); err != nil {
		return record, err
	}
	c.apply(&record)
	s.mu.Lock()
	c.upsert(record)
	s.mu.Unlock()
	return record, nil
}

func remove[T any, P legal.Record[T]](ctx context.Context, s *Store, c *collection[T, P], id string) error {
	if err := s.api.do(ctx, http.MethodDelete, c.path+"/"+url.PathEscape(id), nil, nil); err != nil {
		return err
	}
	s.mu.Lock()
	c.remove(id)
	s.mu.Unlock()
	return nil
}

func normalizeCase(record *legal.Case) {
	if record.Documents == nil {
		record.Documents = datatypes.JSONSlice[string]{}
	}
}

func normalizeClient(record *legal.Client) {
	if record.Cases == nil {
		record.Cases = datatypes.JSONSlice[string]{}
	}
}

func normalizeHearing(record *legal.Hearing) {
	if record.DocumentsToBring == nil {
		record.DocumentsToBring = datatypes.JSONSlice[string]{}
	}
	if record.Orders == nil {
		record.Orders = datatypes.JSONSlice[legal.HearingOrder]{}
	}
	attendance := record.Attendance.Data()
	if attendance.WitnessesPresent == nil {
		attendance.WitnessesPresent = []string{}
		record.Attendance = datatypes.NewJSONType(attendance)
	}
}

func normalizeInvoice(record *legal.Invoice) {
	if record.Items == nil {
		record.Items = datatypes.JSONSlice[legal.InvoiceItem]{}
	}
}
