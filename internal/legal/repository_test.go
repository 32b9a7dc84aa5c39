package legal

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

const (
	ownerA = "owner-a"
	ownerB = "owner-b"
)

func TestCaseCreateAppliesDefaults(t *testing.T) {
	service := newTestService(t, nil)

	created, err := service.Cases.Create(context.Background(), ownerA, CaseInput{
		CaseNumber: stringPtr(" CS-101 "),
		ClientName: stringPtr("Acme Traders"),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == "" || created.OwnerID != ownerA || created.Version != 1 {
		t.Fatalf("unexpected ownership %+v", created.Ownership)
	}
	if created.CaseNumber != "CS-101" {
		t.Fatalf("expected trimmed case number, got %q", created.CaseNumber)
	}
	if created.Status != CaseStatusActive || created.Priority != CasePriorityMedium {
		t.Fatalf("unexpected defaults status=%s priority=%s", created.Status, created.Priority)
	}
	if created.Documents == nil {
		t.Fatalf("expected empty documents list")
	}
}

func TestCaseCreateRejectsInvalidInput(t *testing.T) {
	service := newTestService(t, nil)
	status := CaseStatus("archived")

	testCases := []struct {
		name  string
		input CaseInput
	}{
		{name: "missing-number", input: CaseInput{ClientName: stringPtr("A")}},
		{name: "blank-client", input: CaseInput{CaseNumber: stringPtr("1"), ClientName: stringPtr("  ")}},
		{name: "bad-status", input: CaseInput{CaseNumber: stringPtr("1"), ClientName: stringPtr("A"), Status: &status}},
		{name: "bad-time", input: CaseInput{CaseNumber: stringPtr("1"), ClientName: stringPtr("A"), HearingTime: stringPtr("25:00")}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := service.Cases.Create(context.Background(), ownerA, testCase.input)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
		})
	}
}

func TestRepositoryScopesByOwner(t *testing.T) {
	service := newTestService(t, nil)
	ctx := context.Background()

	created, err := service.Clients.Create(ctx, ownerA, ClientInput{Name: stringPtr("Priya")})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := service.Clients.Get(ctx, ownerB, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for other owner, got %v", err)
	}
	if _, err := service.Clients.Update(ctx, ownerB, created.ID, ClientInput{Name: stringPtr("X")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on foreign update, got %v", err)
	}
	if _, err := service.Clients.Delete(ctx, ownerB, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on foreign delete, got %v", err)
	}
	listed, err := service.Clients.List(ctx, ownerB, nil)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected no visible clients for other owner, got %d", len(listed))
	}
	if _, err := service.Clients.Get(ctx, ownerA, created.ID); err != nil {
		t.Fatalf("expected owner to see record: %v", err)
	}
}

func TestRepositoryListsNewestFirstWithFilters(t *testing.T) {
	service := newTestService(t, nil)
	ctx := context.Background()
	closed := CaseStatusClosed

	first, _ := service.Cases.Create(ctx, ownerA, CaseInput{CaseNumber: stringPtr("1"), ClientName: stringPtr("A")})
	second, _ := service.Cases.Create(ctx, ownerA, CaseInput{CaseNumber: stringPtr("2"), ClientName: stringPtr("B"), Status: &closed})
	third, _ := service.Cases.Create(ctx, ownerA, CaseInput{CaseNumber: stringPtr("3"), ClientName: stringPtr("C")})

	listed, err := service.Cases.List(ctx, ownerA, nil)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(listed) != 3 || listed[0].ID != third.ID || listed[2].ID != first.ID {
		t.Fatalf("expected newest first, got %v", caseNumbers(listed))
	}

	filtered, err := service.Cases.List(ctx, ownerA, map[string]string{"status": "closed", "owner_id": ownerB})
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != second.ID {
		t.Fatalf("expected only the closed case, got %v", caseNumbers(filtered))
	}
}

func TestRepositoryUpdateIsPartialAndBumpsVersion(t *testing.T) {
	service := newTestService(t, nil)
	ctx := context.Background()

	created, _ := service.Cases.Create(ctx, ownerA, CaseInput{
		CaseNumber:    stringPtr("1"),
		ClientName:    stringPtr("A"),
		OpposingParty: stringPtr("Acme"),
	})
	updated, err := service.Cases.Update(ctx, ownerA, created.ID, CaseInput{CourtName: stringPtr("High Court")})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Version != 2 || updated.CourtName != "High Court" || updated.OpposingParty != "Acme" {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) || !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("expected updatedAt to advance and createdAt to stay")
	}

	stored, _ := service.Cases.Get(ctx, ownerA, created.ID)
	if stored.Version != 2 || stored.CourtName != "High Court" {
		t.Fatalf("expected persisted update, got %+v", stored)
	}
}

func TestRepositoryRejectsStaleVersion(t *testing.T) {
	service := newTestService(t, nil)
	ctx := context.Background()

	created, _ := service.Cases.Create(ctx, ownerA, CaseInput{CaseNumber: stringPtr("1"), ClientName: stringPtr("A")})

	current := CaseInput{Notes: stringPtr("first")}
	current.Version = int64Ptr(1)
	if _, err := service.Cases.Update(ctx, ownerA, created.ID, current); err != nil {
		t.Fatalf("expected matching version to update: %v", err)
	}

	stale := CaseInput{Notes: stringPtr("second")}
	stale.Version = int64Ptr(1)
	_, err := service.Cases.Update(ctx, ownerA, created.ID, stale)
	if !errors.Is(err, ErrStaleVersion) {
		t.Fatalf("expected stale version, got %v", err)
	}
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) || serviceErr.Code() != "cases.update.stale_version" {
		t.Fatalf("expected dotted code, got %v", err)
	}

	stored, _ := service.Cases.Get(ctx, ownerA, created.ID)
	if stored.Notes != "first" {
		t.Fatalf("expected stale write to be discarded, got %q", stored.Notes)
	}
}

func TestRepositoryDeleteReturnsRecord(t *testing.T) {
	service := newTestService(t, nil)
	ctx := context.Background()

	created, _ := service.TimeEntries.Create(ctx, ownerA, TimeEntryInput{
		Description: stringPtr("Drafting"),
		Duration:    intPtr(90),
	})
	if !created.Billable {
		t.Fatalf("expected time entries to default to billable")
	}
	deleted, err := service.TimeEntries.Delete(ctx, ownerA, created.ID)
	if err != nil || deleted.ID != created.ID {
		t.Fatalf("unexpected delete result %+v err=%v", deleted, err)
	}
	if _, err := service.TimeEntries.Get(ctx, ownerA, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected record to be gone, got %v", err)
	}
}

func TestMarkAlertRead(t *testing.T) {
	service := newTestService(t, nil)
	ctx := context.Background()
	alertType := AlertTypeDeadline

	created, err := service.Alerts.Create(ctx, ownerA, AlertInput{
		Type:      &alertType,
		Message:   stringPtr("File reply"),
		AlertTime: &DateValue{Time: time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	read, err := service.MarkAlertRead(ctx, ownerA, created.ID)
	if err != nil || !read.IsRead || read.Version != 2 {
		t.Fatalf("unexpected mark read result %+v err=%v", read, err)
	}
	if _, err := service.MarkAlertRead(ctx, ownerB, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for other owner, got %v", err)
	}
}

func TestHearingStoresStructuredFields(t *testing.T) {
	service := newTestService(t, nil)
	ctx := context.Background()

	var input HearingInput
	body := `{"caseId":"case-1","hearingDate":"2025-03-10","hearingTime":"11:30","hearingType":"evidence",
		"attendance":{"clientPresent":true,"witnessesPresent":["R. Mehta"]},
		"orders":[{"orderType":"interim","orderDetails":"Stay granted","orderDate":"2025-03-10"}],
		"documentsToBring":["Affidavit"]}`
	if err := json.Unmarshal([]byte(body), &input); err != nil {
		t.Fatalf("failed to decode hearing body: %v", err)
	}

	created, err := service.Hearings.Create(ctx, ownerA, input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	stored, err := service.Hearings.Get(ctx, ownerA, created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.Status != HearingStatusScheduled || stored.HearingType != HearingTypeEvidence {
		t.Fatalf("unexpected classification %s/%s", stored.Status, stored.HearingType)
	}
	if !stored.HearingDate.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected hearing date %s", stored.HearingDate)
	}
	attendance := stored.Attendance.Data()
	if !attendance.ClientPresent || len(attendance.WitnessesPresent) != 1 {
		t.Fatalf("unexpected attendance %+v", attendance)
	}
	if len(stored.Orders) != 1 || stored.Orders[0].OrderDetails != "Stay granted" {
		t.Fatalf("unexpected orders %+v", stored.Orders)
	}
	if len(stored.DocumentsToBring) != 1 {
		t.Fatalf("unexpected documents %+v", stored.DocumentsToBring)
	}
}

func TestInvoiceCreateRecalculatesTotals(t *testing.T) {
	service := newTestService(t, nil)

	created, err := service.Invoices.Create(context.Background(), ownerA, InvoiceInput{
		InvoiceNumber:  stringPtr("INV-1"),
		TaxRate:        float64Ptr(18),
		DiscountAmount: float64Ptr(40),
		Items: &[]InvoiceItem{
			{Description: "Consultation", Quantity: 2, UnitPrice: 1000},
			{Description: "Filing", Quantity: 1, UnitPrice: 500},
		},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Status != InvoiceStatusDraft || created.Currency != DefaultCurrency {
		t.Fatalf("unexpected defaults %s/%s", created.Status, created.Currency)
	}
	if created.Items[0].Amount != 2000 || created.Subtotal != 2500 || created.TaxAmount != 450 || created.Total != 2910 {
		t.Fatalf("unexpected totals %+v", created)
	}
	if created.IssueDate.IsZero() {
		t.Fatalf("expected issue date to default")
	}
}

func TestDateValueAcceptsCalendarDates(t *testing.T) {
	testCases := []struct {
		raw      string
		expected time.Time
	}{
		{raw: `"2025-03-01"`, expected: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{raw: `"2025-03-01T10:30:00Z"`, expected: time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)},
		{raw: `"2025-03-01T16:00:00+05:30"`, expected: time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)},
	}
	for _, testCase := range testCases {
		var value DateValue
		if err := json.Unmarshal([]byte(testCase.raw), &value); err != nil {
			t.Fatalf("failed to parse %s: %v", testCase.raw, err)
		}
		if !value.Equal(testCase.expected) {
			t.Fatalf("expected %s, got %s", testCase.expected, value.Time)
		}
	}

	var invalid DateValue
	if err := json.Unmarshal([]byte(`"next tuesday"`), &invalid); err == nil {
		t.Fatalf("expected unsupported date to fail")
	}
}

func caseNumbers(cases []Case) []string {
	numbers := make([]string, 0, len(cases))
	for _, record := range cases {
		numbers = append(numbers, record.CaseNumber)
	}
	return numbers
}

func intPtr(value int) *int {
	return &value
}

func float64Ptr(value float64) *float64 {
	return &value
}
