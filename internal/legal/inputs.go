package legal

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

func (s CaseStatus) valid() bool {
	switch s {
	case CaseStatusActive, CaseStatusPending, CaseStatusClosed, CaseStatusWon, CaseStatusLost:
		return true
	}
	return false
}

func (p CasePriority) valid() bool {
	switch p {
	case CasePriorityLow, CasePriorityMedium, CasePriorityHigh, CasePriorityUrgent:
		return true
	}
	return false
}

func (t HearingType) valid() bool {
	switch t {
	case HearingTypeFirst, HearingTypeInterim, HearingTypeFinal, HearingTypeEvidence,
		HearingTypeArgument, HearingTypeJudgment, HearingTypeOther:
		return true
	}
	return false
}

func (s HearingStatus) valid() bool {
	switch s {
	case HearingStatusScheduled, HearingStatusCompleted, HearingStatusAdjourned, HearingStatusCancelled:
		return true
	}
	return false
}

func (t AlertType) valid() bool {
	switch t {
	case AlertTypeHearing, AlertTypeDeadline, AlertTypePayment, AlertTypeDocument:
		return true
	}
	return false
}

func (s InvoiceStatus) valid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

func requireText(field string, value *string, forCreate bool) error {
	if value == nil {
		if forCreate {
			return invalidInput("%s is required", field)
		}
		return nil
	}
	if strings.TrimSpace(*value) == "" {
		return invalidInput("%s must not be empty", field)
	}
	return nil
}

func checkClock(field string, value *string) error {
	if value == nil || *value == "" {
		return nil
	}
	if !ValidClock(*value) {
		return invalidInput("%s must be HH:MM", field)
	}
	return nil
}

func setText(target *string, value *string) {
	if value != nil {
		*target = strings.TrimSpace(*value)
	}
}

func setStrings(target *datatypes.JSONSlice[string], value *[]string) {
	if value != nil {
		*target = append(datatypes.JSONSlice[string]{}, (*value)...)
	}
	if *target == nil {
		*target = datatypes.JSONSlice[string]{}
	}
}

func setOptionalDate(target **time.Time, value *DateValue) {
	if value != nil {
		*target = value.ptr()
	}
}

// CaseInput is the create/update body for cases. Nil fields are left unchanged.
type CaseInput struct {
	VersionGuard
	CaseNumber    *string       `json:"caseNumber"`
	ClientName    *string       `json:"clientName"`
	OpposingParty *string       `json:"opposingParty"`
	CourtName     *string       `json:"courtName"`
	JudgeName     *string       `json:"judgeName"`
	HearingDate   *DateValue    `json:"hearingDate"`
	HearingTime   *string       `json:"hearingTime"`
	Status        *CaseStatus   `json:"status"`
	Priority      *CasePriority `json:"priority"`
	CaseType      *string       `json:"caseType"`
	Description   *string       `json:"description"`
	Notes         *string       `json:"notes"`
	NextHearing   *DateValue    `json:"nextHearing"`
	Documents     *[]string     `json:"documents"`
}

func (in CaseInput) Validate(forCreate bool) error {
	if err := requireText("caseNumber", in.CaseNumber, forCreate); err != nil {
		return err
	}
	if err := requireText("clientName", in.ClientName, forCreate); err != nil {
		return err
	}
	if in.Status != nil && !in.Status.valid() {
		return invalidInput("status %q is not allowed", *in.Status)
	}
	if in.Priority != nil && !in.Priority.valid() {
		return invalidInput("priority %q is not allowed", *in.Priority)
	}
	return checkClock("hearingTime", in.HearingTime)
}

func (in CaseInput) Apply(record *Case) {
	if record.ID == "" {
		record.Status = CaseStatusActive
		record.Priority = CasePriorityMedium
	}
	setText(&record.CaseNumber, in.CaseNumber)
	setText(&record.ClientName, in.ClientName)
	setText(&record.OpposingParty, in.OpposingParty)
	setText(&record.CourtName, in.CourtName)
	setText(&record.JudgeName, in.JudgeName)
	setOptionalDate(&record.HearingDate, in.HearingDate)
	setText(&record.HearingTime, in.HearingTime)
	if in.Status != nil {
		record.Status = *in.Status
	}
	if in.Priority != nil {
		record.Priority = *in.Priority
	}
	setText(&record.CaseType, in.CaseType)
	setText(&record.Description, in.Description)
	setText(&record.Notes, in.Notes)
	setOptionalDate(&record.NextHearing, in.NextHearing)
	setStrings(&record.Documents, in.Documents)
}

// AttendanceInput is the attendance section of a hearing body.
type AttendanceInput struct {
	ClientPresent        bool     `json:"clientPresent"`
	OpposingPartyPresent bool     `json:"opposingPartyPresent"`
	WitnessesPresent     []string `json:"witnessesPresent"`
}

// HearingInput is the create/update body for hearings.
type HearingInput struct {
	VersionGuard
	CaseID            *string          `json:"caseId"`
	HearingDate       *DateValue       `json:"hearingDate"`
	HearingTime       *string          `json:"hearingTime"`
	CourtName         *string          `json:"courtName"`
	JudgeName         *string          `json:"judgeName"`
	HearingType       *HearingType     `json:"hearingType"`
	Status            *HearingStatus   `json:"status"`
	Purpose           *string          `json:"purpose"`
	CourtInstructions *string          `json:"courtInstructions"`
	DocumentsToBring  *[]string        `json:"documentsToBring"`
	Proceedings       *string          `json:"proceedings"`
	NextHearingDate   *DateValue       `json:"nextHearingDate"`
	NextHearingTime   *string          `json:"nextHearingTime"`
	AdjournmentReason *string          `json:"adjournmentReason"`
	Attendance        *AttendanceInput `json:"attendance"`
	Orders            *[]HearingOrder  `json:"orders"`
	Notes             *string          `json:"notes"`
}

func (in HearingInput) Validate(forCreate bool) error {
	if err := requireText("caseId", in.CaseID, forCreate); err != nil {
		return err
	}
	if forCreate && (in.HearingDate == nil || in.HearingDate.IsZero()) {
		return invalidInput("hearingDate is required")
	}
	if in.HearingType != nil && !in.HearingType.valid() {
		return invalidInput("hearingType %q is not allowed", *in.HearingType)
	}
	if in.Status != nil && !in.Status.valid() {
		return invalidInput("status %q is not allowed", *in.Status)
	}
	if err := checkClock("hearingTime", in.HearingTime); err != nil {
		return err
	}
	return checkClock("nextHearingTime", in.NextHearingTime)
}

func (in HearingInput) Apply(record *Hearing) {
	if record.ID == "" {
		record.HearingType = HearingTypeOther
		record.Status = HearingStatusScheduled
	}
	setText(&record.CaseID, in.CaseID)
	if in.HearingDate != nil && !in.HearingDate.IsZero() {
		record.HearingDate = in.HearingDate.Time
	}
	setText(&record.HearingTime, in.HearingTime)
	setText(&record.CourtName, in.CourtName)
	setText(&record.JudgeName, in.JudgeName)
	if in.HearingType != nil {
		record.HearingType = *in.HearingType
	}
	if in.Status != nil {
		record.Status = *in.Status
	}
	setText(&record.Purpose, in.Purpose)
	setText(&record.CourtInstructions, in.CourtInstructions)
	setStrings(&record.DocumentsToBring, in.DocumentsToBring)
	setText(&record.Proceedings, in.Proceedings)
	setOptionalDate(&record.NextHearingDate, in.NextHearingDate)
	setText(&record.NextHearingTime, in.NextHearingTime)
	setText(&record.AdjournmentReason, in.AdjournmentReason)
	if in.Attendance != nil {
		witnesses := append([]string{}, in.Attendance.WitnessesPresent...)
		record.Attendance = datatypes.NewJSONType(Attendance{
			ClientPresent:        in.Attendance.ClientPresent,
			OpposingPartyPresent: in.Attendance.OpposingPartyPresent,
			WitnessesPresent:     witnesses,
		})
	}
	if in.Orders != nil {
		record.Orders = append(datatypes.JSONSlice[HearingOrder]{}, (*in.Orders)...)
	}
	if record.Orders == nil {
		record.Orders = datatypes.JSONSlice[HearingOrder]{}
	}
	setText(&record.Notes, in.Notes)
}

// AlertInput is the create/update body for alerts.
type AlertInput struct {
	VersionGuard
	CaseID    *string    `json:"caseId"`
	Type      *AlertType `json:"type"`
	Message   *string    `json:"message"`
	AlertTime *DateValue `json:"alertTime"`
	IsRead    *bool      `json:"isRead"`
}

func (in AlertInput) Validate(forCreate bool) error {
	if forCreate && in.Type == nil {
		return invalidInput("type is required")
	}
	if in.Type != nil && !in.Type.valid() {
		return invalidInput("type %q is not allowed", *in.Type)
	}
	if err := requireText("message", in.Message, forCreate); err != nil {
		return err
	}
	if forCreate && (in.AlertTime == nil || in.AlertTime.IsZero()) {
		return invalidInput("alertTime is required")
	}
	return nil
}

func (in AlertInput) Apply(record *Alert) {
	setText(&record.CaseID, in.CaseID)
	if in.Type != nil {
		record.Type = *in.Type
	}
	setText(&record.Message, in.Message)
	if in.AlertTime != nil && !in.AlertTime.IsZero() {
		record.AlertTime = in.AlertTime.Time
	}
	if in.IsRead != nil {
		record.IsRead = *in.IsRead
	}
}

// ClientInput is the create/update body for clients.
type ClientInput struct {
	VersionGuard
	Name         *string   `json:"name"`
	Email        *string   `json:"email"`
	Phone        *string   `json:"phone"`
	Address      *string   `json:"address"`
	PanNumber    *string   `json:"panNumber"`
	AadharNumber *string   `json:"aadharNumber"`
	Cases        *[]string `json:"cases"`
	Notes        *string   `json:"notes"`
}

func (in ClientInput) Validate(forCreate bool) error {
	if err := requireText("name", in.Name, forCreate); err != nil {
		return err
	}
	if in.Email != nil && *in.Email != "" && !strings.Contains(*in.Email, "@") {
		return invalidInput("email %q is not an address", *in.Email)
	}
	return nil
}

func (in ClientInput) Apply(record *Client) {
	setText(&record.Name, in.Name)
	if in.Email != nil {
		record.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	setText(&record.Phone, in.Phone)
	setText(&record.Address, in.Address)
	setText(&record.PanNumber, in.PanNumber)
	setText(&record.AadharNumber, in.AadharNumber)
	setStrings(&record.Cases, in.Cases)
	setText(&record.Notes, in.Notes)
}

// InvoiceInput is the create/update body for invoices.
type InvoiceInput struct {
	VersionGuard
	ClientID       *string        `json:"clientId"`
	CaseID         *string        `json:"caseId"`
	InvoiceNumber  *string        `json:"invoiceNumber"`
	IssueDate      *DateValue     `json:"issueDate"`
	DueDate        *DateValue     `json:"dueDate"`
	Status         *InvoiceStatus `json:"status"`
	Currency       *string        `json:"currency"`
	Items          *[]InvoiceItem `json:"items"`
	Subtotal       *float64       `json:"subtotal"`
	TaxRate        *float64       `json:"taxRate"`
	TaxAmount      *float64       `json:"taxAmount"`
	DiscountAmount *float64       `json:"discountAmount"`
	Total          *float64       `json:"total"`
	Notes          *string        `json:"notes"`
	Terms          *string        `json:"terms"`

	now func() time.Time
}

// WithClock sets the clock used to default the issue date.
func (in InvoiceInput) WithClock(clock func() time.Time) InvoiceInput {
	in.now = clock
	return in
}

func (in InvoiceInput) Validate(forCreate bool) error {
	if err := requireText("invoiceNumber", in.InvoiceNumber, forCreate); err != nil {
		return err
	}
	if in.Status != nil && !in.Status.valid() {
		return invalidInput("status %q is not allowed", *in.Status)
	}
	if in.TaxRate != nil && (*in.TaxRate < 0 || *in.TaxRate > 100) {
		return invalidInput("taxRate must be between 0 and 100")
	}
	if in.Items != nil {
		for index, item := range *in.Items {
			if item.Quantity < 0 || item.UnitPrice < 0 {
				return invalidInput("items[%d] must not be negative", index)
			}
		}
	}
	return nil
}

func (in InvoiceInput) Apply(record *Invoice) {
	if record.ID == "" {
		record.Status = InvoiceStatusDraft
		record.Currency = DefaultCurrency
		clock := in.now
		if clock == nil {
			clock = time.Now
		}
		record.IssueDate = clock().UTC()
	}
	setText(&record.ClientID, in.ClientID)
	setText(&record.CaseID, in.CaseID)
	setText(&record.InvoiceNumber, in.InvoiceNumber)
	if in.IssueDate != nil && !in.IssueDate.IsZero() {
		record.IssueDate = in.IssueDate.Time
	}
	setOptionalDate(&record.DueDate, in.DueDate)
	if in.Status != nil {
		record.Status = *in.Status
	}
	if in.Currency != nil && strings.TrimSpace(*in.Currency) != "" {
		record.Currency = strings.ToUpper(strings.TrimSpace(*in.Currency))
	}
	if in.Items != nil {
		record.Items = append(datatypes.JSONSlice[InvoiceItem]{}, (*in.Items)...)
	}
	if record.Items == nil {
		record.Items = datatypes.JSONSlice[InvoiceItem]{}
	}
	assignFloat(&record.Subtotal, in.Subtotal)
	assignFloat(&record.TaxRate, in.TaxRate)
	assignFloat(&record.TaxAmount, in.TaxAmount)
	assignFloat(&record.DiscountAmount, in.DiscountAmount)
	assignFloat(&record.Total, in.Total)
	setText(&record.Notes, in.Notes)
	setText(&record.Terms, in.Terms)
	record.Recalculate()
}

func assignFloat(target *float64, value *float64) {
	if value != nil {
		*target = *value
	}
}

// TimeEntryInput is the create/update body for time entries.
type TimeEntryInput struct {
	VersionGuard
	CaseID      *string    `json:"caseId"`
	Description *string    `json:"description"`
	Duration    *int       `json:"duration"`
	HourlyRate  *float64   `json:"hourlyRate"`
	Date        *DateValue `json:"date"`
	Billable    *bool      `json:"billable"`

	now func() time.Time
}

// WithClock sets the clock used to default the entry date.
func (in TimeEntryInput) WithClock(clock func() time.Time) TimeEntryInput {
	in.now = clock
	return in
}

func (in TimeEntryInput) Validate(forCreate bool) error {
	if err := requireText("description", in.Description, forCreate); err != nil {
		return err
	}
	if forCreate && in.Duration == nil {
		return invalidInput("duration is required")
	}
	if in.Duration != nil && *in.Duration <= 0 {
		return invalidInput("duration must be positive minutes")
	}
	if in.HourlyRate != nil && *in.HourlyRate < 0 {
		return invalidInput("hourlyRate must not be negative")
	}
	return nil
}

func (in TimeEntryInput) Apply(record *TimeEntry) {
	if record.ID == "" {
		record.Billable = true
		clock := in.now
		if clock == nil {
			clock = time.Now
		}
		record.Date = clock().UTC()
	}
	setText(&record.CaseID, in.CaseID)
	setText(&record.Description, in.Description)
	if in.Duration != nil {
		record.Duration = *in.Duration
	}
	assignFloat(&record.HourlyRate, in.HourlyRate)
	if in.Date != nil && !in.Date.IsZero() {
		record.Date = in.Date.Time
	}
	if in.Billable != nil {
		record.Billable = *in.Billable
	}
}
