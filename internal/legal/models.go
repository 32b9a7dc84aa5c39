package legal

import (
	"math"
	"time"

	"gorm.io/datatypes"
)

// CaseStatus enumerates the lifecycle of a case.
type CaseStatus string

const (
	CaseStatusActive  CaseStatus = "active"
	CaseStatusPending CaseStatus = "pending"
	CaseStatusClosed  CaseStatus = "closed"
	CaseStatusWon     CaseStatus = "won"
	CaseStatusLost    CaseStatus = "lost"
)

// CasePriority ranks cases for triage.
type CasePriority string

const (
	CasePriorityLow    CasePriority = "low"
	CasePriorityMedium CasePriority = "medium"
	CasePriorityHigh   CasePriority = "high"
	CasePriorityUrgent CasePriority = "urgent"
)

// Case is a matter handled for a client.
type Case struct {
	Ownership
	CaseNumber    string                      `gorm:"column:case_number;size:100;not null" json:"caseNumber"`
	ClientName    string                      `gorm:"column:client_name;size:200;not null" json:"clientName"`
	OpposingParty string                      `gorm:"column:opposing_party;size:200" json:"opposingParty"`
	CourtName     string                      `gorm:"column:court_name;size:200" json:"courtName"`
	JudgeName     string                      `gorm:"column:judge_name;size:200" json:"judgeName"`
	HearingDate   *time.Time                  `gorm:"column:hearing_date" json:"hearingDate,omitempty"`
	HearingTime   string                      `gorm:"column:hearing_time;size:5" json:"hearingTime"`
	Status        CaseStatus                  `gorm:"column:status;size:16;not null;index" json:"status"`
	Priority      CasePriority                `gorm:"column:priority;size:16;not null" json:"priority"`
	CaseType      string                      `gorm:"column:case_type;size:100" json:"caseType"`
	Description   string                      `gorm:"column:description;type:text" json:"description"`
	Notes         string                      `gorm:"column:notes;type:text" json:"notes"`
	NextHearing   *time.Time                  `gorm:"column:next_hearing" json:"nextHearing,omitempty"`
	Documents     datatypes.JSONSlice[string] `gorm:"column:documents" json:"documents"`
}

// TableName provides the explicit table binding for GORM.
func (Case) TableName() string {
	return "cases"
}

// HearingType classifies a hearing.
type HearingType string

const (
	HearingTypeFirst    HearingType = "first"
	HearingTypeInterim  HearingType = "interim"
	HearingTypeFinal    HearingType = "final"
	HearingTypeEvidence HearingType = "evidence"
	HearingTypeArgument HearingType = "argument"
	HearingTypeJudgment HearingType = "judgment"
	HearingTypeOther    HearingType = "other"
)

// HearingStatus tracks whether a hearing took place.
type HearingStatus string

const (
	HearingStatusScheduled HearingStatus = "scheduled"
	HearingStatusCompleted HearingStatus = "completed"
	HearingStatusAdjourned HearingStatus = "adjourned"
	HearingStatusCancelled HearingStatus = "cancelled"
)

// Attendance records who appeared at a hearing.
type Attendance struct {
	ClientPresent        bool     `json:"clientPresent"`
	OpposingPartyPresent bool     `json:"opposingPartyPresent"`
	WitnessesPresent     []string `json:"witnessesPresent"`
}

// HearingOrder is an order passed by the court during a hearing.
type HearingOrder struct {
	OrderType    string `json:"orderType"`
	OrderDetails string `json:"orderDetails"`
	OrderDate    string `json:"orderDate"`
}

// Hearing is a scheduled court appearance for a case.
type Hearing struct {
	Ownership
	CaseID            string                            `gorm:"column:case_id;size:64;not null;index" json:"caseId"`
	HearingDate       time.Time                         `gorm:"column:hearing_date;not null" json:"hearingDate"`
	HearingTime       string                            `gorm:"column:hearing_time;size:5" json:"hearingTime"`
	CourtName         string                            `gorm:"column:court_name;size:200" json:"courtName"`
	JudgeName         string                            `gorm:"column:judge_name;size:200" json:"judgeName"`
	HearingType       HearingType                       `gorm:"column:hearing_type;size:16;not null" json:"hearingType"`
	Status            HearingStatus                     `gorm:"column:status;size:16;not null" json:"status"`
	Purpose           string                            `gorm:"column:purpose;type:text" json:"purpose"`
	CourtInstructions string                            `gorm:"column:court_instructions;type:text" json:"courtInstructions"`
	DocumentsToBring  datatypes.JSONSlice[string]       `gorm:"column:documents_to_bring" json:"documentsToBring"`
	Proceedings       string                            `gorm:"column:proceedings;type:text" json:"proceedings"`
	NextHearingDate   *time.Time                        `gorm:"column:next_hearing_date" json:"nextHearingDate,omitempty"`
	NextHearingTime   string                            `gorm:"column:next_hearing_time;size:5" json:"nextHearingTime"`
	AdjournmentReason string                            `gorm:"column:adjournment_reason;type:text" json:"adjournmentReason"`
	Attendance        datatypes.JSONType[Attendance]    `gorm:"column:attendance" json:"attendance"`
	Orders            datatypes.JSONSlice[HearingOrder] `gorm:"column:orders" json:"orders"`
	Notes             string                            `gorm:"column:notes;type:text" json:"notes"`
}

// TableName provides the explicit table binding for GORM.
func (Hearing) TableName() string {
	return "hearings"
}

// AlertType classifies a notification.
type AlertType string

const (
	AlertTypeHearing  AlertType = "hearing"
	AlertTypeDeadline AlertType = "deadline"
	AlertTypePayment  AlertType = "payment"
	AlertTypeDocument AlertType = "document"
)

// Alert is a notification shown to the owner, created manually or by the reminder generator.
type Alert struct {
	Ownership
	CaseID    string    `gorm:"column:case_id;size:64;index" json:"caseId"`
	Type      AlertType `gorm:"column:type;size:16;not null" json:"type"`
	Message   string    `gorm:"column:message;type:text;not null" json:"message"`
	AlertTime time.Time `gorm:"column:alert_time;not null" json:"alertTime"`
	IsRead    bool      `gorm:"column:is_read;not null;default:false" json:"isRead"`
}

// TableName provides the explicit table binding for GORM.
func (Alert) TableName() string {
	return "alerts"
}

// Client is a person or organisation represented by the owner.
type Client struct {
	Ownership
	Name         string                      `gorm:"column:name;size:200;not null" json:"name"`
	Email        string                      `gorm:"column:email;size:320" json:"email"`
	Phone        string                      `gorm:"column:phone;size:50" json:"phone"`
	Address      string                      `gorm:"column:address;type:text" json:"address"`
	PanNumber    string                      `gorm:"column:pan_number;size:20" json:"panNumber"`
	AadharNumber string                      `gorm:"column:aadhar_number;size:20" json:"aadharNumber"`
	Cases        datatypes.JSONSlice[string] `gorm:"column:cases" json:"cases"`
	Notes        string                      `gorm:"column:notes;type:text" json:"notes"`
}

// TableName provides the explicit table binding for GORM.
func (Client) TableName() string {
	return "clients"
}

// InvoiceStatus tracks billing progress.
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// DefaultCurrency is applied to invoices created without one.
const DefaultCurrency = "INR"

// InvoiceItem is one billed line.
type InvoiceItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Amount      float64 `json:"amount"`
}

// Invoice bills a client, optionally for a specific case.
type Invoice struct {
	Ownership
	ClientID       string                           `gorm:"column:client_id;size:64;index" json:"clientId"`
	CaseID         string                           `gorm:"column:case_id;size:64;index" json:"caseId"`
	InvoiceNumber  string                           `gorm:"column:invoice_number;size:100;not null" json:"invoiceNumber"`
	IssueDate      time.Time                        `gorm:"column:issue_date;not null" json:"issueDate"`
	DueDate        *time.Time                       `gorm:"column:due_date" json:"dueDate,omitempty"`
	Status         InvoiceStatus                    `gorm:"column:status;size:16;not null" json:"status"`
	Currency       string                           `gorm:"column:currency;size:8;not null" json:"currency"`
	Items          datatypes.JSONSlice[InvoiceItem] `gorm:"column:items" json:"items"`
	Subtotal       float64                          `gorm:"column:subtotal;not null;default:0" json:"subtotal"`
	TaxRate        float64                          `gorm:"column:tax_rate;not null;default:0" json:"taxRate"`
	TaxAmount      float64                          `gorm:"column:tax_amount;not null;default:0" json:"taxAmount"`
	DiscountAmount float64                          `gorm:"column:discount_amount;not null;default:0" json:"discountAmount"`
	Total          float64                          `gorm:"column:total;not null;default:0" json:"total"`
	Notes          string                           `gorm:"column:notes;type:text" json:"notes"`
	Terms          string                           `gorm:"column:terms;type:text" json:"terms"`
}

// TableName provides the explicit table binding for GORM.
func (Invoice) TableName() string {
	return "invoices"
}

// Recalculate derives line amounts and totals from the items, tax rate and discount.
// Invoices without items keep the totals they were given.
func (i *Invoice) Recalculate() {
	if len(i.Items) == 0 {
		return
	}
	subtotal := 0.0
	for index := range i.Items {
		i.Items[index].Amount = roundCents(i.Items[index].Quantity * i.Items[index].UnitPrice)
		subtotal += i.Items[index].Amount
	}
	i.Subtotal = roundCents(subtotal)
	i.TaxAmount = roundCents(i.Subtotal * i.TaxRate / 100)
	i.Total = roundCents(i.Subtotal + i.TaxAmount - i.DiscountAmount)
}

func roundCents(value float64) float64 {
	return math.Round(value*100) / 100
}

// TimeEntry records time spent on a case.
type TimeEntry struct {
	Ownership
	CaseID      string    `gorm:"column:case_id;size:64;index" json:"caseId"`
	Description string    `gorm:"column:description;type:text;not null" json:"description"`
	Duration    int       `gorm:"column:duration;not null" json:"duration"`
	HourlyRate  float64   `gorm:"column:hourly_rate;not null;default:0" json:"hourlyRate"`
	Date        time.Time `gorm:"column:date;not null" json:"date"`
	Billable    bool      `gorm:"column:billable;not null" json:"billable"`
}

// TableName provides the explicit table binding for GORM.
func (TimeEntry) TableName() string {
	return "time_entries"
}

// Amount is the billable value of the entry.
func (e TimeEntry) Amount() float64 {
	if !e.Billable {
		return 0
	}
	return roundCents(float64(e.Duration) / 60 * e.HourlyRate)
}
