// Package scheduling detects conflicts between cases and generates hearing reminders.
package scheduling

import (
	"fmt"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/legal"
)

// ConflictType names the rule that produced a conflict.
type ConflictType string

const (
	ConflictTypeTime          ConflictType = "time"
	ConflictTypeClient        ConflictType = "client"
	ConflictTypeOpposingParty ConflictType = "opposing-party"
	ConflictTypeCourt         ConflictType = "court"
)

// Severity grades a conflict.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

const (
	defaultHearingClock = "10:00"
	displayDateLayout   = "2/1/2006"
	timeConflictWindow  = 2 * time.Hour
	highSeverityWindow  = time.Hour
)

// Conflict is one rule match between the candidate case and another case.
type Conflict struct {
	Type         ConflictType `json:"type"`
	Severity     Severity     `json:"severity"`
	Message      string       `json:"message"`
	AffectedCase legal.Case   `json:"affectedCase"`
}

// Engine evaluates cases against the wall clock of a fixed location. Hearing dates are
// calendar dates stored at midnight UTC, so the calendar day is always read in UTC and
// the location only places the hearing time. The zero value uses UTC.
type Engine struct {
	Location *time.Location
}

func (e Engine) location() *time.Location {
	if e.Location == nil {
		return time.UTC
	}
	return e.Location
}

// DetectConflicts compares candidate against cases with the zero Engine.
func DetectConflicts(candidate legal.Case, cases []legal.Case) []Conflict {
	return Engine{}.DetectConflicts(candidate, cases)
}

// DetectConflicts compares candidate against every other case. Each of the four rules
// yields at most one conflict per pair and rules are not deduplicated against each other.
func (e Engine) DetectConflicts(candidate legal.Case, cases []legal.Case) []Conflict {
	conflicts := []Conflict{}
	for _, existing := range cases {
		if existing.ID == candidate.ID {
			continue
		}
		if conflict, ok := e.timeConflict(candidate, existing); ok {
			conflicts = append(conflicts, conflict)
		}
		if conflict, ok := clientConflict(candidate, existing); ok {
			conflicts = append(conflicts, conflict)
		}
		if conflict, ok := opposingPartyConflict(candidate, existing); ok {
			conflicts = append(conflicts, conflict)
		}
		if conflict, ok := e.courtConflict(candidate, existing); ok {
			conflicts = append(conflicts, conflict)
		}
	}
	return conflicts
}

func (e Engine) timeConflict(candidate, existing legal.Case) (Conflict, bool) {
	if !sameDay(candidate.HearingDate, existing.HearingDate) {
		return Conflict{}, false
	}
	candidateClock, ok := clockOffset(candidate.HearingTime)
	if !ok {
		return Conflict{}, false
	}
	existingClock, ok := clockOffset(existing.HearingTime)
	if !ok {
		return Conflict{}, false
	}
	difference := candidateClock - existingClock
	if difference < 0 {
		difference = -difference
	}
	if difference >= timeConflictWindow {
		return Conflict{}, false
	}
	severity := SeverityMedium
	if difference < highSeverityWindow {
		severity = SeverityHigh
	}
	return Conflict{
		Type:     ConflictTypeTime,
		Severity: severity,
		Message: fmt.Sprintf("Time conflict with %s on %s",
			existing.CaseNumber, existing.HearingDate.UTC().Format(displayDateLayout)),
		AffectedCase: existing,
	}, true
}

func clientConflict(candidate, existing legal.Case) (Conflict, bool) {
	if !strings.EqualFold(candidate.ClientName, existing.ClientName) {
		return Conflict{}, false
	}
	if candidate.Status != legal.CaseStatusActive || existing.Status != legal.CaseStatusActive {
		return Conflict{}, false
	}
	return Conflict{
		Type:         ConflictTypeClient,
		Severity:     SeverityMedium,
		Message:      fmt.Sprintf("Multiple active cases for client: %s", candidate.ClientName),
		AffectedCase: existing,
	}, true
}

func opposingPartyConflict(candidate, existing legal.Case) (Conflict, bool) {
	if candidate.OpposingParty == "" || existing.OpposingParty == "" {
		return Conflict{}, false
	}
	if !strings.EqualFold(candidate.OpposingParty, existing.OpposingParty) {
		return Conflict{}, false
	}
	return Conflict{
		Type:         ConflictTypeOpposingParty,
		Severity:     SeverityHigh,
		Message:      fmt.Sprintf("Conflict of interest: Same opposing party (%s)", candidate.OpposingParty),
		AffectedCase: existing,
	}, true
}

func (e Engine) courtConflict(candidate, existing legal.Case) (Conflict, bool) {
	if candidate.CourtName == "" || !strings.EqualFold(candidate.CourtName, existing.CourtName) {
		return Conflict{}, false
	}
	if !sameDay(candidate.HearingDate, existing.HearingDate) {
		return Conflict{}, false
	}
	return Conflict{
		Type:     ConflictTypeCourt,
		Severity: SeverityLow,
		Message: fmt.Sprintf("Multiple cases at %s on %s",
			candidate.CourtName, candidate.HearingDate.UTC().Format(displayDateLayout)),
		AffectedCase: existing,
	}, true
}

func sameDay(left, right *time.Time) bool {
	if left == nil || right == nil || left.IsZero() || right.IsZero() {
		return false
	}
	leftYear, leftMonth, leftDay := left.UTC().Date()
	rightYear, rightMonth, rightDay := right.UTC().Date()
	return leftYear == rightYear && leftMonth == rightMonth && leftDay == rightDay
}

// clockOffset converts an HH:MM value to its offset from midnight. Empty values default to 10:00.
func clockOffset(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = defaultHearingClock
	}
	if !legal.ValidClock(value) {
		return 0, false
	}
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return 0, false
	}
	return time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute, true
}
