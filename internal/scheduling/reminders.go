package scheduling

import (
	"fmt"
	"time"

	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/legal"
)

// ReminderOffsets are the lead times before a hearing at which reminders fire.
var ReminderOffsets = []int{24, 6, 1}

const dedupWindow = time.Minute

// GenerateReminders returns the hearing alerts that should exist but do not, using UTC.
func GenerateReminders(cases []legal.Case, alerts []legal.Alert, now time.Time) []legal.Alert {
	return Engine{}.GenerateReminders(cases, alerts, now)
}

// GenerateReminders computes reminder alerts at each offset before every hearing.
// Offsets already in the past are skipped, as are offsets with an existing hearing alert
// for the same case within one minute. Returned alerts carry no identity or owner.
func (e Engine) GenerateReminders(cases []legal.Case, alerts []legal.Alert, now time.Time) []legal.Alert {
	known := make([]legal.Alert, 0, len(alerts))
	known = append(known, alerts...)
	generated := []legal.Alert{}

	for _, record := range cases {
		hearing, ok := e.HearingInstant(record)
		if !ok {
			continue
		}
		for _, hours := range ReminderOffsets {
			alertTime := hearing.Add(-time.Duration(hours) * time.Hour)
			if !alertTime.After(now) {
				continue
			}
			if hasNearbyHearingAlert(known, record.ID, alertTime) {
				continue
			}
			reminder := legal.Alert{
				CaseID:    record.ID,
				Type:      legal.AlertTypeHearing,
				Message:   reminderMessage(record, hours),
				AlertTime: alertTime.UTC(),
			}
			generated = append(generated, reminder)
			known = append(known, reminder)
		}
	}
	return generated
}

// HearingInstant places the hearing time on the hearing's calendar day in the engine
// location. Without a valid time the stored date is returned as is.
func (e Engine) HearingInstant(record legal.Case) (time.Time, bool) {
	if record.HearingDate == nil || record.HearingDate.IsZero() {
		return time.Time{}, false
	}
	if record.HearingTime == "" || !legal.ValidClock(record.HearingTime) {
		return *record.HearingDate, true
	}
	offset, _ := clockOffset(record.HearingTime)
	year, month, day := record.HearingDate.UTC().Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, e.location())
	return midnight.Add(offset), true
}

func hasNearbyHearingAlert(alerts []legal.Alert, caseID string, alertTime time.Time) bool {
	for _, alert := range alerts {
		if alert.CaseID != caseID || alert.Type != legal.AlertTypeHearing {
			continue
		}
		difference := alert.AlertTime.Sub(alertTime)
		if difference < 0 {
			difference = -difference
		}
		if difference < dedupWindow {
			return true
		}
	}
	return false
}

func reminderMessage(record legal.Case, hours int) string {
	unit := "hours"
	if hours == 1 {
		unit = "hour"
	}
	return fmt.Sprintf("Hearing reminder: %s - %s at %s in %d %s",
		record.CaseNumber, record.ClientName, record.CourtName, hours, unit)
}
