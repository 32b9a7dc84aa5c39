package client

import (
	"context"
	"fmt"
	"time"

	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/legal"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/scheduling"
	"go.uber.org/zap"
)

// Conflicts runs conflict detection for a cached case against the cached case list.
func (s *Store) Conflicts(caseID string) ([]scheduling.Conflict, error) {
	s.mu.RLock()
	candidate, ok := s.cases.find(caseID)
	cases := s.cases.snapshot()
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: case %s", ErrNotFound, caseID)
	}
	return s.engine.DetectConflicts(candidate, cases), nil
}

// SyncReminders generates the hearing reminders missing from the cache and stores each
// one through the API. It returns the alerts that were created.
func (s *Store) SyncReminders(ctx context.Context, now time.Time) ([]legal.Alert, error) {
	s.mu.RLock()
	cases := s.cases.snapshot()
	alerts := s.alerts.snapshot()
	s.mu.RUnlock()

	reminders := s.engine.GenerateReminders(cases, alerts, now)
	created := make([]legal.Alert, 0, len(reminders))
	for _, reminder := range reminders {
		alertType := reminder.Type
		input := legal.AlertInput{
			CaseID:    &reminder.CaseID,
			Type:      &alertType,
			Message:   &reminder.Message,
			AlertTime: &legal.DateValue{Time: reminder.AlertTime},
		}
		alert, err := s.AddAlert(ctx, input)
		if err != nil {
			s.logger.Warn("reminder sync stopped",
				zap.String("case_id", reminder.CaseID),
				zap.Int("created", len(created)),
				zap.Error(err))
			return created, err
		}
		created = append(created, alert)
	}
	return created, nil
}
