package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/MinaWilson92/prochub/server/activitylog"
	"github.com/MinaWilson92/prochub/server/notifications"
	"github.com/MinaWilson92/prochub/server/procedures"
)

// warningThresholds are the days-until-expiry bands of the daily scan. The
// bands overlap with OR semantics; a procedure matching several bands is
// still notified only once per run.
var warningThresholds = []int{30, 14, 7}

const criticalWindow = 24 * time.Hour

type scanSummary struct {
	procedures   int
	expired      int
	expiringSoon int
	emailsSent   int
	errors       int
}

// runDailyScan walks every procedure with an expiry date and notifies the
// standing recipients about expired and expiring-soon procedures. One bad
// record never aborts the scan.
func (s *Service) runDailyScan(ctx context.Context) {
	summary := scanSummary{}

	procs, err := s.procs.List(ctx)
	if err != nil {
		s.l.Errorf("daily scan could not list procedures: %v", err)
		summary.errors++
		s.recordScanSummary(ctx, "MONITORING_DAILY", summary)
		return
	}

	now := time.Now().UTC()
	for _, proc := range procs {
		if !proc.HasExpiry {
			continue
		}
		summary.procedures++

		days := daysUntil(now, proc.ExpiryDate)
		switch {
		case days < 0:
			summary.expired++
			if s.notifyExpiry(ctx, notifications.EventProcedureExpired, proc, days) {
				summary.emailsSent++
			} else {
				summary.errors++
			}
		case matchesAnyThreshold(days):
			summary.expiringSoon++
			if s.notifyExpiry(ctx, notifications.EventProcedureExpiring, proc, days) {
				summary.emailsSent++
			} else {
				summary.errors++
			}
		}
	}

	s.recordScanSummary(ctx, "MONITORING_DAILY", summary)
}

// runHourlyScan re-sends expiry warnings for procedures inside the critical
// 24 hour window. The overlap with the daily scan is intentional: the higher
// urgency window gets higher-frequency reminders.
func (s *Service) runHourlyScan(ctx context.Context) {
	summary := scanSummary{}

	procs, err := s.procs.List(ctx)
	if err != nil {
		s.l.Errorf("hourly scan could not list procedures: %v", err)
		summary.errors++
		s.recordScanSummary(ctx, "MONITORING_HOURLY", summary)
		return
	}

	now := time.Now().UTC()
	for _, proc := range procs {
		if !proc.HasExpiry {
			continue
		}
		summary.procedures++

		until := proc.ExpiryDate.Sub(now)
		if until <= 0 || until > criticalWindow {
			continue
		}
		summary.expiringSoon++
		if s.notifyExpiry(ctx, notifications.EventProcedureExpiring, proc, daysUntil(now, proc.ExpiryDate)) {
			summary.emailsSent++
		} else {
			summary.errors++
		}
	}

	s.recordScanSummary(ctx, "MONITORING_HOURLY", summary)
}

func (s *Service) notifyExpiry(ctx context.Context, eventType notifications.EventType, proc procedures.Procedure, days int) bool {
	ref := proc.Ref()
	recipients := s.resolver.Resolve(ctx, eventType, proc.LOB, &ref)

	res := s.dispatcher.Dispatch(ctx, eventType, recipients, map[string]string{
		"procedureName": proc.Title,
		"lob":           proc.LOB,
		"procedureId":   proc.ID,
		"daysLeft":      fmt.Sprintf("%d", days),
		"expiryDate":    proc.ExpiryDate.Format("2006-01-02"),
	})
	if !res.Success {
		s.l.Errorf("expiry notification failed for %s: %s", proc.ID, res.Message)
	}
	return res.Success
}

// recordScanSummary writes the one MONITORING_* row every scan run leaves
// behind, independent of the per-notification rows the dispatcher wrote.
func (s *Service) recordScanSummary(ctx context.Context, activityType string, summary scanSummary) {
	s.audit.RecordEmail(ctx, activitylog.NewEmailEntry(activityType).
		WithSuccess(summary.errors == 0).
		WithDetail("totalProcedures", fmt.Sprintf("%d", summary.procedures)).
		WithDetail("expired", fmt.Sprintf("%d", summary.expired)).
		WithDetail("expiringSoon", fmt.Sprintf("%d", summary.expiringSoon)).
		WithDetail("emailsSent", fmt.Sprintf("%d", summary.emailsSent)).
		WithDetail("errors", fmt.Sprintf("%d", summary.errors)))
	s.l.Infof("%s: procedures=%d expired=%d expiringSoon=%d sent=%d errors=%d",
		activityType, summary.procedures, summary.expired, summary.expiringSoon, summary.emailsSent, summary.errors)
}

func matchesAnyThreshold(days int) bool {
	for _, t := range warningThresholds {
		if days <= t {
			return true
		}
	}
	return false
}

// daysUntil truncates both sides to whole days, so a procedure expiring
// later today counts as 0 days out.
func daysUntil(now, expiry time.Time) int {
	nowDay := now.Truncate(24 * time.Hour)
	expiryDay := expiry.Truncate(24 * time.Hour)
	return int(expiryDay.Sub(nowDay) / (24 * time.Hour))
}
