package monitoring

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/MinaWilson92/prochub/server/notifications"
)

const digestWindow = 7 * 24 * time.Hour

// RunWeeklyDigest aggregates the last week of email activity plus the
// current procedure counts into one HTML summary for the admin list. It is
// informational only and never re-triggers per-procedure notifications.
// Exported so the digest can also be run outside its schedule.
func (s *Service) RunWeeklyDigest(ctx context.Context) StartResult {
	summary := scanSummary{}
	now := time.Now().UTC()

	entries, err := s.activity.EmailEntriesSince(ctx, now.Add(-digestWindow))
	if err != nil {
		s.l.Errorf("weekly digest could not read activity log: %v", err)
		summary.errors++
	}

	procs, err := s.procs.List(ctx)
	if err != nil {
		s.l.Errorf("weekly digest could not list procedures: %v", err)
		summary.errors++
	}

	sent, failed := 0, 0
	byType := map[string]int{}
	for _, e := range entries {
		if strings.HasPrefix(e.ActivityType, "MONITORING_") {
			continue
		}
		byType[e.ActivityType]++
		if e.Success {
			sent++
		} else {
			failed++
		}
	}

	byLOB := map[string]int{}
	expired, expiringSoon := 0, 0
	for _, p := range procs {
		summary.procedures++
		byLOB[p.LOB]++
		if !p.HasExpiry {
			continue
		}
		days := daysUntil(now, p.ExpiryDate)
		switch {
		case days < 0:
			expired++
		case matchesAnyThreshold(days):
			expiringSoon++
		}
	}

	var b strings.Builder
	b.WriteString("<h2>Procedures Hub Weekly Digest</h2>")
	fmt.Fprintf(&b, "<p>Week ending %s</p>", now.Format("2006-01-02"))

	b.WriteString("<h3>Notifications</h3><table border=\"1\"><tr><th>Type</th><th>Count</th></tr>")
	for _, t := range sortedKeys(byType) {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td></tr>", html.EscapeString(t), byType[t])
	}
	fmt.Fprintf(&b, "<tr><td><b>Sent</b></td><td>%d</td></tr><tr><td><b>Failed</b></td><td>%d</td></tr></table>", sent, failed)

	b.WriteString("<h3>Procedures</h3><table border=\"1\"><tr><th>LOB</th><th>Count</th></tr>")
	for _, lob := range sortedKeys(byLOB) {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td></tr>", html.EscapeString(lob), byLOB[lob])
	}
	fmt.Fprintf(&b, "</table><p>Expired: %d &mdash; Expiring soon: %d &mdash; Total: %d</p>",
		expired, expiringSoon, summary.procedures)

	// The resolver always includes active admins, which is exactly the
	// digest audience; the test-address fallback applies when none exist.
	recipients := s.resolver.Resolve(ctx, notifications.EventWeeklyDigest, notifications.LOBAll, nil)
	res := s.dispatcher.Dispatch(ctx, notifications.EventWeeklyDigest, recipients, map[string]string{
		"digestBody": b.String(),
	})
	if res.Success {
		summary.emailsSent++
	} else {
		summary.errors++
	}
	summary.expired = expired
	summary.expiringSoon = expiringSoon

	s.recordScanSummary(ctx, "MONITORING_WEEKLY", summary)

	if summary.errors > 0 {
		return StartResult{Success: false, Message: fmt.Sprintf("digest completed with %d error(s)", summary.errors)}
	}
	return StartResult{Success: true, Message: "digest sent"}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
