// Package activitylog appends audit rows to the hub's activity collections.
// The list store is the system of record; a local sqlite journal keeps a copy
// of every row so that evidence survives a store outage.
package activitylog

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MinaWilson92/prochub/server/listapi"
	"github.com/MinaWilson92/prochub/share/logger"
)

const (
	collectionEmailLog = "EmailActivityLog"
	collectionUserLog  = "UserActivityLog"

	recipientsSeparator = ";"
)

// ListStore is the slice of the list-store client the log needs.
type ListStore interface {
	AddItem(ctx context.Context, collection string, fields map[string]interface{}) error
	GetItems(ctx context.Context, collection string) ([]listapi.Item, error)
}

type Log struct {
	store   ListStore
	journal *Journal
	l       *logger.Logger
}

// New builds the activity log. journal may be nil; rows then exist only in
// the list store.
func New(store ListStore, journal *Journal, l *logger.Logger) *Log {
	return &Log{store: store, journal: journal, l: l}
}

// RecordEmail appends an email-activity row. Persistence failures are
// reported to the service log only: an audit write must never fail the
// operation it records.
func (a *Log) RecordEmail(ctx context.Context, e *EmailEntry) {
	if a == nil || e == nil {
		return
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	spooled := false
	err := a.store.AddItem(ctx, collectionEmailLog, map[string]interface{}{
		"Title":              e.ActivityType,
		"Recipients":         strings.Join(e.Recipients, recipientsSeparator),
		"Success":            e.Success,
		"Details":            marshalDetails(e.Details),
		"Timestamp":          e.Timestamp.Format(time.RFC3339),
		"PerformedBy":        e.PerformedBy,
		"RelatedProcedureID": e.RelatedProcedureID,
		"RelatedUserID":      e.RelatedUserID,
	})
	if err != nil {
		spooled = true
		a.l.Errorf("could not save email activity entry: %v", err)
	}

	if a.journal != nil {
		if jerr := a.journal.SaveEmailEntry(ctx, e, spooled); jerr != nil {
			a.l.Errorf("could not journal email activity entry: %v", jerr)
		}
	}
}

// RecordUser appends a user-activity row, with the same never-fail policy.
func (a *Log) RecordUser(ctx context.Context, e *UserEntry) {
	if a == nil || e == nil {
		return
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	spooled := false
	err := a.store.AddItem(ctx, collectionUserLog, map[string]interface{}{
		"UserID":          e.UserID,
		"UserName":        e.UserName,
		"ActivityType":    e.ActivityType,
		"ActivityDetails": marshalDetails(e.Details),
		"Timestamp":       e.Timestamp.Format(time.RFC3339),
		"Status":          e.Status,
	})
	if err != nil {
		spooled = true
		a.l.Errorf("could not save user activity entry: %v", err)
	}

	if a.journal != nil {
		if jerr := a.journal.SaveUserEntry(ctx, e, spooled); jerr != nil {
			a.l.Errorf("could not journal user activity entry: %v", jerr)
		}
	}
}

// EmailEntriesSince returns the email-activity rows written at or after the
// given time, for digest aggregation. The journal answers when the list store
// is unreachable.
func (a *Log) EmailEntriesSince(ctx context.Context, since time.Time) ([]EmailEntry, error) {
	items, err := a.store.GetItems(ctx, collectionEmailLog)
	if err != nil {
		a.l.Errorf("could not read email activity from the store, using journal: %v", err)
		if a.journal == nil {
			return nil, err
		}
		return a.journal.EmailEntriesSince(ctx, since)
	}

	var entries []EmailEntry
	for _, item := range items {
		ts, ok := item.Time("Timestamp")
		if !ok || ts.Before(since) {
			continue
		}
		entries = append(entries, EmailEntry{
			ActivityType:       item.String("Title"),
			Recipients:         splitRecipients(item.String("Recipients")),
			Success:            item.Bool("Success", false),
			Details:            unmarshalDetails(item.String("Details")),
			Timestamp:          ts,
			PerformedBy:        item.String("PerformedBy"),
			RelatedProcedureID: item.String("RelatedProcedureID"),
			RelatedUserID:      item.String("RelatedUserID"),
		})
	}
	return entries, nil
}

func marshalDetails(details map[string]string) string {
	if len(details) == 0 {
		return ""
	}
	b, err := json.Marshal(details)
	if err != nil {
		return ""
	}
	return string(b)
}

func unmarshalDetails(s string) map[string]string {
	if s == "" {
		return nil
	}
	var details map[string]string
	if err := json.Unmarshal([]byte(s), &details); err != nil {
		return nil
	}
	return details
}

func splitRecipients(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, recipientsSeparator)
}
