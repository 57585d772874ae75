package activitylog

import (
	"time"
)

// EmailEntry is one row of the email activity trail: the record of a single
// notification attempt, successful or not. Entries are append-only and never
// mutated after being recorded.
type EmailEntry struct {
	ID                 string
	ActivityType       string
	Recipients         []string
	Success            bool
	Details            map[string]string
	Timestamp          time.Time
	PerformedBy        string
	RelatedProcedureID string
	RelatedUserID      string
}

func NewEmailEntry(activityType string) *EmailEntry {
	return &EmailEntry{
		ActivityType: activityType,
		Timestamp:    time.Now().UTC(),
	}
}

func (e *EmailEntry) WithRecipients(recipients []string) *EmailEntry {
	e.Recipients = recipients
	return e
}

func (e *EmailEntry) WithSuccess(success bool) *EmailEntry {
	e.Success = success
	return e
}

func (e *EmailEntry) WithDetail(key, value string) *EmailEntry {
	if e.Details == nil {
		e.Details = map[string]string{}
	}
	e.Details[key] = value
	return e
}

func (e *EmailEntry) WithPerformedBy(who string) *EmailEntry {
	e.PerformedBy = who
	return e
}

func (e *EmailEntry) WithProcedure(id string) *EmailEntry {
	e.RelatedProcedureID = id
	return e
}

func (e *EmailEntry) WithUser(id string) *EmailEntry {
	e.RelatedUserID = id
	return e
}

// UserEntry is one row of the user activity trail.
type UserEntry struct {
	ID           string
	UserID       string
	UserName     string
	ActivityType string
	Details      map[string]string
	Timestamp    time.Time
	Status       string
}

func NewUserEntry(userID, activityType string) *UserEntry {
	return &UserEntry{
		UserID:       userID,
		ActivityType: activityType,
		Timestamp:    time.Now().UTC(),
	}
}

func (e *UserEntry) WithUserName(name string) *UserEntry {
	e.UserName = name
	return e
}

func (e *UserEntry) WithDetail(key, value string) *UserEntry {
	if e.Details == nil {
		e.Details = map[string]string{}
	}
	e.Details[key] = value
	return e
}

func (e *UserEntry) WithStatus(status string) *UserEntry {
	e.Status = status
	return e
}
