// Package notifications decides who is told about events in the procedures
// hub, renders the message, hands it to the mail transport and records the
// attempt. Nothing in this package returns an error across its public
// surface: notification delivery is a side channel and must never fail the
// business operation it is attached to.
package notifications

import (
	"strings"
	"time"
)

// EventType is the escalation-type key shared by recipient configuration and
// mail templates.
type EventType string

const (
	EventProcedureUploaded EventType = "new-procedure-uploaded"
	EventProcedureUpdated  EventType = "procedure-updated"
	EventLowQualityScore   EventType = "low-quality-score"
	EventProcedureExpiring EventType = "procedure-expiring"
	EventProcedureExpired  EventType = "procedure-expired"
	EventAccessGranted     EventType = "user-access-granted"
	EventAccessRevoked     EventType = "user-access-revoked"
	EventRoleUpdated       EventType = "user-access-role-updated"
	EventSystemAction      EventType = "system-notification"
	EventWeeklyDigest      EventType = "weekly-digest"
)

// LOBAll addresses events that are not scoped to a single line of business.
// Global heads are configured per concrete LOB and therefore never match it.
const LOBAll = "All"

// IsAccessEvent reports whether the event belongs to the access-management
// category, which pulls in custom-group recipients.
func (t EventType) IsAccessEvent() bool {
	return strings.Contains(string(t), "access")
}

// ProcedureRef is the slice of a procedure record the notification core
// reads. The caller owns it.
type ProcedureRef struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	LOB                 string    `json:"lob"`
	PrimaryOwner        string    `json:"primary_owner"`
	PrimaryOwnerEmail   string    `json:"primary_owner_email"`
	SecondaryOwnerEmail string    `json:"secondary_owner_email"`
	ExpiryDate          time.Time `json:"expiry_date"`
	QualityScore        float64   `json:"quality_score"`
}

type UserAction string

const (
	UserActionGranted     UserAction = "GRANTED"
	UserActionRevoked     UserAction = "REVOKED"
	UserActionRoleUpdated UserAction = "ROLE_UPDATED"
)

type UserChangeRef struct {
	ActionType      UserAction `json:"action_type"`
	TargetUserID    string     `json:"target_user_id"`
	TargetUserName  string     `json:"target_user_name"`
	TargetUserEmail string     `json:"target_user_email"`
	PerformedBy     string     `json:"performed_by"`
	OldValue        string     `json:"old_value"`
	NewValue        string     `json:"new_value"`
	Reason          string     `json:"reason"`
	Timestamp       time.Time  `json:"timestamp"`
}
