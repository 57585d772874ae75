package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/MinaWilson92/prochub/server/activitylog"
	"github.com/MinaWilson92/prochub/share/logger"
)

// LowQualityThreshold is the analyzer score below which an upload triggers an
// additional low-quality notification.
const LowQualityThreshold = 60

// RecipientSource and Sender are the pieces of the pipeline the hooks
// compose. Satisfied by Resolver and Dispatcher.
type RecipientSource interface {
	Resolve(ctx context.Context, eventType EventType, lobScope string, subject *ProcedureRef) []string
}

type Sender interface {
	Dispatch(ctx context.Context, notificationType EventType, recipients []string, vars map[string]string) DispatchResult
}

// UserAudit records business-activity rows, one per affected side.
type UserAudit interface {
	RecordUser(ctx context.Context, e *activitylog.UserEntry)
}

// HookResult is what every hook reports back to its (UI) caller. Hooks never
// panic or return errors: a notification failure is surfaced as a warning
// alongside the primary action, never as a blocking error.
type HookResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type AnalysisResult struct {
	Score float64 `json:"score"`
}

// Hooks is the fan-out surface the rest of the application calls when a
// business event happens.
type Hooks struct {
	resolver   RecipientSource
	dispatcher Sender
	userAudit  UserAudit
	l          *logger.Logger
}

func NewHooks(resolver RecipientSource, dispatcher Sender, userAudit UserAudit, l *logger.Logger) *Hooks {
	return &Hooks{
		resolver:   resolver,
		dispatcher: dispatcher,
		userAudit:  userAudit,
		l:          l,
	}
}

// OnProcedureUploaded notifies the procedure's standing recipients about a
// new upload, triggers an additional low-quality notification when the
// analyzer score is below the threshold, and records the actor's action.
// Two audit rows minimum per upload: the business activity and the email
// activity written by the dispatcher.
func (h *Hooks) OnProcedureUploaded(ctx context.Context, proc ProcedureRef, analysis AnalysisResult, actor Actor) (result HookResult) {
	defer h.recoverInto(&result, "procedure-uploaded hook")

	vars := map[string]string{
		"procedureName": proc.Name,
		"ownerName":     proc.PrimaryOwner,
		"uploadDate":    time.Now().UTC().Format("2006-01-02"),
		"qualityScore":  fmt.Sprintf("%.0f", analysis.Score),
		"lob":           proc.LOB,
		"procedureId":   proc.ID,
		"performedBy":   actor.ID,
	}

	recipients := h.resolver.Resolve(ctx, EventProcedureUploaded, proc.LOB, &proc)
	res := h.dispatcher.Dispatch(ctx, EventProcedureUploaded, recipients, vars)

	if analysis.Score < LowQualityThreshold {
		lowRecipients := h.resolver.Resolve(ctx, EventLowQualityScore, proc.LOB, &proc)
		lowRes := h.dispatcher.Dispatch(ctx, EventLowQualityScore, lowRecipients, vars)
		if !lowRes.Success {
			h.l.Errorf("low-quality notification failed for %s: %s", proc.ID, lowRes.Message)
		}
	}

	h.userAudit.RecordUser(ctx, activitylog.NewUserEntry(actor.ID, "PROCEDURE_UPLOADED").
		WithUserName(actor.Name).
		WithDetail("procedureId", proc.ID).
		WithDetail("procedureName", proc.Name).
		WithDetail("lob", proc.LOB).
		WithDetail("qualityScore", vars["qualityScore"]).
		WithStatus(statusOf(res.Success)))

	return HookResult{Success: res.Success, Message: res.Message}
}

// OnProcedureUpdated notifies the procedure's standing recipients about an
// update to an existing procedure.
func (h *Hooks) OnProcedureUpdated(ctx context.Context, proc ProcedureRef, actor Actor) (result HookResult) {
	defer h.recoverInto(&result, "procedure-updated hook")

	vars := map[string]string{
		"procedureName": proc.Name,
		"updatedBy":     actor.Name,
		"updateDate":    time.Now().UTC().Format("2006-01-02"),
		"lob":           proc.LOB,
		"procedureId":   proc.ID,
		"performedBy":   actor.ID,
	}

	recipients := h.resolver.Resolve(ctx, EventProcedureUpdated, proc.LOB, &proc)
	res := h.dispatcher.Dispatch(ctx, EventProcedureUpdated, recipients, vars)

	h.userAudit.RecordUser(ctx, activitylog.NewUserEntry(actor.ID, "PROCEDURE_UPDATED").
		WithUserName(actor.Name).
		WithDetail("procedureId", proc.ID).
		WithDetail("procedureName", proc.Name).
		WithStatus(statusOf(res.Success)))

	return HookResult{Success: res.Success, Message: res.Message}
}

// OnUserAccessGranted notifies the access-management recipients and the user
// who was granted access.
func (h *Hooks) OnUserAccessGranted(ctx context.Context, change UserChangeRef) (result HookResult) {
	defer h.recoverInto(&result, "access-granted hook")
	return h.userChange(ctx, EventAccessGranted, "ACCESS_GRANTED", change, true)
}

// OnUserAccessRevoked notifies the access-management recipients. The revoked
// user is not added to the recipients here; standing custom groups already
// include them where that is wanted.
func (h *Hooks) OnUserAccessRevoked(ctx context.Context, change UserChangeRef) (result HookResult) {
	defer h.recoverInto(&result, "access-revoked hook")
	return h.userChange(ctx, EventAccessRevoked, "ACCESS_REVOKED", change, false)
}

// OnUserRoleUpdated notifies the access-management recipients and the user
// whose role changed.
func (h *Hooks) OnUserRoleUpdated(ctx context.Context, change UserChangeRef) (result HookResult) {
	defer h.recoverInto(&result, "role-updated hook")
	return h.userChange(ctx, EventRoleUpdated, "ROLE_UPDATED", change, true)
}

func (h *Hooks) userChange(ctx context.Context, eventType EventType, activityType string, change UserChangeRef, includeTarget bool) HookResult {
	vars := map[string]string{
		"targetUserName": change.TargetUserName,
		"oldValue":       change.OldValue,
		"newValue":       change.NewValue,
		"reason":         change.Reason,
		"performedBy":    change.PerformedBy,
		"userId":         change.TargetUserID,
	}

	recipients := h.resolver.Resolve(ctx, eventType, LOBAll, nil)
	if includeTarget {
		recipients = appendUnique(recipients, change.TargetUserEmail)
	}

	res := h.dispatcher.Dispatch(ctx, eventType, recipients, vars)

	// Both sides of the change keep an audit trail: one row attributed to
	// the actor, one to the target user.
	h.userAudit.RecordUser(ctx, activitylog.NewUserEntry(change.PerformedBy, activityType).
		WithDetail("targetUserId", change.TargetUserID).
		WithDetail("targetUserName", change.TargetUserName).
		WithDetail("oldValue", change.OldValue).
		WithDetail("newValue", change.NewValue).
		WithDetail("reason", change.Reason).
		WithStatus(statusOf(res.Success)))
	h.userAudit.RecordUser(ctx, activitylog.NewUserEntry(change.TargetUserID, activityType).
		WithUserName(change.TargetUserName).
		WithDetail("performedBy", change.PerformedBy).
		WithDetail("oldValue", change.OldValue).
		WithDetail("newValue", change.NewValue).
		WithDetail("reason", change.Reason).
		WithStatus(statusOf(res.Success)))

	return HookResult{Success: res.Success, Message: res.Message}
}

// criticalSystemActions are the only system actions that are emailed; the
// rest are audit-only.
var criticalSystemActions = map[string]bool{
	"configuration-change": true,
	"bulk-import":          true,
}

// OnSystemAction records the action; actions on the critical allow-list are
// additionally emailed to the standing recipients.
func (h *Hooks) OnSystemAction(ctx context.Context, actionType string, details map[string]string, actor Actor) (result HookResult) {
	defer h.recoverInto(&result, "system-action hook")

	entry := activitylog.NewUserEntry(actor.ID, "SYSTEM_"+actionType).
		WithUserName(actor.Name).
		WithStatus("SUCCESS")
	for k, v := range details {
		entry.WithDetail(k, v)
	}
	h.userAudit.RecordUser(ctx, entry)

	if !criticalSystemActions[actionType] {
		return HookResult{Success: true, Message: fmt.Sprintf("recorded system action %s", actionType)}
	}

	vars := map[string]string{
		"actionType":  actionType,
		"performedBy": actor.Name,
		"details":     flattenDetails(details),
	}
	recipients := h.resolver.Resolve(ctx, EventSystemAction, LOBAll, nil)
	res := h.dispatcher.Dispatch(ctx, EventSystemAction, recipients, vars)
	return HookResult{Success: res.Success, Message: res.Message}
}

func (h *Hooks) recoverInto(result *HookResult, what string) {
	if r := recover(); r != nil {
		h.l.Errorf("recovered in %s: %v", what, r)
		*result = HookResult{Success: false, Message: fmt.Sprintf("internal error in %s", what)}
	}
}

// appendUnique returns a new slice; the resolved base set is never mutated.
func appendUnique(recipients []string, address string) []string {
	out := make([]string, 0, len(recipients)+1)
	out = append(out, recipients...)
	if address == "" {
		return out
	}
	for _, r := range out {
		if r == address {
			return out
		}
	}
	return append(out, address)
}

func statusOf(success bool) string {
	if success {
		return "SUCCESS"
	}
	return "FAILED"
}

func flattenDetails(details map[string]string) string {
	s := ""
	for k, v := range details {
		if s != "" {
			s += "; "
		}
		s += k + "=" + v
	}
	return s
}
