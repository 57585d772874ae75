package hubserver

import (
	"net/http"

	"github.com/MinaWilson92/prochub/server/notifications"
)

type procedureUploadedRequest struct {
	Procedure notifications.ProcedureRef   `json:"procedure"`
	Analysis  notifications.AnalysisResult `json:"analysis"`
	Actor     notifications.Actor          `json:"actor"`
}

// handleProcedureUploaded handles POST /notifications/procedure-uploaded.
// The hook result is returned with 200 even on notification failure: the
// UI surfaces it as a warning, never as a blocking error.
func (al *APIListener) handleProcedureUploaded(w http.ResponseWriter, req *http.Request) {
	var r procedureUploadedRequest
	if !al.decode(w, req, &r) {
		return
	}
	result := al.hooks.OnProcedureUploaded(req.Context(), r.Procedure, r.Analysis, r.Actor)
	al.writeJSONResponse(w, http.StatusOK, result)
}

type procedureUpdatedRequest struct {
	Procedure notifications.ProcedureRef `json:"procedure"`
	Actor     notifications.Actor        `json:"actor"`
}

func (al *APIListener) handleProcedureUpdated(w http.ResponseWriter, req *http.Request) {
	var r procedureUpdatedRequest
	if !al.decode(w, req, &r) {
		return
	}
	result := al.hooks.OnProcedureUpdated(req.Context(), r.Procedure, r.Actor)
	al.writeJSONResponse(w, http.StatusOK, result)
}

func (al *APIListener) handleAccessGranted(w http.ResponseWriter, req *http.Request) {
	var change notifications.UserChangeRef
	if !al.decode(w, req, &change) {
		return
	}
	result := al.hooks.OnUserAccessGranted(req.Context(), change)
	al.writeJSONResponse(w, http.StatusOK, result)
}

func (al *APIListener) handleAccessRevoked(w http.ResponseWriter, req *http.Request) {
	var change notifications.UserChangeRef
	if !al.decode(w, req, &change) {
		return
	}
	result := al.hooks.OnUserAccessRevoked(req.Context(), change)
	al.writeJSONResponse(w, http.StatusOK, result)
}

func (al *APIListener) handleRoleUpdated(w http.ResponseWriter, req *http.Request) {
	var change notifications.UserChangeRef
	if !al.decode(w, req, &change) {
		return
	}
	result := al.hooks.OnUserRoleUpdated(req.Context(), change)
	al.writeJSONResponse(w, http.StatusOK, result)
}

type systemActionRequest struct {
	ActionType string              `json:"action_type"`
	Details    map[string]string   `json:"details"`
	Actor      notifications.Actor `json:"actor"`
}

func (al *APIListener) handleSystemAction(w http.ResponseWriter, req *http.Request) {
	var r systemActionRequest
	if !al.decode(w, req, &r) {
		return
	}
	if r.ActionType == "" {
		al.jsonErrorResponse(w, http.StatusBadRequest, "action_type is required")
		return
	}
	result := al.hooks.OnSystemAction(req.Context(), r.ActionType, r.Details, r.Actor)
	al.writeJSONResponse(w, http.StatusOK, result)
}
