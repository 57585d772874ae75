package hubserver

import (
	"net/http"
)

// handleMonitoringStart handles POST /monitoring/start.
func (al *APIListener) handleMonitoringStart(w http.ResponseWriter, _ *http.Request) {
	al.writeJSONResponse(w, http.StatusOK, al.scanner.Start())
}

func (al *APIListener) handleMonitoringStop(w http.ResponseWriter, _ *http.Request) {
	al.writeJSONResponse(w, http.StatusOK, al.scanner.Stop())
}

func (al *APIListener) handleMonitoringStatus(w http.ResponseWriter, _ *http.Request) {
	al.writeJSONResponse(w, http.StatusOK, al.scanner.Status())
}

func (al *APIListener) handleRunDigest(w http.ResponseWriter, req *http.Request) {
	al.writeJSONResponse(w, http.StatusOK, al.scanner.RunWeeklyDigest(req.Context()))
}

func (al *APIListener) handleHarnessRun(w http.ResponseWriter, req *http.Request) {
	al.writeJSONResponse(w, http.StatusOK, al.runner.Run(req.Context()))
}
