// Package hubserver exposes the notification core to the intranet UI. The
// hooks are invoked from UI event handlers over this HTTP surface; the
// scanner and harness get an administrative control point.
package hubserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/MinaWilson92/prochub/server/harness"
	"github.com/MinaWilson92/prochub/server/monitoring"
	"github.com/MinaWilson92/prochub/server/notifications"
	"github.com/MinaWilson92/prochub/share/logger"
)

type APIConfig struct {
	Address     string   `mapstructure:"address"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type APIListener struct {
	cfg     APIConfig
	hooks   *notifications.Hooks
	scanner *monitoring.Service
	runner  *harness.Runner
	l       *logger.Logger

	srv *http.Server
}

func NewAPIListener(cfg APIConfig, hooks *notifications.Hooks, scanner *monitoring.Service, runner *harness.Runner, l *logger.Logger) *APIListener {
	return &APIListener{
		cfg:     cfg,
		hooks:   hooks,
		scanner: scanner,
		runner:  runner,
		l:       l,
	}
}

func (al *APIListener) router() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/notifications/procedure-uploaded", al.handleProcedureUploaded).Methods(http.MethodPost)
	api.HandleFunc("/notifications/procedure-updated", al.handleProcedureUpdated).Methods(http.MethodPost)
	api.HandleFunc("/notifications/access-granted", al.handleAccessGranted).Methods(http.MethodPost)
	api.HandleFunc("/notifications/access-revoked", al.handleAccessRevoked).Methods(http.MethodPost)
	api.HandleFunc("/notifications/role-updated", al.handleRoleUpdated).Methods(http.MethodPost)
	api.HandleFunc("/notifications/system-action", al.handleSystemAction).Methods(http.MethodPost)

	api.HandleFunc("/monitoring/start", al.handleMonitoringStart).Methods(http.MethodPost)
	api.HandleFunc("/monitoring/stop", al.handleMonitoringStop).Methods(http.MethodPost)
	api.HandleFunc("/monitoring/status", al.handleMonitoringStatus).Methods(http.MethodGet)
	api.HandleFunc("/monitoring/digest", al.handleRunDigest).Methods(http.MethodPost)

	api.HandleFunc("/harness/run", al.handleHarnessRun).Methods(http.MethodPost)

	api.HandleFunc("/healthz", al.handleHealth).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: al.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(r)
}

func (al *APIListener) Start() error {
	al.srv = &http.Server{
		Addr:              al.cfg.Address,
		Handler:           al.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	al.l.Infof("API listening on %s", al.cfg.Address)
	err := al.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (al *APIListener) Shutdown(ctx context.Context) error {
	if al.srv == nil {
		return nil
	}
	return al.srv.Shutdown(ctx)
}

func (al *APIListener) writeJSONResponse(w http.ResponseWriter, statusCode int, response interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		al.l.Errorf("error writing response: %v", err)
	}
}

type errorPayload struct {
	Error string `json:"error"`
}

func (al *APIListener) jsonErrorResponse(w http.ResponseWriter, statusCode int, msg string) {
	al.writeJSONResponse(w, statusCode, errorPayload{Error: msg})
}

func (al *APIListener) decode(w http.ResponseWriter, req *http.Request, into interface{}) bool {
	if err := json.NewDecoder(req.Body).Decode(into); err != nil {
		al.jsonErrorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (al *APIListener) handleHealth(w http.ResponseWriter, _ *http.Request) {
	al.writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
