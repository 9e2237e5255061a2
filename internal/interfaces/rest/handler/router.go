package rest_handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/vulpemventures/seedcheck/internal/core/application"
)

// NewRouter registers the routes of the backup service and of the events
// stream. Streams are closed when chClose gets closed.
func NewRouter(
	appSvc *application.BackupService, chClose chan struct{},
) *mux.Router {
	backupHandler := newBackupHandler(appSvc)
	eventsHandler := newEventsHandler(newEventHub(appSvc), chClose)

	r := mux.NewRouter()
	r.Use(loggingMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/seed", backupHandler.GenSeed).Methods(http.MethodPost)
	v1.HandleFunc("/sessions", backupHandler.StartValidation).Methods(http.MethodPost)
	v1.HandleFunc("/sessions/{id}", backupHandler.GetSession).Methods(http.MethodGet)
	v1.HandleFunc("/sessions/{id}", backupHandler.AbandonSession).Methods(http.MethodDelete)
	v1.HandleFunc("/sessions/{id}/place", backupHandler.PlaceWord).Methods(http.MethodPost)
	v1.HandleFunc("/sessions/{id}/unplace", backupHandler.UnplaceWord).Methods(http.MethodPost)
	v1.HandleFunc("/sessions/{id}/reset", backupHandler.ResetSession).Methods(http.MethodPost)
	v1.HandleFunc("/backups", backupHandler.ListBackups).Methods(http.MethodGet)
	v1.HandleFunc("/backups/status", backupHandler.GetBackupStatus).Methods(http.MethodPost)
	v1.HandleFunc("/events", eventsHandler.Stream).Methods(http.MethodGet)

	return r
}
