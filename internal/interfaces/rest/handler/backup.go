package rest_handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/vulpemventures/seedcheck/internal/core/application"
)

type backup struct {
	appSvc *application.BackupService
}

func newBackupHandler(appSvc *application.BackupService) *backup {
	return &backup{appSvc}
}

func (b *backup) GenSeed(w http.ResponseWriter, r *http.Request) {
	mnemonic, err := b.appSvc.GenSeed(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, genSeedResponse{mnemonic})
}

func (b *backup) StartValidation(w http.ResponseWriter, r *http.Request) {
	var req mnemonicRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{err.Error()})
		return
	}

	session, err := b.appSvc.StartValidation(r.Context(), parseMnemonic(req.Mnemonic))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, parseSessionInfo(session))
}

func (b *backup) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := b.appSvc.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, parseSessionInfo(session))
}

func (b *backup) PlaceWord(w http.ResponseWriter, r *http.Request) {
	var req placeWordRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{err.Error()})
		return
	}

	session, err := b.appSvc.PlaceWord(
		r.Context(), mux.Vars(r)["id"], req.Position, req.Word, req.Group,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, parseSessionInfo(session))
}

func (b *backup) UnplaceWord(w http.ResponseWriter, r *http.Request) {
	var req unplaceWordRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{err.Error()})
		return
	}

	session, err := b.appSvc.UnplaceWord(r.Context(), mux.Vars(r)["id"], req.Group)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, parseSessionInfo(session))
}

func (b *backup) ResetSession(w http.ResponseWriter, r *http.Request) {
	session, err := b.appSvc.ResetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, parseSessionInfo(session))
}

func (b *backup) AbandonSession(w http.ResponseWriter, r *http.Request) {
	if err := b.appSvc.AbandonSession(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *backup) GetBackupStatus(w http.ResponseWriter, r *http.Request) {
	var req mnemonicRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{err.Error()})
		return
	}

	status, err := b.appSvc.GetBackupStatus(r.Context(), parseMnemonic(req.Mnemonic))
	if err != nil {
		writeError(w, err)
		return
	}

	res := backupStatusResponse{
		Fingerprint: status.Fingerprint,
		Verified:    status.Verified,
	}
	if status.Backup != nil {
		info := parseBackupInfo(*status.Backup)
		res.Backup = &info
	}
	writeJSON(w, http.StatusOK, res)
}

func (b *backup) ListBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := b.appSvc.ListBackups(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	list := make([]backupResponse, 0, len(backups))
	for _, bk := range backups {
		list = append(list, parseBackupInfo(bk))
	}
	writeJSON(w, http.StatusOK, listBackupsResponse{list})
}
