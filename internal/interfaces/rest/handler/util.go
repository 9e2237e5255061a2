package rest_handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/vulpemventures/seedcheck/internal/core/application"
	"github.com/vulpemventures/seedcheck/internal/core/domain"
	"github.com/vulpemventures/seedcheck/pkg/mnemonic"
)

var (
	badRequestErrors = []error{
		application.ErrMissingMnemonic,
		application.ErrInvalidMnemonic,
		domain.ErrInvalidGroup,
		domain.ErrPhraseMissingWords,
		domain.ErrPhraseInvalidWord,
		domain.ErrInvalidPhraseLength,
		domain.ErrInvalidWordGroupSize,
	}
	conflictErrors = []error{
		domain.ErrUnknownChip,
		domain.ErrGroupNotCompleted,
	}
	notFoundErrors = []error{
		domain.ErrSessionNotFound,
		domain.ErrBackupNotFound,
	}
)

type errorResponse struct {
	Error string `json:"error"`
}

func httpStatus(err error) int {
	for _, e := range notFoundErrors {
		if errors.Is(err, e) {
			return http.StatusNotFound
		}
	}
	for _, e := range conflictErrors {
		if errors.Is(err, e) {
			return http.StatusConflict
		}
	}
	for _, e := range badRequestErrors {
		if errors.Is(err, e) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("rest: failed to encode response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := httpStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("rest: internal error")
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{msg})
}

func decodeBody(r *http.Request, body interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(body); err != nil {
		return fmt.Errorf("invalid request body: %s", err)
	}
	return nil
}

func parseMnemonic(str string) []string {
	if len(strings.TrimSpace(str)) <= 0 {
		return nil
	}
	return mnemonic.ParseMnemonic(str)
}

func parseSessionInfo(info *application.SessionInfo) sessionResponse {
	groups := make([]groupResponse, 0, len(info.Groups))
	for _, g := range info.Groups {
		slots := make([]slotResponse, 0, len(g.Slots))
		for _, s := range g.Slots {
			slots = append(slots, slotResponse{
				Kind:     s.Kind,
				Position: s.Position,
				Word:     s.Word,
			})
		}
		groups = append(groups, groupResponse{
			Index:     g.Index,
			Completed: g.Completed,
			Slots:     slots,
		})
	}

	chips := make([]chipResponse, 0, len(info.Chips))
	for _, c := range info.Chips {
		chips = append(chips, chipResponse{Position: c.Position, Word: c.Word})
	}

	return sessionResponse{
		ID:        info.ID,
		Step:      info.Step,
		Outcome:   info.Outcome,
		Attempt:   info.Attempt,
		GroupSize: info.GroupSize,
		Groups:    groups,
		Chips:     chips,
		CreatedAt: info.CreatedAt,
		UpdatedAt: info.UpdatedAt,
	}
}

func parseBackupInfo(b application.BackupInfo) backupResponse {
	return backupResponse{
		Fingerprint:    b.Fingerprint,
		WordCount:      b.WordCount,
		Verified:       b.Verified,
		Attempts:       b.Attempts,
		FailedAttempts: b.FailedAttempts,
		CreatedAt:      b.CreatedAt,
		LastAttemptAt:  b.LastAttemptAt,
		VerifiedAt:     b.VerifiedAt,
	}
}
