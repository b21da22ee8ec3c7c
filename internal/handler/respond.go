package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dukerupert/sharearecipe/internal/auth"
	"github.com/dukerupert/sharearecipe/internal/docstore"
	"github.com/dukerupert/sharearecipe/internal/imagecodec"
	"github.com/dukerupert/sharearecipe/internal/social"
)

const maxBodyBytes = 8 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

// statusFor maps a service error onto an HTTP status and a message that is
// safe to show the caller.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, social.ErrNotAuthor), errors.Is(err, social.ErrNotOwner):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, social.ErrEmptyComment), errors.Is(err, social.ErrMissingTitle),
		errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrInvalidEmail):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, auth.ErrEmailInUse):
		return http.StatusConflict, err.Error()
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, imagecodec.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, err.Error()
	}
	return http.StatusInternalServerError, ""
}

// writeServiceError writes err using statusFor. Unexpected errors are logged
// and reported with fallback.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error, fallback string) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(fallback, "error", err)
		msg = fallback
	}
	writeError(w, status, msg)
}

// normalizeImage re-encodes an optional uploaded image. Nil and blank
// images come back nil.
func normalizeImage(encoded *string) (*string, error) {
	if encoded == nil {
		return nil, nil
	}
	out, err := imagecodec.Normalize(*encoded)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return &out, nil
}

func writeImageError(w http.ResponseWriter, err error) {
	if errors.Is(err, imagecodec.ErrTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, "invalid image")
}

func timeAgo(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
