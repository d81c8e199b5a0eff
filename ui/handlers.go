package ui

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"datadeck/domain/core"
	"datadeck/internal/errors"
	"datadeck/internal/insight"
)

// userIDHeader carries the caller identity. Authentication itself is an
// external collaborator; this layer only forwards the identity it was given.
const userIDHeader = "X-User-ID"

// handleUpload accepts a single multipart file and runs the upload pipeline
func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadBytes)
	if err := r.ParseMultipartForm(a.maxUploadBytes); err != nil {
		a.writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", "expected a multipart file upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		a.writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		a.writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", "failed to read uploaded file")
		return
	}

	report, err := a.pipeline.ProcessUpload(r.Context(), userID, header.Filename, data)
	if err != nil {
		a.writeAppError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "File processed successfully",
		"counts":  report,
	})
}

// handleDashboard returns the analytics payload for the caller's dataset.
// ?insights=0 skips the insight collaborator; ?format=html renders the
// insight emphasis markers server-side.
func (a *App) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}

	withInsights := r.URL.Query().Get("insights") != "0"
	result, err := a.queries.Dashboard(r.Context(), userID, withInsights)
	if err != nil {
		a.writeAppError(w, err)
		return
	}

	if result.Analytics != nil && r.URL.Query().Get("format") == "html" {
		result.Analytics.AIInsights = insight.RenderAllHTML(result.Analytics.AIInsights)
	}
	a.writeJSON(w, http.StatusOK, result)
}

// handleTable returns one page of the caller's dataset
func (a *App) handleTable(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.userID(w, r)
	if !ok {
		return
	}

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", 50)

	result, err := a.queries.Table(r.Context(), userID, page, pageSize)
	if err != nil {
		a.writeAppError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, result)
}

// handleHealth is the liveness endpoint
func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "Server is running",
	})
}

// userID extracts and validates the caller identity header
func (a *App) userID(w http.ResponseWriter, r *http.Request) (core.UserID, bool) {
	userID, err := core.ParseUserID(r.Header.Get(userIDHeader))
	if err != nil {
		a.writeError(w, http.StatusBadRequest, "MISSING_USER", "missing "+userIDHeader+" header")
		return "", false
	}
	return userID, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// writeAppError maps core error codes onto HTTP statuses
func (a *App) writeAppError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.CodeUnsupportedFormat, errors.CodeParseError, errors.CodeInvalidPage:
		status = http.StatusBadRequest
	case errors.CodeProcessingInProgress:
		status = http.StatusConflict
	case errors.CodeNotFound:
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		a.log.Error("[HTTP] %s: %v", code, err)
		a.writeError(w, status, code, "internal server error")
		return
	}
	a.writeError(w, status, code, err.Error())
}

func (a *App) writeError(w http.ResponseWriter, status int, code, message string) {
	a.writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}

func (a *App) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.log.Error("[HTTP] failed to encode response: %v", err)
	}
}
