package http

import (
	"encoding/json"
	"net/http"

	"bankdash/internal/log"
	"bankdash/internal/theme"
)

// CodeInvalidTheme is returned for a theme other than light or dark.
const CodeInvalidTheme = "INVALID_THEME"

type themeBody struct {
	Theme string `json:"theme"`
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, themeBody{Theme: s.themes.Current().String()})
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var body themeBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body", CodeInvalidTheme)
		return
	}
	t, err := theme.Parse(body.Theme)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Theme must be light or dark", CodeInvalidTheme)
		return
	}
	if err := s.themes.Set(r.Context(), t); err != nil {
		logRequestError(r.Context(), "Theme update failed", err, log.ComponentTheme, log.OpToggle)
		writeJSONError(w, http.StatusInternalServerError, "Failed to save theme", "THEME_SAVE_FAILED")
		return
	}
	writeJSON(w, http.StatusOK, themeBody{Theme: t.String()})
}

// handleToggleTheme flips the theme. htmx clients get a full page refresh so
// every fragment picks up the new palette.
func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	t, err := s.themes.Toggle(r.Context())
	if err != nil {
		logRequestError(r.Context(), "Theme toggle failed", err, log.ComponentTheme, log.OpToggle)
		if isHTMX(r) {
			InternalServerError("Failed to save theme").Write(w)
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "Failed to save theme", "THEME_SAVE_FAILED")
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Theme changed",
		log.FieldComponent, log.ComponentTheme, log.FieldTheme, t.String())

	if isHTMX(r) {
		NewHTMXResponse().TriggerThemeChanged(t).Refresh().Status(http.StatusNoContent).Write(w)
		return
	}
	writeJSON(w, http.StatusOK, themeBody{Theme: t.String()})
}
