package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"bankdash/internal/presentation"
)

// errorBody is the JSON error shape of the API.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, errorBody{Error: message, Code: code})
}

// isHTMX reports whether the request was issued by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// parseTab reads the tab query parameter, defaulting to transactions.
func parseTab(r *http.Request) presentation.Tab {
	return presentation.ParseTab(strings.TrimSpace(r.URL.Query().Get("tab")))
}
