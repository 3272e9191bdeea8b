package http

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"salon-offers/domain"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type pageData struct {
	Results   []domain.OfferResult
	Error     string
	AIEnabled bool
}

type errorResponse struct {
	Error string `json:"error"`
}

// renderPage executes into a buffer first so a template failure can still
// produce a clean 500.
func renderPage(w http.ResponseWriter, status int, data pageData, logger *zap.Logger) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		logger.Error("Error rendering page", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Warn("Error writing response", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *zap.Logger) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.Error("Error encoding response", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Warn("Error writing response", zap.Error(err))
	}
}

// writeError answers with {"error": msg} for JSON clients and plain text otherwise.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if wantsJSON(r) {
		writeJSON(w, status, errorResponse{Error: msg}, zap.NewNop())
		return
	}
	http.Error(w, msg, status)
}
