package http

import (
	"net/http"

	"go.uber.org/zap"
)

type HealthHandler struct {
	aiEnabled bool
	provider  string
	logger    *zap.Logger
}

func NewHealthHandler(aiEnabled bool, provider string, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{aiEnabled: aiEnabled, provider: provider, logger: logger}
}

type healthResponse struct {
	Status    string `json:"status"`
	AIEnabled bool   `json:"ai_enabled"`
	Provider  string `json:"provider"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		AIEnabled: h.aiEnabled,
		Provider:  h.provider,
	}, h.logger)
}
