package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nightfall-games/werewolf-gm/internal/storage"
)

// ScenarioHandler serves the scenario catalog.
// Routes:
// GET /v1/scenarios            - List available scenarios
// GET /v1/scenarios/{filename} - Read one scenario catalog
type ScenarioHandler struct {
	log     *slog.Logger
	storage storage.Storage
}

func NewScenarioHandler(log *slog.Logger, storage storage.Storage) *ScenarioHandler {
	return &ScenarioHandler{
		log:     log,
		storage: storage,
	}
}

func (h *ScenarioHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ScenarioHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/scenarios")
	filename := strings.Trim(path, "/")

	ctx := r.Context()

	if filename == "" {
		scenarios, err := h.storage.ListScenarios(ctx)
		if err != nil {
			h.log.Error("Failed to list scenarios", "error", err)
			http.Error(w, "Failed to list scenarios", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(scenarios); err != nil {
			h.log.Error("Failed to encode scenario list", "error", err)
		}
		return
	}

	if strings.Contains(filename, "..") || strings.Contains(filename, "/") {
		http.Error(w, "Invalid filename", http.StatusBadRequest)
		return
	}

	s, err := h.storage.GetScenario(ctx, filename)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, "Scenario not found", http.StatusNotFound)
			return
		}
		h.log.Error("Failed to get scenario", "error", err, "filename", filename)
		http.Error(w, "Failed to retrieve scenario", http.StatusInternalServerError)
		return
	}

	data, err := json.Marshal(s)
	if err != nil {
		h.log.Error("Failed to marshal scenario", "error", err, "filename", filename)
		http.Error(w, "Failed to process scenario", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.log.Error("Failed to write scenario response", "error", err)
	}
}
