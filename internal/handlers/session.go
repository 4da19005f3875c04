package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/nightfall-games/werewolf-gm/internal/storage"
	"github.com/nightfall-games/werewolf-gm/pkg/command"
	"github.com/nightfall-games/werewolf-gm/pkg/engine"
	"github.com/nightfall-games/werewolf-gm/pkg/scenario"
	"github.com/nightfall-games/werewolf-gm/pkg/state"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// CreateSessionRequest defines the request body for opening a session
type CreateSessionRequest struct {
	Scenario string   `json:"scenario"` // Required: scenario filename
	Players  []string `json:"players"`  // Required: one name per seat
}

// SessionResponse is the standard envelope for session reads and updates
type SessionResponse struct {
	ID       uuid.UUID            `json:"id"`
	Scenario string               `json:"scenario"`
	State    state.GameState      `json:"state"`
	Pending  []command.Descriptor `json:"pending,omitempty"`
	CanUndo  bool                 `json:"can_undo"`
	CanRedo  bool                 `json:"can_redo"`
}

// CommandRequest queues one night action
type CommandRequest struct {
	Skill     string   `json:"skill"`
	ActorID   string   `json:"actor_id"`
	TargetIDs []string `json:"target_ids"`
}

// ExecuteRequest names the day vote's victim
type ExecuteRequest struct {
	TargetID string `json:"target_id"`
}

// CommandResponse reports the outcome of a command, undo or redo
type CommandResponse struct {
	Success  bool              `json:"success"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
	State    state.GameState   `json:"state"`
}

// SessionHandler drives game sessions. Sessions are stateless between
// requests: every call loads the snapshot, replays it into a live
// session, applies the operation and stores the new snapshot.
// Routes:
// POST   /v1/sessions                         - Create session
// GET    /v1/sessions/{id}                    - Read session
// DELETE /v1/sessions/{id}                    - Delete session
// POST   /v1/sessions/{id}/commands           - Queue a night action
// DELETE /v1/sessions/{id}/commands/{actorID} - Drop a queued action
// POST   /v1/sessions/{id}/resolve            - Resolve the night
// POST   /v1/sessions/{id}/execute            - Carry out the day vote
// POST   /v1/sessions/{id}/undo               - Undo the last command
// POST   /v1/sessions/{id}/redo               - Redo the last undone command
// GET    /v1/sessions/{id}/win                - Check win conditions
type SessionHandler struct {
	storage storage.Storage
	logger  *slog.Logger
	locks   sync.Map // uuid.UUID -> *sync.Mutex
}

func NewSessionHandler(logger *slog.Logger, storage storage.Storage) *SessionHandler {
	return &SessionHandler{
		storage: storage,
		logger:  logger,
	}
}

// lock serializes operations per session; the engine assumes one command
// applied at a time.
func (h *SessionHandler) lock(id uuid.UUID) *sync.Mutex {
	mu, _ := h.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")
	parts := []string{}
	if path != "" {
		parts = strings.Split(path, "/")
	}

	if len(parts) == 0 {
		if r.Method != http.MethodPost {
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. POST to create a session")
			return
		}
		h.handleCreate(w, r)
		return
	}

	id, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	mu := h.lock(id)
	mu.Lock()
	defer mu.Unlock()

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			h.handleRead(w, r, id)
		case http.MethodDelete:
			h.handleDelete(w, r, id)
		default:
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, DELETE")
		}
		return
	}

	switch {
	case parts[1] == "commands" && len(parts) == 2 && r.Method == http.MethodPost:
		h.handleCommand(w, r, id)
	case parts[1] == "commands" && len(parts) == 3 && r.Method == http.MethodDelete:
		h.handleUnsubmit(w, r, id, parts[2])
	case parts[1] == "resolve" && r.Method == http.MethodPost:
		h.handleResolve(w, r, id)
	case parts[1] == "execute" && r.Method == http.MethodPost:
		h.handleExecute(w, r, id)
	case parts[1] == "undo" && r.Method == http.MethodPost:
		h.handleUndoRedo(w, r, id, true)
	case parts[1] == "redo" && r.Method == http.MethodPost:
		h.handleUndoRedo(w, r, id, false)
	case parts[1] == "win" && r.Method == http.MethodGet:
		h.handleWin(w, r, id)
	default:
		h.writeError(w, http.StatusNotFound, "Unknown session operation")
	}
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.Scenario == "" {
		h.writeError(w, http.StatusBadRequest, "scenario filename is required")
		return
	}
	if len(req.Players) == 0 {
		h.writeError(w, http.StatusBadRequest, "player names are required")
		return
	}

	ctx := r.Context()
	catalog, err := h.storage.GetScenario(ctx, req.Scenario)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			h.writeError(w, http.StatusNotFound, "Scenario not found")
			return
		}
		h.logger.Error("Failed to get scenario", "error", err, "filename", req.Scenario)
		h.writeError(w, http.StatusInternalServerError, "Failed to retrieve scenario")
		return
	}

	sess, err := engine.NewSession(catalog, req.Players, h.logger)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := sess.State().ID
	if err := h.save(ctx, id, sess); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to save session")
		return
	}

	h.logger.Info("Session created", "session_id", id, "scenario", req.Scenario)
	w.WriteHeader(http.StatusCreated)
	h.writeSession(w, sess)
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	sess, ok := h.load(w, r, id)
	if !ok {
		return
	}
	h.writeSession(w, sess)
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.storage.DeleteSession(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete session", "error", err, "session_id", id)
		h.writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	h.locks.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) handleCommand(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.Skill == "" || req.ActorID == "" {
		h.writeError(w, http.StatusBadRequest, "skill and actor_id are required")
		return
	}

	sess, ok := h.load(w, r, id)
	if !ok {
		return
	}

	res := sess.Submit(scenario.SkillType(req.Skill), req.ActorID, req.TargetIDs)
	if res.Success {
		if err := h.save(r.Context(), id, sess); err != nil {
			h.writeError(w, http.StatusInternalServerError, "Failed to save session")
			return
		}
	}
	h.writeResult(w, res, sess.State())
}

func (h *SessionHandler) handleUnsubmit(w http.ResponseWriter, r *http.Request, id uuid.UUID, actorID string) {
	sess, ok := h.load(w, r, id)
	if !ok {
		return
	}
	if !sess.Unsubmit(actorID) {
		h.writeError(w, http.StatusNotFound, "No pending command for actor "+actorID)
		return
	}
	if err := h.save(r.Context(), id, sess); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to save session")
		return
	}
	h.writeSession(w, sess)
}

func (h *SessionHandler) handleResolve(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	sess, ok := h.load(w, r, id)
	if !ok {
		return
	}

	res, err := sess.ResolveNight()
	if err != nil {
		h.writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err := h.save(r.Context(), id, sess); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to save session")
		return
	}

	if err := json.NewEncoder(w).Encode(res); err != nil {
		h.logger.Error("Failed to encode night result", "error", err, "session_id", id)
	}
}

func (h *SessionHandler) handleExecute(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.TargetID == "" {
		h.writeError(w, http.StatusBadRequest, "target_id is required")
		return
	}

	sess, ok := h.load(w, r, id)
	if !ok {
		return
	}

	res, err := sess.Execute(req.TargetID)
	if err != nil {
		h.writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err := h.save(r.Context(), id, sess); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to save session")
		return
	}

	if err := json.NewEncoder(w).Encode(res); err != nil {
		h.logger.Error("Failed to encode day result", "error", err, "session_id", id)
	}
}

func (h *SessionHandler) handleUndoRedo(w http.ResponseWriter, r *http.Request, id uuid.UUID, undo bool) {
	sess, ok := h.load(w, r, id)
	if !ok {
		return
	}

	var res command.Result
	if undo {
		res = sess.Undo()
	} else {
		res = sess.Redo()
	}
	if res.Success {
		if err := h.save(r.Context(), id, sess); err != nil {
			h.writeError(w, http.StatusInternalServerError, "Failed to save session")
			return
		}
	}
	h.writeResult(w, res, sess.State())
}

func (h *SessionHandler) handleWin(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	sess, ok := h.load(w, r, id)
	if !ok {
		return
	}
	if err := json.NewEncoder(w).Encode(sess.CheckWin()); err != nil {
		h.logger.Error("Failed to encode win result", "error", err, "session_id", id)
	}
}

// load reads a snapshot and replays it into a live session. It writes the
// HTTP error itself and reports ok=false when the caller should stop.
func (h *SessionHandler) load(w http.ResponseWriter, r *http.Request, id uuid.UUID) (*engine.Session, bool) {
	ctx := r.Context()
	snap, err := h.storage.LoadSession(ctx, id)
	if err != nil {
		h.logger.Error("Failed to load session", "error", err, "session_id", id)
		h.writeError(w, http.StatusInternalServerError, "Failed to load session")
		return nil, false
	}
	if snap == nil {
		h.writeError(w, http.StatusNotFound, "Session not found")
		return nil, false
	}

	catalog, err := h.storage.GetScenario(ctx, snap.ScenarioFile)
	if err != nil {
		h.logger.Error("Failed to load session scenario", "error", err, "session_id", id, "filename", snap.ScenarioFile)
		h.writeError(w, http.StatusInternalServerError, "Failed to load session scenario")
		return nil, false
	}

	sess, err := engine.Restore(catalog, *snap, h.logger)
	if err != nil {
		h.logger.Error("Failed to restore session", "error", err, "session_id", id)
		h.writeError(w, http.StatusInternalServerError, "Failed to restore session")
		return nil, false
	}
	return sess, true
}

func (h *SessionHandler) save(ctx context.Context, id uuid.UUID, sess *engine.Session) error {
	snap := sess.Snapshot()
	if err := h.storage.SaveSession(ctx, id, &snap); err != nil {
		h.logger.Error("Failed to save session", "error", err, "session_id", id)
		return err
	}
	return nil
}

func (h *SessionHandler) writeSession(w http.ResponseWriter, sess *engine.Session) {
	gs := sess.State()
	resp := SessionResponse{
		ID:       gs.ID,
		Scenario: gs.ScenarioFile,
		State:    gs,
		Pending:  sess.Pending(),
		CanUndo:  sess.CanUndo(),
		CanRedo:  sess.CanRedo(),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to encode session response", "error", err)
	}
}

func (h *SessionHandler) writeResult(w http.ResponseWriter, res command.Result, gs state.GameState) {
	if !res.Success {
		w.WriteHeader(http.StatusConflict)
	}
	resp := CommandResponse{
		Success:  res.Success,
		Message:  res.Message,
		Metadata: res.Metadata,
		State:    gs,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to encode command response", "error", err)
	}
}

func (h *SessionHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}
