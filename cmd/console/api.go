package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/google/uuid"

	"github.com/nightfall-games/werewolf-gm/pkg/command"
	"github.com/nightfall-games/werewolf-gm/pkg/engine"
	"github.com/nightfall-games/werewolf-gm/pkg/scenario"
	"github.com/nightfall-games/werewolf-gm/pkg/state"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// SessionView mirrors the API's session envelope
type SessionView struct {
	ID       uuid.UUID            `json:"id"`
	Scenario string               `json:"scenario"`
	State    state.GameState      `json:"state"`
	Pending  []command.Descriptor `json:"pending,omitempty"`
	CanUndo  bool                 `json:"can_undo"`
	CanRedo  bool                 `json:"can_redo"`
}

// CommandView mirrors the API's command outcome envelope
type CommandView struct {
	Success  bool              `json:"success"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
	State    state.GameState   `json:"state"`
}

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func listScenarios(client *http.Client, baseURL string) ([]string, map[string]string, error) {
	resp, err := client.Get(baseURL + "/v1/scenarios")
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var scenarioMap map[string]string
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	if err := json.Unmarshal(body, &scenarioMap); err != nil {
		return nil, nil, err
	}

	var names []string
	for name := range scenarioMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, scenarioMap, nil
}

func getScenario(client *http.Client, baseURL string, scenarioFile string) (*scenario.Scenario, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/scenarios/%s", baseURL, scenarioFile))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body, "failed to get scenario")
	}

	var s scenario.Scenario
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario response: %w", err)
	}
	return &s, nil
}

// CreateSessionRequest matches the API request structure
type CreateSessionRequest struct {
	Scenario string   `json:"scenario"`
	Players  []string `json:"players"`
}

func createSession(client *http.Client, baseURL string, scenarioFile string, players []string) (*SessionView, error) {
	body, err := postJSON(client, baseURL+"/v1/sessions", CreateSessionRequest{
		Scenario: scenarioFile,
		Players:  players,
	}, http.StatusCreated, "failed to create session")
	if err != nil {
		return nil, err
	}

	var view SessionView
	if err := json.Unmarshal(body, &view); err != nil {
		return nil, fmt.Errorf("failed to parse session response: %w", err)
	}
	return &view, nil
}

func getSession(client *http.Client, baseURL string, id uuid.UUID) (*SessionView, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/sessions/%s", baseURL, id))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body, "failed to get session")
	}

	var view SessionView
	if err := json.Unmarshal(body, &view); err != nil {
		return nil, fmt.Errorf("failed to parse session response: %w", err)
	}
	return &view, nil
}

// CommandRequest matches the API request structure
type CommandRequest struct {
	Skill     string   `json:"skill"`
	ActorID   string   `json:"actor_id"`
	TargetIDs []string `json:"target_ids"`
}

// submitCommand queues a night action. A rejected command is returned as
// a CommandView with Success false, not as an error.
func submitCommand(client *http.Client, baseURL string, id uuid.UUID, skill, actorID string, targetIDs []string) (*CommandView, error) {
	return postCommand(client, fmt.Sprintf("%s/v1/sessions/%s/commands", baseURL, id), CommandRequest{
		Skill:     skill,
		ActorID:   actorID,
		TargetIDs: targetIDs,
	})
}

func unsubmitCommand(client *http.Client, baseURL string, id uuid.UUID, actorID string) (*SessionView, error) {
	req, err := http.NewRequest(http.MethodDelete,
		fmt.Sprintf("%s/v1/sessions/%s/commands/%s", baseURL, id, actorID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body, "failed to drop command")
	}

	var view SessionView
	if err := json.Unmarshal(body, &view); err != nil {
		return nil, fmt.Errorf("failed to parse session response: %w", err)
	}
	return &view, nil
}

func resolveNight(client *http.Client, baseURL string, id uuid.UUID) (*engine.NightResult, error) {
	body, err := postJSON(client, fmt.Sprintf("%s/v1/sessions/%s/resolve", baseURL, id),
		nil, http.StatusOK, "failed to resolve night")
	if err != nil {
		return nil, err
	}

	var res engine.NightResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("failed to parse night result: %w", err)
	}
	return &res, nil
}

// ExecuteRequest matches the API request structure
type ExecuteRequest struct {
	TargetID string `json:"target_id"`
}

func executeDay(client *http.Client, baseURL string, id uuid.UUID, targetID string) (*engine.DayResult, error) {
	body, err := postJSON(client, fmt.Sprintf("%s/v1/sessions/%s/execute", baseURL, id),
		ExecuteRequest{TargetID: targetID}, http.StatusOK, "failed to execute")
	if err != nil {
		return nil, err
	}

	var res engine.DayResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("failed to parse day result: %w", err)
	}
	return &res, nil
}

func undoCommand(client *http.Client, baseURL string, id uuid.UUID) (*CommandView, error) {
	return postCommand(client, fmt.Sprintf("%s/v1/sessions/%s/undo", baseURL, id), nil)
}

func redoCommand(client *http.Client, baseURL string, id uuid.UUID) (*CommandView, error) {
	return postCommand(client, fmt.Sprintf("%s/v1/sessions/%s/redo", baseURL, id), nil)
}

func checkWin(client *http.Client, baseURL string, id uuid.UUID) (*engine.WinResult, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/sessions/%s/win", baseURL, id))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body, "failed to check win conditions")
	}

	var res engine.WinResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("failed to parse win result: %w", err)
	}
	return &res, nil
}

// postCommand sends a command-style POST where both 200 and 409 carry a
// CommandView body.
func postCommand(client *http.Client, url string, payload interface{}) (*CommandView, error) {
	var buf bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&buf).Encode(payload); err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	resp, err := client.Post(url, "application/json", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusConflict {
		return nil, apiError(resp.StatusCode, body, "command failed")
	}

	var view CommandView
	if err := json.Unmarshal(body, &view); err != nil {
		return nil, fmt.Errorf("failed to parse command response: %w", err)
	}
	return &view, nil
}

func postJSON(client *http.Client, url string, payload interface{}, wantStatus int, failMsg string) ([]byte, error) {
	var buf bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&buf).Encode(payload); err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	resp, err := client.Post(url, "application/json", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != wantStatus {
		return nil, apiError(resp.StatusCode, body, failMsg)
	}
	return body, nil
}

func apiError(status int, body []byte, failMsg string) error {
	var errorResp ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
		return fmt.Errorf("API returned status %d: %s", status, string(body))
	}
	return fmt.Errorf("%s: %s", failMsg, errorResp.Error)
}
