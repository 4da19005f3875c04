// Package runner is a thin HTTP client for driving a live API instance
// from the integration suite.
package runner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Runner drives one API instance. Methods return a decoded response or
// an error; HTTP 409 on command-style endpoints decodes into a
// CommandOutcome with Success false rather than erroring.
type Runner struct {
	BaseURL string
	Client  *http.Client
	Logger  func(format string, args ...interface{})
}

func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
		Logger:  func(string, ...interface{}) {},
	}
}

// Healthy reports whether the API answers its health endpoint.
func (r *Runner) Healthy() bool {
	resp, err := r.Client.Get(r.BaseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// ListScenarios returns the catalog as name -> filename.
func (r *Runner) ListScenarios() (map[string]string, error) {
	var out map[string]string
	if err := r.get(r.BaseURL+"/v1/scenarios", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Runner) CreateSession(scenarioFile string, players []string) (*Session, error) {
	body, err := r.post(r.BaseURL+"/v1/sessions",
		createSessionRequest{Scenario: scenarioFile, Players: players}, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	r.Logger("created session %s on %s", s.ID, scenarioFile)
	return &s, nil
}

func (r *Runner) GetSession(id uuid.UUID) (*Session, error) {
	var s Session
	if err := r.get(fmt.Sprintf("%s/v1/sessions/%s", r.BaseURL, id), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSession returns the response status code so steps can assert on
// both the 204 and the later 404.
func (r *Runner) DeleteSession(id uuid.UUID) (int, error) {
	req, err := http.NewRequest(http.MethodDelete,
		fmt.Sprintf("%s/v1/sessions/%s", r.BaseURL, id), nil)
	if err != nil {
		return 0, err
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode, nil
}

func (r *Runner) Submit(id uuid.UUID, skill, actorID string, targetIDs ...string) (*CommandOutcome, error) {
	return r.postCommand(fmt.Sprintf("%s/v1/sessions/%s/commands", r.BaseURL, id),
		commandRequest{Skill: skill, ActorID: actorID, TargetIDs: targetIDs})
}

func (r *Runner) Unsubmit(id uuid.UUID, actorID string) (*Session, error) {
	req, err := http.NewRequest(http.MethodDelete,
		fmt.Sprintf("%s/v1/sessions/%s/commands/%s", r.BaseURL, id, actorID), nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, body)
	}
	var s Session
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return &s, nil
}

func (r *Runner) Resolve(id uuid.UUID) (*NightOutcome, error) {
	body, err := r.post(fmt.Sprintf("%s/v1/sessions/%s/resolve", r.BaseURL, id), nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	var out NightOutcome
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse night result: %w", err)
	}
	return &out, nil
}

func (r *Runner) Execute(id uuid.UUID, targetID string) (*DayOutcome, error) {
	body, err := r.post(fmt.Sprintf("%s/v1/sessions/%s/execute", r.BaseURL, id),
		executeRequest{TargetID: targetID}, http.StatusOK)
	if err != nil {
		return nil, err
	}
	var out DayOutcome
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse day result: %w", err)
	}
	return &out, nil
}

func (r *Runner) Undo(id uuid.UUID) (*CommandOutcome, error) {
	return r.postCommand(fmt.Sprintf("%s/v1/sessions/%s/undo", r.BaseURL, id), nil)
}

func (r *Runner) Redo(id uuid.UUID) (*CommandOutcome, error) {
	return r.postCommand(fmt.Sprintf("%s/v1/sessions/%s/redo", r.BaseURL, id), nil)
}

func (r *Runner) Win(id uuid.UUID) (*WinOutcome, error) {
	var out WinOutcome
	if err := r.get(fmt.Sprintf("%s/v1/sessions/%s/win", r.BaseURL, id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Runner) get(url string, out interface{}) error {
	resp, err := r.Client.Get(url)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return apiError(resp.StatusCode, body)
	}
	return json.Unmarshal(body, out)
}

func (r *Runner) post(url string, payload interface{}, wantStatus int) ([]byte, error) {
	var buf bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&buf).Encode(payload); err != nil {
			return nil, err
		}
	}
	resp, err := r.Client.Post(url, "application/json", &buf)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != wantStatus {
		return nil, apiError(resp.StatusCode, body)
	}
	return body, nil
}

func (r *Runner) postCommand(url string, payload interface{}) (*CommandOutcome, error) {
	var buf bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&buf).Encode(payload); err != nil {
			return nil, err
		}
	}
	resp, err := r.Client.Post(url, "application/json", &buf)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusConflict {
		return nil, apiError(resp.StatusCode, body)
	}
	var out CommandOutcome
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse command result: %w", err)
	}
	return &out, nil
}

func apiError(status int, body []byte) error {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
		return fmt.Errorf("API returned status %d: %s", status, string(body))
	}
	return fmt.Errorf("API returned status %d: %s", status, errResp.Error)
}
