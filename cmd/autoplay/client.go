package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wricardo/roadlink/game/engine"
	"github.com/wricardo/roadlink/game/service"
)

// Client plays one session through the REST API
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) SessionID() string {
	return c.sessionID
}

// CreateSession starts a session and makes it the client's current one
func (c *Client) CreateSession(req service.CreateSessionRequest) (*engine.GameState, error) {
	var session service.SessionInfo
	if err := c.do("POST", "/api/sessions", req, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.sessionID = session.ID
	return session.GameState, nil
}

// Resume points the client at an existing session
func (c *Client) Resume(sessionID string) (*engine.GameState, error) {
	c.sessionID = sessionID
	return c.GetState()
}

func (c *Client) GetState() (*engine.GameState, error) {
	var state engine.GameState
	if err := c.do("GET", c.sessionPath("/state"), nil, &state); err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	return &state, nil
}

func (c *Client) Rotate(row, col int) (*service.RotateResult, error) {
	body := map[string]int{"row": row, "col": col}
	var result service.RotateResult
	if err := c.do("POST", c.sessionPath("/rotate"), body, &result); err != nil {
		return nil, fmt.Errorf("rotate (%d,%d): %w", row, col, err)
	}
	return &result, nil
}

func (c *Client) BulkRotate(rotations []engine.RotationEvent) (*service.BulkRotateResult, error) {
	body := map[string]interface{}{"rotations": rotations}
	var result service.BulkRotateResult
	if err := c.do("POST", c.sessionPath("/bulk-rotate"), body, &result); err != nil {
		return nil, fmt.Errorf("bulk rotate: %w", err)
	}
	return &result, nil
}

type resetResponse struct {
	Message string            `json:"message"`
	State   *engine.GameState `json:"state"`
}

func (c *Client) Reset() (*engine.GameState, error) {
	var resp resetResponse
	if err := c.do("POST", c.sessionPath("/reset"), nil, &resp); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return resp.State, nil
}

func (c *Client) Hint() (*service.HintResult, error) {
	var hint service.HintResult
	if err := c.do("GET", c.sessionPath("/hint"), nil, &hint); err != nil {
		return nil, fmt.Errorf("hint: %w", err)
	}
	return &hint, nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + suffix
}

func (c *Client) do(method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, errResp.Error)
		}
		return fmt.Errorf("%s - %s", resp.Status, string(data))
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
