package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/roadlink/game/engine"
	"github.com/wricardo/roadlink/game/generator"
	"github.com/wricardo/roadlink/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API at baseURL
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Roadlink",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Roadlink - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Rotate road tiles until every landmark has a road route to the turnpike and
every road tile is part of the network.

AVAILABLE TOOLS:
- create_session: Start a session (hand-authored level, progression level number, or generator config)
- list_sessions / get_session: Inspect sessions
- game_state: Grid, connectivity report and unreached tiles
- rotate: Rotate one tile a quarter turn clockwise - requires intent explanation
- bulk_rotate: Rotate several tiles in order - requires intent explanation
- reset_game: Restore the scrambled start
- rotation_history: View past rotations
- hint: Next tile that is not in its solved orientation
- list_levels: Hand-authored levels
- generate_level: Generate a level without starting a session
- game_instructions: Rules and symbols
- describe_tile: Openings and neighbor connections of one cell

NOTE: The 'intent' parameter on rotate/bulk_rotate serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func cellProperty(axis string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"minimum":     0,
		"description": fmt.Sprintf("%s of the tile (0-based)", axis),
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new play session. Set at most one of level_id, level_number or the generator fields; with none the default level is played.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level_id": map[string]interface{}{
					"type":        "string",
					"description": "Hand-authored level to play (see list_levels)",
				},
				"level_number": map[string]interface{}{
					"type":        "integer",
					"minimum":     1,
					"description": "Progression level number; difficulty rises in waves of five",
				},
				"rows": map[string]interface{}{
					"type":        "integer",
					"description": "Generator: grid rows",
				},
				"cols": map[string]interface{}{
					"type":        "integer",
					"description": "Generator: grid columns",
				},
				"landmarks": map[string]interface{}{
					"type":        "integer",
					"description": "Generator: number of landmarks",
				},
				"difficulty": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"easy", "medium", "hard"},
					"description": "Generator: difficulty",
				},
				"min_path_length": map[string]interface{}{
					"type":        "integer",
					"description": "Generator: minimum road tiles per landmark route",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Generator: seed for a reproducible level",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active play sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Play
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current grid, connectivity report and unreached tiles",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "rotate",
		Description: "Rotate one tile 90 degrees clockwise. Landmarks and the turnpike are fixed.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"row":        cellProperty("Row"),
				"col":        cellProperty("Column"),
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this rotation (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before rotating",
				},
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleRotate)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_rotate",
		Description: fmt.Sprintf("Rotate several tiles in order, stopping once the level is complete (max %d)", engine.MaxBulkRotations),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"rotations": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"row": cellProperty("Row"),
							"col": cellProperty("Column"),
						},
						"required": []string{"row", "col"},
					},
					"description": "Tiles to rotate; repeat a tile to turn it more than once",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of rotations (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before rotating",
				},
			},
			Required: []string{"session_id", "rotations"},
		},
	}, c.handleBulkRotate)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Restore the scrambled starting rotations",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "rotation_history",
		Description: "Get rotation history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest or newest first",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRotationHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "hint",
		Description: "Get the first tile (row-major) that is not yet in its solved orientation",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleHint)

	// Levels
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_levels",
		Description: "List available hand-authored levels",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLevels)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "generate_level",
		Description: "Generate a level from a config without creating a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"rows":            map[string]interface{}{"type": "integer", "description": "Grid rows"},
				"cols":            map[string]interface{}{"type": "integer", "description": "Grid columns"},
				"landmarks":       map[string]interface{}{"type": "integer", "description": "Number of landmarks"},
				"difficulty":      map[string]interface{}{"type": "string", "enum": []string{"easy", "medium", "hard"}},
				"min_path_length": map[string]interface{}{"type": "integer", "description": "Minimum road tiles per route"},
				"seed":            map[string]interface{}{"type": "integer", "description": "Seed for a reproducible level"},
			},
			Required: []string{"rows", "cols", "landmarks"},
		},
	}, c.handleGenerateLevel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the game rules, symbols and strategy",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_tile",
		Description: "Describe one cell: shape, road type, rotation, openings and whether each opening connects to its neighbor",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"row":        cellProperty("Row"),
				"col":        cellProperty("Column"),
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleDescribeTile)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeStdio serves the tools over stdin/stdout until stdin closes
func (c *Client) ServeStdio() error {
	return server.ServeStdio(c.mcpServer)
}

// HTTPHandler serves the tools over streamable HTTP
func (c *Client) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(c.mcpServer, server.WithStateLess(true))
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// generatorConfig reads generator fields from tool arguments
func generatorConfig(request mcp.CallToolRequest) (generator.Config, error) {
	cfg := generator.Config{
		GridSize: engine.GridSize{
			Rows: request.GetInt("rows", 0),
			Cols: request.GetInt("cols", 0),
		},
		LandmarkCount: request.GetInt("landmarks", 1),
		MinPathLength: request.GetInt("min_path_length", 0),
	}

	difficulty, err := generator.ParseDifficulty(request.GetString("difficulty", generator.Easy.String()))
	if err != nil {
		return cfg, err
	}
	cfg.Difficulty = difficulty

	if _, ok := request.GetArguments()["seed"]; ok {
		cfg = cfg.WithSeed(uint32(request.GetInt("seed", 0)))
	}
	return cfg, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := service.CreateSessionRequest{
		LevelID:     request.GetString("level_id", ""),
		LevelNumber: request.GetInt("level_number", 0),
	}

	if _, ok := request.GetArguments()["rows"]; ok {
		cfg, err := generatorConfig(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		req.Generate = &cfg
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", req, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nLevel: %s (%s)\n", session.ID, session.LevelName, session.LevelID)
	if session.FellBack {
		result += "Generation failed for every seed; playing the fallback level.\n"
	}
	result += "\n" + formatGameState(session.GameState)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionList(response.Count, response.Sessions)), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleRotate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	row, err := request.RequireInt("row")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	col, err := request.RequireInt("col")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	body := map[string]interface{}{
		"row":   row,
		"col":   col,
		"reset": request.GetBool("reset", false),
	}

	var result service.RotateResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/rotate"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRotateResult(&result)), nil
}

func (c *Client) handleBulkRotate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	raw, _ := request.GetArguments()["rotations"].([]interface{})
	rotations := make([]engine.RotationEvent, 0, len(raw))
	for i, item := range raw {
		cell, ok := item.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("rotation %d must be an object with row and col", i+1)), nil
		}
		row, rowOK := cell["row"].(float64)
		col, colOK := cell["col"].(float64)
		if !rowOK || !colOK {
			return mcp.NewToolResultError(fmt.Sprintf("rotation %d needs numeric row and col", i+1)), nil
		}
		rotations = append(rotations, engine.RotationEvent{Row: int(row), Col: int(col)})
	}
	if len(rotations) == 0 {
		return mcp.NewToolResultError("rotations must not be empty"), nil
	}

	body := map[string]interface{}{
		"rotations": rotations,
		"reset":     request.GetBool("reset", false),
	}

	var result service.BulkRotateResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-rotate"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkRotateResult(sessionID, &result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleRotationHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := url.Values{}
	if page := request.GetInt("page", 0); page > 0 {
		params.Set("page", fmt.Sprint(page))
	}
	if limit := request.GetInt("limit", 0); limit > 0 {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order := request.GetString("order", ""); order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleHint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var hint service.HintResult
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/hint"), nil, &hint); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(hint.Message), nil
}

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var levels []service.LevelInfo
	if err := c.apiCall(ctx, "GET", "/api/levels", nil, &levels); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatLevels(levels)), nil
}

func (c *Client) handleGenerateLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := generatorConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.GenerateResult
	if err := c.apiCall(ctx, "POST", "/api/generate", cfg, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGenerateResult(&result)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	row, err := request.RequireInt("row")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	col, err := request.RequireInt("col")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	description, err := describeTile(&state, engine.Position{Row: row, Col: col})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(description), nil
}
