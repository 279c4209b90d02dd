package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/citypanic/citypanic/game/engine"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"City Panic",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`City Panic - MCP Interface

This is a thin client that proxies all requests to the REST API server.

City Panic is a cooperative realtime game: each crew gets a control panel
and a stream of timed instructions, many of which target another crew's
panel. Matches are created and joined over the websocket transport; this
interface covers lobby management and server introspection.

AVAILABLE TOOLS:
- list_games: List public games waiting in the lobby
- get_game: Get details of a specific game, including its slot roster
- create_game: Create a new game for players to join
- server_status: Get server uptime, game/player counts and process metrics`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_games",
		Description: "List all public games in the lobby",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListGames)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_game",
		Description: "Get details of a specific game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Game ID to retrieve",
				},
			},
			Required: []string{"game_id"},
		},
	}, c.handleGetGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_game",
		Description: "Create a new game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Display name for the game",
				},
				"public": map[string]interface{}{
					"type":        "boolean",
					"description": "List the game in the public lobby (default true)",
				},
			},
			Required: []string{"name"},
		},
	}, c.handleCreateGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "server_status",
		Description: "Get server uptime, counts and process metrics",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleServerStatus)
}

// GetMCPServer returns the underlying MCP server, for HTTP message handling
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeStdio runs the MCP server over stdio until the client disconnects
func (c *Client) ServeStdio() error {
	return server.ServeStdio(c.mcpServer)
}

// apiCall performs an HTTP request against the REST API
func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
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

// Tool handlers

func (c *Client) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var games []engine.LobbyInfo
	if err := c.apiCall("GET", "/api/games", nil, &games); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(games) == 0 {
		return mcp.NewToolResultText("No public games in the lobby."), nil
	}

	result := fmt.Sprintf("Public Games (%d):\n\n", len(games))
	for _, g := range games {
		result += fmt.Sprintf("- %s (%s): %d/%d players\n",
			g.Name, g.GameID, g.Players, g.MaxPlayers)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments"), nil
	}
	gameID, _ := args["game_id"].(string)
	if gameID == "" {
		return mcp.NewToolResultError("game_id is required"), nil
	}

	var info engine.GameInfo
	if err := c.apiCall("GET", fmt.Sprintf("/api/games/%s", gameID), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Game %s (%s)\nPlayers: %d/%d\nPublic: %v\nSlots:\n",
		info.Name, info.GameID, info.Players, info.MaxPlayers, info.Public)
	for i, slot := range info.Slots {
		if slot == nil {
			result += fmt.Sprintf("  %d. (empty)\n", i+1)
			continue
		}
		result += fmt.Sprintf("  %d. %s (ready: %v, host: %v)\n",
			i+1, slot.UID, slot.Ready, slot.Host)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleCreateGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments"), nil
	}
	name, _ := args["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	public := true
	if v, ok := args["public"].(bool); ok {
		public = v
	}

	body := map[string]interface{}{"name": name, "public": public}
	var info engine.GameInfo
	if err := c.apiCall("POST", "/api/games", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Created game %s (%s). Players join over the websocket transport with this ID.",
		info.Name, info.GameID)), nil
}

func (c *Client) handleServerStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var status map[string]interface{}
	if err := c.apiCall("GET", "/api/status", nil, &status); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(string(data)), nil
}
