package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// detectResponse mirrors the themescout /detect response bodies.
type detectResponse struct {
	Result string `json:"result"`
	Error  string `json:"error"`
}

func main() {
	apiURL := os.Getenv("THEMESCOUT_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}

	s := server.NewMCPServer(
		"themescout",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	detectThemeTool := mcp.NewTool("detect_theme",
		mcp.WithDescription("Fetch a storefront page and report which Shopify theme it runs, read from the page's Shopify.theme script."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Absolute URL of the store page to inspect"),
		),
	)
	s.AddTool(detectThemeTool, handleDetectTheme(apiURL))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleDetectTheme(apiURL string) server.ToolHandlerFunc {
	// Slightly above the server's own 10s fetch ceiling.
	client := &http.Client{Timeout: 15 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		target, err := request.RequireString("url")
		if err != nil || target == "" {
			return mcp.NewToolResultError("url is required"), nil
		}

		msg, err := callDetect(ctx, client, apiURL, target)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(msg), nil
	}
}

// callDetect queries GET /detect and returns the result message.
func callDetect(ctx context.Context, client *http.Client, apiURL, target string) (string, error) {
	endpoint := strings.TrimRight(apiURL, "/") + "/detect?url=" + url.QueryEscape(target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var dr detectResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		return "", fmt.Errorf("parse response (HTTP %d): %w", resp.StatusCode, err)
	}
	if dr.Error != "" {
		return "", errors.New(dr.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned HTTP %d", resp.StatusCode)
	}
	return dr.Result, nil
}
