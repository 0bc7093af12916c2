// Package resthttp is the HTTP adapter for the remote session service.
// It implements core.SessionAPI and core.ProgressAPI over JSON endpoints.
package resthttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/questlog/questlog/core"
	"github.com/questlog/questlog/pkg/ident"
)

const defaultTimeout = 10 * time.Second

type Config struct {
	BaseURL string

	// Optional config
	Token      string
	HTTPClient *http.Client
}

// Client talks to the remote session service.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// APIError is a non-2xx response from the remote service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("remote returned status %d: %s", e.StatusCode, e.Message)
}

func New(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		token:   config.Token,
		http:    httpClient,
	}, nil
}

func (c *Client) StartSession(ctx context.Context, input core.StartSessionInput) (*core.Session, error) {
	var session core.Session
	if err := c.do(ctx, http.MethodPost, "/api/sessions/start", input, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) StopSession(ctx context.Context, id string, elapsedSeconds int64) (*core.Session, error) {
	payload := map[string]int64{"elapsedSeconds": elapsedSeconds}
	var session core.Session
	if err := c.do(ctx, http.MethodPost, "/api/sessions/"+url.PathEscape(id)+"/stop", payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) PauseSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/sessions/"+url.PathEscape(id)+"/pause", nil, nil)
}

func (c *Client) ResumeSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/sessions/"+url.PathEscape(id)+"/resume", nil, nil)
}

func (c *Client) UpdateElapsed(ctx context.Context, id string, elapsedSeconds int64) error {
	payload := map[string]int64{"elapsedSeconds": elapsedSeconds}
	return c.do(ctx, http.MethodPut, "/api/sessions/"+url.PathEscape(id)+"/elapsed", payload, nil)
}

// ActiveSession maps 404 and 204 responses to (nil, nil): no live
// session is a normal answer, not an error.
func (c *Client) ActiveSession(ctx context.Context) (*core.Session, error) {
	var session core.Session
	err := c.do(ctx, http.MethodGet, "/api/sessions/active", nil, &session)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusNotFound || apiErr.StatusCode == http.StatusNoContent) {
			return nil, nil
		}
		return nil, err
	}
	if session.ID == "" {
		return nil, nil
	}
	return &session, nil
}

func (c *Client) Profile(ctx context.Context) (*core.UserStats, error) {
	var stats core.UserStats
	if err := c.do(ctx, http.MethodGet, "/api/progress/profile", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) Achievements(ctx context.Context) ([]core.Achievement, error) {
	var achievements []core.Achievement
	if err := c.do(ctx, http.MethodGet, "/api/progress/achievements", nil, &achievements); err != nil {
		return nil, err
	}
	return achievements, nil
}

func (c *Client) SkillTree(ctx context.Context) ([]core.SkillNode, error) {
	var nodes []core.SkillNode
	if err := c.do(ctx, http.MethodGet, "/api/progress/skill-tree", nil, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

func (c *Client) Leaderboard(ctx context.Context, period string, limit int) ([]core.LeaderboardEntry, error) {
	query := url.Values{}
	query.Set("period", period)
	query.Set("limit", strconv.Itoa(limit))

	var entries []core.LeaderboardEntry
	if err := c.do(ctx, http.MethodGet, "/api/progress/leaderboard?"+query.Encode(), nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// do performs one JSON round trip. Non-2xx responses are returned as
// *APIError with the server's error message attached when present.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if requestID, err := ident.New(); err == nil {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: decodeErrorMessage(resp.Body)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeErrorMessage(body io.Reader) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}
