package resthttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/questlog/questlog/core"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL, Token: "tok-test"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

// Requirement: config validation.
func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "valid", config: Config{BaseURL: "https://quests.example.com"}, wantErr: false},
		{name: "trailing slash trimmed", config: Config{BaseURL: "https://quests.example.com/"}, wantErr: false},
		{name: "missing base URL", config: Config{}, wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client, err := New(test.config)
			if (err != nil) != test.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, test.wantErr)
			}
			if err == nil && client.baseURL[len(client.baseURL)-1] == '/' {
				t.Errorf("baseURL %q not trimmed", client.baseURL)
			}
		})
	}
}

// Requirement: StartSession posts the input and decodes the created
// session, carrying auth and correlation headers.
func TestClient_StartSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/sessions/start" {
			t.Errorf("request = %s %s, want POST /api/sessions/start", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-test" {
			t.Errorf("Authorization = %q, want Bearer tok-test", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("X-Request-ID header missing")
		}

		var input core.StartSessionInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			t.Errorf("decode input: %v", err)
		}
		if input.ProjectID != "proj-1" {
			t.Errorf("input.ProjectID = %q, want proj-1", input.ProjectID)
		}

		json.NewEncoder(w).Encode(core.Session{
			ID:        "sess-9",
			ProjectID: input.ProjectID,
			Status:    core.StatusRunning,
			StartedAt: time.Now().UTC(),
		})
	})

	session, err := client.StartSession(context.Background(), core.StartSessionInput{ProjectID: "proj-1"})
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if session.ID != "sess-9" || session.Status != core.StatusRunning {
		t.Errorf("session = %+v, want id sess-9 running", session)
	}
}

// Requirement: StopSession reports the client's elapsed measurement and
// returns the finalized record.
func TestClient_StopSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/sessions/sess-9/stop" {
			t.Errorf("request = %s %s, want POST /api/sessions/sess-9/stop", r.Method, r.URL.Path)
		}
		var payload map[string]int64
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["elapsedSeconds"] != 305 {
			t.Errorf("elapsedSeconds = %d, want 305", payload["elapsedSeconds"])
		}
		json.NewEncoder(w).Encode(core.Session{ID: "sess-9", Status: core.StatusStopped, ElapsedSeconds: 305})
	})

	final, err := client.StopSession(context.Background(), "sess-9", 305)
	if err != nil {
		t.Fatalf("StopSession() error = %v", err)
	}
	if final.Status != core.StatusStopped || final.ElapsedSeconds != 305 {
		t.Errorf("final = %+v, want stopped with 305s", final)
	}
}

// Requirement: pause/resume/update are bare commands against the session
// path.
func TestClient_SessionCommands(t *testing.T) {
	tests := []struct {
		name     string
		call     func(*Client) error
		wantPath string
		wantVerb string
	}{
		{
			name:     "pause",
			call:     func(c *Client) error { return c.PauseSession(context.Background(), "sess-1") },
			wantPath: "/api/sessions/sess-1/pause",
			wantVerb: http.MethodPost,
		},
		{
			name:     "resume",
			call:     func(c *Client) error { return c.ResumeSession(context.Background(), "sess-1") },
			wantPath: "/api/sessions/sess-1/resume",
			wantVerb: http.MethodPost,
		},
		{
			name:     "update elapsed",
			call:     func(c *Client) error { return c.UpdateElapsed(context.Background(), "sess-1", 42) },
			wantPath: "/api/sessions/sess-1/elapsed",
			wantVerb: http.MethodPut,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != test.wantVerb || r.URL.Path != test.wantPath {
					t.Errorf("request = %s %s, want %s %s", r.Method, r.URL.Path, test.wantVerb, test.wantPath)
				}
				w.WriteHeader(http.StatusNoContent)
			})

			if err := test.call(client); err != nil {
				t.Fatalf("call error = %v", err)
			}
		})
	}
}

// Requirement: "no active session" responses map to (nil, nil), not an
// error.
func TestClient_ActiveSession(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantSession bool
		wantErr     bool
	}{
		{name: "active running", status: http.StatusOK, body: `{"id":"sess-3","status":"running","startedAt":"2026-03-14T09:00:00Z"}`, wantSession: true},
		{name: "404 none", status: http.StatusNotFound, body: `{"error":"no active session"}`},
		{name: "204 none", status: http.StatusNoContent},
		{name: "null body none", status: http.StatusOK, body: `null`},
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"boom"}`, wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(test.status)
				w.Write([]byte(test.body))
			})

			session, err := client.ActiveSession(context.Background())
			if (err != nil) != test.wantErr {
				t.Fatalf("ActiveSession() error = %v, wantErr %v", err, test.wantErr)
			}
			if (session != nil) != test.wantSession {
				t.Errorf("ActiveSession() = %v, wantSession %v", session, test.wantSession)
			}
		})
	}
}

// Requirement: non-2xx responses surface as *APIError with the server's
// message.
func TestClient_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"a session is already active"}`))
	})

	_, err := client.StartSession(context.Background(), core.StartSessionInput{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusConflict || apiErr.Message != "a session is already active" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

// Requirement: progress endpoints decode their snapshots.
func TestClient_ProgressEndpoints(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/progress/profile":
			json.NewEncoder(w).Encode(core.UserStats{UserID: "u1", XP: 500, Level: 3})
		case "/api/progress/achievements":
			json.NewEncoder(w).Encode([]core.Achievement{{ID: "early-bird", Progress: 1}})
		case "/api/progress/skill-tree":
			json.NewEncoder(w).Encode([]core.SkillNode{{ID: "focus", Unlocked: true}})
		case "/api/progress/leaderboard":
			if r.URL.Query().Get("period") != "weekly" || r.URL.Query().Get("limit") != "5" {
				t.Errorf("query = %s, want period=weekly limit=5", r.URL.RawQuery)
			}
			json.NewEncoder(w).Encode([]core.LeaderboardEntry{{Rank: 1, Username: "ada"}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	stats, err := client.Profile(ctx)
	if err != nil || stats.XP != 500 {
		t.Fatalf("Profile() = %+v, %v", stats, err)
	}
	achievements, err := client.Achievements(ctx)
	if err != nil || len(achievements) != 1 {
		t.Fatalf("Achievements() = %+v, %v", achievements, err)
	}
	nodes, err := client.SkillTree(ctx)
	if err != nil || len(nodes) != 1 || !nodes[0].Unlocked {
		t.Fatalf("SkillTree() = %+v, %v", nodes, err)
	}
	entries, err := client.Leaderboard(ctx, "weekly", 5)
	if err != nil || len(entries) != 1 || entries[0].Username != "ada" {
		t.Fatalf("Leaderboard() = %+v, %v", entries, err)
	}
}

// Requirement: network failures propagate wrapped.
func TestClient_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	server.Close()

	if _, err := client.ActiveSession(context.Background()); err == nil {
		t.Fatal("ActiveSession() expected network error, got nil")
	}
}
