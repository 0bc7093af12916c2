package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/questlog/questlog/core"
	"github.com/questlog/questlog/pkg/cache"
)

func newTestProgress(api *FakeProgressAPI) *Progress {
	snapshots := cache.New(core.CacheConfig{TTL: time.Minute, MaxSize: 16})
	return NewProgress(api, snapshots, nil)
}

// Requirement: snapshot fetches hit the remote once and are served from
// cache afterwards.
func TestProgress_CachedFetches(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		fetch    func(*Progress) error
	}{
		{
			name:     "profile",
			endpoint: "profile",
			fetch: func(p *Progress) error {
				_, err := p.Profile(context.Background())
				return err
			},
		},
		{
			name:     "achievements",
			endpoint: "achievements",
			fetch: func(p *Progress) error {
				_, err := p.Achievements(context.Background())
				return err
			},
		},
		{
			name:     "skill tree",
			endpoint: "skilltree",
			fetch: func(p *Progress) error {
				_, err := p.SkillTree(context.Background())
				return err
			},
		},
		{
			name:     "leaderboard",
			endpoint: "leaderboard",
			fetch: func(p *Progress) error {
				_, err := p.Leaderboard(context.Background(), PeriodWeekly, 10)
				return err
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			api := NewFakeProgressAPI()
			progress := newTestProgress(api)

			for i := 0; i < 3; i++ {
				if err := test.fetch(progress); err != nil {
					t.Fatalf("fetch #%d error = %v", i+1, err)
				}
			}
			if got := api.Calls(test.endpoint); got != 1 {
				t.Errorf("remote calls = %d, want 1 (cached afterwards)", got)
			}
		})
	}
}

// Requirement: profile data passes through unchanged.
func TestProgress_Profile(t *testing.T) {
	api := NewFakeProgressAPI()
	progress := newTestProgress(api)

	stats, err := progress.Profile(context.Background())
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if stats.XP != 1200 || stats.Level != 5 {
		t.Errorf("Profile() = %+v, want XP=1200 Level=5", stats)
	}
}

// Requirement: leaderboard input validation happens before any network
// or cache access.
func TestProgress_LeaderboardValidation(t *testing.T) {
	tests := []struct {
		name    string
		period  string
		limit   int
		wantErr error
	}{
		{name: "daily ok", period: PeriodDaily, limit: 10},
		{name: "weekly ok", period: PeriodWeekly, limit: 1},
		{name: "alltime ok", period: PeriodAllTime, limit: 50},
		{name: "default limit", period: PeriodDaily, limit: 0},
		{name: "unknown period", period: "monthly", limit: 10, wantErr: core.ErrInvalidPeriod},
		{name: "negative limit", period: PeriodDaily, limit: -1, wantErr: core.ErrInvalidLimit},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			api := NewFakeProgressAPI()
			progress := newTestProgress(api)

			_, err := progress.Leaderboard(context.Background(), test.period, test.limit)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("Leaderboard() error = %v, want %v", err, test.wantErr)
			}
			if test.wantErr != nil && api.Calls("leaderboard") != 0 {
				t.Error("invalid input reached the remote")
			}
		})
	}
}

// Requirement: remote failures propagate wrapped; nothing is cached.
func TestProgress_RemoteFailure(t *testing.T) {
	api := NewFakeProgressAPI()
	remoteErr := errors.New("500 internal")
	api.profileErr = remoteErr
	progress := newTestProgress(api)

	if _, err := progress.Profile(context.Background()); !errors.Is(err, remoteErr) {
		t.Fatalf("Profile() error = %v, want wrapped %v", err, remoteErr)
	}

	// Clear the failure; the next call must go to the remote again.
	api.profileErr = nil
	if _, err := progress.Profile(context.Background()); err != nil {
		t.Fatalf("Profile() after recovery error = %v", err)
	}
	if got := api.Calls("profile"); got != 2 {
		t.Errorf("remote calls = %d, want 2 (failure not cached)", got)
	}
}

// Requirement: a nil cache disables caching without changing behavior.
func TestProgress_NoCache(t *testing.T) {
	api := NewFakeProgressAPI()
	progress := NewProgress(api, nil, nil)

	for i := 0; i < 2; i++ {
		if _, err := progress.Profile(context.Background()); err != nil {
			t.Fatalf("Profile() error = %v", err)
		}
	}
	if got := api.Calls("profile"); got != 2 {
		t.Errorf("remote calls = %d, want 2 without cache", got)
	}
}
