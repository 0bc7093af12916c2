package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/questlog/questlog/core"
)

// Leaderboard periods accepted by the remote service.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodAllTime = "alltime"
)

const defaultLeaderboardLimit = 10

// Progress is a thin cached wrapper over the remote gamification
// endpoints. XP award amounts, unlock conditions, and ranking semantics
// are computed server-side; nothing here re-derives them.
type Progress struct {
	api   core.ProgressAPI
	cache core.Cache // optional, can be nil if caching is disabled
	log   *zap.Logger
}

func NewProgress(api core.ProgressAPI, cache core.Cache, log *zap.Logger) *Progress {
	if log == nil {
		log = zap.NewNop()
	}
	return &Progress{api: api, cache: cache, log: log}
}

// Profile returns the user's progression snapshot.
func (p *Progress) Profile(ctx context.Context) (*core.UserStats, error) {
	const key = "profile"

	if p.cache != nil {
		if cached, err := p.cache.Get(key); err == nil {
			if stats, ok := cached.(*core.UserStats); ok {
				return stats, nil
			}
		}
	}

	stats, err := p.api.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	if p.cache != nil {
		// We don't fail the request if caching fails
		_ = p.cache.Set(key, stats)
	}
	return stats, nil
}

// Achievements returns the badge list with unlock state.
func (p *Progress) Achievements(ctx context.Context) ([]core.Achievement, error) {
	const key = "achievements"

	if p.cache != nil {
		if cached, err := p.cache.Get(key); err == nil {
			if achievements, ok := cached.([]core.Achievement); ok {
				return achievements, nil
			}
		}
	}

	achievements, err := p.api.Achievements(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch achievements: %w", err)
	}

	if p.cache != nil {
		_ = p.cache.Set(key, achievements)
	}
	return achievements, nil
}

// SkillTree returns the server-defined skill tree.
func (p *Progress) SkillTree(ctx context.Context) ([]core.SkillNode, error) {
	const key = "skilltree"

	if p.cache != nil {
		if cached, err := p.cache.Get(key); err == nil {
			if nodes, ok := cached.([]core.SkillNode); ok {
				return nodes, nil
			}
		}
	}

	nodes, err := p.api.SkillTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch skill tree: %w", err)
	}

	if p.cache != nil {
		_ = p.cache.Set(key, nodes)
	}
	return nodes, nil
}

// Leaderboard returns one ranked page for the given period.
func (p *Progress) Leaderboard(ctx context.Context, period string, limit int) ([]core.LeaderboardEntry, error) {
	switch period {
	case PeriodDaily, PeriodWeekly, PeriodAllTime:
	default:
		return nil, core.ErrInvalidPeriod
	}
	if limit < 0 {
		return nil, core.ErrInvalidLimit
	}
	if limit == 0 {
		limit = defaultLeaderboardLimit
	}

	key := fmt.Sprintf("leaderboard:%s:%d", period, limit)

	if p.cache != nil {
		if cached, err := p.cache.Get(key); err == nil {
			if entries, ok := cached.([]core.LeaderboardEntry); ok {
				return entries, nil
			}
		}
	}

	entries, err := p.api.Leaderboard(ctx, period, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}

	if p.cache != nil {
		_ = p.cache.Set(key, entries)
	}
	return entries, nil
}
