package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/questlog/questlog/core"
)

const (
	GroupByDay  = "Daily"
	GroupByWeek = "Weekly"
)

// GroupSummary aggregates finalized sessions for one day or week.
type GroupSummary struct {
	Key          string
	Title        string
	TotalSeconds int64
	SessionCount int
	ByProject    map[string]int64
}

// GroupKey returns the bucket key for a session start time.
func GroupKey(t time.Time, groupBy string) string {
	if groupBy == GroupByDay {
		return t.Format("2006-01-02")
	} else if groupBy == GroupByWeek {
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	}
	return ""
}

// GroupTitle returns a display title for a session start time's bucket.
func GroupTitle(t time.Time, groupBy string) string {
	if groupBy == GroupByDay {
		return t.Format("Monday, 02 Jan 2006")
	} else if groupBy == GroupByWeek {
		start, end := weekRange(t)
		return fmt.Sprintf("%s - %s", start.Format("Jan 02"), end.Format("Jan 02, 2006"))
	}
	return ""
}

// Summarize buckets finalized sessions by day or week and totals their
// durations, with a per-project breakdown. Results are sorted by key.
func Summarize(sessions []*core.Session, groupBy string) []GroupSummary {
	buckets := make(map[string]*GroupSummary)

	for _, session := range sessions {
		if session == nil || session.Status != core.StatusStopped {
			continue
		}
		key := GroupKey(session.StartedAt, groupBy)
		if key == "" {
			continue
		}

		summary, ok := buckets[key]
		if !ok {
			summary = &GroupSummary{
				Key:       key,
				Title:     GroupTitle(session.StartedAt, groupBy),
				ByProject: make(map[string]int64),
			}
			buckets[key] = summary
		}

		summary.TotalSeconds += session.ElapsedSeconds
		summary.SessionCount++
		if session.ProjectID != "" {
			summary.ByProject[session.ProjectID] += session.ElapsedSeconds
		}
	}

	result := make([]GroupSummary, 0, len(buckets))
	for _, summary := range buckets {
		result = append(result, *summary)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}

// weekRange returns the Monday and Sunday of t's week.
func weekRange(t time.Time) (time.Time, time.Time) {
	offset := int(t.Weekday())
	if offset == 0 {
		offset = 7
	}
	start := t.AddDate(0, 0, -offset+1)
	end := start.AddDate(0, 0, 6)
	return start, end
}
