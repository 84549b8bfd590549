package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/reposcope/internal/contract"
	"github.com/huangsam/reposcope/schema"
)

// trendStart returns the first day of the month that opens a window of months
// ending with the month of now.
func trendStart(now time.Time, months int) time.Time {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return first.AddDate(0, -(months - 1), 0)
}

// analyzeTrends buckets commit history by month. It returns nil when history
// is unavailable, including when the history client panics.
func (a *Analyzer) analyzeTrends(ctx context.Context, repoPath string) (trends *schema.TrendData) {
	if a.history == nil || a.trendMonths < 1 {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			contract.LogWarn("Skipping trend analysis", fmt.Errorf("history client panic: %v", r))
			trends = nil
		}
	}()
	now := a.now()
	since := trendStart(now, a.trendMonths)
	commits, err := a.history.CommitHistory(ctx, repoPath, since)
	if err != nil {
		contract.LogWarn("Skipping trend analysis", err)
		return nil
	}
	return buildTrends(commits, since, a.trendMonths)
}

func buildTrends(commits []contract.CommitInfo, since time.Time, months int) *schema.TrendData {
	buckets := make([]schema.MonthlyCommits, months)
	index := make(map[string]int, months)
	for i := range buckets {
		month := since.AddDate(0, i, 0).Format("2006-01")
		buckets[i].Month = month
		index[month] = i
	}

	authors := make(map[string]struct{})
	for _, c := range commits {
		i, ok := index[c.When.In(since.Location()).Format("2006-01")]
		if !ok {
			continue
		}
		buckets[i].Commits++
		authors[c.Author] = struct{}{}
	}

	half := months / 2
	first, second := 0, 0
	for i, b := range buckets {
		if i < half {
			first += b.Commits
		} else if i >= months-half {
			second += b.Commits
		}
	}

	return &schema.TrendData{
		Period:         fmt.Sprintf("last %d months", months),
		CommitsByMonth: buckets,
		Contributors:   len(authors),
		ActivityTrend:  activityTrend(first, second),
	}
}

// activityTrend compares commit counts of the older and newer halves.
func activityTrend(first, second int) schema.ActivityTrend {
	switch {
	case first == 0 && second > 0:
		return schema.TrendIncreasing
	case float64(second) > float64(first)*TrendIncreaseRatio:
		return schema.TrendIncreasing
	case float64(second) < float64(first)*TrendDecreaseRatio:
		return schema.TrendDecreasing
	default:
		return schema.TrendStable
	}
}
