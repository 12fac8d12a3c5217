package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndRecompute(t *testing.T) {
	day := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("Duplicate events are collapsed", func(t *testing.T) {
		contributor := NewContributor("alice", "Alice", "", RoleContributor)
		contributor.Append(Activity{Type: ActivityPROpened, OccurredAt: day, Title: "Add parser", Link: "https://github.com/org/repo/pull/1", Points: 2})
		contributor.Append(Activity{Type: ActivityPROpened, OccurredAt: day, Title: "Add parser", Link: "https://github.com/org/repo/pull/1", Points: 2})
		contributor.Append(Activity{Type: ActivityPRMerged, OccurredAt: day.Add(time.Hour), Title: "Add parser", Link: "https://github.com/org/repo/pull/1", Points: 5})

		contributor.DedupeAndRecompute()

		assert.Equal(t, 7, contributor.TotalPoints)
		assert.Len(t, contributor.Activities, 2)
		assert.Equal(t, 1, contributor.ActivityBreakdown[ActivityPROpened].Count)
		assert.Equal(t, 2, contributor.ActivityBreakdown[ActivityPROpened].Points)
		assert.Equal(t, 1, contributor.ActivityBreakdown[ActivityPRMerged].Count)
		assert.Equal(t, 5, contributor.ActivityBreakdown[ActivityPRMerged].Points)
	})

	t.Run("Derived fields agree with each other", func(t *testing.T) {
		contributor := NewContributor("alice", "Alice", "", RoleContributor)
		contributor.Append(Activity{Type: ActivityPROpened, OccurredAt: day, Link: "pr/1", Points: 2})
		contributor.Append(Activity{Type: ActivityIssueOpened, OccurredAt: day.AddDate(0, 0, 1), Link: "issue/2", Points: 1})
		contributor.Append(Activity{Type: ActivityReviewSubmitted, OccurredAt: day.AddDate(0, 0, 1), Link: "review/3", Points: 4})

		contributor.DedupeAndRecompute()

		breakdownPoints := 0
		for _, entry := range contributor.ActivityBreakdown {
			breakdownPoints += entry.Points
		}
		dailyPoints := 0
		for _, dayEntry := range contributor.DailyActivity {
			dailyPoints += dayEntry.Points
		}

		assert.Equal(t, contributor.TotalPoints, breakdownPoints)
		assert.Equal(t, contributor.TotalPoints, dailyPoints)
	})

	t.Run("No duplicate identity keys survive", func(t *testing.T) {
		contributor := NewContributor("alice", "Alice", "", RoleContributor)
		for i := 0; i < 3; i++ {
			contributor.Append(Activity{Type: ActivityIssueOpened, OccurredAt: day, Title: "Same issue", Points: 1})
		}

		contributor.DedupeAndRecompute()

		seen := make(map[string]bool)
		for _, activity := range contributor.Activities {
			assert.False(t, seen[activity.Key()], "identity key repeated: %s", activity.Key())
			seen[activity.Key()] = true
		}
	})

	t.Run("Recompute is idempotent", func(t *testing.T) {
		contributor := NewContributor("alice", "Alice", "", RoleContributor)
		contributor.Append(Activity{Type: ActivityPROpened, OccurredAt: day, Link: "pr/1", Points: 2})
		contributor.Append(Activity{Type: ActivityPROpened, OccurredAt: day, Link: "pr/1", Points: 2})
		contributor.Append(Activity{Type: ActivityIssueClosed, OccurredAt: day.Add(2 * time.Hour), Link: "issue/9", Points: 1})

		contributor.DedupeAndRecompute()
		first := *contributor
		firstActivities := append([]Activity(nil), contributor.Activities...)

		contributor.DedupeAndRecompute()

		assert.Equal(t, first.TotalPoints, contributor.TotalPoints)
		assert.Equal(t, firstActivities, contributor.Activities)
		assert.Equal(t, first.DailyActivity, contributor.DailyActivity)
	})

	t.Run("Order of events does not change the totals", func(t *testing.T) {
		activities := []Activity{
			{Type: ActivityPROpened, OccurredAt: day, Link: "pr/1", Points: 2},
			{Type: ActivityPRMerged, OccurredAt: day.Add(time.Hour), Link: "pr/1", Points: 5},
			{Type: ActivityIssueOpened, OccurredAt: day.AddDate(0, 0, 2), Link: "issue/4", Points: 1},
		}

		forward := NewContributor("alice", "Alice", "", RoleContributor)
		for _, activity := range activities {
			forward.Append(activity)
		}
		forward.DedupeAndRecompute()

		reversed := NewContributor("alice", "Alice", "", RoleContributor)
		for i := len(activities) - 1; i >= 0; i-- {
			reversed.Append(activities[i])
		}
		reversed.DedupeAndRecompute()

		assert.Equal(t, forward.TotalPoints, reversed.TotalPoints)
		assert.Equal(t, forward.ActivityBreakdown, reversed.ActivityBreakdown)
		assert.Equal(t, forward.DailyActivity, reversed.DailyActivity)
	})

	t.Run("Daily activity is sorted by date descending", func(t *testing.T) {
		contributor := NewContributor("alice", "Alice", "", RoleContributor)
		contributor.Append(Activity{Type: ActivityIssueOpened, OccurredAt: day, Link: "issue/1", Points: 1})
		contributor.Append(Activity{Type: ActivityIssueOpened, OccurredAt: day.AddDate(0, 0, 3), Link: "issue/2", Points: 1})
		contributor.Append(Activity{Type: ActivityIssueOpened, OccurredAt: day.AddDate(0, 0, 1), Link: "issue/3", Points: 1})

		contributor.DedupeAndRecompute()

		for i := 1; i < len(contributor.DailyActivity); i++ {
			assert.True(t, contributor.DailyActivity[i-1].Date > contributor.DailyActivity[i].Date)
		}
	})
}

func TestActivityKey(t *testing.T) {
	occurredAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("Link is preferred over title", func(t *testing.T) {
		withLink := Activity{Type: ActivityPROpened, OccurredAt: occurredAt, Title: "A title", Link: "pr/1"}
		assert.Contains(t, withLink.Key(), "pr/1")
		assert.NotContains(t, withLink.Key(), "A title")
	})

	t.Run("Title is used when link is absent", func(t *testing.T) {
		withoutLink := Activity{Type: ActivityPROpened, OccurredAt: occurredAt, Title: "A title"}
		assert.Contains(t, withoutLink.Key(), "A title")
	})
}

func TestActivitiesSince(t *testing.T) {
	day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	contributor := NewContributor("alice", "Alice", "", RoleContributor)
	contributor.Append(Activity{Type: ActivityIssueOpened, OccurredAt: day.AddDate(0, 0, -10), Link: "issue/1", Points: 1})
	contributor.Append(Activity{Type: ActivityIssueOpened, OccurredAt: day.AddDate(0, 0, -2), Link: "issue/2", Points: 1})
	contributor.Append(Activity{Type: ActivityIssueOpened, OccurredAt: day, Link: "issue/3", Points: 1})

	filtered := contributor.ActivitiesSince(day.AddDate(0, 0, -7))

	assert.Len(t, filtered, 2)
	for _, activity := range filtered {
		assert.False(t, activity.OccurredAt.Before(day.AddDate(0, 0, -7)))
	}
}
