package services

import (
	"sort"
	"time"

	"github.com/alimgiray/contribboard/internal/models"
)

// ProjectionService derives short-window snapshots and the recent-activity
// feed from the year snapshot's deduplicated raw logs. Projections are
// independent recomputations over the filtered subset, never reused year
// totals.
type ProjectionService struct{}

func NewProjectionService() *ProjectionService {
	return &ProjectionService{}
}

// Project builds a snapshot covering the trailing `days` before now.
// Contributors with no events in the window are omitted entirely.
func (s *ProjectionService) Project(year *models.Snapshot, period models.SnapshotPeriod, days int, now time.Time) *models.Snapshot {
	cutoff := now.AddDate(0, 0, -days)

	var entries []*models.Contributor
	for _, contributor := range year.Entries {
		filtered := contributor.ActivitiesSince(cutoff)
		if len(filtered) == 0 {
			continue
		}

		projected := models.NewContributor(contributor.Username, contributor.Name, contributor.AvatarURL, contributor.Role)
		projected.Activities = filtered
		projected.DedupeAndRecompute()
		entries = append(entries, projected)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		return entries[i].Username < entries[j].Username
	})

	return &models.Snapshot{
		Period:        period,
		UpdatedAt:     now,
		StartDate:     cutoff,
		EndDate:       now,
		HiddenRoles:   year.HiddenRoles,
		TopByActivity: TopByActivity(entries),
		Entries:       entries,
	}
}

// RecentFeed groups individual events from all contributors in the trailing
// `days` by calendar day, newest first
func (s *ProjectionService) RecentFeed(year *models.Snapshot, days int, now time.Time) *models.RecentActivityFeed {
	cutoff := now.AddDate(0, 0, -days)

	type datedItem struct {
		occurredAt time.Time
		date       string
		item       models.RecentActivityItem
	}

	var items []datedItem
	for _, contributor := range year.Entries {
		for _, activity := range contributor.ActivitiesSince(cutoff) {
			items = append(items, datedItem{
				occurredAt: activity.OccurredAt,
				date:       activity.OccurredAt.UTC().Format("2006-01-02"),
				item: models.RecentActivityItem{
					Username:  contributor.Username,
					Name:      contributor.Name,
					Title:     activity.Title,
					Link:      activity.Link,
					AvatarURL: contributor.AvatarURL,
					Points:    activity.Points,
				},
			})
		}
	}

	// Newest first, both across and within days
	sort.Slice(items, func(i, j int) bool {
		return items[i].occurredAt.After(items[j].occurredAt)
	})

	feed := &models.RecentActivityFeed{UpdatedAt: now}
	groupIndex := make(map[string]int)
	for _, item := range items {
		idx, ok := groupIndex[item.date]
		if !ok {
			feed.Groups = append(feed.Groups, models.RecentActivityGroup{Date: item.date})
			idx = len(feed.Groups) - 1
			groupIndex[item.date] = idx
		}
		feed.Groups[idx].Items = append(feed.Groups[idx].Items, item.item)
	}

	return feed
}
