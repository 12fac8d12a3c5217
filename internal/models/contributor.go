package models

import (
	"sort"
	"time"
)

// Role represents a contributor's standing in the organization
type Role string

const (
	RoleMaintainer  Role = "Maintainer"
	RoleAlumni      Role = "Alumni"
	RoleContributor Role = "Contributor"
)

// BreakdownEntry holds the count and points for one activity type
type BreakdownEntry struct {
	Count  int `json:"count"`
	Points int `json:"points"`
}

// DailyActivity holds the activity totals for one calendar day
type DailyActivity struct {
	Date   string `json:"date"`
	Count  int    `json:"count"`
	Points int    `json:"points"`
}

// Contributor aggregates the full activity log of one person plus the
// derived totals. TotalPoints, ActivityBreakdown and DailyActivity are
// materialized views over Activities and are never mutated independently.
type Contributor struct {
	Username          string                           `json:"username"`
	Name              string                           `json:"name"`
	AvatarURL         string                           `json:"avatar_url"`
	Role              Role                             `json:"role"`
	TotalPoints       int                              `json:"total_points"`
	ActivityBreakdown map[ActivityType]*BreakdownEntry `json:"activity_breakdown"`
	DailyActivity     []DailyActivity                  `json:"daily_activity"`
	Activities        []Activity                       `json:"activities"`
}

// NewContributor creates a new Contributor with empty logs
func NewContributor(username, name, avatarURL string, role Role) *Contributor {
	return &Contributor{
		Username:          username,
		Name:              name,
		AvatarURL:         avatarURL,
		Role:              role,
		ActivityBreakdown: make(map[ActivityType]*BreakdownEntry),
	}
}

// Append adds an activity to the raw log and updates the derived fields in
// place. The in-place update is only a cache for intermediate reads; the
// authoritative values come from DedupeAndRecompute before anything is
// persisted.
func (c *Contributor) Append(activity Activity) {
	c.Activities = append(c.Activities, activity)
	c.TotalPoints += activity.Points

	entry, ok := c.ActivityBreakdown[activity.Type]
	if !ok {
		entry = &BreakdownEntry{}
		c.ActivityBreakdown[activity.Type] = entry
	}
	entry.Count++
	entry.Points += activity.Points
}

// DedupeAndRecompute collapses duplicate activities by identity key (first
// occurrence wins) and rebuilds all derived fields from the filtered log.
// Running it on an already-deduplicated log is a no-op.
func (c *Contributor) DedupeAndRecompute() {
	seen := make(map[string]bool, len(c.Activities))
	deduped := make([]Activity, 0, len(c.Activities))
	for _, activity := range c.Activities {
		key := activity.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, activity)
	}
	c.Activities = deduped

	c.TotalPoints = 0
	c.ActivityBreakdown = make(map[ActivityType]*BreakdownEntry)
	daily := make(map[string]*DailyActivity)

	for _, activity := range c.Activities {
		c.TotalPoints += activity.Points

		entry, ok := c.ActivityBreakdown[activity.Type]
		if !ok {
			entry = &BreakdownEntry{}
			c.ActivityBreakdown[activity.Type] = entry
		}
		entry.Count++
		entry.Points += activity.Points

		date := activity.OccurredAt.UTC().Format("2006-01-02")
		day, ok := daily[date]
		if !ok {
			day = &DailyActivity{Date: date}
			daily[date] = day
		}
		day.Count++
		day.Points += activity.Points
	}

	c.DailyActivity = make([]DailyActivity, 0, len(daily))
	for _, day := range daily {
		c.DailyActivity = append(c.DailyActivity, *day)
	}
	// Map iteration order carries no meaning; sort for stable output
	sort.Slice(c.DailyActivity, func(i, j int) bool {
		return c.DailyActivity[i].Date > c.DailyActivity[j].Date
	})
}

// DeclaredActivityCount returns the total activity count according to the
// breakdown, which may exceed the number of retained raw activities in
// short-period snapshots.
func (c *Contributor) DeclaredActivityCount() int {
	total := 0
	for _, entry := range c.ActivityBreakdown {
		total += entry.Count
	}
	return total
}

// ActivitiesSince returns the activities that occurred at or after the cutoff
func (c *Contributor) ActivitiesSince(cutoff time.Time) []Activity {
	var filtered []Activity
	for _, activity := range c.Activities {
		if !activity.OccurredAt.Before(cutoff) {
			filtered = append(filtered, activity)
		}
	}
	return filtered
}
