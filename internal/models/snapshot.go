package models

import (
	"time"
)

// SnapshotPeriod represents the time window a snapshot covers
type SnapshotPeriod string

const (
	PeriodYear  SnapshotPeriod = "year"
	PeriodMonth SnapshotPeriod = "month"
	PeriodWeek  SnapshotPeriod = "week"
)

// Snapshot is a persisted, self-contained aggregation result for one period.
// The year snapshot carries the full raw activity log per contributor and the
// incremental fetch cursor; month/week snapshots carry only the events inside
// their window and are independent projections, not deltas.
type Snapshot struct {
	Period        SnapshotPeriod          `json:"period"`
	UpdatedAt     time.Time               `json:"updatedAt"`
	LastFetchedAt *time.Time              `json:"lastFetchedAt,omitempty"`
	StartDate     time.Time               `json:"startDate"`
	EndDate       time.Time               `json:"endDate"`
	HiddenRoles   []string                `json:"hiddenRoles"`
	TopByActivity map[ActivityType]string `json:"topByActivity"`
	Entries       []*Contributor          `json:"entries"`
}

// RecentActivityItem is a single event in the chronological feed
type RecentActivityItem struct {
	Username  string `json:"username"`
	Name      string `json:"name"`
	Title     string `json:"title"`
	Link      string `json:"link"`
	AvatarURL string `json:"avatar_url"`
	Points    int    `json:"points"`
}

// RecentActivityGroup holds all feed items for one calendar day
type RecentActivityGroup struct {
	Date  string               `json:"date"`
	Items []RecentActivityItem `json:"items"`
}

// RecentActivityFeed groups recent events from all contributors by day,
// newest day first
type RecentActivityFeed struct {
	UpdatedAt time.Time             `json:"updatedAt"`
	Groups    []RecentActivityGroup `json:"groups"`
}

// Directory is the served combination of multiple period snapshots
type Directory struct {
	UpdatedAt time.Time      `json:"updatedAt"`
	People    []*Contributor `json:"people"`
	CoreTeam  []string       `json:"coreTeam"`
	Alumni    []string       `json:"alumni"`
}
