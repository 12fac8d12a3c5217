package models

import (
	"time"
)

// ActivityType is the normalized label for a scored contributor action
type ActivityType string

const (
	ActivityPROpened        ActivityType = "PR opened"
	ActivityPRMerged        ActivityType = "PR merged"
	ActivityIssueOpened     ActivityType = "Issue opened"
	ActivityReviewSubmitted ActivityType = "Review submitted"
	ActivityIssueLabeled    ActivityType = "Issue labeled"
	ActivityIssueAssigned   ActivityType = "Issue assigned"
	ActivityIssueClosed     ActivityType = "Issue closed"
)

// Activity is a single raw contributor event. It is append-only: derived
// totals are always rebuilt from the activity log, never the other way around.
type Activity struct {
	Type       ActivityType `json:"type"`
	OccurredAt time.Time    `json:"occurred_at"`
	Title      string       `json:"title,omitempty"`
	Link       string       `json:"link,omitempty"`
	Points     int          `json:"points"`
}

// Key returns the identity used for deduplication. GitHub exposes no stable
// cross-endpoint event id, so the (type, timestamp, link-or-title) tuple is
// the natural key.
func (a *Activity) Key() string {
	ref := a.Link
	if ref == "" {
		ref = a.Title
	}
	return string(a.Type) + "|" + a.OccurredAt.UTC().Format(time.RFC3339) + "|" + ref
}
