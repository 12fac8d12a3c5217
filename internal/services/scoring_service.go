package services

import (
	"strings"
	"time"

	"github.com/alimgiray/contribboard/internal/models"
)

// activityPoints is the fixed scoring table. Event kinds not listed here are
// dropped entirely.
var activityPoints = map[models.ActivityType]int{
	models.ActivityPROpened:        2,
	models.ActivityPRMerged:        5,
	models.ActivityIssueOpened:     1,
	models.ActivityReviewSubmitted: 4,
	models.ActivityIssueLabeled:    2,
	models.ActivityIssueAssigned:   2,
	models.ActivityIssueClosed:     1,
}

// automatedLabels are applied by bots or triage automation and earn no points
var automatedLabels = map[string]bool{
	"stale":        true,
	"wontfix":      true,
	"duplicate":    true,
	"invalid":      true,
	"dependencies": true,
	"security":     true,
	"ci-label":     true,
}

// knownBots are automation accounts that don't follow the usual bot naming
var knownBots = map[string]bool{
	"dependabot":      true,
	"renovate":        true,
	"github-actions":  true,
	"codecov":         true,
	"allcontributors": true,
}

// ScoringService classifies raw platform events into scored activities and
// applies the exclusion rules
type ScoringService struct{}

func NewScoringService() *ScoringService {
	return &ScoringService{}
}

// Classify builds a scored activity for the given type. It returns false for
// unrecognized types, which are dropped.
func (s *ScoringService) Classify(activityType models.ActivityType, occurredAt time.Time, title, link string) (models.Activity, bool) {
	points, ok := activityPoints[activityType]
	if !ok {
		return models.Activity{}, false
	}

	return models.Activity{
		Type:       activityType,
		OccurredAt: occurredAt,
		Title:      title,
		Link:       link,
		Points:     points,
	}, true
}

// IsBot reports whether an account is excluded entirely: non-human account
// types, bot naming conventions, and known automation accounts.
func (s *ScoringService) IsBot(username, accountType string) bool {
	if accountType != "" && accountType != "User" {
		return true
	}

	lower := strings.ToLower(username)
	if strings.HasSuffix(lower, "[bot]") || strings.HasSuffix(lower, "-bot") || strings.HasSuffix(lower, "_bot") {
		return true
	}

	return knownBots[lower]
}

// ShouldCountReview reports whether a review earns points: self-reviews and
// states other than approval/changes-requested are excluded
func (s *ScoringService) ShouldCountReview(reviewer, prAuthor, state string) bool {
	if strings.EqualFold(reviewer, prAuthor) {
		return false
	}
	return state == "APPROVED" || state == "CHANGES_REQUESTED"
}

// ShouldCountLabel reports whether a label event earns points
func (s *ScoringService) ShouldCountLabel(label string) bool {
	return !automatedLabels[strings.ToLower(label)]
}

// ShouldCountAssignment reports whether an assignment earns points;
// self-assignments are excluded
func (s *ScoringService) ShouldCountAssignment(actor, assignee string) bool {
	return !strings.EqualFold(actor, assignee)
}

// ShouldCountClose reports whether a close event earns points; closing your
// own issue is excluded
func (s *ScoringService) ShouldCountClose(closer, issueAuthor string) bool {
	return !strings.EqualFold(closer, issueAuthor)
}
