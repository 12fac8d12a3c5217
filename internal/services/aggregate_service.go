package services

import (
	"sort"

	"github.com/alimgiray/contribboard/internal/models"
)

// AggregateService folds classified activities into per-contributor raw logs
type AggregateService struct {
	roleService *RoleService
}

func NewAggregateService(roleService *RoleService) *AggregateService {
	return &AggregateService{roleService: roleService}
}

// RecordEvent ensures a contributor aggregate exists for the username and
// appends the activity to its log. The role is resolved only on first sight.
func (s *AggregateService) RecordEvent(aggregates map[string]*models.Contributor, username, name, avatarURL string, activity models.Activity) {
	contributor, ok := aggregates[username]
	if !ok {
		contributor = models.NewContributor(username, name, avatarURL, s.roleService.Resolve(username))
		aggregates[username] = contributor
	}

	// Search results don't always carry the profile fields
	if contributor.Name == "" {
		contributor.Name = name
	}
	if contributor.AvatarURL == "" {
		contributor.AvatarURL = avatarURL
	}

	contributor.Append(activity)
}

// MergeSnapshot unions a prior snapshot's raw logs into the fresh aggregates.
// Contributors seen only in history are restored with the role stored in the
// snapshot, not re-resolved against the current membership lists.
func (s *AggregateService) MergeSnapshot(aggregates map[string]*models.Contributor, prior *models.Snapshot) {
	if prior == nil {
		return
	}

	for _, entry := range prior.Entries {
		existing, ok := aggregates[entry.Username]
		if !ok {
			restored := models.NewContributor(entry.Username, entry.Name, entry.AvatarURL, entry.Role)
			restored.Activities = append(restored.Activities, entry.Activities...)
			aggregates[entry.Username] = restored
			continue
		}

		existing.Activities = append(existing.Activities, entry.Activities...)
		if existing.Name == "" {
			existing.Name = entry.Name
		}
		if existing.AvatarURL == "" {
			existing.AvatarURL = entry.AvatarURL
		}
	}
}

// RecomputeAll runs dedup and recompute over every aggregate and returns the
// contributors with positive totals sorted by points descending
func (s *AggregateService) RecomputeAll(aggregates map[string]*models.Contributor) []*models.Contributor {
	entries := make([]*models.Contributor, 0, len(aggregates))
	for _, contributor := range aggregates {
		contributor.DedupeAndRecompute()
		if contributor.TotalPoints <= 0 {
			continue
		}
		entries = append(entries, contributor)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		return entries[i].Username < entries[j].Username
	})

	return entries
}

// TopByActivity returns, per activity type, the username with the highest
// count for that type
func TopByActivity(entries []*models.Contributor) map[models.ActivityType]string {
	top := make(map[models.ActivityType]string)
	best := make(map[models.ActivityType]int)

	for _, contributor := range entries {
		for activityType, entry := range contributor.ActivityBreakdown {
			if entry.Count > best[activityType] {
				best[activityType] = entry.Count
				top[activityType] = contributor.Username
			}
		}
	}

	return top
}
