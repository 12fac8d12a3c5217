package services

import (
	"sort"
	"time"

	"github.com/alimgiray/contribboard/internal/models"
)

// mergedActivityCap bounds how many real activities a merged entry displays
const mergedActivityCap = 15

// placeholderTitle marks synthesized activities standing in for raw events
// that were not retained in the short-period snapshot files
const placeholderTitle = "Earlier contribution"

// MergeService combines multiple persisted snapshots into one directory for
// the read API
type MergeService struct{}

func NewMergeService() *MergeService {
	return &MergeService{}
}

// MergeSnapshots merges entries by username. The first snapshot's base fields
// win on first sight; later snapshots only contribute additional activities.
// Nil snapshots (absent files) are skipped.
func (s *MergeService) MergeSnapshots(snapshots []*models.Snapshot, coreTeam, alumni []string) *models.Directory {
	people := make(map[string]*models.Contributor)
	var order []string
	var updatedAt time.Time

	for _, snapshot := range snapshots {
		if snapshot == nil {
			continue
		}
		if snapshot.UpdatedAt.After(updatedAt) {
			updatedAt = snapshot.UpdatedAt
		}

		for _, entry := range snapshot.Entries {
			existing, ok := people[entry.Username]
			if !ok {
				people[entry.Username] = copyContributor(entry)
				order = append(order, entry.Username)
				continue
			}
			existing.Activities = append(existing.Activities, entry.Activities...)
		}
	}

	directory := &models.Directory{
		UpdatedAt: updatedAt,
		CoreTeam:  coreTeam,
		Alumni:    alumni,
	}

	for _, username := range order {
		person := people[username]
		person.Activities = s.reconcileActivities(person)
		directory.People = append(directory.People, person)
	}

	sort.Slice(directory.People, func(i, j int) bool {
		if directory.People[i].TotalPoints != directory.People[j].TotalPoints {
			return directory.People[i].TotalPoints > directory.People[j].TotalPoints
		}
		return directory.People[i].Username < directory.People[j].Username
	})

	return directory
}

// reconcileActivities unions the short activity lists, truncates to the
// display cap, and pads with placeholders up to the breakdown-declared count.
// The padding is a documented lossy repair: older raw events were never
// retained in the period files, so count parity with the breakdown is kept
// with synthetic entries instead.
func (s *MergeService) reconcileActivities(person *models.Contributor) []models.Activity {
	seen := make(map[string]bool, len(person.Activities))
	merged := make([]models.Activity, 0, len(person.Activities))
	for _, activity := range person.Activities {
		key := mergeKey(activity)
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, activity)
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].OccurredAt.After(merged[j].OccurredAt)
	})

	if len(merged) > mergedActivityCap {
		merged = merged[:mergedActivityCap]
	}

	// Pad per label so the visible count matches the declared total
	realCounts := make(map[models.ActivityType]int)
	for _, activity := range merged {
		realCounts[activity.Type]++
	}

	labels := make([]models.ActivityType, 0, len(person.ActivityBreakdown))
	for label := range person.ActivityBreakdown {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	for _, label := range labels {
		for i := realCounts[label]; i < person.ActivityBreakdown[label].Count; i++ {
			merged = append(merged, models.Activity{
				Type:       label,
				OccurredAt: time.Unix(0, 0).UTC(),
				Title:      placeholderTitle,
				Link:       "",
			})
		}
	}

	return merged
}

// mergeKey is the composite identity used when unioning short activity
// lists: (type, link) when a link exists, (type, title, timestamp) otherwise
func mergeKey(activity models.Activity) string {
	if activity.Link != "" {
		return string(activity.Type) + "|" + activity.Link
	}
	return string(activity.Type) + "|" + activity.Title + "|" + activity.OccurredAt.UTC().Format(time.RFC3339)
}

// copyContributor clones the base fields of an entry so merging never
// mutates a loaded snapshot in place
func copyContributor(entry *models.Contributor) *models.Contributor {
	clone := models.NewContributor(entry.Username, entry.Name, entry.AvatarURL, entry.Role)
	clone.TotalPoints = entry.TotalPoints
	for label, breakdown := range entry.ActivityBreakdown {
		value := *breakdown
		clone.ActivityBreakdown[label] = &value
	}
	clone.DailyActivity = append(clone.DailyActivity, entry.DailyActivity...)
	clone.Activities = append(clone.Activities, entry.Activities...)
	return clone
}
