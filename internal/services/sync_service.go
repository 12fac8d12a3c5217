package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alimgiray/contribboard/internal/models"
	"github.com/alimgiray/contribboard/internal/repositories"
	"github.com/alimgiray/contribboard/pkg/logger"
	"github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"
)

const (
	fullWindowDays  = 365
	weekWindowDays  = 7
	monthWindowDays = 30
	recentFeedDays  = 14
)

// ActivitySource is the abstract platform the pipeline fetches raw events
// from. GitHubService is the production implementation.
type ActivitySource interface {
	SearchIssuesByDateRange(ctx context.Context, query string, since, until time.Time, dateField string) ([]*github.Issue, error)
	ListOrganizationRepos(ctx context.Context, org string) []string
	ListRepositoryIssues(ctx context.Context, owner, repo string, since time.Time) ([]*github.Issue, error)
	ListPullRequestReviews(ctx context.Context, owner, repo string, number int) ([]*github.PullRequestReview, error)
	ListIssueEvents(ctx context.Context, owner, repo string, number int) ([]*github.IssueEvent, error)
}

// SyncService drives one batch pass of the pipeline: pick the fetch window
// from prior run state, ingest and classify raw events, union with the prior
// snapshot's logs, dedupe and recompute, then persist the year snapshot and
// its period projections. Correctness comes from replaying the full
// deduplicated log on every run, never from incrementing stored totals.
type SyncService struct {
	source      ActivitySource
	scoring     *ScoringService
	aggregates  *AggregateService
	projections *ProjectionService

	snapshotRepo *repositories.SnapshotRepository
	syncRunRepo  *repositories.SyncRunRepository

	org         string
	hiddenRoles []string
	batchSize   int
	batchDelay  time.Duration
}

func NewSyncService(
	source ActivitySource,
	scoring *ScoringService,
	aggregates *AggregateService,
	projections *ProjectionService,
	snapshotRepo *repositories.SnapshotRepository,
	syncRunRepo *repositories.SyncRunRepository,
	org string,
	hiddenRoles []string,
	batchSize int,
	batchDelay time.Duration,
) *SyncService {
	if batchSize <= 0 {
		batchSize = 5
	}
	return &SyncService{
		source:       source,
		scoring:      scoring,
		aggregates:   aggregates,
		projections:  projections,
		snapshotRepo: snapshotRepo,
		syncRunRepo:  syncRunRepo,
		org:          org,
		hiddenRoles:  hiddenRoles,
		batchSize:    batchSize,
		batchDelay:   batchDelay,
	}
}

// Run executes one pipeline pass
func (s *SyncService) Run(ctx context.Context) error {
	return s.runAt(ctx, time.Now())
}

func (s *SyncService) runAt(ctx context.Context, now time.Time) error {
	prior, err := s.snapshotRepo.Load("year")
	if err != nil {
		return fmt.Errorf("failed to load prior snapshot: %w", err)
	}

	// Full mode trails 365 days; incremental resumes from the stored cursor
	mode := models.SyncModeFull
	since := now.AddDate(0, 0, -fullWindowDays)
	if prior != nil && prior.LastFetchedAt != nil {
		mode = models.SyncModeIncremental
		since = *prior.LastFetchedAt
	}

	run := models.NewSyncRun(mode, since, now)
	s.recordRun(run, false)

	logger.WithFields(logrus.Fields{
		"mode":  mode,
		"since": since.Format(time.RFC3339),
		"until": now.Format(time.RFC3339),
	}).Info("Starting sync run")

	aggregates := make(map[string]*models.Contributor)
	events := 0

	events += s.ingestPullRequests(ctx, aggregates, since, now)
	events += s.ingestIssues(ctx, aggregates, since, now)
	events += s.ingestIssueEvents(ctx, aggregates, since, now)

	s.aggregates.MergeSnapshot(aggregates, prior)
	entries := s.aggregates.RecomputeAll(aggregates)

	// The display window is always the trailing year regardless of how
	// short the actual fetch window was; the cursor is the run's start so
	// the next incremental run doesn't re-request overlapping time
	lastFetched := now
	year := &models.Snapshot{
		Period:        models.PeriodYear,
		UpdatedAt:     now,
		LastFetchedAt: &lastFetched,
		StartDate:     now.AddDate(0, 0, -fullWindowDays),
		EndDate:       now,
		HiddenRoles:   s.hiddenRoles,
		TopByActivity: TopByActivity(entries),
		Entries:       entries,
	}

	if err := s.snapshotRepo.Save("year", year); err != nil {
		s.failRun(run, err)
		return fmt.Errorf("failed to save year snapshot: %w", err)
	}

	week := s.projections.Project(year, models.PeriodWeek, weekWindowDays, now)
	if err := s.snapshotRepo.Save("week", week); err != nil {
		s.failRun(run, err)
		return fmt.Errorf("failed to save week snapshot: %w", err)
	}

	month := s.projections.Project(year, models.PeriodMonth, monthWindowDays, now)
	if err := s.snapshotRepo.Save("month", month); err != nil {
		s.failRun(run, err)
		return fmt.Errorf("failed to save month snapshot: %w", err)
	}

	feed := s.projections.RecentFeed(year, recentFeedDays, now)
	if err := s.snapshotRepo.SaveRecentActivities(feed); err != nil {
		s.failRun(run, err)
		return fmt.Errorf("failed to save recent activities: %w", err)
	}

	run.MarkCompleted(events, len(entries))
	s.recordRun(run, true)

	logger.WithFields(logrus.Fields{
		"events":       events,
		"contributors": len(entries),
	}).Info("Sync run completed")

	return nil
}

// prRef identifies a pull request whose reviews need a detail fetch
type prRef struct {
	owner  string
	repo   string
	number int
	title  string
	author string
}

// ingestPullRequests records PR-opened and PR-merged events and fans out to
// fetch reviews on the PRs found
func (s *SyncService) ingestPullRequests(ctx context.Context, aggregates map[string]*models.Contributor, since, until time.Time) int {
	events := 0

	opened, err := s.source.SearchIssuesByDateRange(ctx, fmt.Sprintf("org:%s is:pr", s.org), since, until, "created")
	if err != nil {
		logger.WithError(err).Warn("PR search failed, continuing with partial data")
	}

	refs := make(map[string]prRef)
	for _, item := range opened {
		if s.record(aggregates, item.GetUser(), models.ActivityPROpened, item.GetCreatedAt().Time, item.GetTitle(), item.GetHTMLURL()) {
			events++
		}

		owner, repo, parseErr := parseRepositoryURL(item.GetRepositoryURL())
		if parseErr != nil {
			logger.WithError(parseErr).Warnf("Skipping reviews for %s", item.GetHTMLURL())
			continue
		}
		ref := prRef{owner: owner, repo: repo, number: item.GetNumber(), title: item.GetTitle(), author: item.GetUser().GetLogin()}
		refs[fmt.Sprintf("%s/%s#%d", owner, repo, ref.number)] = ref
	}

	merged, err := s.source.SearchIssuesByDateRange(ctx, fmt.Sprintf("org:%s is:pr is:merged", s.org), since, until, "merged")
	if err != nil {
		logger.WithError(err).Warn("Merged PR search failed, continuing with partial data")
	}

	for _, item := range merged {
		if s.record(aggregates, item.GetUser(), models.ActivityPRMerged, item.GetClosedAt().Time, item.GetTitle(), item.GetHTMLURL()) {
			events++
		}

		owner, repo, parseErr := parseRepositoryURL(item.GetRepositoryURL())
		if parseErr != nil {
			continue
		}
		ref := prRef{owner: owner, repo: repo, number: item.GetNumber(), title: item.GetTitle(), author: item.GetUser().GetLogin()}
		refs[fmt.Sprintf("%s/%s#%d", owner, repo, ref.number)] = ref
	}

	events += s.ingestReviews(ctx, aggregates, refs)
	return events
}

// ingestReviews fetches reviews for each PR in bounded concurrent batches.
// All requests in a batch complete before any result touches the shared
// aggregate map, so within-batch completion order cannot affect the fold.
func (s *SyncService) ingestReviews(ctx context.Context, aggregates map[string]*models.Contributor, refs map[string]prRef) int {
	ordered := make([]prRef, 0, len(refs))
	for _, ref := range refs {
		ordered = append(ordered, ref)
	}

	events := 0
	for start := 0; start < len(ordered); start += s.batchSize {
		end := start + s.batchSize
		if end > len(ordered) {
			end = len(ordered)
		}
		batch := ordered[start:end]
		results := make([][]*github.PullRequestReview, len(batch))

		var wg sync.WaitGroup
		for i, ref := range batch {
			wg.Add(1)
			go func(i int, ref prRef) {
				defer wg.Done()
				reviews, err := s.source.ListPullRequestReviews(ctx, ref.owner, ref.repo, ref.number)
				if err != nil {
					logger.WithError(err).Warnf("Failed to fetch reviews for %s/%s#%d", ref.owner, ref.repo, ref.number)
				}
				results[i] = reviews
			}(i, ref)
		}
		wg.Wait()

		// Join before mutate: the shared map is only touched after the
		// whole batch has completed
		for i, ref := range batch {
			for _, review := range results[i] {
				reviewer := review.GetUser().GetLogin()
				if !s.scoring.ShouldCountReview(reviewer, ref.author, review.GetState()) {
					continue
				}
				if s.record(aggregates, review.GetUser(), models.ActivityReviewSubmitted, review.GetSubmittedAt().Time, ref.title, review.GetHTMLURL()) {
					events++
				}
			}
		}

		if end < len(ordered) {
			time.Sleep(s.batchDelay)
		}
	}

	return events
}

// ingestIssues records issue-opened events
func (s *SyncService) ingestIssues(ctx context.Context, aggregates map[string]*models.Contributor, since, until time.Time) int {
	events := 0

	items, err := s.source.SearchIssuesByDateRange(ctx, fmt.Sprintf("org:%s is:issue", s.org), since, until, "created")
	if err != nil {
		logger.WithError(err).Warn("Issue search failed, continuing with partial data")
	}

	for _, item := range items {
		if s.record(aggregates, item.GetUser(), models.ActivityIssueOpened, item.GetCreatedAt().Time, item.GetTitle(), item.GetHTMLURL()) {
			events++
		}
	}

	return events
}

// ingestIssueEvents walks every repository in the organization and records
// triage events (labeled, assigned, closed) on issues updated in the window
func (s *SyncService) ingestIssueEvents(ctx context.Context, aggregates map[string]*models.Contributor, since, until time.Time) int {
	events := 0
	repos := s.source.ListOrganizationRepos(ctx, s.org)

	for _, repo := range repos {
		issues, err := s.source.ListRepositoryIssues(ctx, s.org, repo, since)
		if err != nil {
			logger.WithError(err).Warnf("Failed to list issues for %s, skipping", repo)
			continue
		}

		// Pull requests come back from the issues endpoint too
		var pure []*github.Issue
		for _, issue := range issues {
			if !issue.IsPullRequest() {
				pure = append(pure, issue)
			}
		}

		events += s.ingestEventsForIssues(ctx, aggregates, pure, since, until)
	}

	return events
}

// ingestEventsForIssues fetches issue events in bounded concurrent batches,
// with the same join-before-mutate discipline as reviews
func (s *SyncService) ingestEventsForIssues(ctx context.Context, aggregates map[string]*models.Contributor, issues []*github.Issue, since, until time.Time) int {
	events := 0

	for start := 0; start < len(issues); start += s.batchSize {
		end := start + s.batchSize
		if end > len(issues) {
			end = len(issues)
		}
		batch := issues[start:end]
		results := make([][]*github.IssueEvent, len(batch))

		var wg sync.WaitGroup
		for i, issue := range batch {
			wg.Add(1)
			go func(i int, issue *github.Issue) {
				defer wg.Done()
				owner, repo, err := parseRepositoryURL(issue.GetRepositoryURL())
				if err != nil {
					return
				}
				issueEvents, err := s.source.ListIssueEvents(ctx, owner, repo, issue.GetNumber())
				if err != nil {
					logger.WithError(err).Warnf("Failed to fetch events for %s", issue.GetHTMLURL())
				}
				results[i] = issueEvents
			}(i, issue)
		}
		wg.Wait()

		for i, issue := range batch {
			for _, event := range results[i] {
				occurredAt := event.GetCreatedAt().Time
				if occurredAt.Before(since) || !occurredAt.Before(until) {
					continue
				}
				if s.recordIssueEvent(aggregates, issue, event, occurredAt) {
					events++
				}
			}
		}

		if end < len(issues) {
			time.Sleep(s.batchDelay)
		}
	}

	return events
}

func (s *SyncService) recordIssueEvent(aggregates map[string]*models.Contributor, issue *github.Issue, event *github.IssueEvent, occurredAt time.Time) bool {
	actor := event.GetActor()

	switch event.GetEvent() {
	case "labeled":
		if !s.scoring.ShouldCountLabel(event.GetLabel().GetName()) {
			return false
		}
		return s.record(aggregates, actor, models.ActivityIssueLabeled, occurredAt, issue.GetTitle(), issue.GetHTMLURL())
	case "assigned":
		if !s.scoring.ShouldCountAssignment(actor.GetLogin(), event.GetAssignee().GetLogin()) {
			return false
		}
		return s.record(aggregates, actor, models.ActivityIssueAssigned, occurredAt, issue.GetTitle(), issue.GetHTMLURL())
	case "closed":
		if !s.scoring.ShouldCountClose(actor.GetLogin(), issue.GetUser().GetLogin()) {
			return false
		}
		return s.record(aggregates, actor, models.ActivityIssueClosed, occurredAt, issue.GetTitle(), issue.GetHTMLURL())
	default:
		return false
	}
}

// record applies the bot exclusion, classifies the event and folds it into
// the aggregates. Returns whether the event was counted.
func (s *SyncService) record(aggregates map[string]*models.Contributor, user *github.User, activityType models.ActivityType, occurredAt time.Time, title, link string) bool {
	if user == nil || user.GetLogin() == "" {
		return false
	}
	if s.scoring.IsBot(user.GetLogin(), user.GetType()) {
		return false
	}

	activity, ok := s.scoring.Classify(activityType, occurredAt, title, link)
	if !ok {
		return false
	}

	s.aggregates.RecordEvent(aggregates, user.GetLogin(), user.GetName(), user.GetAvatarURL(), activity)
	return true
}

// recordRun writes the ledger row; ledger failures never fail the run
func (s *SyncService) recordRun(run *models.SyncRun, update bool) {
	if s.syncRunRepo == nil {
		return
	}

	var err error
	if update {
		err = s.syncRunRepo.Update(run)
	} else {
		err = s.syncRunRepo.Create(run)
	}
	if err != nil {
		logger.WithError(err).Warn("Failed to record sync run")
	}
}

func (s *SyncService) failRun(run *models.SyncRun, cause error) {
	run.MarkFailed(cause.Error())
	s.recordRun(run, true)
}

// parseRepositoryURL extracts owner and repo from an API repository URL like
// https://api.github.com/repos/owner/repo
func parseRepositoryURL(url string) (owner, repo string, err error) {
	parts := strings.Split(strings.TrimSuffix(url, "/"), "/")
	if len(parts) < 3 || parts[len(parts)-3] != "repos" {
		return "", "", fmt.Errorf("invalid repository URL: %s", url)
	}
	return parts[len(parts)-2], parts[len(parts)-1], nil
}
