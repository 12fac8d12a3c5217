package services

import (
	"context"
	"fmt"
	"time"

	"github.com/alimgiray/contribboard/pkg/logger"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

const (
	perPage           = 100
	defaultQuotaDelay = 2 * time.Second
)

// GitHubService fetches raw activity from the GitHub API. Search queries are
// partitioned into fixed-size day windows because the search endpoint caps
// any single query at 1000 results, and every call consults the remaining
// rate quota before the next request.
type GitHubService struct {
	client           *github.Client
	searchWindowDays int
	searchDelay      time.Duration
}

func NewGitHubService(token string, searchWindowDays int, searchDelay time.Duration) *GitHubService {
	client := github.NewClient(nil)
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		client = github.NewClient(oauth2.NewClient(context.Background(), ts))
	}

	if searchWindowDays <= 0 {
		searchWindowDays = 30
	}

	return &GitHubService{
		client:           client,
		searchWindowDays: searchWindowDays,
		searchDelay:      searchDelay,
	}
}

// SearchIssuesByDateRange returns all issues/PRs matching the query with
// dateField inside [since, until). Items collected before a failure are
// returned alongside the error so callers can continue with partial data.
func (s *GitHubService) SearchIssuesByDateRange(ctx context.Context, query string, since, until time.Time, dateField string) ([]*github.Issue, error) {
	var allItems []*github.Issue

	windowStart := since
	for windowStart.Before(until) {
		windowEnd := windowStart.AddDate(0, 0, s.searchWindowDays)
		if windowEnd.After(until) {
			windowEnd = until
		}

		windowQuery := fmt.Sprintf("%s %s:%s..%s", query, dateField,
			windowStart.Format("2006-01-02"), windowEnd.Format("2006-01-02"))

		opts := &github.SearchOptions{
			Sort:        "created",
			Order:       "asc",
			ListOptions: github.ListOptions{PerPage: perPage},
		}

		for {
			// The search API has its own, much stricter quota class
			time.Sleep(s.searchDelay)

			result, resp, err := s.client.Search.Issues(ctx, windowQuery, opts)
			if err != nil {
				return allItems, fmt.Errorf("search %q failed: %w", windowQuery, err)
			}

			allItems = append(allItems, result.Issues...)
			s.waitForQuota(resp)

			// A short page means the window is exhausted
			if len(result.Issues) < perPage || resp.NextPage == 0 {
				break
			}
			opts.Page = resp.NextPage
		}

		windowStart = windowEnd
	}

	return allItems, nil
}

// ListOrganizationRepos returns the names of all repositories in the
// organization. A page failure logs and stops, propagating whatever was
// already collected rather than aborting the whole run.
func (s *GitHubService) ListOrganizationRepos(ctx context.Context, org string) []string {
	var names []string
	opts := &github.RepositoryListByOrgOptions{
		Type:        "public",
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	for {
		repos, resp, err := s.client.Repositories.ListByOrg(ctx, org, opts)
		if err != nil {
			logger.WithError(err).Errorf("Failed to list repositories for %s, continuing with %d collected", org, len(names))
			return names
		}

		for _, repo := range repos {
			names = append(names, repo.GetName())
		}

		s.waitForQuota(resp)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return names
}

// ListRepositoryIssues returns all issues in a repository updated since the
// given time
func (s *GitHubService) ListRepositoryIssues(ctx context.Context, owner, repo string, since time.Time) ([]*github.Issue, error) {
	var allIssues []*github.Issue
	opts := &github.IssueListByRepoOptions{
		State:       "all",
		Since:       since,
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	for {
		issues, resp, err := s.client.Issues.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			return allIssues, fmt.Errorf("failed to list issues for %s/%s: %w", owner, repo, err)
		}

		allIssues = append(allIssues, issues...)
		s.waitForQuota(resp)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allIssues, nil
}

// ListPullRequestReviews returns all reviews on a pull request
func (s *GitHubService) ListPullRequestReviews(ctx context.Context, owner, repo string, number int) ([]*github.PullRequestReview, error) {
	var allReviews []*github.PullRequestReview
	opts := &github.ListOptions{PerPage: perPage}

	for {
		reviews, resp, err := s.client.PullRequests.ListReviews(ctx, owner, repo, number, opts)
		if err != nil {
			return allReviews, fmt.Errorf("failed to list reviews for %s/%s#%d: %w", owner, repo, number, err)
		}

		allReviews = append(allReviews, reviews...)
		s.waitForQuota(resp)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allReviews, nil
}

// ListIssueEvents returns all timeline events on an issue
func (s *GitHubService) ListIssueEvents(ctx context.Context, owner, repo string, number int) ([]*github.IssueEvent, error) {
	var allEvents []*github.IssueEvent
	opts := &github.ListOptions{PerPage: perPage}

	for {
		events, resp, err := s.client.Issues.ListIssueEvents(ctx, owner, repo, number, opts)
		if err != nil {
			return allEvents, fmt.Errorf("failed to list events for %s/%s#%d: %w", owner, repo, number, err)
		}

		allEvents = append(allEvents, events...)
		s.waitForQuota(resp)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allEvents, nil
}

// waitForQuota sleeps according to the remaining rate quota reported on the
// response
func (s *GitHubService) waitForQuota(resp *github.Response) {
	if resp == nil {
		time.Sleep(defaultQuotaDelay)
		return
	}
	time.Sleep(quotaDelay(resp.Rate.Remaining))
}

// quotaDelay maps the remaining request quota to a backoff delay
func quotaDelay(remaining int) time.Duration {
	switch {
	case remaining > 500:
		return 500 * time.Millisecond
	case remaining > 100:
		return time.Second
	default:
		return 3 * time.Second
	}
}
