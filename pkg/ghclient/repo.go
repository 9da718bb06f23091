/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package ghclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v75/github"

	"github.com/KinsonDigital/Infrastructure-sub000/pkg/prsync"
)

// Repo is a repository-scoped view of the GitHub API.
type Repo struct {
	owner string
	name  string
	gh    *github.Client
}

// NewRepo wraps a client for one repository.
func NewRepo(gh *github.Client, owner, name string) *Repo {
	return &Repo{owner: owner, name: name, gh: gh}
}

// Owner returns the repository owner login.
func (r *Repo) Owner() string { return r.owner }

// Name returns the repository name.
func (r *Repo) Name() string { return r.name }

// Client exposes the underlying go-github client for operations the wrapper
// does not cover.
func (r *Repo) Client() *github.Client { return r.gh }

// IssueLookup is the result of fetching an issue: either found with a value,
// or cleanly absent. Transport failures are returned as errors instead.
type IssueLookup struct {
	Issue *github.Issue
	Found bool
}

// Issue fetches an issue by number.
func (r *Repo) Issue(ctx context.Context, number int) (IssueLookup, error) {
	issue, resp, err := r.gh.Issues.Get(ctx, r.owner, r.name, number)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return IssueLookup{}, nil
		}
		return IssueLookup{}, fmt.Errorf("getting issue #%d: %w", number, err)
	}
	return IssueLookup{Issue: issue, Found: true}, nil
}

// PullRequestLookup is the result of fetching a pull request.
type PullRequestLookup struct {
	PullRequest *github.PullRequest
	Found       bool
}

// PullRequest fetches a pull request by number.
func (r *Repo) PullRequest(ctx context.Context, number int) (PullRequestLookup, error) {
	pr, resp, err := r.gh.PullRequests.Get(ctx, r.owner, r.name, number)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return PullRequestLookup{}, nil
		}
		return PullRequestLookup{}, fmt.Errorf("getting pull request #%d: %w", number, err)
	}
	return PullRequestLookup{PullRequest: pr, Found: true}, nil
}

// LabelExists reports whether the repository defines the given label. It
// satisfies relnotes.LabelChecker.
func (r *Repo) LabelExists(ctx context.Context, name string) (bool, error) {
	_, resp, err := r.gh.Issues.GetLabel(ctx, r.owner, r.name, name)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("getting label %q: %w", name, err)
	}
	return true, nil
}

// MilestoneByTitle finds an open or closed milestone with the given title.
func (r *Repo) MilestoneByTitle(ctx context.Context, title string) (*github.Milestone, error) {
	opts := &github.MilestoneListOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		milestones, resp, err := r.gh.Issues.ListMilestones(ctx, r.owner, r.name, opts)
		if err != nil {
			return nil, fmt.Errorf("listing milestones: %w", err)
		}
		for _, m := range milestones {
			if m.GetTitle() == title {
				return m, nil
			}
		}
		if resp.NextPage == 0 {
			return nil, fmt.Errorf("milestone %q does not exist", title)
		}
		opts.Page = resp.NextPage
	}
}

// MilestoneItems returns the issues and pull requests assigned to a
// milestone. GitHub lists PRs as issues; they are refetched as proper pull
// requests so head/base and reviewer data is present.
func (r *Repo) MilestoneItems(ctx context.Context, milestone int) ([]*github.Issue, []*github.PullRequest, error) {
	opts := &github.IssueListByRepoOptions{
		Milestone:   fmt.Sprintf("%d", milestone),
		State:       "all",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var issues []*github.Issue
	var prs []*github.PullRequest
	for {
		page, resp, err := r.gh.Issues.ListByRepo(ctx, r.owner, r.name, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("listing milestone %d items: %w", milestone, err)
		}
		for _, issue := range page {
			if !issue.IsPullRequest() {
				issues = append(issues, issue)
				continue
			}
			lookup, err := r.PullRequest(ctx, issue.GetNumber())
			if err != nil {
				return nil, nil, err
			}
			if lookup.Found {
				prs = append(prs, lookup.PullRequest)
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.ListOptions.Page = resp.NextPage
	}
	return issues, prs, nil
}

// GetFileContent fetches a text file from the repository at the given ref.
func (r *Repo) GetFileContent(ctx context.Context, path, ref string) (string, error) {
	content, _, _, err := r.gh.Repositories.GetContents(ctx, r.owner, r.name, path, &github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		return "", fmt.Errorf("getting %s@%s: %w", path, ref, err)
	}
	if content == nil {
		return "", fmt.Errorf("%s@%s is not a file", path, ref)
	}
	text, err := content.GetContent()
	if err != nil {
		return "", fmt.Errorf("decoding %s@%s: %w", path, ref, err)
	}
	return text, nil
}

// ApplyPRUpdate writes a partial pull request update produced by a
// reconciliation pass. Title, body, labels, assignees, and milestone are
// routed through the issues API, which covers PRs as well.
func (r *Repo) ApplyPRUpdate(ctx context.Context, number int, update prsync.PRUpdate) error {
	if update.Empty() {
		return nil
	}

	req := &github.IssueRequest{
		Title:     update.Title,
		Body:      update.Body,
		Labels:    update.Labels,
		Assignees: update.Assignees,
		Milestone: update.Milestone,
	}
	if _, _, err := r.gh.Issues.Edit(ctx, r.owner, r.name, number, req); err != nil {
		return fmt.Errorf("updating pull request #%d: %w", number, err)
	}

	if update.ClearMilestone {
		// The issues API only clears a milestone through a raw null, which
		// IssueRequest cannot express.
		if err := r.clearMilestone(ctx, number); err != nil {
			return err
		}
	}
	return nil
}

// ApplyIssueUpdate writes a partial issue update.
func (r *Repo) ApplyIssueUpdate(ctx context.Context, number int, update prsync.IssueUpdate) error {
	if update.Body == nil {
		return nil
	}
	req := &github.IssueRequest{Body: update.Body}
	if _, _, err := r.gh.Issues.Edit(ctx, r.owner, r.name, number, req); err != nil {
		return fmt.Errorf("updating issue #%d: %w", number, err)
	}
	return nil
}

// clearMilestone removes the milestone from an issue or PR.
func (r *Repo) clearMilestone(ctx context.Context, number int) error {
	u := fmt.Sprintf("repos/%s/%s/issues/%d", r.owner, r.name, number)
	req, err := r.gh.NewRequest(http.MethodPatch, u, &struct {
		Milestone *int `json:"milestone"`
	}{Milestone: nil})
	if err != nil {
		return fmt.Errorf("building milestone clear request: %w", err)
	}
	if _, err := r.gh.Do(ctx, req, nil); err != nil {
		return fmt.Errorf("clearing milestone on #%d: %w", number, err)
	}
	return nil
}
