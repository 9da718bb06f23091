/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package prsync

import (
	"errors"
	"slices"
	"strings"

	"github.com/google/go-github/v75/github"

	"github.com/KinsonDigital/Infrastructure-sub000/pkg/prsync/checklist"
)

// DefaultBaseBranches is the allowed set of PR base branches when Options
// does not provide one.
var DefaultBaseBranches = []string{"main", "preview"}

// Options configures a reconciliation pass.
type Options struct {
	// DefaultReviewer is the login that must appear in the PR's requested
	// reviewers. Required.
	DefaultReviewer string

	// AllowedBaseBranches is the set of base branches PRs may target.
	// Defaults to DefaultBaseBranches when empty.
	AllowedBaseBranches []string
}

// validate applies defaults and rejects missing required settings.
func (o *Options) validate() error {
	if o.DefaultReviewer == "" {
		return errors.New("default reviewer is required")
	}
	if len(o.AllowedBaseBranches) == 0 {
		o.AllowedBaseBranches = DefaultBaseBranches
	}
	return nil
}

// Compare derives the sync settings for a pull request and its linked issue.
// Every rule is a pure function of the inputs; mismatches are data, not
// errors.
func Compare(issue *github.Issue, pr *github.PullRequest, issueProjects, prProjects []string, opts Options) checklist.Settings {
	headRef := pr.GetHead().GetRef()

	s := checklist.Settings{
		IssueNumber:          issue.GetNumber(),
		HeadBranchValid:      IsFeatureBranch(headRef),
		BaseBranchValid:      slices.Contains(opts.AllowedBaseBranches, pr.GetBase().GetRef()),
		TitleInSync:          strings.TrimSpace(pr.GetTitle()) == strings.TrimSpace(issue.GetTitle()),
		DefaultReviewerValid: slices.Contains(reviewerLogins(pr), opts.DefaultReviewer),
		AssigneesInSync:      setsEqual(assigneeLogins(issue.Assignees), assigneeLogins(pr.Assignees)),
		LabelsInSync:         setsEqual(labelNames(issue.Labels), labelNames(pr.Labels)),
		ProjectsInSync:       setsEqual(issueProjects, prProjects),
		MilestoneInSync:      milestonesMatch(issue.Milestone, pr.Milestone),
	}

	// The branch number is valid only when it names the linked issue.
	if n, err := IssueNumberFromBranch(headRef); err == nil {
		s.IssueNumberValid = n == issue.GetNumber()
	}

	return s
}

func milestonesMatch(a, b *github.Milestone) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.GetNumber() == b.GetNumber()
}

func labelNames(labels []*github.Label) []string {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.GetName())
	}
	return names
}

func assigneeLogins(users []*github.User) []string {
	logins := make([]string, 0, len(users))
	for _, u := range users {
		logins = append(logins, u.GetLogin())
	}
	return logins
}

func reviewerLogins(pr *github.PullRequest) []string {
	logins := make([]string, 0, len(pr.RequestedReviewers))
	for _, u := range pr.RequestedReviewers {
		logins = append(logins, u.GetLogin())
	}
	return logins
}

// setsEqual reports whether two string slices contain the same set of values,
// ignoring order and duplicates. The comparison is symmetric by construction.
func setsEqual(a, b []string) bool {
	as := make(map[string]struct{}, len(a))
	for _, v := range a {
		as[v] = struct{}{}
	}
	bs := make(map[string]struct{}, len(b))
	for _, v := range b {
		bs[v] = struct{}{}
	}
	if len(as) != len(bs) {
		return false
	}
	for v := range as {
		if _, ok := bs[v]; !ok {
			return false
		}
	}
	return true
}
