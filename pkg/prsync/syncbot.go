/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package prsync

import (
	"errors"
	"fmt"

	"github.com/google/go-github/v75/github"

	"github.com/KinsonDigital/Infrastructure-sub000/pkg/prsync/checklist"
)

// PRUpdate is the partial pull request update a reconciliation pass decided
// on. Nil fields are left unchanged by the caller.
type PRUpdate struct {
	Title     *string
	Body      *string
	Labels    *[]string
	Assignees *[]string

	// Milestone is the milestone number to set. ClearMilestone requests
	// removing the milestone instead; the two are mutually exclusive.
	Milestone      *int
	ClearMilestone bool
}

// Empty reports whether the update carries no changes.
func (u *PRUpdate) Empty() bool {
	return u.Title == nil && u.Body == nil && u.Labels == nil &&
		u.Assignees == nil && u.Milestone == nil && !u.ClearMilestone
}

// IssueUpdate is the partial issue update a reconciliation pass decided on.
type IssueUpdate struct {
	Body *string
}

// BotInput is everything RunAsSyncBot needs. All GitHub data is resolved by
// the caller beforehand.
type BotInput struct {
	Issue *github.Issue
	PR    *github.PullRequest

	// IssueProjects and PRProjects are the titles of the organization
	// projects each is attached to.
	IssueProjects []string
	PRProjects    []string

	// Template is the checklist template text, used when the PR body does
	// not carry sync lines yet.
	Template string

	Options Options
}

// BotOutput carries the updates and notices produced by RunAsSyncBot.
type BotOutput struct {
	PRUpdate    PRUpdate
	IssueUpdate IssueUpdate

	// SyncDisabled is set when the PR body's checkbox disables syncing; no
	// updates are produced in that case.
	SyncDisabled bool

	Notices []string
}

// RunAsSyncBot performs the initial synchronization of a freshly created or
// re-linked pull request. The issue is the source of truth: its title,
// labels, assignees, and milestone are copied onto the PR, the checklist
// template is applied to the PR body if absent, the checklist is refreshed,
// and the issue body gains the closed-by back-link marker.
func RunAsSyncBot(in BotInput) (BotOutput, error) {
	if in.Issue == nil || in.PR == nil {
		return BotOutput{}, errors.New("both an issue and a pull request are required")
	}
	if err := in.Options.validate(); err != nil {
		return BotOutput{}, err
	}

	out := BotOutput{}

	body := in.PR.GetBody()
	if checklist.SyncingDisabled(body) {
		out.SyncDisabled = true
		out.Notices = append(out.Notices, "syncing is disabled for this pull request, skipping")
		return out, nil
	}

	if !checklist.HasSyncLines(body) {
		if in.Template == "" {
			return BotOutput{}, errors.New("pull request body has no sync checklist and no template was provided")
		}
		applied, err := checklist.SetIssueNumber(in.Template, in.Issue.GetNumber())
		if err != nil {
			return BotOutput{}, fmt.Errorf("applying issue number to template: %w", err)
		}
		applied, err = checklist.SetHeadBranch(applied, in.PR.GetHead().GetRef())
		if err != nil {
			return BotOutput{}, fmt.Errorf("applying head branch to template: %w", err)
		}
		body = applied
		out.Notices = append(out.Notices, fmt.Sprintf("applied sync checklist template for issue #%d", in.Issue.GetNumber()))
	}

	// Copy the issue's metadata onto the PR.
	out.PRUpdate.Title = github.Ptr(in.Issue.GetTitle())
	labels := labelNames(in.Issue.Labels)
	out.PRUpdate.Labels = &labels
	assignees := assigneeLogins(in.Issue.Assignees)
	out.PRUpdate.Assignees = &assignees
	if in.Issue.Milestone != nil {
		out.PRUpdate.Milestone = github.Ptr(in.Issue.Milestone.GetNumber())
	} else if in.PR.Milestone != nil {
		out.PRUpdate.ClearMilestone = true
	}

	settings := Compare(in.Issue, in.PR, in.IssueProjects, in.PRProjects, in.Options)

	// The copy above just forced these four aspects into sync.
	settings.TitleInSync = true
	settings.LabelsInSync = true
	settings.AssigneesInSync = true
	settings.MilestoneInSync = true

	updated, notices := checklist.Process(body, settings)
	out.Notices = append(out.Notices, notices...)
	if updated != in.PR.GetBody() {
		out.PRUpdate.Body = &updated
	}

	issueBody, err := SetClosedByPR(in.Issue.GetBody(), in.PR.GetNumber())
	if err != nil {
		return BotOutput{}, fmt.Errorf("updating closed-by-pr marker: %w", err)
	}
	if issueBody != in.Issue.GetBody() {
		out.IssueUpdate.Body = &issueBody
		out.Notices = append(out.Notices, fmt.Sprintf("linked issue #%d to pull request #%d", in.Issue.GetNumber(), in.PR.GetNumber()))
	}

	return out, nil
}
