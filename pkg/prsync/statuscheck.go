/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package prsync

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/go-github/v75/github"

	"github.com/KinsonDigital/Infrastructure-sub000/pkg/prsync/checklist"
)

// CheckInput is everything RunAsStatusCheck needs.
type CheckInput struct {
	Issue *github.Issue
	PR    *github.PullRequest

	IssueProjects []string
	PRProjects    []string

	Options Options
}

// CheckOutput is the result of a status-check pass.
type CheckOutput struct {
	// Passed is true iff every sync aspect is in sync.
	Passed bool

	// SyncDisabled is set when the PR body's checkbox disables syncing. No
	// mutation happens and the check is treated as passed.
	SyncDisabled bool

	// BodyUpdate carries the refreshed PR body when the checklist changed.
	BodyUpdate *string

	// Discrepancies holds one human-readable line per out-of-sync aspect,
	// with the literal current and expected values.
	Discrepancies []string

	Notices []string
}

// RunAsStatusCheck recomputes the sync settings for an already-synced pull
// request without copying any issue fields onto it, refreshes the checklist
// in the PR body, and reports every discrepancy found. The whole picture is
// surfaced in one pass rather than stopping at the first mismatch.
func RunAsStatusCheck(in CheckInput) (CheckOutput, error) {
	if in.Issue == nil || in.PR == nil {
		return CheckOutput{}, errors.New("both an issue and a pull request are required")
	}
	if err := in.Options.validate(); err != nil {
		return CheckOutput{}, err
	}

	out := CheckOutput{}

	body := in.PR.GetBody()
	if checklist.SyncingDisabled(body) {
		out.SyncDisabled = true
		out.Passed = true
		out.Notices = append(out.Notices, "syncing is disabled for this pull request, skipping")
		return out, nil
	}

	settings := Compare(in.Issue, in.PR, in.IssueProjects, in.PRProjects, in.Options)

	updated, notices := checklist.Process(body, settings)
	out.Notices = append(out.Notices, notices...)
	if updated != body {
		out.BodyUpdate = &updated
	}

	out.Discrepancies = discrepancies(in, settings)
	out.Passed = settings.AllInSync()
	return out, nil
}

// discrepancies renders one line per out-of-sync aspect using the literal
// current and expected values.
func discrepancies(in CheckInput, s checklist.Settings) []string {
	var out []string

	headRef := in.PR.GetHead().GetRef()

	if !s.HeadBranchValid {
		out = append(out, fmt.Sprintf("the head branch %q does not match the pattern feature/<issue-number>-<description>", headRef))
	}
	if !s.BaseBranchValid {
		out = append(out, fmt.Sprintf("the base branch %q is not one of [%s]", in.PR.GetBase().GetRef(), strings.Join(in.Options.AllowedBaseBranches, ", ")))
	}
	if !s.IssueNumberValid {
		out = append(out, fmt.Sprintf("the head branch %q does not name issue #%d", headRef, in.Issue.GetNumber()))
	}
	if !s.TitleInSync {
		out = append(out, fmt.Sprintf("the PR title %q does not match the issue title %q", in.PR.GetTitle(), in.Issue.GetTitle()))
	}
	if !s.DefaultReviewerValid {
		out = append(out, fmt.Sprintf("the default reviewer %q is not in the requested reviewers [%s]", in.Options.DefaultReviewer, strings.Join(reviewerLogins(in.PR), ", ")))
	}
	if !s.AssigneesInSync {
		out = append(out, fmt.Sprintf("the PR assignees [%s] do not match the issue assignees [%s]",
			strings.Join(assigneeLogins(in.PR.Assignees), ", "), strings.Join(assigneeLogins(in.Issue.Assignees), ", ")))
	}
	if !s.LabelsInSync {
		out = append(out, fmt.Sprintf("the PR labels [%s] do not match the issue labels [%s]",
			strings.Join(labelNames(in.PR.Labels), ", "), strings.Join(labelNames(in.Issue.Labels), ", ")))
	}
	if !s.ProjectsInSync {
		out = append(out, fmt.Sprintf("the PR projects [%s] do not match the issue projects [%s]",
			strings.Join(in.PRProjects, ", "), strings.Join(in.IssueProjects, ", ")))
	}
	if !s.MilestoneInSync {
		out = append(out, fmt.Sprintf("the PR milestone %q does not match the issue milestone %q",
			milestoneLabel(in.PR.Milestone), milestoneLabel(in.Issue.Milestone)))
	}

	return out
}

func milestoneLabel(m *github.Milestone) string {
	if m == nil {
		return "(none)"
	}
	return m.GetTitle()
}
