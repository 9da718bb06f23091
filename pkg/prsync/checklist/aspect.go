/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package checklist

import "fmt"

// Aspect identifies one dimension of issue/PR synchronization tracked by a
// sync line. The string value is the marker name used in the trailing HTML
// comment of the line.
type Aspect string

const (
	AspectHeadBranch       Aspect = "head-branch"
	AspectBaseBranch       Aspect = "base-branch"
	AspectValidIssueNumber Aspect = "valid-issue-number"
	AspectTitle            Aspect = "title"
	AspectDefaultReviewer  Aspect = "default-reviewer"
	AspectAssignees        Aspect = "assignees"
	AspectLabels           Aspect = "labels"
	AspectProjects         Aspect = "projects"
	AspectMilestone        Aspect = "milestone"
)

// Aspects lists every known aspect in the order sync lines are normally laid
// out in the checklist template. Adding a new aspect means adding it here and
// giving Settings a corresponding field.
var Aspects = []Aspect{
	AspectHeadBranch,
	AspectBaseBranch,
	AspectValidIssueNumber,
	AspectTitle,
	AspectDefaultReviewer,
	AspectAssignees,
	AspectLabels,
	AspectProjects,
	AspectMilestone,
}

// Marker returns the HTML comment marker a sync line carries for this aspect.
func (a Aspect) Marker() string {
	return fmt.Sprintf("<!--%s-->", string(a))
}

// Settings holds the desired status of every sync aspect plus the number of
// the issue the pull request is linked to. A Settings value is derived fresh
// on every reconciliation pass and is never persisted directly; only its
// effect on the checklist text survives.
type Settings struct {
	IssueNumber int

	HeadBranchValid      bool
	BaseBranchValid      bool
	IssueNumberValid     bool
	TitleInSync          bool
	DefaultReviewerValid bool
	AssigneesInSync      bool
	LabelsInSync         bool
	ProjectsInSync       bool
	MilestoneInSync      bool
}

// InSync reports the desired status for the given aspect.
func (s Settings) InSync(a Aspect) bool {
	switch a {
	case AspectHeadBranch:
		return s.HeadBranchValid
	case AspectBaseBranch:
		return s.BaseBranchValid
	case AspectValidIssueNumber:
		return s.IssueNumberValid
	case AspectTitle:
		return s.TitleInSync
	case AspectDefaultReviewer:
		return s.DefaultReviewerValid
	case AspectAssignees:
		return s.AssigneesInSync
	case AspectLabels:
		return s.LabelsInSync
	case AspectProjects:
		return s.ProjectsInSync
	case AspectMilestone:
		return s.MilestoneInSync
	default:
		return false
	}
}

// AllInSync reports whether every aspect is in sync.
func (s Settings) AllInSync() bool {
	for _, a := range Aspects {
		if !s.InSync(a) {
			return false
		}
	}
	return true
}
