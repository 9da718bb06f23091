/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package prsync

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-github/v75/github"

	"github.com/KinsonDigital/Infrastructure-sub000/pkg/prsync/checklist"
)

func labels(names ...string) []*github.Label {
	out := make([]*github.Label, 0, len(names))
	for _, n := range names {
		out = append(out, &github.Label{Name: github.Ptr(n)})
	}
	return out
}

func users(logins ...string) []*github.User {
	out := make([]*github.User, 0, len(logins))
	for _, l := range logins {
		out = append(out, &github.User{Login: github.Ptr(l)})
	}
	return out
}

func testOptions() Options {
	return Options{DefaultReviewer: "review-bot"}
}

func TestCompare(t *testing.T) {
	issue := &github.Issue{
		Number:    github.Ptr(42),
		Title:     github.Ptr("Fix bug"),
		Labels:    labels("bug"),
		Assignees: users("alice"),
		Milestone: &github.Milestone{Number: github.Ptr(3), Title: github.Ptr("v1.2.3")},
	}
	pr := &github.PullRequest{
		Number:             github.Ptr(100),
		Title:              github.Ptr("Fix bug"),
		Labels:             labels("bug"),
		Assignees:          users("alice"),
		Milestone:          &github.Milestone{Number: github.Ptr(3), Title: github.Ptr("v1.2.3")},
		Head:               &github.PullRequestBranch{Ref: github.Ptr("feature/42-fix-login")},
		Base:               &github.PullRequestBranch{Ref: github.Ptr("main")},
		RequestedReviewers: users("review-bot"),
	}

	got := Compare(issue, pr, []string{"Q3"}, []string{"Q3"}, testOptions())

	want := checklist.Settings{
		IssueNumber:          42,
		HeadBranchValid:      true,
		BaseBranchValid:      true,
		IssueNumberValid:     true,
		TitleInSync:          true,
		DefaultReviewerValid: true,
		AssigneesInSync:      true,
		LabelsInSync:         true,
		ProjectsInSync:       true,
		MilestoneInSync:      true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Compare() mismatch (-want +got):\n%s", diff)
	}
	if !got.AllInSync() {
		t.Error("AllInSync() = false, want true")
	}
}

func TestCompareMismatches(t *testing.T) {
	issue := &github.Issue{
		Number:    github.Ptr(42),
		Title:     github.Ptr("Fix bug"),
		Labels:    labels("bug", "priority-high"),
		Assignees: users("alice", "bob"),
	}

	tests := []struct {
		name  string
		pr    *github.PullRequest
		check func(checklist.Settings) bool
	}{{
		name: "wrong branch prefix",
		pr: &github.PullRequest{
			Head: &github.PullRequestBranch{Ref: github.Ptr("bugfix/42-fix-login")},
		},
		check: func(s checklist.Settings) bool { return !s.HeadBranchValid && !s.IssueNumberValid },
	}, {
		name: "branch names a different issue",
		pr: &github.PullRequest{
			Head: &github.PullRequestBranch{Ref: github.Ptr("feature/43-fix-login")},
		},
		check: func(s checklist.Settings) bool { return s.HeadBranchValid && !s.IssueNumberValid },
	}, {
		name: "base branch not allowed",
		pr: &github.PullRequest{
			Base: &github.PullRequestBranch{Ref: github.Ptr("develop")},
		},
		check: func(s checklist.Settings) bool { return !s.BaseBranchValid },
	}, {
		name: "title differs",
		pr: &github.PullRequest{
			Title: github.Ptr("Fix a bug"),
		},
		check: func(s checklist.Settings) bool { return !s.TitleInSync },
	}, {
		name: "title equal after trimming",
		pr: &github.PullRequest{
			Title: github.Ptr("  Fix bug  "),
		},
		check: func(s checklist.Settings) bool { return s.TitleInSync },
	}, {
		name: "reviewer missing",
		pr: &github.PullRequest{
			RequestedReviewers: users("someone-else"),
		},
		check: func(s checklist.Settings) bool { return !s.DefaultReviewerValid },
	}, {
		name: "assignee subset is not equality",
		pr: &github.PullRequest{
			Assignees: users("alice"),
		},
		check: func(s checklist.Settings) bool { return !s.AssigneesInSync },
	}, {
		name: "assignees equal regardless of order",
		pr: &github.PullRequest{
			Assignees: users("bob", "alice"),
		},
		check: func(s checklist.Settings) bool { return s.AssigneesInSync },
	}, {
		name: "labels differ",
		pr: &github.PullRequest{
			Labels: labels("bug"),
		},
		check: func(s checklist.Settings) bool { return !s.LabelsInSync },
	}, {
		name: "milestone missing on PR",
		pr:   &github.PullRequest{},
		check: func(s checklist.Settings) bool {
			// issue has no milestone either in this fixture
			return s.MilestoneInSync
		},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Compare(issue, tt.pr, nil, nil, testOptions())
			if !tt.check(s) {
				t.Errorf("Compare() = %+v, check failed", s)
			}
		})
	}
}

func TestCompareMilestones(t *testing.T) {
	tests := []struct {
		name   string
		issue  *github.Milestone
		pr     *github.Milestone
		inSync bool
	}{
		{"both absent", nil, nil, true},
		{"issue only", &github.Milestone{Number: github.Ptr(1)}, nil, false},
		{"pr only", nil, &github.Milestone{Number: github.Ptr(1)}, false},
		{"same number", &github.Milestone{Number: github.Ptr(1)}, &github.Milestone{Number: github.Ptr(1)}, true},
		{"different number", &github.Milestone{Number: github.Ptr(1)}, &github.Milestone{Number: github.Ptr(2)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := milestonesMatch(tt.issue, tt.pr); got != tt.inSync {
				t.Errorf("milestonesMatch() = %v, want %v", got, tt.inSync)
			}
		})
	}
}

func TestSetsEqualSymmetry(t *testing.T) {
	tests := []struct {
		a, b []string
		want bool
	}{
		{[]string{"a", "b"}, []string{"b", "a"}, true},
		{[]string{"a"}, []string{"a", "b"}, false},
		{nil, nil, true},
		{[]string{"a", "a"}, []string{"a"}, true},
		{[]string{"a"}, []string{"A"}, false},
	}

	for _, tt := range tests {
		if got := setsEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("setsEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		// Swapping the sides must never change the result.
		if setsEqual(tt.a, tt.b) != setsEqual(tt.b, tt.a) {
			t.Errorf("setsEqual(%v, %v) is not symmetric", tt.a, tt.b)
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	o := Options{DefaultReviewer: "review-bot"}
	if err := o.validate(); err != nil {
		t.Fatalf("validate() error = %v", err)
	}
	if diff := cmp.Diff(DefaultBaseBranches, o.AllowedBaseBranches); diff != "" {
		t.Errorf("validate() base branches mismatch (-want +got):\n%s", diff)
	}

	var missing Options
	if err := missing.validate(); err == nil {
		t.Error("validate() without default reviewer, want error")
	}
}
