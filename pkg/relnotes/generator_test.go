/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package relnotes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-github/v75/github"
)

func testIssue(number int, title string, labelNames ...string) *github.Issue {
	issue := &github.Issue{
		Number:  github.Ptr(number),
		Title:   github.Ptr(title),
		HTMLURL: github.Ptr(fmt.Sprintf("https://github.com/org/repo/issues/%d", number)),
	}
	for _, n := range labelNames {
		issue.Labels = append(issue.Labels, &github.Label{Name: github.Ptr(n)})
	}
	return issue
}

func testPR(number int, title string, labelNames ...string) *github.PullRequest {
	pr := &github.PullRequest{
		Number:  github.Ptr(number),
		Title:   github.Ptr(title),
		HTMLURL: github.Ptr(fmt.Sprintf("https://github.com/org/repo/pull/%d", number)),
	}
	for _, n := range labelNames {
		pr.Labels = append(pr.Labels, &github.Label{Name: github.Ptr(n)})
	}
	return pr
}

func TestGenerateSingleCategory(t *testing.T) {
	cfg := validConfig()
	cfg.IssueCategories = []Category{{Name: "Bug Fixes", Label: "bug"}}

	g, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	doc, err := g.Generate([]*github.Issue{
		testIssue(1, "Fix the login flow", "bug"),
		testIssue(2, "Add dark mode"),
	}, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if !strings.Contains(doc.Markdown, "## Bug Fixes") {
		t.Errorf("document missing category header:\n%s", doc.Markdown)
	}
	if got := strings.Count(doc.Markdown, "1. [#"); got != 1 {
		t.Errorf("document has %d numbered items, want exactly 1:\n%s", got, doc.Markdown)
	}
	if strings.Contains(doc.Markdown, "Add dark mode") {
		t.Errorf("unmatched issue leaked into the document:\n%s", doc.Markdown)
	}
}

func TestGenerateDocumentAssembly(t *testing.T) {
	cfg := validConfig()
	cfg.ExtraInfo = &ExtraInfo{Title: "Heads up", Text: "This release targets ${VERSION}."}
	cfg.IssueCategories = []Category{
		{Name: "Bug Fixes", Label: "bug"},
		{Name: "Enhancements", Label: "enhancement"},
	}
	cfg.PRCategories = []Category{{Name: "Dependency Updates", Label: "dependencies"}}
	cfg.OtherCategoryName = "Other"

	g, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	doc, err := g.Generate([]*github.Issue{
		testIssue(10, "Fix crash on resize", "bug"),
		testIssue(11, "Sharper text rendering", "enhancement"),
		testIssue(12, "Tidy up the docs"),
	}, []*github.PullRequest{
		testPR(20, "Bump the runtime", "dependencies"),
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	want := `# Velaptor production Release Notes - v1.2.3

## Heads up

This release targets v1.2.3.

## Bug Fixes

1. [#10](https://github.com/org/repo/issues/10) - Fix crash on resize.

## Enhancements

1. [#11](https://github.com/org/repo/issues/11) - Sharper text rendering.

## Dependency Updates

1. [#20](https://github.com/org/repo/pull/20) - Bump the runtime.

## Other

1. [#12](https://github.com/org/repo/issues/12) - Tidy up the docs.
`
	if diff := cmp.Diff(want, doc.Markdown); diff != "" {
		t.Errorf("Generate() mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateIgnoreLabels(t *testing.T) {
	cfg := validConfig()
	cfg.IgnoreLabels = []string{"🚫excluded"}
	cfg.IssueCategories = []Category{{Name: "Bug Fixes", Label: "bug"}}
	cfg.OtherCategoryName = "Other"

	g, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	doc, err := g.Generate([]*github.Issue{
		testIssue(1, "Fix one thing", "bug"),
		testIssue(2, "Internal chore", "bug", "🚫excluded"),
	}, []*github.PullRequest{
		testPR(3, "Internal PR", "🚫excluded"),
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if strings.Contains(doc.Markdown, "Internal chore") || strings.Contains(doc.Markdown, "Internal PR") {
		t.Errorf("ignored item leaked into the document:\n%s", doc.Markdown)
	}
	if len(doc.Ignored) != 2 {
		t.Fatalf("Ignored = %v, want 2 items", doc.Ignored)
	}
	if doc.Ignored[0].Number != 2 || doc.Ignored[1].Number != 3 {
		t.Errorf("Ignored = %+v", doc.Ignored)
	}
}

func TestGenerateOmitsEmptySections(t *testing.T) {
	cfg := validConfig()
	cfg.IssueCategories = []Category{
		{Name: "Bug Fixes", Label: "bug"},
		{Name: "Enhancements", Label: "enhancement"},
	}

	g, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	doc, err := g.Generate([]*github.Issue{testIssue(1, "Fix it", "bug")}, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if strings.Contains(doc.Markdown, "Enhancements") {
		t.Errorf("empty section rendered:\n%s", doc.Markdown)
	}

	// No header may be followed by zero items.
	lines := strings.Split(strings.TrimRight(doc.Markdown, "\n"), "\n")
	for i, line := range lines {
		if !strings.HasPrefix(line, "## ") {
			continue
		}
		if i+2 >= len(lines) || !strings.HasPrefix(lines[i+2], "1. ") {
			t.Errorf("section %q has no items:\n%s", line, doc.Markdown)
		}
	}
}

func TestGenerateIndependentDimensions(t *testing.T) {
	cfg := validConfig()
	cfg.IssueTypeCategories = []Category{{Name: "Bugs by Type", IssueType: "Bug"}}
	cfg.IssueCategories = []Category{{Name: "Bug Fixes", Label: "bug"}}

	g, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	issue := testIssue(1, "Fix the login flow", "bug")
	issue.Type = &github.IssueType{Name: github.Ptr("Bug")}

	doc, err := g.Generate([]*github.Issue{issue}, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// The type and label dimensions are independent passes; the issue shows
	// up under both.
	if got := strings.Count(doc.Markdown, "[#1]"); got != 2 {
		t.Errorf("issue listed %d times, want 2:\n%s", got, doc.Markdown)
	}
}

func TestGenerateNumberingRestartsPerCategory(t *testing.T) {
	cfg := validConfig()
	cfg.IssueCategories = []Category{
		{Name: "Bug Fixes", Label: "bug"},
		{Name: "Enhancements", Label: "enhancement"},
	}

	g, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	doc, err := g.Generate([]*github.Issue{
		testIssue(1, "Fix a", "bug"),
		testIssue(2, "Fix b", "bug"),
		testIssue(3, "Improve c", "enhancement"),
	}, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if !strings.Contains(doc.Markdown, "2. [#2]") {
		t.Errorf("second bug item not numbered 2:\n%s", doc.Markdown)
	}
	if !strings.Contains(doc.Markdown, "1. [#3]") {
		t.Errorf("enhancement numbering did not restart at 1:\n%s", doc.Markdown)
	}
}

func TestGenerateAtMostOneLabelCategoryPerItem(t *testing.T) {
	cfg := validConfig()
	cfg.IssueCategories = []Category{
		{Name: "Bug Fixes", Label: "bug"},
		{Name: "Regressions", Label: "regression"},
	}

	g, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	doc, err := g.Generate([]*github.Issue{
		testIssue(1, "Fix the regression", "bug", "regression"),
	}, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// First matching category in config order wins within one label pass.
	if got := strings.Count(doc.Markdown, "[#1]"); got != 1 {
		t.Errorf("issue listed %d times within the label pass, want 1:\n%s", got, doc.Markdown)
	}
	if !strings.Contains(doc.Markdown, "## Bug Fixes") || strings.Contains(doc.Markdown, "## Regressions") {
		t.Errorf("issue landed in the wrong section:\n%s", doc.Markdown)
	}
}

type fakeLabelChecker struct {
	known map[string]bool
	err   error
}

func (f fakeLabelChecker) LabelExists(_ context.Context, name string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.known[name], nil
}

func TestValidateLabels(t *testing.T) {
	cfg := validConfig()
	cfg.IgnoreLabels = []string{"🚫excluded"}
	cfg.IssueCategories = []Category{{Name: "Bug Fixes", Label: "bug"}}

	g, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()

	if err := g.ValidateLabels(ctx, fakeLabelChecker{known: map[string]bool{"bug": true, "🚫excluded": true}}); err != nil {
		t.Errorf("ValidateLabels() error = %v, want nil", err)
	}

	err = g.ValidateLabels(ctx, fakeLabelChecker{known: map[string]bool{"🚫excluded": true}})
	if err == nil || !strings.Contains(err.Error(), `"bug"`) {
		t.Errorf("ValidateLabels() error = %v, want missing-label error naming bug", err)
	}

	wantErr := errors.New("boom")
	if err := g.ValidateLabels(ctx, fakeLabelChecker{err: wantErr}); err == nil {
		t.Error("ValidateLabels() with failing checker, want error")
	}
}
