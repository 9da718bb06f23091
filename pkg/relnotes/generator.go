/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package relnotes

import (
	"fmt"
	"strings"

	"github.com/google/go-github/v75/github"
)

// Item identifies an issue or pull request excluded from the document, for
// caller-side reporting.
type Item struct {
	Number int
	Title  string
	URL    string
}

// Document is the result of one generation run.
type Document struct {
	// Markdown is the rendered release notes document.
	Markdown string

	// Ignored lists the items excluded by the ignore labels. They never
	// appear in the document.
	Ignored []Item
}

// Generator renders release notes documents from a validated configuration.
type Generator struct {
	cfg Config
}

// New validates the configuration and returns a generator.
func New(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg}, nil
}

// entry is the categorizer's internal view of an issue or pull request.
type entry struct {
	number    int
	title     string
	url       string
	labels    map[string]struct{}
	issueType string
}

func issueEntry(issue *github.Issue) entry {
	e := entry{
		number:    issue.GetNumber(),
		title:     issue.GetTitle(),
		url:       issue.GetHTMLURL(),
		labels:    map[string]struct{}{},
		issueType: issue.GetType().GetName(),
	}
	for _, l := range issue.Labels {
		e.labels[l.GetName()] = struct{}{}
	}
	return e
}

func prEntry(pr *github.PullRequest) entry {
	e := entry{
		number: pr.GetNumber(),
		title:  pr.GetTitle(),
		url:    pr.GetHTMLURL(),
		labels: map[string]struct{}{},
	}
	for _, l := range pr.Labels {
		e.labels[l.GetName()] = struct{}{}
	}
	return e
}

func (e entry) hasLabel(name string) bool {
	_, ok := e.labels[name]
	return ok
}

func (e entry) hasAnyLabel(names []string) bool {
	for _, n := range names {
		if e.hasLabel(n) {
			return true
		}
	}
	return false
}

// section is one rendered category.
type section struct {
	name    string
	entries []entry
}

// Generate renders the document from a milestone's issues and pull requests.
// The inputs are expected to be scoped to one release already.
func (g *Generator) Generate(issues []*github.Issue, prs []*github.PullRequest) (*Document, error) {
	doc := &Document{}

	var issueEntries, prEntries []entry
	for _, issue := range issues {
		e := issueEntry(issue)
		if e.hasAnyLabel(g.cfg.IgnoreLabels) {
			doc.Ignored = append(doc.Ignored, Item{Number: e.number, Title: e.title, URL: e.url})
			continue
		}
		issueEntries = append(issueEntries, e)
	}
	for _, pr := range prs {
		e := prEntry(pr)
		if e.hasAnyLabel(g.cfg.IgnoreLabels) {
			doc.Ignored = append(doc.Ignored, Item{Number: e.number, Title: e.title, URL: e.url})
			continue
		}
		prEntries = append(prEntries, e)
	}

	// The four categorization passes are independent and concatenated in
	// document order. The issue-type and label dimensions may both list the
	// same item.
	var sections []section
	for _, cat := range g.cfg.IssueTypeCategories {
		s := section{name: cat.Name}
		for _, e := range issueEntries {
			if e.issueType == cat.IssueType {
				s.entries = append(s.entries, e)
			}
		}
		sections = append(sections, s)
	}

	labelSections, matched := categorizeByLabel(issueEntries, g.cfg.IssueCategories)
	sections = append(sections, labelSections...)

	prSections, _ := categorizeByLabel(prEntries, g.cfg.PRCategories)
	sections = append(sections, prSections...)

	if g.cfg.OtherCategoryName != "" {
		s := section{name: g.cfg.OtherCategoryName}
		for _, e := range issueEntries {
			if _, ok := matched[e.number]; !ok {
				s.entries = append(s.entries, e)
			}
		}
		sections = append(sections, s)
	}

	doc.Markdown = g.render(sections)
	return doc, nil
}

// categorizeByLabel assigns each entry to the first category whose label it
// carries, so an item lands in at most one section per label pass. The
// returned map records which entry numbers matched any category.
func categorizeByLabel(entries []entry, cats []Category) ([]section, map[int]struct{}) {
	sections := make([]section, len(cats))
	for i, cat := range cats {
		sections[i] = section{name: cat.Name}
	}
	matched := map[int]struct{}{}

	for _, e := range entries {
		for i, cat := range cats {
			if e.hasLabel(cat.Label) {
				sections[i].entries = append(sections[i].entries, e)
				matched[e.number] = struct{}{}
				break
			}
		}
	}
	return sections, matched
}

// render assembles the final markdown document: header, optional extra info
// block, then one block per non-empty section. Empty sections are never
// rendered, not even as bare headers.
func (g *Generator) render(sections []section) string {
	var b strings.Builder

	b.WriteString("# ")
	b.WriteString(g.cfg.expand(g.cfg.HeaderText))
	b.WriteString("\n")

	if g.cfg.ExtraInfo != nil {
		b.WriteString("\n## ")
		b.WriteString(g.cfg.expand(g.cfg.ExtraInfo.Title))
		b.WriteString("\n\n")
		b.WriteString(g.cfg.expand(g.cfg.ExtraInfo.Text))
		b.WriteString("\n")
	}

	for _, s := range sections {
		if len(s.entries) == 0 {
			continue
		}
		b.WriteString("\n## ")
		b.WriteString(s.name)
		b.WriteString("\n\n")
		for i, e := range s.entries {
			// Numbering restarts for every category.
			fmt.Fprintf(&b, "%d. [#%d](%s) - %s.\n", i+1, e.number, e.url, g.cfg.sanitizeTitle(e.title))
		}
	}

	return b.String()
}
