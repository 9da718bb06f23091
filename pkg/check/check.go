// Package check builds GitHub check runs from sync verification results.
//
// Check Run API: https://docs.github.com/en/rest/checks/runs?apiVersion=2022-11-28
package check

import (
	"fmt"
	"strings"

	"github.com/google/go-github/v75/github"
)

const (
	maxOutputLength   = 65536
	truncationMessage = "\n\n⚠️ _Output has been truncated_"
)

type Status string

const (
	StatusQueued     Status = "queued"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

type Conclusion string

const (
	ConclusionActionRequired Conclusion = "action_required"
	ConclusionCancelled      Conclusion = "cancelled"
	ConclusionFailure        Conclusion = "failure"
	// ConclusionNeutral is sufficient to pass a required check.
	ConclusionNeutral Conclusion = "neutral"
	ConclusionSuccess Conclusion = "success"
)

// Builder accumulates markdown output for a check run and renders it as
// create or update options for the Checks API.
type Builder struct {
	md            strings.Builder
	name, headSHA string
	Summary       string
	Status        Status
	Conclusion    Conclusion
}

func NewBuilder(name, headSHA string) *Builder {
	return &Builder{
		name:    name,
		headSHA: headSHA,
	}
}

// Writef appends a formatted line to the check run output, truncating once
// the output exceeds the API's maximum length.
func (b *Builder) Writef(format string, args ...any) {
	if b.md.Len() <= maxOutputLength {
		fmt.Fprintf(&b.md, format, args...)
		b.md.WriteRune('\n')
	}

	if b.md.Len() > maxOutputLength {
		out := b.md.String()
		out = out[:maxOutputLength-len(truncationMessage)]
		out += truncationMessage
		b.md = strings.Builder{}
		b.md.WriteString(out)
	}
}

// CheckRunCreate renders the builder as check run creation options.
//
// An empty Summary defaults to the check name. Setting Conclusion marks the
// check run completed; GitHub requires the status field to agree.
func (b *Builder) CheckRunCreate() *github.CreateCheckRunOptions {
	if b.Summary == "" {
		b.Summary = b.name
	}
	cr := &github.CreateCheckRunOptions{
		Name:    b.name,
		HeadSHA: b.headSHA,
		Status:  github.Ptr(string(StatusInProgress)),
		Output: &github.CheckRunOutput{
			Title:   &b.Summary,
			Summary: &b.Summary,
			Text:    github.Ptr(b.md.String()),
		},
	}
	if b.Conclusion != "" {
		cr.Conclusion = github.Ptr(string(b.Conclusion))
		cr.Status = github.Ptr(string(StatusCompleted))
	}
	return cr
}

func (b *Builder) CheckRunUpdate() *github.UpdateCheckRunOptions {
	create := b.CheckRunCreate()
	return &github.UpdateCheckRunOptions{
		Name:       create.Name,
		Status:     create.Status,
		Conclusion: create.Conclusion,
		Output: &github.CheckRunOutput{
			Title:   create.GetOutput().Title,
			Summary: create.GetOutput().Summary,
			Text:    create.GetOutput().Text,
		},
	}
}

// SyncReport builds a completed check run describing the outcome of a sync
// verification: success when it passed, failure with one line per
// discrepancy otherwise. Notices are listed regardless of outcome.
func SyncReport(name, headSHA string, passed bool, discrepancies, notices []string) *Builder {
	b := NewBuilder(name, headSHA)

	switch {
	case passed:
		b.Summary = "Pull request is in sync with its issue"
		b.Conclusion = ConclusionSuccess
	default:
		b.Summary = fmt.Sprintf("Pull request is out of sync (%d discrepancies)", len(discrepancies))
		b.Conclusion = ConclusionFailure
		b.Writef("### Discrepancies")
		for _, d := range discrepancies {
			b.Writef("- %s", d)
		}
	}

	if len(notices) > 0 {
		b.Writef("### Notices")
		for _, n := range notices {
			b.Writef("- %s", n)
		}
	}
	return b
}
