/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package checklist

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// GlyphInSync marks a sync line whose aspect matches the linked issue.
	GlyphInSync = "✅"

	// GlyphOutOfSync marks a sync line whose aspect does not match.
	GlyphOutOfSync = "❌"

	// SyncEnabledMarker and SyncDisabledMarker toggle syncing for the whole
	// document. They are read, never written, by Process.
	SyncEnabledMarker  = "<!--sync-enabled-->"
	SyncDisabledMarker = "<!--sync-disabled-->"
)

var (
	// syncLineRE matches any line shaped like a sync line: a status glyph as
	// the first non-whitespace character, free text, and a trailing HTML
	// comment. The comment name is captured so the caller can tell known
	// aspects from unrecognized ones.
	syncLineRE = regexp.MustCompile(`^\s*(✅|❌).*<!--([a-z][a-z-]*)-->\s*$`)

	issueNumberVarRE = regexp.MustCompile(`\$\{\{\s*issue-number\s*\}\}`)
	headBranchVarRE  = regexp.MustCompile(`\$\{\{\s*head-branch\s*\}\}`)
)

// IsSyncLine reports whether the line is shaped like a sync line: a leading
// status glyph, free text, and a trailing marker comment. The marker does not
// have to name a known aspect; Process decides what to do with unrecognized
// ones.
func IsSyncLine(line string) bool {
	return syncLineRE.MatchString(line)
}

// aspectOf returns the known aspect whose marker the line carries.
func aspectOf(line string) (Aspect, bool) {
	for _, a := range Aspects {
		if strings.Contains(line, a.Marker()) {
			return a, true
		}
	}
	return "", false
}

// LineInSync reports whether the line is confirmed in sync: it contains the
// in-sync glyph and not the out-of-sync glyph. A line carrying both glyphs is
// ambiguous and reported as not in sync.
func LineInSync(line string) bool {
	return strings.Contains(line, GlyphInSync) && !strings.Contains(line, GlyphOutOfSync)
}

// LineAmbiguous reports whether the line carries both status glyphs at once.
// Such lines are never auto-corrected; a corrupted checklist should surface,
// not be silently repaired.
func LineAmbiguous(line string) bool {
	return strings.Contains(line, GlyphInSync) && strings.Contains(line, GlyphOutOfSync)
}

// SetLineStatus returns the line with its status glyph set to match inSync.
// It is idempotent: applying it twice with the same inSync yields the same
// line.
func SetLineStatus(line string, inSync bool) string {
	if inSync {
		return strings.ReplaceAll(line, GlyphOutOfSync, GlyphInSync)
	}
	return strings.ReplaceAll(line, GlyphInSync, GlyphOutOfSync)
}

// Process applies the given settings to every sync line of the template and
// returns the updated template together with human-readable notices, one per
// aspect evaluated, for caller logging.
//
// Line endings are normalized to \n. Lines that are not sync lines pass
// through unchanged, including the sync-enabled/sync-disabled markers, which
// Process recognizes but never mutates. A sync line with an unknown marker is
// skipped with a notice. A line carrying both glyphs is left untouched and
// flagged.
func Process(template string, settings Settings) (string, []string) {
	var notices []string

	lines := strings.Split(normalize(template), "\n")
	for i, line := range lines {
		if strings.Contains(line, SyncEnabledMarker) || strings.Contains(line, SyncDisabledMarker) {
			continue
		}

		m := syncLineRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		aspect, known := aspectOf(line)
		if !known {
			notices = append(notices, fmt.Sprintf("skipping sync line with unrecognized marker %q", m[2]))
			continue
		}

		if LineAmbiguous(line) {
			notices = append(notices, fmt.Sprintf("%s line carries both status glyphs, leaving it untouched", aspect))
			continue
		}

		want := settings.InSync(aspect)
		updated := SetLineStatus(line, want)
		if want {
			notices = append(notices, fmt.Sprintf("%s is in sync", aspect))
		} else {
			notices = append(notices, fmt.Sprintf("%s is out of sync", aspect))
		}
		lines[i] = updated
	}

	return strings.Join(lines, "\n"), notices
}

// HasSyncLines reports whether the template contains at least one sync line,
// i.e. the checklist has been applied to this document. Sync lines with
// unrecognized markers count: a body that already carries a checklist must
// never have the template applied over it.
func HasSyncLines(template string) bool {
	for _, line := range strings.Split(normalize(template), "\n") {
		if IsSyncLine(line) {
			return true
		}
	}
	return false
}

// SyncingDisabled reports whether syncing is explicitly disabled for the
// document. Disabling is sticky and explicit: the disabled marker must be
// present and the enabled marker absent. A document with no markers at all is
// not under checkbox control and defaults to enabled.
func SyncingDisabled(template string) bool {
	return strings.Contains(template, SyncDisabledMarker) && !strings.Contains(template, SyncEnabledMarker)
}

// SetIssueNumber substitutes every ${{ issue-number }} placeholder with the
// literal decimal form of number.
func SetIssueNumber(template string, number int) (string, error) {
	if number < 1 {
		return "", fmt.Errorf("issue number must be 1 or larger, got %d", number)
	}
	return issueNumberVarRE.ReplaceAllString(template, strconv.Itoa(number)), nil
}

// SetHeadBranch substitutes every ${{ head-branch }} placeholder with the
// given branch name.
func SetHeadBranch(template, branch string) (string, error) {
	if branch == "" {
		return "", errors.New("head branch must not be empty")
	}
	return headBranchVarRE.ReplaceAllString(template, branch), nil
}

// normalize rewrites \r\n and bare \r line endings to \n.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
