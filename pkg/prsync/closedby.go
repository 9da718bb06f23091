/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package prsync

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// closedByLooseRE matches anything shaped like a closed-by marker,
	// including malformed ones, so duplicates and corruption can be detected
	// rather than silently ignored.
	closedByLooseRE = regexp.MustCompile(`<!--closed-by-pr:[^>]*-->`)

	// closedByRE matches a well-formed marker and captures the PR number.
	closedByRE = regexp.MustCompile(`^<!--closed-by-pr:([0-9]+)-->$`)
)

// closedByMarker renders the marker for the given PR number.
func closedByMarker(prNumber int) string {
	return fmt.Sprintf("<!--closed-by-pr:%d-->", prNumber)
}

// ClosedByPR extracts the number of the pull request that closes the issue
// with the given body. The second return value is false when the body carries
// no marker at all. Multiple markers, or a marker without a plain integer,
// are an error.
func ClosedByPR(body string) (int, bool, error) {
	found := closedByLooseRE.FindAllString(body, -1)
	switch len(found) {
	case 0:
		return 0, false, nil
	case 1:
		// Fall through to parse below.
	default:
		return 0, false, fmt.Errorf("issue body carries %d closed-by-pr markers, want at most one", len(found))
	}

	m := closedByRE.FindStringSubmatch(found[0])
	if m == nil {
		return 0, false, fmt.Errorf("malformed closed-by-pr marker %q", found[0])
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false, fmt.Errorf("parsing closed-by-pr marker %q: %w", found[0], err)
	}
	return n, true, nil
}

// SetClosedByPR returns the issue body with its closed-by marker pointing at
// prNumber: inserted at the end when absent, replaced in place when present
// with a different number, and never duplicated. A body already carrying more
// than one marker is an error.
func SetClosedByPR(body string, prNumber int) (string, error) {
	if prNumber < 1 {
		return "", fmt.Errorf("pull request number must be 1 or larger, got %d", prNumber)
	}

	marker := closedByMarker(prNumber)

	found := closedByLooseRE.FindAllString(body, -1)
	switch len(found) {
	case 0:
		if strings.TrimSpace(body) == "" {
			return marker, nil
		}
		return strings.TrimRight(body, "\n") + "\n\n" + marker, nil
	case 1:
		if found[0] == marker {
			return body, nil
		}
		return closedByLooseRE.ReplaceAllString(body, marker), nil
	default:
		return "", fmt.Errorf("issue body carries %d closed-by-pr markers, want at most one", len(found))
	}
}
