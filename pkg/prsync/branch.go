/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package prsync

import (
	"fmt"
	"regexp"
	"strconv"
)

// featureBranchRE is the required naming rule for PR head branches:
// feature/<issue-number>-<kebab-case-description>, where the description is
// lowercase letters and hyphens with no leading hyphen.
var featureBranchRE = regexp.MustCompile(`^feature/([0-9]+)-[a-z][a-z-]*$`)

// IsFeatureBranch reports whether ref follows the feature branch naming rule.
func IsFeatureBranch(ref string) bool {
	return featureBranchRE.MatchString(ref)
}

// IssueNumberFromBranch extracts the issue number embedded in a feature
// branch name.
func IssueNumberFromBranch(ref string) (int, error) {
	m := featureBranchRE.FindStringSubmatch(ref)
	if m == nil {
		return 0, fmt.Errorf("branch %q does not match the feature branch pattern feature/<issue-number>-<description>", ref)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("parsing issue number from branch %q: %w", ref, err)
	}
	return n, nil
}
