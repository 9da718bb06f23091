/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package prsync keeps a pull request's metadata in sync with its linked
// issue.
//
// The package is pure computation: it receives an issue, a pull request, and
// their organization project titles, derives one boolean per sync aspect
// (head branch, base branch, issue number, title, default reviewer,
// assignees, labels, projects, milestone), and drives the checklist embedded
// in the pull request body through pkg/prsync/checklist. Callers perform all
// GitHub reads and writes; the package only returns partial update payloads.
//
// Two entry points cover the two reconciliation modes:
//
//   - RunAsSyncBot: the first pass after a PR is created or re-linked. The
//     issue is the source of truth, so its title, labels, assignees, and
//     milestone are copied onto the PR before the checklist is refreshed.
//   - RunAsStatusCheck: subsequent passes. Nothing is copied; the checklist
//     is refreshed and every mismatch is reported as a discrepancy string
//     suitable for a failing status check.
//
// An issue is linked back to its closing pull request with a single
// <!--closed-by-pr:N--> marker in the issue body. That marker is the only
// index from issue to PR; SetClosedByPR and ClosedByPR maintain and read it.
package prsync
