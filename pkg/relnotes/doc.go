/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package relnotes renders the release notes document for one release.
//
// The generator receives the issues and pull requests already scoped to a
// milestone, buckets them into configured categories, sanitizes every title
// through a fixed pipeline, and assembles a single markdown document. Items
// carrying an ignore label are excluded up front and reported back to the
// caller; categories with no matches are omitted entirely.
//
// Categorization runs in four independent passes, concatenated in document
// order: issue-type categories, label-based issue categories, label-based PR
// categories, and an optional catch-all for issues matching none of the issue
// category labels. The issue-type and label dimensions answer different
// questions and may legitimately list the same item twice.
//
// Configuration is fatal-on-error: a missing header, an unparseable version,
// or a category label that does not exist in the repository aborts generation
// before any output is produced.
package relnotes
