/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package checklist implements the markdown sync checklist embedded in pull
// request descriptions.
//
// A checklist is plain markdown text in which certain lines are "sync lines":
// a status glyph (✅ or ❌) as the first non-whitespace character, free text,
// and a trailing HTML comment naming the sync aspect the line tracks, e.g.
//
//	✅ The head branch is valid. <!--head-branch-->
//
// Two standalone markers, <!--sync-enabled--> and <!--sync-disabled-->, toggle
// whether syncing is active for the whole document. Templates may also carry
// the placeholders ${{ issue-number }} and ${{ head-branch }}, which are
// substituted with literal values when the checklist is first applied to a
// pull request.
//
// Everything in this package is pure text transformation. Reading and writing
// pull request bodies is the caller's concern.
package checklist
