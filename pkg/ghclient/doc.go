/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package ghclient wraps the GitHub API surface the automation needs: a
// client cache keyed by repository, credential helpers for both personal
// access tokens and GitHub App installations, and a thin repository-scoped
// wrapper exposing typed lookups and partial updates.
//
// Lookups return an explicit found/not-found result instead of smuggling
// status codes through sentinel values, so callers handle "no such issue"
// separately from transport failures.
package ghclient
