/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// The release-notes command generates a markdown release notes document for
// a milestone. Items come from the milestone whose title matches the release
// version, categorized and sanitized per the YAML configuration.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/chainguard-dev/clog"
	_ "github.com/chainguard-dev/clog/gcp/init"
	"github.com/sethvargo/go-envconfig"

	"github.com/KinsonDigital/Infrastructure-sub000/pkg/ghclient"
	"github.com/KinsonDigital/Infrastructure-sub000/pkg/relnotes"
)

type Config struct {
	GitHubToken string `env:"GITHUB_TOKEN, required"`
	Owner       string `env:"GITHUB_OWNER, required"`
}

func main() {
	configPath := flag.String("config", "release-notes.yaml", "path to the release notes configuration file")
	output := flag.String("output", "", "output file path (defaults to ReleaseNotes-<version>.md)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	logger := clog.FromContext(ctx)

	var env Config
	if err := envconfig.Process(ctx, &env); err != nil {
		logger.Fatalf("failed to process configuration: %v", err)
	}

	cfg, err := relnotes.LoadConfig(*configPath)
	if err != nil {
		logger.Fatalf("failed to load release notes config: %v", err)
	}

	gen, err := relnotes.New(cfg)
	if err != nil {
		logger.Fatalf("invalid release notes config: %v", err)
	}

	clients := ghclient.NewCache(ghclient.TokenFactory(env.GitHubToken))
	gh, err := clients.Get(ctx, env.Owner, cfg.RepoName)
	if err != nil {
		logger.Fatalf("failed to create GitHub client: %v", err)
	}
	repo := ghclient.NewRepo(gh, env.Owner, cfg.RepoName)

	// Misspelled labels would silently miscategorize items, so every label
	// the config references must exist before anything is fetched.
	if err := gen.ValidateLabels(ctx, repo); err != nil {
		logger.Fatalf("label validation failed: %v", err)
	}

	milestone, err := repo.MilestoneByTitle(ctx, cfg.Version)
	if err != nil {
		logger.Fatalf("failed to resolve milestone %q: %v", cfg.Version, err)
	}

	issues, prs, err := repo.MilestoneItems(ctx, milestone.GetNumber())
	if err != nil {
		logger.Fatalf("failed to list milestone items: %v", err)
	}
	logger.With("milestone", cfg.Version, "issues", len(issues), "prs", len(prs)).Info("fetched milestone items")

	doc, err := gen.Generate(issues, prs)
	if err != nil {
		logger.Fatalf("failed to generate release notes: %v", err)
	}

	for _, item := range doc.Ignored {
		logger.With("number", item.Number, "title", item.Title).Info("excluded by ignore label")
	}

	path := *output
	if path == "" {
		path = "ReleaseNotes-" + cfg.Version + ".md"
	}
	if err := os.WriteFile(path, []byte(doc.Markdown), 0o644); err != nil {
		logger.Fatalf("failed to write %s: %v", path, err)
	}
	logger.With("path", path).Info("wrote release notes")
}
