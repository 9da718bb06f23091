/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// The syncbot receives pull request events and performs the initial
// issue-to-PR synchronization: it copies the linked issue's metadata onto the
// pull request, applies the checklist template to the PR body, and back-links
// the issue to the PR.
package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chainguard-dev/clog"
	_ "github.com/chainguard-dev/clog/gcp/init"
	"github.com/google/go-github/v75/github"
	"github.com/sethvargo/go-envconfig"

	"github.com/KinsonDigital/Infrastructure-sub000/pkg/bot"
	"github.com/KinsonDigital/Infrastructure-sub000/pkg/ghclient"
	"github.com/KinsonDigital/Infrastructure-sub000/pkg/prsync"
)

type Config struct {
	GitHubToken         string `env:"GITHUB_TOKEN, required"`
	DefaultReviewer     string `env:"DEFAULT_REVIEWER, required"`
	AllowedBaseBranches string `env:"ALLOWED_BASE_BRANCHES"`
	TemplatePath        string `env:"SYNC_TEMPLATE_PATH, default=.github/sync-pr-template.md"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	logger := clog.FromContext(ctx)

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		logger.Fatalf("failed to process configuration: %v", err)
	}

	opts := prsync.Options{
		DefaultReviewer: cfg.DefaultReviewer,
	}
	if cfg.AllowedBaseBranches != "" {
		opts.AllowedBaseBranches = strings.Split(cfg.AllowedBaseBranches, ",")
	}

	clients := ghclient.NewCache(ghclient.TokenFactory(cfg.GitHubToken))

	b := bot.NewBot("syncbot",
		bot.BotWithHandler(bot.PullRequestHandler(func(ctx context.Context, pre github.PullRequestEvent) error {
			return handlePullRequest(ctx, clients, cfg, opts, pre)
		})),
	)
	bot.Serve(ctx, b)
}

func handlePullRequest(ctx context.Context, clients *ghclient.Cache, cfg Config, opts prsync.Options, pre github.PullRequestEvent) error {
	logger := clog.FromContext(ctx)

	switch pre.GetAction() {
	case "opened", "reopened", "edited", "synchronize":
	default:
		logger.With("action", pre.GetAction()).Debug("ignoring pull request action")
		return nil
	}

	owner := pre.GetRepo().GetOwner().GetLogin()
	name := pre.GetRepo().GetName()
	pr := pre.GetPullRequest()

	gh, err := clients.Get(ctx, owner, name)
	if err != nil {
		logger.Errorf("failed to get client for %s/%s: %v", owner, name, err)
		return err
	}
	repo := ghclient.NewRepo(gh, owner, name)

	headRef := pr.GetHead().GetRef()
	issueNumber, err := prsync.IssueNumberFromBranch(headRef)
	if err != nil {
		// Head branches that do not follow the feature naming rule have no
		// issue to sync from. The status check reports this separately.
		logger.With("head", headRef).Infof("skipping sync: %v", err)
		return nil
	}

	lookup, err := repo.Issue(ctx, issueNumber)
	if err != nil {
		logger.Errorf("failed to fetch issue #%d: %v", issueNumber, err)
		return err
	}
	if !lookup.Found {
		logger.With("issue", issueNumber, "head", headRef).Info("skipping sync: branch names an issue that does not exist")
		return nil
	}

	template, err := repo.GetFileContent(ctx, cfg.TemplatePath, pr.GetBase().GetRef())
	if err != nil {
		logger.Errorf("failed to fetch checklist template %q: %v", cfg.TemplatePath, err)
		return err
	}

	issueProjects, err := repo.ProjectTitles(ctx, issueNumber)
	if err != nil {
		logger.Errorf("failed to list issue projects: %v", err)
		return err
	}
	prProjects, err := repo.ProjectTitles(ctx, pr.GetNumber())
	if err != nil {
		logger.Errorf("failed to list pull request projects: %v", err)
		return err
	}

	out, err := prsync.RunAsSyncBot(prsync.BotInput{
		Issue:         lookup.Issue,
		PR:            pr,
		IssueProjects: issueProjects,
		PRProjects:    prProjects,
		Template:      template,
		Options:       opts,
	})
	if err != nil {
		logger.Errorf("sync failed for PR #%d: %v", pr.GetNumber(), err)
		return err
	}

	for _, n := range out.Notices {
		logger.With("pr", pr.GetNumber()).Info(n)
	}
	if out.SyncDisabled {
		return nil
	}

	if !out.PRUpdate.Empty() {
		if err := repo.ApplyPRUpdate(ctx, pr.GetNumber(), out.PRUpdate); err != nil {
			logger.Errorf("failed to update PR #%d: %v", pr.GetNumber(), err)
			return err
		}
	}
	if out.IssueUpdate.Body != nil {
		if err := repo.ApplyIssueUpdate(ctx, issueNumber, out.IssueUpdate); err != nil {
			logger.Errorf("failed to update issue #%d: %v", issueNumber, err)
			return err
		}
	}

	logger.With("pr", pr.GetNumber(), "issue", issueNumber).Info("synchronized pull request with issue")
	return nil
}
