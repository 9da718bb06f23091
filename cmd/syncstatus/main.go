/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// The syncstatus bot receives pull request events, verifies that the pull
// request is still in sync with its linked issue without mutating either,
// refreshes the checklist glyphs in the PR body, and reports the outcome as
// a check run on the head commit.
package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chainguard-dev/clog"
	_ "github.com/chainguard-dev/clog/gcp/init"
	"github.com/google/go-github/v75/github"
	"github.com/sethvargo/go-envconfig"

	"github.com/KinsonDigital/Infrastructure-sub000/pkg/bot"
	"github.com/KinsonDigital/Infrastructure-sub000/pkg/check"
	"github.com/KinsonDigital/Infrastructure-sub000/pkg/ghclient"
	"github.com/KinsonDigital/Infrastructure-sub000/pkg/prsync"
)

const checkName = "issue-pr-sync"

type Config struct {
	GitHubToken         string `env:"GITHUB_TOKEN, required"`
	DefaultReviewer     string `env:"DEFAULT_REVIEWER, required"`
	AllowedBaseBranches string `env:"ALLOWED_BASE_BRANCHES"`
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

	b := bot.NewBot("syncstatus",
		bot.BotWithHandler(bot.PullRequestHandler(func(ctx context.Context, pre github.PullRequestEvent) error {
			return handlePullRequest(ctx, clients, opts, pre)
		})),
	)
	bot.Serve(ctx, b)
}

func handlePullRequest(ctx context.Context, clients *ghclient.Cache, opts prsync.Options, pre github.PullRequestEvent) error {
	logger := clog.FromContext(ctx)

	switch pre.GetAction() {
	case "opened", "reopened", "edited", "synchronize", "labeled", "unlabeled", "assigned", "unassigned", "milestoned", "demilestoned", "review_requested", "review_request_removed":
	default:
		logger.With("action", pre.GetAction()).Debug("ignoring pull request action")
		return nil
	}

	owner := pre.GetRepo().GetOwner().GetLogin()
	name := pre.GetRepo().GetName()
	pr := pre.GetPullRequest()
	headSHA := pr.GetHead().GetSHA()

	gh, err := clients.Get(ctx, owner, name)
	if err != nil {
		logger.Errorf("failed to get client for %s/%s: %v", owner, name, err)
		return err
	}
	repo := ghclient.NewRepo(gh, owner, name)

	headRef := pr.GetHead().GetRef()
	issueNumber, err := prsync.IssueNumberFromBranch(headRef)
	if err != nil {
		return postCheck(ctx, repo, check.SyncReport(checkName, headSHA, false,
			[]string{err.Error()}, nil))
	}

	lookup, err := repo.Issue(ctx, issueNumber)
	if err != nil {
		logger.Errorf("failed to fetch issue #%d: %v", issueNumber, err)
		return err
	}
	if !lookup.Found {
		return postCheck(ctx, repo, check.SyncReport(checkName, headSHA, false,
			[]string{fmt.Sprintf("the head branch %q names issue #%d, which does not exist", headRef, issueNumber)}, nil))
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

	out, err := prsync.RunAsStatusCheck(prsync.CheckInput{
		Issue:         lookup.Issue,
		PR:            pr,
		IssueProjects: issueProjects,
		PRProjects:    prProjects,
		Options:       opts,
	})
	if err != nil {
		logger.Errorf("status check failed for PR #%d: %v", pr.GetNumber(), err)
		return err
	}

	for _, n := range out.Notices {
		logger.With("pr", pr.GetNumber()).Info(n)
	}

	if out.BodyUpdate != nil {
		if err := repo.ApplyPRUpdate(ctx, pr.GetNumber(), prsync.PRUpdate{Body: out.BodyUpdate}); err != nil {
			logger.Errorf("failed to refresh checklist on PR #%d: %v", pr.GetNumber(), err)
			return err
		}
	}

	return postCheck(ctx, repo, check.SyncReport(checkName, headSHA, out.Passed, out.Discrepancies, out.Notices))
}

func postCheck(ctx context.Context, repo *ghclient.Repo, b *check.Builder) error {
	_, _, err := repo.Client().Checks.CreateCheckRun(ctx, repo.Owner(), repo.Name(), *b.CheckRunCreate())
	if err != nil {
		clog.FromContext(ctx).Errorf("failed to create check run: %v", err)
		return err
	}
	return nil
}
