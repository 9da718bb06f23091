/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package ghclient

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v75/github"
	"golang.org/x/oauth2"

	"github.com/KinsonDigital/Infrastructure-sub000/pkg/httpmetrics"
)

// ClientFactory builds a GitHub client scoped to an owner/repo pair.
type ClientFactory func(ctx context.Context, owner, repo string) (*github.Client, error)

// Cache hands out GitHub clients per repository, creating each one once.
type Cache struct {
	factory ClientFactory

	mu      sync.RWMutex
	clients map[string]*github.Client
}

// NewCache creates a client cache backed by the given factory.
func NewCache(factory ClientFactory) *Cache {
	return &Cache{
		factory: factory,
		clients: make(map[string]*github.Client),
	}
}

// Get returns the client for owner/repo, creating it if needed.
func (c *Cache) Get(ctx context.Context, owner, repo string) (*github.Client, error) {
	key := owner + "/" + repo

	c.mu.RLock()
	client, ok := c.clients[key]
	c.mu.RUnlock()
	if ok {
		return client, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if client, ok := c.clients[key]; ok {
		return client, nil
	}

	client, err := c.factory(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("creating GitHub client for %s: %w", key, err)
	}
	c.clients[key] = client

	clog.FromContext(ctx).With("owner", owner, "repo", repo).Info("Created GitHub client")
	return client, nil
}

// TokenFactory builds clients authenticated with a personal access token.
func TokenFactory(token string) ClientFactory {
	return func(ctx context.Context, _, _ string) (*github.Client, error) {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		// Use a background context for the oauth client so a cached client
		// does not inherit a request-scoped cancellation.
		oc := oauth2.NewClient(context.WithoutCancel(ctx), ts)
		// Transport chain: metrics -> rate limiter -> oauth2.
		return github.NewClient(&http.Client{
			Transport: httpmetrics.WrapTransport(NewRateLimitTransport(oc.Transport, 0)),
		}), nil
	}
}

// AppFactory builds clients authenticated as a GitHub App installation.
func AppFactory(appID, installationID int64, privateKeyPath string) ClientFactory {
	return func(_ context.Context, _, _ string) (*github.Client, error) {
		tr, err := ghinstallation.NewKeyFromFile(http.DefaultTransport, appID, installationID, privateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("loading GitHub App key: %w", err)
		}
		return github.NewClient(&http.Client{
			Transport: httpmetrics.WrapTransport(NewRateLimitTransport(tr, 0)),
		}), nil
	}
}
