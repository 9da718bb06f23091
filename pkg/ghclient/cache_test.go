/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package ghclient

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-github/v75/github"
)

func TestCacheGet(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		owner1   string
		repo1    string
		owner2   string
		repo2    string
		wantSame bool
	}{
		{
			name:     "same owner/repo returns same client",
			owner1:   "myorg",
			repo1:    "myrepo",
			owner2:   "myorg",
			repo2:    "myrepo",
			wantSame: true,
		},
		{
			name:     "different repo returns different client",
			owner1:   "myorg",
			repo1:    "repo1",
			owner2:   "myorg",
			repo2:    "repo2",
			wantSame: false,
		},
		{
			name:     "different owner returns different client",
			owner1:   "org1",
			repo1:    "myrepo",
			owner2:   "org2",
			repo2:    "myrepo",
			wantSame: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewCache(func(_ context.Context, _, _ string) (*github.Client, error) {
				return github.NewClient(nil), nil
			})

			client1, err1 := cache.Get(ctx, tt.owner1, tt.repo1)
			client2, err2 := cache.Get(ctx, tt.owner2, tt.repo2)
			if err1 != nil || err2 != nil {
				t.Fatalf("unexpected error: err1=%v, err2=%v", err1, err2)
			}

			if tt.wantSame && client1 != client2 {
				t.Errorf("expected same client instance for %s/%s", tt.owner1, tt.repo1)
			}
			if !tt.wantSame && client1 == client2 {
				t.Errorf("expected different client instances for %s/%s and %s/%s",
					tt.owner1, tt.repo1, tt.owner2, tt.repo2)
			}
		})
	}
}

func TestCacheGetError(t *testing.T) {
	expectedErr := errors.New("factory error")

	cache := NewCache(func(_ context.Context, _, _ string) (*github.Client, error) {
		return nil, expectedErr
	})

	_, err := cache.Get(context.Background(), "org", "repo")
	if err == nil {
		t.Fatal("expected error but got none")
	}
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error to contain %v, got %v", expectedErr, err)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	var factoryCalls int32

	cache := NewCache(func(_ context.Context, _, _ string) (*github.Client, error) {
		atomic.AddInt32(&factoryCalls, 1)
		return github.NewClient(nil), nil
	})

	const numGoroutines = 50
	clientsChan := make(chan *github.Client, numGoroutines)

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			client, err := cache.Get(ctx, "testorg", "testrepo")
			if err != nil {
				t.Errorf("unexpected error in concurrent access: %v", err)
				return
			}
			clientsChan <- client
		}()
	}
	wg.Wait()
	close(clientsChan)

	clients := make([]*github.Client, 0, numGoroutines)
	for client := range clientsChan {
		clients = append(clients, client)
	}
	if len(clients) != numGoroutines {
		t.Fatalf("expected %d clients, got %d", numGoroutines, len(clients))
	}
	for i, client := range clients {
		if client != clients[0] {
			t.Errorf("client %d is not the same instance as client 0", i)
		}
	}

	if calls := atomic.LoadInt32(&factoryCalls); calls != 1 {
		t.Errorf("expected factory to be called once, but was called %d times", calls)
	}
}
