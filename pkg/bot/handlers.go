package bot

import (
	"context"
	"time"

	"github.com/google/go-github/v75/github"
)

type EventType string

const (
	PullRequestEvent EventType = "dev.kinsondigital.github.pull_request"
	IssuesEvent      EventType = "dev.kinsondigital.github.issues"
)

// EventHandler is implemented by the typed handler funcs below; its only job
// is to report which event type the handler consumes.
type EventHandler interface {
	EventType() EventType
}

type PullRequestHandler func(ctx context.Context, pre github.PullRequestEvent) error

func (h PullRequestHandler) EventType() EventType {
	return PullRequestEvent
}

type IssuesHandler func(ctx context.Context, ie github.IssuesEvent) error

func (h IssuesHandler) EventType() EventType {
	return IssuesEvent
}

// Wrapper is the envelope the event forwarder puts around webhook payloads.
type Wrapper[T any] struct {
	When    time.Time      `json:"when"`
	Headers *GitHubHeaders `json:"headers,omitempty"`
	Body    T              `json:"body"`
}

type GitHubHeaders struct {
	HookID     string `json:"hook_id,omitempty"`
	DeliveryID string `json:"delivery_id,omitempty"`
	Event      string `json:"event,omitempty"`
}
