// Package bot receives forwarded GitHub webhook events as cloudevents and
// dispatches them to registered handlers.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/chainguard-dev/clog"
	"github.com/chainguard-dev/clog/gcp"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/go-github/v75/github"
	"github.com/kelseyhightower/envconfig"

	"github.com/KinsonDigital/Infrastructure-sub000/pkg/httpmetrics"
)

// contextKey prevents collisions with other packages' context values.
type contextKey string

const (
	ContextKeyAttributes contextKey = "ce-attributes"
	ContextKeyType       contextKey = "ce-type"
)

type Bot struct {
	Name     string
	Handlers map[EventType]EventHandler
}

type BotOption func(*Bot)

func NewBot(name string, opts ...BotOption) Bot {
	bot := Bot{
		Name:     name,
		Handlers: make(map[EventType]EventHandler),
	}

	for _, opt := range opts {
		opt(&bot)
	}

	return bot
}

func BotWithHandler(handler EventHandler) BotOption {
	return func(b *Bot) {
		b.RegisterHandler(handler)
	}
}

func (b *Bot) RegisterHandler(handler EventHandler) {
	etype := handler.EventType()
	if _, ok := b.Handlers[etype]; ok {
		panic(fmt.Sprintf("handler for event type %s already registered", etype))
	}
	b.Handlers[etype] = handler
}

// Serve runs the bot's cloudevent receiver until the context is canceled.
func Serve(ctx context.Context, b Bot) {
	var env struct {
		Port        int `envconfig:"PORT" default:"8080" required:"true"`
		MetricsPort int `envconfig:"METRICS_PORT" default:"2112"`
	}
	if err := envconfig.Process("", &env); err != nil {
		clog.Fatalf("failed to process env var: %s", err)
	}

	slog.SetDefault(slog.New(gcp.NewHandler(slog.LevelInfo)))

	logger := clog.FromContext(ctx)

	http.DefaultTransport = httpmetrics.Transport
	go httpmetrics.ServeMetrics(ctx, env.MetricsPort)

	c, err := cloudevents.NewClientHTTP(
		cloudevents.WithPort(env.Port),
	)
	if err != nil {
		clog.Fatalf("failed to create event client, %v", err)
	}

	logger.Infof("starting bot %s receiver on port %d", b.Name, env.Port)
	if err := c.StartReceiver(ctx, b.dispatch); err != nil {
		clog.Fatalf("failed to start event receiver, %v", err)
	}
}

func (b *Bot) dispatch(ctx context.Context, event cloudevents.Event) error {
	logger := clog.FromContext(ctx)
	logger.With("event", event).Debugf("received event")

	defer func() {
		if err := recover(); err != nil {
			clog.Errorf("panic: %s", debug.Stack())
		}
	}()

	handler, ok := b.Handlers[EventType(event.Type())]
	if !ok {
		logger.With("event", event).Debugf("ignoring event")
		return nil
	}

	logger.Info("handling event", "type", event.Type())

	// Expose event extensions to handlers through the context.
	for k, v := range event.Context.GetExtensions() {
		ctx = context.WithValue(ctx, contextKey(k), v)
	}
	ctx = context.WithValue(ctx, ContextKeyAttributes, event.Extensions())
	ctx = context.WithValue(ctx, ContextKeyType, event.Type())

	switch h := handler.(type) {
	case PullRequestHandler:
		var pre Wrapper[github.PullRequestEvent]
		if err := event.DataAs(&pre); err != nil {
			logger.Errorf("failed to unmarshal pull request event: %v", err)
			return err
		}
		if err := h(ctx, pre.Body); err != nil {
			logger.Errorf("failed to handle pull request event: %v", err)
			return err
		}
		return nil

	case IssuesHandler:
		var ie Wrapper[github.IssuesEvent]
		if err := event.DataAs(&ie); err != nil {
			logger.Errorf("failed to unmarshal issues event: %v", err)
			return err
		}
		if err := h(ctx, ie.Body); err != nil {
			logger.Errorf("failed to handle issues event: %v", err)
			return err
		}
		return nil
	}

	logger.With("event", event).Debugf("ignoring event")
	return nil
}

// AttributeFromContext retrieves a cloudevent extension by key from the
// context. Returns nil if the attribute does not exist.
func AttributeFromContext(ctx context.Context, key string) interface{} {
	return ctx.Value(contextKey(key))
}
