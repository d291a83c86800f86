package command

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/onnwee/livebot/telemetry"
)

// Message is incoming chat text from a frontend.
type Message struct {
	Text         string
	Author       string
	Conversation Conversation
}

// Dispatcher detects commands in messages and runs them. Invocations are independent
// of each other; the only shared state is the read-only registry.
type Dispatcher struct {
	Prefix   string
	Registry *Registry

	wg sync.WaitGroup
}

func NewDispatcher(prefix string, registry *Registry) *Dispatcher {
	return &Dispatcher{Prefix: prefix, Registry: registry}
}

// Dispatch starts the command in msg, if any, without waiting for it to finish.
// It reports whether a command was started.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) bool {
	cmd, inv, ok := d.prepare(msg)
	if !ok {
		return false
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.run(ctx, cmd, inv)
	}()
	return true
}

// RunSync is Dispatch but returns only after the command has finished.
func (d *Dispatcher) RunSync(ctx context.Context, msg Message) bool {
	cmd, inv, ok := d.prepare(msg)
	if !ok {
		return false
	}
	d.run(ctx, cmd, inv)
	return true
}

// Wait blocks until every dispatched invocation has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) prepare(msg Message) (Command, *Invocation, bool) {
	if msg.Conversation == nil {
		return nil, nil, false
	}
	name, tokens, ok := Detect(d.Prefix, msg.Text)
	if !ok {
		return nil, nil, false
	}
	cmd, ok := d.Registry.Lookup(name)
	if !ok {
		return nil, nil, false
	}
	return cmd, &Invocation{
		Name:         cmd.Help().Name,
		Args:         ParseArgs(cmd.Config().Args, tokens),
		Raw:          msg.Text,
		Author:       msg.Author,
		Conversation: msg.Conversation,
	}, true
}

func (d *Dispatcher) run(ctx context.Context, cmd Command, inv *Invocation) {
	if telemetry.GetCorrelation(ctx) == "" {
		ctx = telemetry.WithCorrelation(ctx, uuid.New().String())
	}
	log := telemetry.LoggerWithCorr(ctx)
	defer func() {
		if r := recover(); r != nil {
			log.Error("command panicked", slog.String("command", inv.Name), slog.Any("panic", r))
		}
	}()
	log.Debug("command start",
		slog.String("command", inv.Name),
		slog.String("frontend", inv.Conversation.Frontend()),
		slog.String("conversation", inv.Conversation.ID()),
		slog.String("author", inv.Author))
	cmd.Run(ctx, inv)
}
