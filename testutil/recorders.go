// Package testutil contains fakes shared by package tests: a mock Kraken API server and
// recording implementations of command.Conversation and command.Reporter.
package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/onnwee/livebot/command"
)

// ErrDelivery is returned by a RecordingConversation with Fail set.
var ErrDelivery = errors.New("delivery failed")

// RecordingConversation stores every embed sent to it.
type RecordingConversation struct {
	Name string
	Fail bool

	mu     sync.Mutex
	embeds []command.Embed
}

func (c *RecordingConversation) ID() string {
	if c.Name == "" {
		return "test-conversation"
	}
	return c.Name
}

func (c *RecordingConversation) Frontend() string { return "test" }

func (c *RecordingConversation) SendEmbed(_ context.Context, e command.Embed) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeds = append(c.embeds, e)
	if c.Fail {
		return ErrDelivery
	}
	return nil
}

// Embeds returns a copy of the embeds sent so far.
func (c *RecordingConversation) Embeds() []command.Embed {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]command.Embed(nil), c.embeds...)
}

// Notification is one call recorded by RecordingReporter.
type Notification struct {
	Usage   bool
	Help    command.Help
	Title   string
	Message string
}

// RecordingReporter stores every notification it is asked to emit.
type RecordingReporter struct {
	mu    sync.Mutex
	calls []Notification
}

func (r *RecordingReporter) CommandUsage(_ context.Context, _ command.Conversation, help command.Help) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Notification{Usage: true, Help: help})
}

func (r *RecordingReporter) Error(_ context.Context, _ command.Conversation, title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Notification{Title: title, Message: message})
}

// Notifications returns a copy of the recorded calls.
func (r *RecordingReporter) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.calls...)
}
