package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/onnwee/livebot/command"
	"github.com/onnwee/livebot/livestatus"
)

// liveResponse is the body of GET /live/{channel}. Exactly one field is set.
type liveResponse struct {
	Embed *command.Embed `json:"embed,omitempty"`
	Error *liveError     `json:"error,omitempty"`
}

type liveError struct {
	Outcome string        `json:"outcome"`
	Title   string        `json:"title,omitempty"`
	Message string        `json:"message,omitempty"`
	Help    *command.Help `json:"help,omitempty"`
}

// capture is both the conversation and the reporter of one HTTP invocation.
type capture struct {
	mu    sync.Mutex
	embed *command.Embed
	err   *liveError
}

func (c *capture) ID() string       { return "http" }
func (c *capture) Frontend() string { return "http" }

func (c *capture) SendEmbed(_ context.Context, e command.Embed) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embed = &e
	return nil
}

func (c *capture) CommandUsage(_ context.Context, _ command.Conversation, help command.Help) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = &liveError{Title: help.Name, Message: help.Usage, Help: &help}
}

func (c *capture) Error(_ context.Context, _ command.Conversation, title, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = &liveError{Title: title, Message: message}
}

// HandleLive runs the twitch command for the {channel} path variable and returns the embed
// or the reported failure as JSON.
func (h *Handlers) HandleLive(w http.ResponseWriter, r *http.Request) {
	channel := mux.Vars(r)["channel"]

	c := &capture{}
	cmd := *h.live
	cmd.Reporter = c
	outcome := cmd.Respond(r.Context(), c, channel)

	if outcome == livestatus.OutcomeLive && c.embed != nil {
		writeJSON(w, http.StatusOK, liveResponse{Embed: c.embed})
		return
	}
	e := c.err
	if e == nil {
		e = &liveError{}
	}
	e.Outcome = outcome.String()
	writeJSON(w, statusFor(outcome), liveResponse{Error: e})
}

func statusFor(o livestatus.Outcome) int {
	switch o {
	case livestatus.OutcomeLive:
		return http.StatusOK
	case livestatus.OutcomeUsage:
		return http.StatusBadRequest
	case livestatus.OutcomeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
