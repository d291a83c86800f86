package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	twitch "github.com/gempir/go-twitch-irc/v4"

	"github.com/onnwee/livebot/command"
	"github.com/onnwee/livebot/config"
	"github.com/onnwee/livebot/livestatus"
)

const (
	Frontend = "twitch"

	// maxLineLength is the Twitch chat message limit in characters.
	maxLineLength = 500
)

// sayer is the part of *twitch.Client used to reply.
type sayer interface {
	Say(channel, text string)
}

// StartTwitchChatBot joins cfg.TwitchChannel and dispatches chat messages until ctx is cancelled.
// When cfg.ChatAnnounceInterval is set and live is non-nil, an Announcer for the same
// channel runs alongside.
func StartTwitchChatBot(ctx context.Context, cfg *config.Config, dispatcher *command.Dispatcher, live *livestatus.Command) {
	if err := cfg.ValidateChatReady(); err != nil {
		slog.Info("twitch chat creds not set; skipping chat bot")
		return
	}
	token := cfg.TwitchOAuthToken
	if !strings.HasPrefix(token, "oauth:") {
		token = "oauth:" + token
	}
	client := twitch.NewClient(cfg.TwitchBotUsername, token)
	channel := strings.ToLower(strings.TrimPrefix(cfg.TwitchChannel, "#"))

	client.OnPrivateMessage(func(msg twitch.PrivateMessage) {
		handlePrivateMessage(ctx, dispatcher, client, msg)
	})
	client.OnConnect(func() {
		slog.Info("twitch chat connected", slog.String("channel", channel))
	})

	if a := announcerFor(cfg, live, channel, &ircConversation{sayer: client, channel: channel}); a != nil {
		go a.Run(ctx)
	}

	// Handle context cancellation by closing the client
	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		if err := client.Disconnect(); err != nil {
			slog.Debug("twitch chat disconnect", slog.Any("err", err))
		}
		close(done)
	}()

	client.Join(channel)
	if err := client.Connect(); err != nil && ctx.Err() == nil {
		slog.Error("twitch chat connect error", slog.Any("err", err))
	}
	<-done
}

func handlePrivateMessage(ctx context.Context, dispatcher *command.Dispatcher, s sayer, msg twitch.PrivateMessage) bool {
	return dispatcher.Dispatch(ctx, command.Message{
		Text:         msg.Message,
		Author:       msg.User.Name,
		Conversation: &ircConversation{sayer: s, channel: msg.Channel},
	})
}

type ircConversation struct {
	sayer   sayer
	channel string
}

func (c *ircConversation) ID() string       { return c.channel }
func (c *ircConversation) Frontend() string { return Frontend }

func (c *ircConversation) SendEmbed(_ context.Context, e command.Embed) error {
	line := RenderText(e)
	if line == "" {
		return fmt.Errorf("nothing to say in #%s", c.channel)
	}
	c.sayer.Say(c.channel, line)
	return nil
}

// RenderText flattens an embed into one chat line:
//
//	🔴 Live | K3rn31p4nic: Playing chess | Game: Chess | Viewers: 42 | https://www.twitch.tv/k3rn31p4nic
func RenderText(e command.Embed) string {
	var parts []string
	if e.Footer != nil && e.Footer.Text != "" {
		parts = append(parts, e.Footer.Text)
	}
	head := e.Title
	if e.Author != nil && e.Author.Name != "" {
		if head != "" {
			head = e.Author.Name + ": " + head
		} else {
			head = e.Author.Name
		}
	}
	if e.Description != "" {
		if head != "" {
			head += ": " + e.Description
		} else {
			head = e.Description
		}
	}
	if head != "" {
		parts = append(parts, head)
	}
	for _, f := range e.Fields {
		parts = append(parts, f.Name+": "+f.Value)
	}
	if e.URL != "" {
		parts = append(parts, e.URL)
	}
	line := strings.Join(parts, " | ")
	// markdown bold is rendered literally in IRC
	line = strings.ReplaceAll(line, "**", "")
	if utf8.RuneCountInString(line) > maxLineLength {
		r := []rune(line)
		line = string(r[:maxLineLength-1]) + "…"
	}
	return line
}
