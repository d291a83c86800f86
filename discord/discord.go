// Package discord is the Discord frontend: it feeds guild and DM messages to the command
// dispatcher and delivers embeds back to the originating channel.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/onnwee/livebot/command"
)

const Frontend = "discord"

// sender is the part of *discordgo.Session used to reply.
type sender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Bot struct {
	Session    *discordgo.Session
	Dispatcher *command.Dispatcher

	ctx context.Context
}

// New creates a session for the bot token. The connection is opened by Start.
func New(token string, dispatcher *command.Dispatcher) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("discord bot token empty")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent
	return &Bot{Session: s, Dispatcher: dispatcher, ctx: context.Background()}, nil
}

// Start opens the gateway connection. Invocations inherit ctx.
func (b *Bot) Start(ctx context.Context) error {
	b.ctx = ctx
	b.Session.AddHandler(b.onMessageCreate)
	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	slog.Info("discord bot connected")
	return nil
}

func (b *Bot) Close() error {
	return b.Session.Close()
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	b.handle(s, m.Message)
}

// handle dispatches m unless it was written by a bot. It reports whether a command started.
func (b *Bot) handle(snd sender, m *discordgo.Message) bool {
	if m == nil || m.Author == nil || m.Author.Bot {
		return false
	}
	return b.Dispatcher.Dispatch(b.ctx, command.Message{
		Text:         m.Content,
		Author:       m.Author.Username,
		Conversation: &channelConversation{sender: snd, channelID: m.ChannelID},
	})
}

type channelConversation struct {
	sender    sender
	channelID string
}

func (c *channelConversation) ID() string       { return c.channelID }
func (c *channelConversation) Frontend() string { return Frontend }

func (c *channelConversation) SendEmbed(ctx context.Context, e command.Embed) error {
	if _, err := c.sender.ChannelMessageSendEmbed(c.channelID, toMessageEmbed(e), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send embed to channel %s: %w", c.channelID, err)
	}
	return nil
}

func toMessageEmbed(e command.Embed) *discordgo.MessageEmbed {
	me := &discordgo.MessageEmbed{
		Type:        discordgo.EmbedTypeRich,
		Color:       e.Color,
		Title:       e.Title,
		URL:         e.URL,
		Description: e.Description,
	}
	if e.Author != nil {
		me.Author = &discordgo.MessageEmbedAuthor{Name: e.Author.Name, URL: e.Author.URL, IconURL: e.Author.IconURL}
	}
	for _, f := range e.Fields {
		me.Fields = append(me.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	if e.Image != nil {
		me.Image = &discordgo.MessageEmbedImage{URL: e.Image.URL}
	}
	if e.Footer != nil {
		me.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer.Text}
	}
	if !e.Timestamp.IsZero() {
		me.Timestamp = e.Timestamp.UTC().Format(time.RFC3339)
	}
	return me
}
