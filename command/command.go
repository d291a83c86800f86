// Package command is the transport-agnostic command core: a command has help/config
// metadata and Run(ctx, invocation). Frontends (Discord, Twitch chat, HTTP, CLI) turn
// incoming text into a Message and hand it to a Dispatcher; replies go back through the
// Conversation the message came from.
package command

import (
	"context"
	"time"
)

// Embed is a structured, styled message payload rendered by the chat client.
type Embed struct {
	Color       int          `json:"color,omitempty"`
	Author      *EmbedAuthor `json:"author,omitempty"`
	Title       string       `json:"title,omitempty"`
	URL         string       `json:"url,omitempty"`
	Description string       `json:"description,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Image       *EmbedImage  `json:"image,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   time.Time    `json:"timestamp,omitzero"`
}

type EmbedAuthor struct {
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type EmbedImage struct {
	URL string `json:"url"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

// Conversation is where a command was invoked and where its replies go.
type Conversation interface {
	ID() string
	// Frontend names the platform, e.g. "discord" or "twitch".
	Frontend() string
	SendEmbed(ctx context.Context, e Embed) error
}

// Reporter is the shared failure-notification channel. Implementations must not
// return or panic on delivery failure.
type Reporter interface {
	CommandUsage(ctx context.Context, conv Conversation, help Help)
	Error(ctx context.Context, conv Conversation, title, message string)
}

// Help is the user-facing description of a command.
type Help struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	BotPermission  string   `json:"botPermission,omitempty"`
	UserPermission string   `json:"userPermission,omitempty"`
	Usage          string   `json:"usage"`
	Example        []string `json:"example,omitempty"`
}

// ArgType is the value type of an argument.
type ArgType int

const (
	ArgString ArgType = iota
)

// ArgDef declares one argument. At most one argument per command should be the DefaultOption,
// which receives the first bare token.
type ArgDef struct {
	Name          string
	Type          ArgType
	DefaultOption bool
}

// Config is the dispatch metadata of a command.
type Config struct {
	Aliases []string
	Enabled bool
	Args    []ArgDef
}

// Args are parsed argument values by name.
type Args map[string]string

// String returns the value of name, or "" when absent.
func (a Args) String(name string) string { return a[name] }

// Invocation is one run of a command.
type Invocation struct {
	Name         string
	Args         Args
	Raw          string
	Author       string
	Conversation Conversation
}

// Command is the universal contract: metadata plus execution. Run reports every
// outcome through the invocation's conversation and never propagates failures.
type Command interface {
	Help() Help
	Config() Config
	Run(ctx context.Context, inv *Invocation)
}
