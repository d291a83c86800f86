// Package livestatus implements the twitch command: one stream-info lookup per invocation,
// rendered as an embed when the channel is live or reported as a failure otherwise.
package livestatus

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/onnwee/livebot/command"
	"github.com/onnwee/livebot/locale"
	"github.com/onnwee/livebot/telemetry"
	"github.com/onnwee/livebot/twitchapi"
)

const (
	Name = "twitch"

	// ArgLive is the positional argument holding the channel name.
	ArgLive = "live"

	// LiveFooter is used when no catalog is configured.
	LiveFooter = "🔴 Live"

	// NoGame fills the Game field when the stream reports no game.
	NoGame = "-"
)

// StreamGetter resolves a channel's current stream. *twitchapi.KrakenClient implements it.
type StreamGetter interface {
	GetStream(ctx context.Context, channel string) (*twitchapi.Stream, error)
}

// Outcome tags the result of one invocation.
type Outcome int

const (
	OutcomeLive Outcome = iota
	OutcomeUsage
	OutcomeTransport
	OutcomeNotFound
	OutcomeParse
	OutcomeUpstream
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLive:
		return "live"
	case OutcomeUsage:
		return "usage"
	case OutcomeTransport:
		return "transport"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeParse:
		return "parse"
	case OutcomeUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// Result is the tagged result of one lookup. Stream is set only for OutcomeLive,
// StatusCode and StatusMessage only for OutcomeUpstream.
type Result struct {
	Outcome       Outcome
	Stream        *twitchapi.Stream
	StatusCode    int
	StatusMessage string
	Err           error
}

// Classify maps the return values of StreamGetter.GetStream to a Result.
func Classify(stream *twitchapi.Stream, err error) Result {
	if err == nil {
		if stream == nil {
			return Result{Outcome: OutcomeParse, Err: errors.New("empty stream")}
		}
		return Result{Outcome: OutcomeLive, Stream: stream}
	}
	var (
		statusErr *twitchapi.StatusError
		parseErr  *twitchapi.ParseError
	)
	switch {
	case errors.Is(err, twitchapi.ErrNotLive):
		return Result{Outcome: OutcomeNotFound, Err: err}
	case errors.As(err, &statusErr):
		return Result{Outcome: OutcomeUpstream, StatusCode: statusErr.StatusCode, StatusMessage: statusErr.Message, Err: err}
	case errors.As(err, &parseErr):
		return Result{Outcome: OutcomeParse, Err: err}
	default:
		return Result{Outcome: OutcomeTransport, Err: err}
	}
}

// Command is the twitch command. It holds no per-invocation state, so one value
// serves any number of concurrent invocations.
type Command struct {
	Streams  StreamGetter
	Reporter command.Reporter
	Strings  *locale.Catalog
	Color    int
}

func New(streams StreamGetter, reporter command.Reporter, catalog *locale.Catalog, color int) *Command {
	return &Command{Streams: streams, Reporter: reporter, Strings: catalog, Color: color}
}

func (c *Command) Help() command.Help {
	return command.Help{
		Name:        Name,
		Description: c.str("twitch", "commandDescription"),
		Usage:       "twitch <username>",
		Example:     []string{"twitch k3rn31p4nic"},
	}
}

func (c *Command) Config() command.Config {
	return command.Config{
		Enabled: true,
		Args:    []command.ArgDef{{Name: ArgLive, Type: command.ArgString, DefaultOption: true}},
	}
}

func (c *Command) Run(ctx context.Context, inv *command.Invocation) {
	c.Respond(ctx, inv.Conversation, inv.Args.String(ArgLive))
}

// Respond runs one lookup for channel and reports it to conv. The returned outcome is
// informational; every failure has already been reported when Respond returns.
func (c *Command) Respond(ctx context.Context, conv command.Conversation, channel string) Outcome {
	log := telemetry.LoggerWithCorr(ctx).With(slog.String("command", Name), slog.String("channel", channel))

	if channel == "" {
		c.Reporter.CommandUsage(ctx, conv, c.Help())
		telemetry.CountInvocation(Name, OutcomeUsage.String())
		return OutcomeUsage
	}

	res := <-c.lookup(ctx, channel)
	telemetry.CountInvocation(Name, res.Outcome.String())

	switch res.Outcome {
	case OutcomeTransport:
		log.Warn("stream lookup failed", slog.Any("err", res.Err))
		c.Reporter.Error(ctx, conv, c.str("connection", "errors"), c.str("connection", "errorMessage"))
	case OutcomeParse:
		log.Warn("stream response unreadable", slog.Any("err", res.Err))
		c.Reporter.Error(ctx, conv, c.str("parseError", "errors"), c.str("parse", "errorMessage"))
	case OutcomeNotFound:
		c.Reporter.Error(ctx, conv, c.str("notFound", "errors"), c.str("noLiveStream", "errorMessage", channel))
	case OutcomeUpstream:
		log.Info("stream lookup rejected", slog.Int("status", res.StatusCode), slog.String("message", res.StatusMessage))
		c.Reporter.Error(ctx, conv, strconv.Itoa(res.StatusCode), res.StatusMessage)
	case OutcomeLive:
		embed := BuildEmbed(res.Stream, c.Color, c.Footer())
		if err := conv.SendEmbed(ctx, embed); err != nil {
			log.Error("deliver live embed", slog.String("frontend", conv.Frontend()), slog.Any("err", err))
			telemetry.CountDeliveryFailure(conv.Frontend())
		}
	}
	return res.Outcome
}

// lookup starts the request and returns a channel that yields exactly one Result.
func (c *Command) lookup(ctx context.Context, channel string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		out <- Classify(c.Streams.GetStream(ctx, channel))
	}()
	return out
}

// Footer is the localized footer of the live embed.
func (c *Command) Footer() string { return c.str("live", "info") }

func (c *Command) str(key, section string, args ...any) string {
	if c.Strings == nil {
		if key == "live" && section == "info" {
			return LiveFooter
		}
		return key
	}
	return c.Strings.String(key, section, args...)
}

// BuildEmbed renders a live stream. An empty footer defaults to LiveFooter.
// Field values are never empty.
func BuildEmbed(s *twitchapi.Stream, color int, footer string) command.Embed {
	if footer == "" {
		footer = LiveFooter
	}
	game := s.Game
	if game == "" {
		game = NoGame
	}
	return command.Embed{
		Color: color,
		Author: &command.EmbedAuthor{
			Name:    s.Channel.DisplayName,
			URL:     s.Channel.URL,
			IconURL: s.Channel.Logo,
		},
		Title: s.Channel.Status,
		URL:   s.Channel.URL,
		Fields: []command.EmbedField{
			{Name: "Game", Value: game, Inline: true},
			{Name: "Viewers", Value: strconv.FormatInt(s.Viewers, 10), Inline: true},
		},
		Image:     &command.EmbedImage{URL: s.Preview.Large},
		Footer:    &command.EmbedFooter{Text: footer},
		Timestamp: s.CreatedAt,
	}
}
