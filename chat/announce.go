package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/onnwee/livebot/command"
	"github.com/onnwee/livebot/config"
	"github.com/onnwee/livebot/livestatus"
	"github.com/onnwee/livebot/telemetry"
)

// Announcer polls one channel's stream status and posts the live line to Conversation
// when the channel goes live. A stream is announced once, keyed by its start time, so an
// offline blip or a failed poll in the middle of a broadcast does not repeat it.
// Color and Footer style the embed the same way the twitch command does.
type Announcer struct {
	Streams      livestatus.StreamGetter
	Channel      string
	Interval     time.Duration
	Conversation command.Conversation
	Color        int
	Footer       string

	announced time.Time
}

// announcerFor returns the Announcer configured by cfg for live, or nil when
// CHAT_AUTO_POLL_INTERVAL is unset.
func announcerFor(cfg *config.Config, live *livestatus.Command, channel string, conv command.Conversation) *Announcer {
	if cfg.ChatAnnounceInterval <= 0 || live == nil || live.Streams == nil {
		return nil
	}
	return &Announcer{
		Streams:      live.Streams,
		Channel:      channel,
		Interval:     cfg.ChatAnnounceInterval,
		Conversation: conv,
		Color:        live.Color,
		Footer:       live.Footer(),
	}
}

// Run polls until ctx is cancelled. The first poll happens immediately.
func (a *Announcer) Run(ctx context.Context) {
	if a.Channel == "" || a.Interval <= 0 {
		slog.Info("live announcer: channel or interval empty; abort")
		return
	}
	ticker := time.NewTicker(a.Interval)
	defer ticker.Stop()
	slog.Info("live announcer: started poller", slog.String("channel", a.Channel), slog.Duration("interval", a.Interval))
	for {
		if ctx.Err() != nil {
			return
		}
		a.poll(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// poll performs one lookup and reports whether it announced a stream.
func (a *Announcer) poll(ctx context.Context) bool {
	res := livestatus.Classify(a.Streams.GetStream(ctx, a.Channel))
	switch res.Outcome {
	case livestatus.OutcomeLive:
		if res.Stream.CreatedAt.Equal(a.announced) {
			return false
		}
		a.announced = res.Stream.CreatedAt
		slog.Info("live announcer: stream live", slog.String("channel", a.Channel), slog.Time("started_at", res.Stream.CreatedAt))
		if err := a.Conversation.SendEmbed(ctx, livestatus.BuildEmbed(res.Stream, a.Color, a.Footer)); err != nil {
			slog.Error("live announcer: deliver", slog.Any("err", err))
			telemetry.CountDeliveryFailure(a.Conversation.Frontend())
		}
		return true
	case livestatus.OutcomeNotFound:
		return false
	default:
		slog.Debug("live announcer: lookup failed", slog.String("outcome", res.Outcome.String()), slog.Any("err", res.Err))
		return false
	}
}
