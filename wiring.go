package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/onnwee/livebot/command"
	"github.com/onnwee/livebot/config"
	"github.com/onnwee/livebot/livestatus"
	"github.com/onnwee/livebot/locale"
	"github.com/onnwee/livebot/telemetry"
	"github.com/onnwee/livebot/twitchapi"
)

// newKrakenClient builds the stream-info client. When a client secret is configured the
// requests also carry a cached app access token.
func newKrakenClient(ctx context.Context, cfg *config.Config) (*twitchapi.KrakenClient, error) {
	hc := &http.Client{Transport: telemetry.InstrumentedTransport(nil)}
	client := &twitchapi.KrakenClient{
		ClientID:   cfg.TwitchClientID,
		BaseURL:    cfg.TwitchAPIBase,
		Accept:     cfg.TwitchAPIAccept,
		HTTPClient: hc,
	}
	if cfg.TwitchClientSecret != "" {
		ts, err := twitchapi.NewAppTokenSource(ctx, cfg.TwitchClientID, cfg.TwitchClientSecret, cfg.TwitchTokenURL, hc)
		if err != nil {
			return nil, fmt.Errorf("twitch app token: %w", err)
		}
		client.AppTokenSource = ts
	}
	return client, nil
}

// newLiveCommand assembles the twitch command. The returned catalog is the one the
// command uses, for reporters that need the same language.
func newLiveCommand(ctx context.Context, cfg *config.Config, reporter command.Reporter) (*livestatus.Command, *locale.Catalog, error) {
	if err := cfg.ValidateLiveQueryReady(); err != nil {
		slog.Warn("twitch command has no client id; lookups will be rejected upstream", slog.Any("err", err))
	}
	strings, err := locale.Load(cfg.Locale)
	if err != nil {
		return nil, nil, err
	}
	client, err := newKrakenClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return livestatus.New(client, reporter, strings, cfg.EmbedColor), strings, nil
}
