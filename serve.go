package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/onnwee/livebot/chat"
	"github.com/onnwee/livebot/command"
	"github.com/onnwee/livebot/config"
	"github.com/onnwee/livebot/discord"
	"github.com/onnwee/livebot/notify"
	"github.com/onnwee/livebot/server"
	"github.com/onnwee/livebot/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat frontends and the HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Root context with graceful shutdown
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	// Metrics / telemetry init
	telemetry.Init()

	// Initialize OpenTelemetry tracing (optional; requires OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdown, err := telemetry.InitTracing("livebot", version)
	if err != nil {
		return fmt.Errorf("tracing initialization failed: %w", err)
	}
	defer shutdown()

	reporter := &notify.EmbedReporter{Prefix: cfg.CommandPrefix}
	live, strings, err := newLiveCommand(ctx, cfg, reporter)
	if err != nil {
		return err
	}
	reporter.Strings = strings

	registry := command.NewRegistry()
	if err := registry.Register(live); err != nil {
		return err
	}
	dispatcher := command.NewDispatcher(cfg.CommandPrefix, registry)

	if err := cfg.ValidateDiscordReady(); err == nil {
		bot, err := discord.New(cfg.DiscordBotToken, dispatcher)
		if err != nil {
			return err
		}
		if err := bot.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := bot.Close(); err != nil {
				slog.Error("failed to close discord session", slog.Any("err", err))
			}
		}()
	} else {
		slog.Info("discord bot disabled", slog.Any("reason", err))
	}

	go chat.StartTwitchChatBot(ctx, cfg, dispatcher, live)

	go func() {
		if err := server.Start(ctx, cfg.HTTPAddr, server.NewRouter(ctx, server.Deps{Config: cfg, Live: live})); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	// Block until shutdown signal
	<-ctx.Done()
	slog.Info("shutting down")
	dispatcher.Wait()
	return nil
}
