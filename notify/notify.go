// Package notify implements command.Reporter by sending embeds back to the conversation.
package notify

import (
	"context"
	"log/slog"
	"strings"

	"github.com/onnwee/livebot/command"
	"github.com/onnwee/livebot/locale"
	"github.com/onnwee/livebot/telemetry"
)

const (
	ColorError = 0xE53935
	ColorUsage = 0xFF9800
)

// EmbedReporter reports failures as embeds. Delivery errors are logged and dropped.
type EmbedReporter struct {
	Strings *locale.Catalog
	Prefix  string
}

func NewEmbedReporter(catalog *locale.Catalog, prefix string) *EmbedReporter {
	return &EmbedReporter{Strings: catalog, Prefix: prefix}
}

func (r *EmbedReporter) Error(ctx context.Context, conv command.Conversation, title, message string) {
	r.send(ctx, conv, command.Embed{
		Color:       ColorError,
		Title:       title,
		Description: message,
	})
}

func (r *EmbedReporter) CommandUsage(ctx context.Context, conv command.Conversation, help command.Help) {
	examples := make([]string, 0, len(help.Example))
	for _, ex := range help.Example {
		examples = append(examples, "`"+r.Prefix+ex+"`")
	}
	fields := []command.EmbedField{{Name: r.str("usage"), Value: "`" + r.Prefix + help.Usage + "`"}}
	if len(examples) > 0 {
		fields = append(fields, command.EmbedField{Name: r.str("example"), Value: strings.Join(examples, "\n")})
	}
	r.send(ctx, conv, command.Embed{
		Color:       ColorUsage,
		Title:       help.Name,
		Description: help.Description,
		Fields:      fields,
	})
}

func (r *EmbedReporter) str(key string) string {
	if r.Strings == nil {
		return strings.ToUpper(key[:1]) + key[1:]
	}
	return r.Strings.String(key, "info")
}

func (r *EmbedReporter) send(ctx context.Context, conv command.Conversation, e command.Embed) {
	if conv == nil {
		return
	}
	if err := conv.SendEmbed(ctx, e); err != nil {
		telemetry.LoggerWithCorr(ctx).Error("deliver notification",
			slog.String("frontend", conv.Frontend()),
			slog.String("conversation", conv.ID()),
			slog.String("title", e.Title),
			slog.Any("err", err))
		telemetry.CountDeliveryFailure(conv.Frontend())
	}
}
