package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/onnwee/livebot/command"
	"github.com/onnwee/livebot/config"
	"github.com/onnwee/livebot/livestatus"
)

var queryCmd = &cobra.Command{
	Use:     "query <channel>",
	Short:   "Look up one channel and print the result as JSON",
	Example: "  livebot query k3rn31p4nic",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config load failed: %w", err)
		}
		return runQuery(cmd.Context(), cfg, args[0], cmd.OutOrStdout())
	},
}

// printer writes every embed or notification as one JSON line.
type printer struct {
	enc *json.Encoder
}

func (p *printer) ID() string       { return "cli" }
func (p *printer) Frontend() string { return "cli" }

func (p *printer) SendEmbed(_ context.Context, e command.Embed) error {
	return p.enc.Encode(map[string]any{"embed": e})
}

func (p *printer) CommandUsage(_ context.Context, _ command.Conversation, help command.Help) {
	_ = p.enc.Encode(map[string]any{"usage": help})
}

func (p *printer) Error(_ context.Context, _ command.Conversation, title, message string) {
	_ = p.enc.Encode(map[string]any{"error": map[string]string{"title": title, "message": message}})
}

// runQuery prints the result for channel to w. Any outcome other than live is returned
// as an error so the process exits non-zero.
func runQuery(ctx context.Context, cfg *config.Config, channel string, w io.Writer) error {
	p := &printer{enc: json.NewEncoder(w)}
	live, _, err := newLiveCommand(ctx, cfg, p)
	if err != nil {
		return err
	}
	if outcome := live.Respond(ctx, p, channel); outcome != livestatus.OutcomeLive {
		return fmt.Errorf("%s: %s", channel, outcome)
	}
	return nil
}
