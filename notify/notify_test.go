package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onnwee/livebot/command"
	"github.com/onnwee/livebot/locale"
	"github.com/onnwee/livebot/testutil"
)

func TestEmbedReporter_Error(t *testing.T) {
	r := NewEmbedReporter(locale.MustLoad("en"), "!")
	conv := &testutil.RecordingConversation{}

	r.Error(context.Background(), conv, "404", "Not Found")

	embeds := conv.Embeds()
	require.Len(t, embeds, 1)
	assert.Equal(t, ColorError, embeds[0].Color)
	assert.Equal(t, "404", embeds[0].Title)
	assert.Equal(t, "Not Found", embeds[0].Description)
}

func TestEmbedReporter_CommandUsage(t *testing.T) {
	r := NewEmbedReporter(locale.MustLoad("de"), "!")
	conv := &testutil.RecordingConversation{}

	r.CommandUsage(context.Background(), conv, command.Help{
		Name:        "twitch",
		Description: "desc",
		Usage:       "twitch <username>",
		Example:     []string{"twitch k3rn31p4nic"},
	})

	embeds := conv.Embeds()
	require.Len(t, embeds, 1)
	e := embeds[0]
	assert.Equal(t, ColorUsage, e.Color)
	assert.Equal(t, "twitch", e.Title)
	require.Len(t, e.Fields, 2)
	assert.Equal(t, "Verwendung", e.Fields[0].Name)
	assert.Equal(t, "`!twitch <username>`", e.Fields[0].Value)
	assert.Equal(t, "Beispiel", e.Fields[1].Name)
	assert.Equal(t, "`!twitch k3rn31p4nic`", e.Fields[1].Value)
}

func TestEmbedReporter_NoExamplesNoCatalog(t *testing.T) {
	r := &EmbedReporter{}
	conv := &testutil.RecordingConversation{}

	r.CommandUsage(context.Background(), conv, command.Help{Name: "x", Usage: "x"})

	embeds := conv.Embeds()
	require.Len(t, embeds, 1)
	require.Len(t, embeds[0].Fields, 1)
	assert.Equal(t, "Usage", embeds[0].Fields[0].Name)
}

func TestEmbedReporter_DeliveryFailureSwallowed(t *testing.T) {
	r := NewEmbedReporter(nil, "!")
	conv := &testutil.RecordingConversation{Fail: true}

	assert.NotPanics(t, func() {
		r.Error(context.Background(), conv, "t", "m")
		r.Error(context.Background(), nil, "t", "m")
	})
	assert.Len(t, conv.Embeds(), 1)
}
