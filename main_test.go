package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onnwee/livebot/config"
	"github.com/onnwee/livebot/testutil"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		TwitchClientID:  "id",
		TwitchAPIBase:   baseURL,
		TwitchAPIAccept: config.DefaultTwitchAPIAccept,
		Locale:          "en",
		EmbedColor:      config.DefaultEmbedColor,
		CommandPrefix:   "!",
	}
}

func TestRunQueryLive(t *testing.T) {
	srv := testutil.NewMockKrakenServer(t)
	srv.MockLiveStream("k3rn31p4nic", "Playing chess", "Chess", 42)
	var out bytes.Buffer

	require.NoError(t, runQuery(context.Background(), testConfig(srv.BaseURL()), "k3rn31p4nic", &out))

	var got struct {
		Embed struct {
			Title  string `json:"title"`
			Fields []struct {
				Name  string `json:"name"`
				Value string `json:"value"`
			} `json:"fields"`
		} `json:"embed"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "Playing chess", got.Embed.Title)
	require.Len(t, got.Embed.Fields, 2)
	assert.Equal(t, "Chess", got.Embed.Fields[0].Value)
	assert.Equal(t, config.DefaultTwitchAPIAccept, srv.LastHeader().Get("Accept"))
}

func TestRunQueryNotLive(t *testing.T) {
	srv := testutil.NewMockKrakenServer(t)
	srv.MockOffline("sleepy")
	var out bytes.Buffer

	err := runQuery(context.Background(), testConfig(srv.BaseURL()), "sleepy", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not_found")
	assert.Contains(t, out.String(), `"error"`)
	assert.Contains(t, out.String(), "sleepy")
}

func TestRunQueryAppToken(t *testing.T) {
	srv := testutil.NewMockKrakenServer(t)
	srv.MockOffline("sleepy")
	cfg := testConfig(srv.BaseURL())
	cfg.TwitchClientSecret = "secret"
	cfg.TwitchTokenURL = srv.URL + "/oauth2/token"
	srv.Handlers["/oauth2/token"] = testutil.TokenHandler("app-token")

	var out bytes.Buffer
	_ = runQuery(context.Background(), cfg, "sleepy", &out)
	assert.Equal(t, "OAuth app-token", srv.LastHeader().Get("Authorization"))
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "livebot "))
}
