package livestatus

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/onnwee/livebot/command"
	"github.com/onnwee/livebot/locale"
	"github.com/onnwee/livebot/testutil"
	"github.com/onnwee/livebot/twitchapi"
)

func newCommand(t *testing.T, baseURL string) (*Command, *testutil.RecordingReporter) {
	t.Helper()
	rep := &testutil.RecordingReporter{}
	client := &twitchapi.KrakenClient{
		ClientID: "test-client",
		BaseURL:  baseURL,
		Accept:   "application/vnd.twitchtv.v3+json",
	}
	return New(client, rep, locale.MustLoad("en"), 0x2196F3), rep
}

func invoke(c *Command, conv command.Conversation, channel string) {
	args := command.Args{}
	if channel != "" {
		args[ArgLive] = channel
	}
	c.Run(context.Background(), &command.Invocation{Name: Name, Args: args, Conversation: conv})
}

func TestMetadata(t *testing.T) {
	c := New(nil, nil, locale.MustLoad("en"), 0)
	h := c.Help()
	if h.Name != "twitch" || h.Usage != "twitch <username>" {
		t.Errorf("Help() = %+v", h)
	}
	if len(h.Example) != 1 || h.Example[0] != "twitch k3rn31p4nic" {
		t.Errorf("Example = %v", h.Example)
	}
	if h.Description == "" || h.Description == "twitch" {
		t.Errorf("Description not resolved from catalog: %q", h.Description)
	}
	cfg := c.Config()
	if !cfg.Enabled || len(cfg.Aliases) != 0 {
		t.Errorf("Config() = %+v", cfg)
	}
	if len(cfg.Args) != 1 || cfg.Args[0].Name != "live" || !cfg.Args[0].DefaultOption || cfg.Args[0].Type != command.ArgString {
		t.Errorf("Args = %+v", cfg.Args)
	}
}

func TestNoChannelIsUsage(t *testing.T) {
	srv := testutil.NewMockKrakenServer(t)
	c, rep := newCommand(t, srv.BaseURL())
	conv := &testutil.RecordingConversation{}

	invoke(c, conv, "")

	if srv.Requests() != 0 {
		t.Errorf("requests = %d, want 0", srv.Requests())
	}
	n := rep.Notifications()
	if len(n) != 1 || !n[0].Usage || n[0].Help.Name != "twitch" {
		t.Fatalf("notifications = %+v, want one usage", n)
	}
	if len(conv.Embeds()) != 0 {
		t.Error("no embed expected")
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	c, rep := newCommand(t, base)
	conv := &testutil.RecordingConversation{}
	invoke(c, conv, "k3rn31p4nic")

	n := rep.Notifications()
	if len(n) != 1 {
		t.Fatalf("notifications = %d, want 1", len(n))
	}
	if n[0].Title != "Connection Error" || !strings.Contains(n[0].Message, "receiving data") {
		t.Errorf("notification = %+v", n[0])
	}
	if len(conv.Embeds()) != 0 {
		t.Error("no embed expected")
	}
}

func TestOfflineIsNotFound(t *testing.T) {
	srv := testutil.NewMockKrakenServer(t)
	srv.MockOffline("k3rn31p4nic")
	c, rep := newCommand(t, srv.BaseURL())
	conv := &testutil.RecordingConversation{}

	invoke(c, conv, "k3rn31p4nic")

	n := rep.Notifications()
	if len(n) != 1 || n[0].Title != "Not Found" {
		t.Fatalf("notifications = %+v", n)
	}
	if !strings.Contains(n[0].Message, "k3rn31p4nic") {
		t.Errorf("message %q does not name the channel", n[0].Message)
	}
	if srv.Requests() != 1 {
		t.Errorf("requests = %d, want 1", srv.Requests())
	}
}

func TestLiveSendsEmbed(t *testing.T) {
	srv := testutil.NewMockKrakenServer(t)
	srv.MockLiveStream("k3rn31p4nic", "Playing chess", "Chess", 42)
	c, rep := newCommand(t, srv.BaseURL())
	conv := &testutil.RecordingConversation{}

	invoke(c, conv, "k3rn31p4nic")

	if n := rep.Notifications(); len(n) != 0 {
		t.Fatalf("unexpected notifications %+v", n)
	}
	embeds := conv.Embeds()
	if len(embeds) != 1 {
		t.Fatalf("embeds = %d, want 1", len(embeds))
	}
	e := embeds[0]
	if e.Title != "Playing chess" {
		t.Errorf("Title = %q", e.Title)
	}
	want := []command.EmbedField{
		{Name: "Game", Value: "Chess", Inline: true},
		{Name: "Viewers", Value: "42", Inline: true},
	}
	if len(e.Fields) != len(want) {
		t.Fatalf("Fields = %+v", e.Fields)
	}
	for i := range want {
		if e.Fields[i] != want[i] {
			t.Errorf("Fields[%d] = %+v, want %+v", i, e.Fields[i], want[i])
		}
	}
	if e.Footer == nil || e.Footer.Text != "🔴 Live" {
		t.Errorf("Footer = %+v", e.Footer)
	}
	if e.Color != 0x2196F3 {
		t.Errorf("Color = %#x", e.Color)
	}
	if got := srv.LastHeader().Get("Client-ID"); got != "test-client" {
		t.Errorf("Client-ID = %q", got)
	}
}

func TestTruncatedBodyIsParseError(t *testing.T) {
	srv := testutil.NewMockKrakenServer(t)
	srv.MockRawBody("k3rn31p4nic", http.StatusOK, `{"stream": {"game": "Ch`)
	c, rep := newCommand(t, srv.BaseURL())
	conv := &testutil.RecordingConversation{}

	invoke(c, conv, "k3rn31p4nic")

	n := rep.Notifications()
	if len(n) != 1 || n[0].Title != "Parse Error" {
		t.Fatalf("notifications = %+v", n)
	}
	if len(conv.Embeds()) != 0 {
		t.Error("no embed expected")
	}
}

func TestUpstreamStatusIsVerbatim(t *testing.T) {
	srv := testutil.NewMockKrakenServer(t)
	c, rep := newCommand(t, srv.BaseURL())
	conv := &testutil.RecordingConversation{}

	// unregistered channels answer 404
	invoke(c, conv, "nobody")

	n := rep.Notifications()
	if len(n) != 1 {
		t.Fatalf("notifications = %+v", n)
	}
	if n[0].Title != "404" || n[0].Message != "Not Found" {
		t.Errorf("notification = %+v, want 404 / Not Found", n[0])
	}
	if strings.Contains(n[0].Message, "nobody") {
		t.Error("upstream 404 must be distinct from the not-live message")
	}
}

func TestDeliveryFailureIsSwallowed(t *testing.T) {
	srv := testutil.NewMockKrakenServer(t)
	srv.MockLiveStream("k3rn31p4nic", "Playing chess", "Chess", 42)
	c, rep := newCommand(t, srv.BaseURL())
	conv := &testutil.RecordingConversation{Fail: true}

	if got := c.Respond(context.Background(), conv, "k3rn31p4nic"); got != OutcomeLive {
		t.Errorf("Respond() = %v, want live", got)
	}
	if len(conv.Embeds()) != 1 {
		t.Errorf("embed attempts = %d, want 1", len(conv.Embeds()))
	}
	if n := rep.Notifications(); len(n) != 0 {
		t.Errorf("delivery failure must not be reported, got %+v", n)
	}
}

type stubStreams struct {
	mu    sync.Mutex
	calls int
	delay time.Duration
}

func (s *stubStreams) GetStream(ctx context.Context, channel string) (*twitchapi.Stream, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	time.Sleep(s.delay)
	return &twitchapi.Stream{Game: channel, Channel: twitchapi.Channel{Status: channel}}, nil
}

func TestConcurrentInvocationsAreIndependent(t *testing.T) {
	streams := &stubStreams{delay: 10 * time.Millisecond}
	c := New(streams, &testutil.RecordingReporter{}, nil, 0)

	const n = 8
	convs := make([]*testutil.RecordingConversation, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		convs[i] = &testutil.RecordingConversation{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			invoke(c, convs[i], string(rune('a'+i)))
		}(i)
	}
	wg.Wait()

	if streams.calls != n {
		t.Errorf("calls = %d, want %d", streams.calls, n)
	}
	for i, conv := range convs {
		e := conv.Embeds()
		if len(e) != 1 || e[0].Title != string(rune('a'+i)) {
			t.Errorf("conv %d got %+v", i, e)
			continue
		}
		if e[0].Footer.Text != LiveFooter {
			t.Errorf("footer without catalog = %q", e[0].Footer.Text)
		}
	}
}

func TestClassify(t *testing.T) {
	live := &twitchapi.Stream{}
	tests := []struct {
		name   string
		stream *twitchapi.Stream
		err    error
		want   Outcome
	}{
		{"live", live, nil, OutcomeLive},
		{"nil stream", nil, nil, OutcomeParse},
		{"not live", nil, twitchapi.ErrNotLive, OutcomeNotFound},
		{"status", nil, &twitchapi.StatusError{StatusCode: 500, Message: "Internal Server Error"}, OutcomeUpstream},
		{"parse", nil, &twitchapi.ParseError{Err: errors.New("x")}, OutcomeParse},
		{"transport", nil, &twitchapi.TransportError{Err: errors.New("x")}, OutcomeTransport},
		{"canceled", nil, context.Canceled, OutcomeTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.stream, tt.err)
			if got.Outcome != tt.want {
				t.Errorf("Classify() = %v, want %v", got.Outcome, tt.want)
			}
			if tt.want == OutcomeUpstream && (got.StatusCode != 500 || got.StatusMessage != "Internal Server Error") {
				t.Errorf("Classify() status = %d %q", got.StatusCode, got.StatusMessage)
			}
		})
	}
}

func TestBuildEmbed(t *testing.T) {
	created := time.Date(2024, 10, 15, 14, 30, 0, 0, time.UTC)
	s := &twitchapi.Stream{
		Game:      "Chess",
		Viewers:   1234567,
		CreatedAt: created,
		Channel:   twitchapi.Channel{DisplayName: "K3rn31p4nic", URL: "https://www.twitch.tv/k3rn31p4nic", Logo: "https://img/logo.png", Status: "Playing chess"},
		Preview:   twitchapi.Preview{Small: "s", Medium: "m", Large: "https://img/l.jpg"},
	}
	e := BuildEmbed(s, 0xFF0000, "")
	if e.Author == nil || e.Author.Name != "K3rn31p4nic" || e.Author.URL != s.Channel.URL || e.Author.IconURL != s.Channel.Logo {
		t.Errorf("Author = %+v", e.Author)
	}
	if e.URL != s.Channel.URL {
		t.Errorf("URL = %q", e.URL)
	}
	if e.Image == nil || e.Image.URL != "https://img/l.jpg" {
		t.Errorf("Image = %+v", e.Image)
	}
	if e.Fields[1].Value != "1234567" {
		t.Errorf("Viewers = %q", e.Fields[1].Value)
	}
	if !e.Timestamp.Equal(created) {
		t.Errorf("Timestamp = %v", e.Timestamp)
	}
	if e.Footer.Text != LiveFooter {
		t.Errorf("Footer = %q", e.Footer.Text)
	}

	s.Game = ""
	if got := BuildEmbed(s, 0, "").Fields[0].Value; got != NoGame {
		t.Errorf("Game without a game = %q, want %q", got, NoGame)
	}
}

func TestBuildEmbedWithoutGame(t *testing.T) {
	srv := testutil.NewMockKrakenServer(t)
	srv.MockRawBody("k3rn31p4nic", http.StatusOK, `{"stream": {"game": null, "viewers": 3, "created_at": "2024-10-15T14:30:00Z",
		"preview": {"large": "https://img/l.jpg"},
		"channel": {"display_name": "k3rn31p4nic", "name": "k3rn31p4nic", "url": "https://www.twitch.tv/k3rn31p4nic", "status": "Just chatting"}}}`)
	c, rep := newCommand(t, srv.BaseURL())
	conv := &testutil.RecordingConversation{}

	invoke(c, conv, "k3rn31p4nic")

	if n := rep.Notifications(); len(n) != 0 {
		t.Fatalf("unexpected notifications %+v", n)
	}
	embeds := conv.Embeds()
	if len(embeds) != 1 {
		t.Fatalf("embeds = %d, want 1", len(embeds))
	}
	for _, f := range embeds[0].Fields {
		if f.Value == "" {
			t.Errorf("field %q has an empty value", f.Name)
		}
	}
	if got := embeds[0].Fields[0]; got.Name != "Game" || got.Value != NoGame {
		t.Errorf("Game field = %+v, want %q", got, NoGame)
	}
}
