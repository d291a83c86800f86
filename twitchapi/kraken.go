// Package twitchapi contains a minimal client for the Twitch Kraken stream-info endpoint,
// used by the twitch command to resolve a channel's live status.
package twitchapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"

	"github.com/onnwee/livebot/telemetry"
)

// KrakenClient issues stream-info lookups. The zero value is not usable; ClientID and BaseURL must be set.
// A KrakenClient is safe for concurrent use as long as its fields are not mutated.
type KrakenClient struct {
	ClientID string
	BaseURL  string
	Accept   string

	// AppTokenSource is optional. When set, its token is sent as "Authorization: OAuth <token>".
	AppTokenSource oauth2.TokenSource
	HTTPClient     *http.Client
}

// Channel is the channel object nested in a stream.
type Channel struct {
	DisplayName string `json:"display_name"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Logo        string `json:"logo"`
	Status      string `json:"status"`
}

// Preview holds the preview thumbnail URLs of a stream.
type Preview struct {
	Small    string `json:"small"`
	Medium   string `json:"medium"`
	Large    string `json:"large"`
	Template string `json:"template"`
}

// Stream is a live broadcast session.
type Stream struct {
	Game      string    `json:"game"`
	Viewers   int64     `json:"viewers"`
	CreatedAt time.Time `json:"created_at"`
	Channel   Channel   `json:"channel"`
	Preview   Preview   `json:"preview"`
}

func (kc *KrakenClient) http() *http.Client {
	if kc.HTTPClient != nil {
		return kc.HTTPClient
	}
	return http.DefaultClient
}

// GetStream performs exactly one GET {BaseURL}/streams/{channel}.
//
// It returns ErrNotLive when the API reports a null stream, *StatusError for any non-200
// response, *TransportError when the request could not be completed and *ParseError when
// a 200 body does not match the expected shape.
func (kc *KrakenClient) GetStream(ctx context.Context, channel string) (*Stream, error) {
	if channel == "" {
		return nil, fmt.Errorf("channel empty")
	}
	ctx, span := telemetry.StartSpan(ctx, "twitchapi", "kraken.GetStream", attribute.String("twitch.channel", channel))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, kc.BaseURL+"/streams/"+url.PathEscape(channel), nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Client-ID", kc.ClientID)
	req.Header.Set("Accept", kc.Accept)
	if kc.AppTokenSource != nil {
		tok, err := kc.AppTokenSource.Token()
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, &TransportError{Err: fmt.Errorf("app token: %w", err)}
		}
		req.Header.Set("Authorization", "OAuth "+tok.AccessToken)
	}

	var resp *http.Response
	elapsed := telemetry.TimeFunc(nil, func() { resp, err = kc.http().Do(req) })
	if err != nil {
		telemetry.ObserveUpstream("error", elapsed)
		telemetry.RecordError(span, err)
		return nil, &TransportError{Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Warn("failed to close response body", slog.Any("err", err))
		}
	}()
	telemetry.ObserveUpstream(strconv.Itoa(resp.StatusCode), elapsed)
	telemetry.SetSpanHTTPStatus(span, resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: statusMessage(resp)}
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, &TransportError{Err: err}
	}
	stream, err := decodeStream(b)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetSpanSuccess(span)
	return stream, nil
}

// decodeStream parses a /streams/{channel} body. A missing "stream" key, a stream without
// a channel object, or a stream without a valid created_at are shape errors.
func decodeStream(b []byte) (*Stream, error) {
	// A map keeps a literal null, which a pointer field would collapse into "absent".
	var body map[string]json.RawMessage
	if err := json.Unmarshal(b, &body); err != nil {
		return nil, &ParseError{Err: err}
	}
	rawStream, ok := body["stream"]
	if !ok {
		return nil, &ParseError{Err: fmt.Errorf("missing stream field")}
	}
	if bytes.Equal(bytes.TrimSpace(rawStream), []byte("null")) {
		return nil, ErrNotLive
	}

	var raw struct {
		Stream
		Channel *Channel `json:"channel"`
	}
	if err := json.Unmarshal(rawStream, &raw); err != nil {
		return nil, &ParseError{Err: err}
	}
	if raw.Channel == nil {
		return nil, &ParseError{Err: fmt.Errorf("stream without channel")}
	}
	if raw.CreatedAt.IsZero() {
		return nil, &ParseError{Err: fmt.Errorf("stream without created_at")}
	}
	s := raw.Stream
	s.Channel = *raw.Channel
	return &s, nil
}

// statusMessage returns the reason phrase of resp ("Not Found" for "404 Not Found").
func statusMessage(resp *http.Response) string {
	prefix := strconv.Itoa(resp.StatusCode) + " "
	if len(resp.Status) > len(prefix) && resp.Status[:len(prefix)] == prefix {
		return resp.Status[len(prefix):]
	}
	return http.StatusText(resp.StatusCode)
}
