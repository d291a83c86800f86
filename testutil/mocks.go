package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

// MockKrakenServer creates a test server that mocks Twitch Kraken stream-info responses.
// Unregistered channels answer 404.
type MockKrakenServer struct {
	*httptest.Server
	Handlers map[string]http.HandlerFunc

	requests atomic.Int32
	mu       sync.RWMutex
	headers  []http.Header
}

// NewMockKrakenServer creates a new mock Kraken API server. BaseURL() is the value
// to configure as the client's base URL.
func NewMockKrakenServer(t *testing.T) *MockKrakenServer {
	t.Helper()
	m := &MockKrakenServer{
		Handlers: make(map[string]http.HandlerFunc),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.requests.Add(1)
		m.mu.Lock()
		m.headers = append(m.headers, r.Header.Clone())
		handler, ok := m.Handlers[r.URL.Path]
		m.mu.Unlock()
		if ok {
			handler(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(m.Close)
	return m
}

// BaseURL is the kraken root of the mock server.
func (m *MockKrakenServer) BaseURL() string { return m.URL + "/kraken" }

// Requests returns the number of requests served so far.
func (m *MockKrakenServer) Requests() int { return int(m.requests.Load()) }

// LastHeader returns the header of the most recent request.
func (m *MockKrakenServer) LastHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.headers) == 0 {
		return nil
	}
	return m.headers[len(m.headers)-1]
}

func (m *MockKrakenServer) handle(channel string, h http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Handlers["/kraken/streams/"+strings.ToLower(channel)] = h
}

// MockLiveStream answers channel with a live stream built from the given values.
func (m *MockKrakenServer) MockLiveStream(channel, status, game string, viewers int64) {
	m.MockStream(channel, map[string]interface{}{
		"game":       game,
		"viewers":    viewers,
		"created_at": "2024-10-15T14:30:00Z",
		"preview": map[string]string{
			"small":  "https://static-cdn.jtvnw.net/previews-ttv/live_user_" + channel + "-80x45.jpg",
			"medium": "https://static-cdn.jtvnw.net/previews-ttv/live_user_" + channel + "-320x180.jpg",
			"large":  "https://static-cdn.jtvnw.net/previews-ttv/live_user_" + channel + "-640x360.jpg",
		},
		"channel": map[string]string{
			"display_name": channel,
			"name":         strings.ToLower(channel),
			"url":          "https://www.twitch.tv/" + strings.ToLower(channel),
			"logo":         "https://static-cdn.jtvnw.net/jtv_user_pictures/" + strings.ToLower(channel) + "-profile_image.png",
			"status":       status,
		},
	})
}

// MockStream answers channel with {"stream": stream}.
func (m *MockKrakenServer) MockStream(channel string, stream map[string]interface{}) {
	m.handle(channel, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"stream": stream}) //nolint:errcheck // test mock response
	})
}

// MockOffline answers channel with {"stream": null}.
func (m *MockKrakenServer) MockOffline(channel string) {
	m.MockRawBody(channel, http.StatusOK, `{"stream": null}`)
}

// MockRawBody answers channel with the given status and body verbatim.
func (m *MockKrakenServer) MockRawBody(channel string, status int, body string) {
	m.handle(channel, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body)) //nolint:errcheck // test mock response
	})
}

// TokenHandler answers an OAuth client-credentials request with the given access token.
func TokenHandler(token string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck // test mock response
			"access_token": token,
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	}
}
