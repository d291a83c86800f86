// Package config loads environment variables and provides a typed Config used across the bot.
// It applies sensible defaults so the binary can run locally with minimal setup.
// Each frontend has its own Validate*Ready check; a frontend whose check fails is simply not started.
package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults for the Kraken stream-info API.
const (
	DefaultTwitchAPIBase   = "https://api.twitch.tv/kraken"
	DefaultTwitchAPIAccept = "application/vnd.twitchtv.v3+json"
	DefaultTwitchTokenURL  = "https://id.twitch.tv/oauth2/token"

	// DefaultEmbedColor is the blue used for live embeds.
	DefaultEmbedColor = 0x2196F3
)

type Config struct {
	// Twitch API
	TwitchClientID     string
	TwitchClientSecret string
	TwitchAPIBase      string
	TwitchAPIAccept    string
	TwitchTokenURL     string

	// Twitch chat frontend
	TwitchChannel     string
	TwitchBotUsername string
	TwitchOAuthToken  string
	// ChatAnnounceInterval enables the go-live announcer in TWITCH_CHANNEL when > 0.
	ChatAnnounceInterval time.Duration

	// Discord frontend
	DiscordBotToken string

	// Commands
	CommandPrefix string
	Locale        string
	EmbedColor    int

	// HTTP
	HTTPAddr           string
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	// TrustedProxies are the peers whose X-Forwarded-For header is honoured.
	TrustedProxies []netip.Prefix
}

// Load reads environment variables and applies defaults. It doesn't fail if credentials are missing;
// use the Validate*Ready methods before starting a component that needs them.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.TwitchClientID = os.Getenv("TWITCH_CLIENT_ID")
	cfg.TwitchClientSecret = os.Getenv("TWITCH_CLIENT_SECRET")
	cfg.TwitchAPIBase = strings.TrimRight(os.Getenv("TWITCH_API_BASE"), "/")
	if cfg.TwitchAPIBase == "" {
		cfg.TwitchAPIBase = DefaultTwitchAPIBase
	}
	cfg.TwitchAPIAccept = os.Getenv("TWITCH_API_ACCEPT")
	if cfg.TwitchAPIAccept == "" {
		cfg.TwitchAPIAccept = DefaultTwitchAPIAccept
	}
	cfg.TwitchTokenURL = os.Getenv("TWITCH_TOKEN_URL")
	if cfg.TwitchTokenURL == "" {
		cfg.TwitchTokenURL = DefaultTwitchTokenURL
	}

	cfg.TwitchChannel = os.Getenv("TWITCH_CHANNEL")
	cfg.TwitchBotUsername = os.Getenv("TWITCH_BOT_USERNAME")
	cfg.TwitchOAuthToken = os.Getenv("TWITCH_OAUTH_TOKEN")
	if v := os.Getenv("CHAT_AUTO_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid CHAT_AUTO_POLL_INTERVAL %q", v)
		}
		cfg.ChatAnnounceInterval = d
	}

	cfg.DiscordBotToken = os.Getenv("DISCORD_BOT_TOKEN")

	cfg.CommandPrefix = os.Getenv("COMMAND_PREFIX")
	if cfg.CommandPrefix == "" {
		cfg.CommandPrefix = "!"
	}
	cfg.Locale = strings.ToLower(os.Getenv("LOCALE"))
	if cfg.Locale == "" {
		cfg.Locale = "en"
	}
	cfg.EmbedColor = DefaultEmbedColor
	if v := os.Getenv("EMBED_COLOR"); v != "" {
		c, err := parseColor(v)
		if err != nil {
			return nil, fmt.Errorf("invalid EMBED_COLOR: %w", err)
		}
		cfg.EmbedColor = c
	}

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	cfg.RateLimitPerMinute = 30
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE %q", v)
		}
		cfg.RateLimitPerMinute = n
	}
	cfg.CORSAllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	for _, p := range splitList(os.Getenv("TRUSTED_PROXIES")) {
		prefix, err := parsePrefix(p)
		if err != nil {
			return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", p, err)
		}
		cfg.TrustedProxies = append(cfg.TrustedProxies, prefix)
	}

	return cfg, nil
}

// ValidateLiveQueryReady checks the credential required by the twitch command.
func (c *Config) ValidateLiveQueryReady() error {
	if c.TwitchClientID == "" {
		return fmt.Errorf("missing twitch env: require TWITCH_CLIENT_ID")
	}
	return nil
}

// ValidateDiscordReady checks required fields for the Discord frontend.
func (c *Config) ValidateDiscordReady() error {
	if c.DiscordBotToken == "" {
		return fmt.Errorf("missing discord env: require DISCORD_BOT_TOKEN")
	}
	return nil
}

// ValidateChatReady checks required fields for the Twitch chat frontend.
func (c *Config) ValidateChatReady() error {
	if c.TwitchChannel == "" || c.TwitchBotUsername == "" || c.TwitchOAuthToken == "" {
		return fmt.Errorf("missing twitch env: require TWITCH_CHANNEL, TWITCH_BOT_USERNAME, TWITCH_OAUTH_TOKEN")
	}
	return nil
}

// parseColor accepts "#2196F3", "0x2196F3" or a decimal value.
func parseColor(s string) (int, error) {
	s = strings.TrimSpace(s)
	base := 10
	switch {
	case strings.HasPrefix(s, "#"):
		s, base = s[1:], 16
	case strings.HasPrefix(strings.ToLower(s), "0x"):
		s, base = s[2:], 16
	}
	n, err := strconv.ParseInt(s, base, 32)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > 0xFFFFFF {
		return 0, fmt.Errorf("color %d out of range", n)
	}
	return int(n), nil
}

// splitList splits a comma separated value, dropping blank entries.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// parsePrefix accepts a CIDR or a single address.
func parsePrefix(v string) (netip.Prefix, error) {
	if strings.Contains(v, "/") {
		p, err := netip.ParsePrefix(v)
		return p.Masked(), err
	}
	addr, err := netip.ParseAddr(v)
	if err != nil {
		return netip.Prefix{}, err
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}
