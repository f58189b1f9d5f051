// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort               = "8080"
	DefaultDBPath             = "requestline.db"
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
	DefaultEnrichmentProvider = ProviderAuto
	DefaultHTTPTimeout        = 10 * time.Second
	DefaultRetryCount         = 3
	DefaultRetryBase          = 1 * time.Second
	DefaultCacheTTL           = 12 * time.Hour
	DefaultEnrichTimeout      = 15 * time.Second
	DefaultUpstreamRPS        = 5.0
	ShutdownTimeout           = 5 * time.Second
)

// Enrichment providers
const (
	ProviderAuto    = "auto"
	ProviderSpotify = "spotify"
	ProviderOpenAI  = "openai"
	ProviderNone    = "none"
)

// Upstream endpoints
const (
	DefaultSpotifyTokenURL = "https://accounts.spotify.com/api/token"
	DefaultSpotifyAPIURL   = "https://api.spotify.com/v1"
	DefaultOpenAIBaseURL   = "https://api.openai.com/v1"
	DefaultOpenAIModel     = "gpt-4o-mini"
	TokenSafetyMargin      = 60 * time.Second
	SuggestionPageSize     = 5
)

// Sessions
const (
	SessionCodeLength      = 4
	SessionCodeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	MaxSessionCodeAttempts = 100
	MaxSessionNameLength   = 100
)

// Display defaults, resolved at read time when a session stores no explicit value.
const (
	DefaultWelcomeMessage  = "Welcome to the Song Request Queue"
	DefaultSubtitleMessage = "Request your favorite songs!"
	DefaultBackground      = "#1a1a2e"
)

// Submissions
const (
	MaxSongFieldLength = 200
	MaxUserNameLength  = 100
	MaxSettingLength   = 500
)

// Live updates
const (
	LiveSendBuffer   = 32
	LiveReadLimit    = 4096
	LivePingInterval = 30 * time.Second
	LivePongWait     = 60 * time.Second
	LiveWriteWait    = 10 * time.Second
)

// QR codes
const (
	QRCodeSize = 320
)

// MIME Types
const (
	MimeTypeJSON = "application/json"
	MimeTypeHTML = "text/html; charset=utf-8"
	MimeTypePNG  = "image/png"
)
