package spotify

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/cesargomez89/requestline/internal/constants"
	"github.com/cesargomez89/requestline/internal/logger"
)

// defaultTokenTTL applies when the identity provider omits expires_in.
const defaultTokenTTL = time.Hour

// TokenCache holds one client-credentials bearer token for the process.
// A token is served only while now < expiry, where expiry already has the
// safety margin subtracted.
type TokenCache struct {
	expiry     time.Time
	cfg        *clientcredentials.Config
	httpClient *http.Client
	logger     *logger.Logger
	now        func() time.Time
	token      string
	margin     time.Duration
	mu         sync.Mutex
}

// NewTokenCache returns a cache for the given credentials. Empty credentials
// yield a cache that always reports the token as unavailable.
func NewTokenCache(clientID, clientSecret, tokenURL string, httpClient *http.Client, log *logger.Logger) *TokenCache {
	c := &TokenCache{
		httpClient: httpClient,
		logger:     log.WithComponent("spotify-token"),
		now:        time.Now,
		margin:     constants.TokenSafetyMargin,
	}
	if clientID != "" && clientSecret != "" {
		c.cfg = &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
	}
	return c
}

// Enabled reports whether credentials were configured.
func (c *TokenCache) Enabled() bool {
	return c.cfg != nil
}

// Token returns a valid bearer token, refreshing it when needed. On refresh
// failure it returns ("", false) and keeps the previous entry.
func (c *TokenCache) Token(ctx context.Context) (string, bool) {
	if c.cfg == nil {
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expiry) {
		return c.token, true
	}

	if c.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}

	tok, err := c.cfg.Token(ctx)
	if err != nil {
		c.logger.Warn("Failed to obtain access token", "error", err)
		return "", false
	}

	ttl := defaultTokenTTL
	if !tok.Expiry.IsZero() {
		ttl = tok.Expiry.Sub(c.now())
	}

	c.token = tok.AccessToken
	c.expiry = c.now().Add(ttl - c.margin)
	c.logger.Debug("Access token refreshed", "expires_in", ttl)

	return c.token, true
}
