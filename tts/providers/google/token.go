package google

import (
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// expiryMargin is subtracted from a token's real expiry: a token within
// the margin is treated as already expired so a request never starts with
// a credential about to lapse mid-flight.
const expiryMargin = 2 * time.Minute

// cachedTokenSource caches access tokens from the underlying source.
// Refresh is serialized so concurrent synthesis calls don't redundantly
// mint tokens against the OAuth endpoint.
type cachedTokenSource struct {
	mu     sync.Mutex
	src    oauth2.TokenSource
	tok    *oauth2.Token
	now    func() time.Time // test hook
	margin time.Duration
}

func newCachedTokenSource(src oauth2.TokenSource) *cachedTokenSource {
	return &cachedTokenSource{src: src, now: time.Now, margin: expiryMargin}
}

// Token returns the cached token, refreshing it when missing or within
// the expiry margin.
func (c *cachedTokenSource) Token() (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tok != nil && c.tok.Valid() && c.now().Add(c.margin).Before(c.tok.Expiry) {
		return c.tok, nil
	}

	tok, err := c.src.Token()
	if err != nil {
		return nil, err
	}
	c.tok = tok
	return tok, nil
}
