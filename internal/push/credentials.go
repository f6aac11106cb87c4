package push

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
)

// MessagingScope is the OAuth scope required to call the FCM v1 send API.
const MessagingScope = "https://www.googleapis.com/auth/firebase.messaging"

// TokenSource supplies a bearer access token for gateway calls and allows the
// client to discard a token the gateway rejected.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}

// Credentials is a shared, lazily-refreshed access-token cache backed by a
// service-account key file. The token is exchanged on first use and
// re-exchanged once expired; concurrent senders share a single refresh.
type Credentials struct {
	mu   sync.Mutex
	conf *jwt.Config
	tok  *oauth2.Token
}

// NewCredentials loads the service-account key at path and prepares the
// signed-JWT exchange for the FCM messaging scope. No network call is made
// until the first Token request.
func NewCredentials(path string) (*Credentials, error) {
	if path == "" {
		return nil, fmt.Errorf("firebase credentials path not provided")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading firebase credentials: %w", err)
	}

	conf, err := google.JWTConfigFromJSON(data, MessagingScope)
	if err != nil {
		return nil, fmt.Errorf("error parsing firebase credentials: %w", err)
	}

	return &Credentials{conf: conf}, nil
}

// Token returns a currently-valid access token, exchanging the service
// account assertion when the cached one is missing or expired. The lock is
// held across the exchange so simultaneous callers trigger one refresh.
func (c *Credentials) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tok.Valid() {
		return c.tok.AccessToken, nil
	}

	tok, err := c.conf.TokenSource(ctx).Token()
	if err != nil {
		return "", fmt.Errorf("error exchanging service account token: %w", err)
	}
	c.tok = tok
	return tok.AccessToken, nil
}

// Invalidate drops the cached token so the next send performs a fresh
// exchange. Called by the client after the gateway rejects the credential.
func (c *Credentials) Invalidate() {
	c.mu.Lock()
	c.tok = nil
	c.mu.Unlock()
}
