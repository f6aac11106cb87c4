package push

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2/jwt"
)

// newFakeExchange builds a Credentials wired to a fake token endpoint that
// counts exchanges and returns sequential access tokens.
func newFakeExchange(t *testing.T, hits *int64) *Credentials {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := atomic.AddInt64(hits, 1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"tok-%d","token_type":"Bearer","expires_in":3600}`, n)
	}))
	t.Cleanup(server.Close)

	return &Credentials{conf: &jwt.Config{
		Email:      "sweeper@test-project.iam.gserviceaccount.com",
		PrivateKey: keyPEM,
		Scopes:     []string{MessagingScope},
		TokenURL:   server.URL,
	}}
}

func TestTokenLazyExchangeAndReuse(t *testing.T) {
	var hits int64
	creds := newFakeExchange(t, &hits)

	assert.Zero(t, hits, "no exchange before first use")

	tok, err := creds.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)

	tok, err = creds.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
	assert.EqualValues(t, 1, hits, "valid cached token must be reused")
}

func TestTokenConcurrentCallersShareOneRefresh(t *testing.T) {
	var hits int64
	creds := newFakeExchange(t, &hits)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := creds.Token(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "tok-1", tok)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, hits, "simultaneous sends must not each trigger a refresh")
}

func TestInvalidateForcesReExchange(t *testing.T) {
	var hits int64
	creds := newFakeExchange(t, &hits)

	tok, err := creds.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)

	creds.Invalidate()

	tok, err = creds.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok)
	assert.EqualValues(t, 2, hits)
}

func TestNewCredentialsMissingPath(t *testing.T) {
	_, err := NewCredentials("")
	assert.Error(t, err)
}
