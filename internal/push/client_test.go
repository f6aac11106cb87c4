package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTokenSource struct {
	mu          sync.Mutex
	token       string
	calls       int
	invalidated int
}

func (s *staticTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.token, nil
}

func (s *staticTokenSource) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated++
}

func TestSendEmptyTokenShortCircuits(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
	}))
	defer server.Close()

	creds := &staticTokenSource{token: "test-token"}
	client := NewClient("test-project", creds)
	client.endpoint = server.URL

	err := client.Send(context.Background(), "", "title", "body")

	require.Error(t, err)
	assert.Equal(t, ReasonNoToken, ReasonOf(err))
	assert.Equal(t, 0, hits, "no network call expected for an empty device token")
	assert.Equal(t, 0, creds.calls, "no credential exchange expected for an empty device token")
}

func TestSendPayloadAndAuthorization(t *testing.T) {
	var captured struct {
		Message struct {
			Token        string `json:"token"`
			Notification struct {
				Title string `json:"title"`
				Body  string `json:"body"`
			} `json:"notification"`
		} `json:"message"`
	}
	var authHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient("test-project", &staticTokenSource{token: "test-token"})
	client.endpoint = server.URL

	err := client.Send(context.Background(), "device-123", "4Views Social notification", "Alice liked your post.")

	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", authHeader)
	assert.Equal(t, "device-123", captured.Message.Token)
	assert.Equal(t, "4Views Social notification", captured.Message.Notification.Title)
	assert.Equal(t, "Alice liked your post.", captured.Message.Notification.Body)
}

func TestSendAuthFailureInvalidatesCredential(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	creds := &staticTokenSource{token: "stale-token"}
	client := NewClient("test-project", creds)
	client.endpoint = server.URL

	err := client.Send(context.Background(), "device-123", "t", "b")

	require.Error(t, err)
	assert.Equal(t, ReasonAuth, ReasonOf(err))
	assert.Equal(t, 1, creds.invalidated, "rejected credential must be dropped from the cache")
}

func TestSendServerErrorIsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("test-project", &staticTokenSource{token: "test-token"})
	client.endpoint = server.URL

	err := client.Send(context.Background(), "device-123", "t", "b")

	require.Error(t, err)
	assert.Equal(t, ReasonTransport, ReasonOf(err))
}

func TestSendTimeout(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient("test-project", &staticTokenSource{token: "test-token"})
	client.endpoint = server.URL

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := client.Send(ctx, "device-123", "t", "b")

	require.Error(t, err)
	assert.Equal(t, ReasonTimeout, ReasonOf(err))
	<-started
}

func TestReasonOfUnknownError(t *testing.T) {
	assert.Equal(t, ReasonTransport, ReasonOf(assert.AnError))
}
