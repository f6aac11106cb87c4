package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const fcmEndpoint = "https://fcm.googleapis.com/v1/projects/%s/messages:send"

// Reason classifies a delivery failure. NoToken is detected locally before
// any network call; the rest describe what the gateway round trip did.
type Reason string

const (
	ReasonNoToken   Reason = "no_token"
	ReasonTimeout   Reason = "timeout"
	ReasonTransport Reason = "transport"
	ReasonAuth      Reason = "auth"
)

// GatewayError is the failure of a single push delivery attempt.
type GatewayError struct {
	Reason Reason
	Err    error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("push gateway: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("push gateway: %s", e.Reason)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// ReasonOf extracts the failure reason from an error returned by Send.
// Unrecognized errors are classified as transport failures.
func ReasonOf(err error) Reason {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Reason
	}
	return ReasonTransport
}

// fcmSendRequest is the FCM HTTP v1 request body.
type fcmSendRequest struct {
	Message fcmMessage `json:"message"`
}

type fcmMessage struct {
	Token        string          `json:"token"`
	Notification fcmNotification `json:"notification"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Client sends push messages through the FCM HTTP v1 API. It is stateless
// apart from the injected credential cache and safe for concurrent use.
type Client struct {
	endpoint   string
	creds      TokenSource
	httpClient *http.Client
}

// NewClient creates a gateway client for the given Firebase project.
func NewClient(projectID string, creds TokenSource) *Client {
	return &Client{
		endpoint:   fmt.Sprintf(fcmEndpoint, projectID),
		creds:      creds,
		httpClient: &http.Client{},
	}
}

// Send delivers one message to one device. An empty deviceToken fails
// immediately with ReasonNoToken and spends no network cost. The caller
// bounds the attempt through ctx; an expired deadline maps to ReasonTimeout.
func (c *Client) Send(ctx context.Context, deviceToken, title, body string) error {
	if deviceToken == "" {
		return &GatewayError{Reason: ReasonNoToken}
	}

	accessToken, err := c.creds.Token(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return &GatewayError{Reason: ReasonTimeout, Err: err}
		}
		return &GatewayError{Reason: ReasonAuth, Err: err}
	}

	payload, err := json.Marshal(fcmSendRequest{
		Message: fcmMessage{
			Token:        deviceToken,
			Notification: fcmNotification{Title: title, Body: body},
		},
	})
	if err != nil {
		return &GatewayError{Reason: ReasonTransport, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return &GatewayError{Reason: ReasonTransport, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return &GatewayError{Reason: ReasonTimeout, Err: err}
		}
		return &GatewayError{Reason: ReasonTransport, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// The cached token is no longer accepted; force a re-exchange on
		// the next attempt rather than replaying the stale credential.
		c.creds.Invalidate()
		return &GatewayError{Reason: ReasonAuth, Err: fmt.Errorf("gateway returned %d: %s", resp.StatusCode, snippet(resp.Body))}
	default:
		return &GatewayError{Reason: ReasonTransport, Err: fmt.Errorf("gateway returned %d: %s", resp.StatusCode, snippet(resp.Body))}
	}
}

func snippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	return string(b)
}
