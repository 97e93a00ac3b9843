package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"airwatch/internal/types"
)

// FCMClient delivers push notifications through the Firebase Cloud Messaging
// HTTP endpoint, authenticated with a server key. The evaluator treats it as
// an opaque send capability; the only contract is Send succeeding or not.
type FCMClient struct {
	base      *BaseClient
	baseURL   string
	serverKey types.SecretString
}

// NewFCMClient creates an FCM push client.
func NewFCMClient(base *BaseClient, baseURL string, serverKey types.SecretString) *FCMClient {
	return &FCMClient{
		base:      base,
		baseURL:   baseURL,
		serverKey: serverKey,
	}
}

type fcmMessage struct {
	To           string          `json:"to"`
	Notification fcmNotification `json:"notification"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmResult struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Results []struct {
		Error string `json:"error"`
	} `json:"results"`
}

// Send pushes a message to one device token. A 2xx transport status with a
// zero success count (invalid or unregistered token) is still a send
// failure; the caller leaves the alert eligible for retry next sweep.
func (c *FCMClient) Send(ctx context.Context, target, title, body string) error {
	payload, err := json.Marshal(fcmMessage{
		To: target,
		Notification: fcmNotification{
			Title: title,
			Body:  body,
		},
	})
	if err != nil {
		return fmt.Errorf("encoding push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/fcm/send", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+c.serverKey.Unmask())

	resp, err := c.base.Do(req)
	if err != nil {
		return fmt.Errorf("push request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.NewAppError(types.ErrCodeUpstreamPush,
			fmt.Sprintf("push endpoint returned status %d", resp.StatusCode), nil)
	}

	var result fcmResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decoding push response: %w", err)
	}

	if result.Success == 0 {
		reason := "unknown"
		if len(result.Results) > 0 && result.Results[0].Error != "" {
			reason = result.Results[0].Error
		}
		return types.NewAppError(types.ErrCodeUpstreamPush,
			fmt.Sprintf("push rejected by provider: %s", reason), nil)
	}

	return nil
}
