package forwarding

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"structwatch/internal/platform/models"
)

// Event is the wire payload posted to a webhook endpoint.
type Event struct {
	ID        string `json:"id"`
	Event     string `json:"event"`
	Timestamp int64  `json:"timestamp"`
	OwnerName string `json:"owner_name"`
	Title     string `json:"title"`
	Body      string `json:"body"`
}

// Sender delivers one event to one webhook endpoint.
type Sender interface {
	Send(ctx context.Context, webhook *models.Webhook, event *Event) error
}

// HTTPSender posts events as signed JSON. Delivery is single-attempt;
// retry happens on the next forwarding pass via delivery receipts.
type HTTPSender struct {
	client *http.Client
}

func NewHTTPSender(timeout time.Duration) *HTTPSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSender{
		client: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSender) Send(ctx context.Context, webhook *models.Webhook, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhook.URL, bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Structwatch-Signature", Sign(webhook.Secret, payload))
	req.Header.Set("X-Structwatch-Event", event.Event)
	req.Header.Set("X-Structwatch-Delivery", event.ID)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook %s: HTTP %d", webhook.Name, resp.StatusCode)
	}
	return nil
}

// Sign computes the hex HMAC-SHA256 signature of a payload.
func Sign(secret string, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
