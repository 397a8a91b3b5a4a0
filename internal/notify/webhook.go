// Package notify pushes high-risk alerts to an optional operator webhook.
// Delivery is as best-effort as the live broadcast: failures are logged,
// never propagated into the ingestion path.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

type AlertPayload struct {
	Store     int    `json:"store"`
	Dept      int    `json:"dept"`
	Message   string `json:"message"`
	RiskScore int    `json:"risk_score"`
	RiskLevel string `json:"risk_level"`
	CreatedAt string `json:"created_at"`
}

type AlertWebhook struct {
	URL  string
	HTTP *http.Client
}

// Enabled reports whether a webhook target is configured.
func (s AlertWebhook) Enabled() bool { return s.URL != "" }

func (s AlertWebhook) Send(ctx context.Context, payload AlertPayload) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	client := s.HTTP
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &httpError{StatusCode: resp.StatusCode}
	}
	return nil
}

type httpError struct {
	StatusCode int
}

func (e *httpError) Error() string {
	return "alert webhook http status " + strconv.Itoa(e.StatusCode)
}
