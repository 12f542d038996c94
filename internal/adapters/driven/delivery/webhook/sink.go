// Package webhook posts briefs to a chat incoming-webhook URL.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driven"
)

// Ensure Sink implements the interface.
var _ driven.DeliverySink = (*Sink)(nil)

// DefaultTimeout bounds a single post when the caller's context has no deadline.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of a rejected response is kept as detail.
const maxErrorBody = 512

// Sink posts {"text": body} to a webhook URL.
type Sink struct {
	url    string
	client *http.Client
}

// New creates a webhook sink. An empty url yields a sink whose posts fail
// with domain.ErrSinkNotConfigured.
func New(webhookURL string, timeout time.Duration) *Sink {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Sink{url: webhookURL, client: newHTTPClient(timeout)}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// Name implements driven.DeliverySink.
func (s *Sink) Name() string { return "webhook" }

// Recipient returns the webhook host. The path usually carries a secret
// and is never recorded.
func (s *Sink) Recipient() string {
	u, err := url.Parse(s.url)
	if err != nil || u.Host == "" {
		return "webhook"
	}
	return "webhook:" + u.Host
}

// Post sends msg.Body as the webhook text. Any non-2xx status is a failure.
func (s *Sink) Post(ctx context.Context, msg domain.Message) (string, error) {
	if s.url == "" {
		return "webhook url not configured", domain.ErrSinkNotConfigured
	}

	body, err := json.Marshal(map[string]string{"text": msg.Body})
	if err != nil {
		return "", fmt.Errorf("encoding webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return "invalid webhook url", fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Sprintf("webhook failed: %v", err), err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		detail := fmt.Sprintf("webhook returned status %d", resp.StatusCode)
		if len(bytes.TrimSpace(snippet)) > 0 {
			detail += ": " + string(bytes.TrimSpace(snippet))
		}
		return detail, fmt.Errorf("webhook status %d", resp.StatusCode)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return fmt.Sprintf("webhook accepted (%d)", resp.StatusCode), nil
}
