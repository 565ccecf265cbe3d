package contact

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sender delivers a payload to the external receiver.
type Sender interface {
	Send(ctx context.Context, p *Payload) error
}

// Webhook posts payloads as multipart form data to a single URL. It never
// retries; any network error or non-2xx status is a *TransportError.
type Webhook struct {
	url    string
	client *http.Client
}

func NewWebhook(url string, timeout time.Duration) *Webhook {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: timeout, Transport: transport},
	}
}

func (w *Webhook) Send(ctx context.Context, p *Payload) error {
	if w.url == "" {
		return &TransportError{Err: ErrNoEndpoint}
	}

	var body bytes.Buffer
	contentType, err := p.Encode(&body)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, &body)
	if err != nil {
		return &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := w.client.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{StatusCode: resp.StatusCode}
	}
	return nil
}

// Close releases idle connections.
func (w *Webhook) Close() {
	w.client.CloseIdleConnections()
}
