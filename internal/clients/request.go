package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"resty.dev/v3"

	"github.com/pwnholic/taskcard/internal"
	"github.com/pwnholic/taskcard/internal/exports"
)

var ErrDeliveryRejected = errors.New("webhook rejected the artifact")

// WebhookSink POSTs every artifact body to a URL. The artifact name and
// kind travel in headers.
type WebhookSink struct {
	client *resty.Client
	url    string
}

func NewWebhookSink(url string, t *HTTPClientOptions) (*WebhookSink, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("webhook URL cannot be empty")
	}
	if t == nil {
		t = DefaultHTTPClientOptions()
	}
	return &WebhookSink{client: newRestyClient(t), url: url}, nil
}

func statusCode(resp *resty.Response) (bool, string) {
	switch resp.StatusCode() {
	case http.StatusTooManyRequests:
		return true, "rate limited: Too Many Requests (429)"
	case http.StatusForbidden:
		return true, "denied: Forbidden (403)"
	case http.StatusServiceUnavailable:
		return true, "unavailable: Service Unavailable (503)"
	case http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent:
		return false, "accepted"
	}
	if resp.IsError() {
		return true, resp.Status()
	}
	return false, resp.Status()
}

func (w *WebhookSink) Save(ctx context.Context, art exports.Artifact) error {
	response, err := w.client.R().
		SetContext(ctx).
		SetContentType(art.ContentType).
		SetHeader("X-Artifact-Name", art.Name).
		SetHeader("X-Artifact-Kind", string(art.Kind)).
		SetBody(art.Data).
		Post(w.url)
	if err != nil {
		internal.Error("Failed to deliver %s: %s", art.Name, err.Error())
		return fmt.Errorf("failed to deliver %s: %w", art.Name, err)
	}

	rejected, reason := statusCode(response)
	if rejected {
		internal.Warn("REJECTED: %s %s", art.Name, reason)
		return fmt.Errorf("%w: %s", ErrDeliveryRejected, reason)
	}

	internal.Debug("Delivered %s to %s (%s)", art.Name, w.url, reason)
	return nil
}

func (w *WebhookSink) Close() error {
	return w.client.Close()
}
