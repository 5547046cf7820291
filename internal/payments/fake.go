package payments

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// FakeProvider is the local-development provider: it hands out a dummy
// checkout URL and trusts webhook payloads as received.
type FakeProvider struct{}

// CreateCheckout returns a placeholder checkout URL carrying the purchase
// details.
func (FakeProvider) CreateCheckout(userEmail string, credits int) (string, error) {
	return fmt.Sprintf("https://example.local/checkout?email=%s&credits=%d", url.QueryEscape(userEmail), credits), nil
}

// ParseWebhook reads the event metadata without signature verification.
func (FakeProvider) ParseWebhook(r *http.Request) (Event, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		return Event{}, fmt.Errorf("read webhook body: %w", err)
	}
	return eventFromPayload(body)
}

var _ Provider = FakeProvider{}
