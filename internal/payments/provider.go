// Package payments integrates the checkout provider used to sell credit
// packs. Stripe is the production provider; a fake provider keeps local
// setups working without keys.
package payments

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/darkchannel/backend/internal/config"
)

// Event is the normalized outcome of a provider webhook: which account to
// credit and by how much. OK is false when the payload is unusable.
type Event struct {
	OK        bool
	Type      string
	UserEmail string
	Credits   int
}

// Provider creates checkout sessions and parses provider webhooks.
type Provider interface {
	// CreateCheckout returns the URL the buyer is redirected to.
	CreateCheckout(userEmail string, credits int) (string, error)
	ParseWebhook(r *http.Request) (Event, error)
}

// NewProvider selects the configured payment provider, falling back to the
// local fake when no Stripe key is present.
func NewProvider(cfg config.PaymentsConfig) Provider {
	if cfg.Provider == "stripe" && cfg.StripeSecretKey != "" {
		return NewStripeProvider(cfg)
	}
	return FakeProvider{}
}

// webhookMetadata mirrors the provider's event envelope down to the session
// metadata this service stamps on checkout creation.
type webhookMetadata struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

func eventFromPayload(body []byte) (Event, error) {
	var payload webhookMetadata
	if err := json.Unmarshal(body, &payload); err != nil {
		return Event{}, fmt.Errorf("decode webhook payload: %w", err)
	}

	event := Event{OK: true, Type: payload.Type}
	if event.Type == "" {
		event.Type = "payment_intent.succeeded"
	}

	metadata := payload.Data.Object.Metadata
	if metadata == nil {
		return event, nil
	}

	event.UserEmail = metadata["userEmail"]
	if raw := metadata["credits"]; raw != "" {
		credits, err := strconv.Atoi(raw)
		if err == nil && credits > 0 {
			event.Credits = credits
		}
	}

	return event, nil
}
