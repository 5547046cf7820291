package payments

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/darkchannel/backend/internal/config"
)

const maxWebhookBodyBytes = 1 << 20

// StripeProvider sells credit packs through Stripe Checkout.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
	priceCents    int64
	successURL    string
	cancelURL     string
}

// NewStripeProvider constructs a provider bound to the configured account.
func NewStripeProvider(cfg config.PaymentsConfig) *StripeProvider {
	api := &client.API{}
	api.Init(cfg.StripeSecretKey, nil)

	return &StripeProvider{
		api:           api,
		webhookSecret: cfg.StripeWebhookSecret,
		priceCents:    cfg.PriceCents,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
	}
}

// CreateCheckout opens a checkout session priced per credit and stamps the
// buyer's email and credit count on the session metadata so the webhook can
// apply the top-up.
func (p *StripeProvider) CreateCheckout(userEmail string, credits int) (string, error) {
	amount := int64(credits) * p.priceCents

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(p.successURL),
		CancelURL:  stripe.String(p.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String("brl"),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("%d créditos DarkChannel", credits)),
					},
					UnitAmount: stripe.Int64(amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.AddMetadata("userEmail", userEmail)
	params.AddMetadata("credits", strconv.Itoa(credits))

	session, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}

	return session.URL, nil
}

// ParseWebhook reads the provider event. When a webhook signing secret is
// configured the signature is enforced; otherwise the payload is trusted as
// received.
func (p *StripeProvider) ParseWebhook(r *http.Request) (Event, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		return Event{}, fmt.Errorf("read webhook body: %w", err)
	}

	if p.webhookSecret != "" {
		if _, err := webhook.ConstructEvent(body, r.Header.Get("Stripe-Signature"), p.webhookSecret); err != nil {
			return Event{}, fmt.Errorf("verify webhook signature: %w", err)
		}
	}

	return eventFromPayload(body)
}

var _ Provider = (*StripeProvider)(nil)
