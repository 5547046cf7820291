package payments

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/darkchannel/backend/internal/config"
)

func TestFakeProviderCheckout(t *testing.T) {
	url, err := FakeProvider{}.CreateCheckout("alice@example.com", 30)
	if err != nil {
		t.Fatalf("create checkout: %v", err)
	}
	if !strings.Contains(url, "credits=30") || !strings.Contains(url, "alice%40example.com") {
		t.Fatalf("unexpected checkout url %q", url)
	}
}

func TestFakeProviderParseWebhook(t *testing.T) {
	body := `{
                "type": "payment_intent.succeeded",
                "data": {"object": {"metadata": {"userEmail": "alice@example.com", "credits": "30"}}}
        }`

	req := httptest.NewRequest("POST", "/payments/webhook", strings.NewReader(body))
	event, err := FakeProvider{}.ParseWebhook(req)
	if err != nil {
		t.Fatalf("parse webhook: %v", err)
	}

	if !event.OK {
		t.Fatal("expected ok event")
	}
	if event.UserEmail != "alice@example.com" || event.Credits != 30 {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestFakeProviderParseWebhookWithoutMetadata(t *testing.T) {
	req := httptest.NewRequest("POST", "/payments/webhook", strings.NewReader(`{"type":"payment.succeeded"}`))
	event, err := FakeProvider{}.ParseWebhook(req)
	if err != nil {
		t.Fatalf("parse webhook: %v", err)
	}
	if !event.OK || event.Credits != 0 || event.UserEmail != "" {
		t.Fatalf("expected empty ok event, got %+v", event)
	}
}

func TestFakeProviderParseWebhookRejectsGarbage(t *testing.T) {
	req := httptest.NewRequest("POST", "/payments/webhook", strings.NewReader("not-json"))
	if _, err := (FakeProvider{}).ParseWebhook(req); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestNewProviderSelection(t *testing.T) {
	if _, ok := NewProvider(config.PaymentsConfig{Provider: "stripe"}).(FakeProvider); !ok {
		t.Fatal("expected fake provider when no key is configured")
	}
	if _, ok := NewProvider(config.PaymentsConfig{Provider: "stripe", StripeSecretKey: "sk_test_123"}).(*StripeProvider); !ok {
		t.Fatal("expected stripe provider when a key is configured")
	}
}
