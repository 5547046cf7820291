package handlers

import (
	"errors"
	"net/http"

	"github.com/darkchannel/backend/internal/logging"
	"github.com/darkchannel/backend/internal/models"
	"github.com/darkchannel/backend/internal/repositories"
)

// PaymentsHandler sells credit packs through the configured checkout
// provider and applies the resulting top-ups.
type PaymentsHandler struct {
	Identity IdentityResolver
	Provider CheckoutProvider
	Ledger   CreditLedger
	Limiter  RateLimiter
}

type checkoutRequest struct {
	PackID int `json:"packId"`
}

// Checkout handles POST /payments/checkout.
func (h PaymentsHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !allowRequest(h.Limiter, r, "payments-checkout") {
		respondError(ctx, w, http.StatusTooManyRequests, "rate_limited", "Too many requests")
		return
	}

	identity, ok := requireIdentity(w, r, h.Identity)
	if !ok {
		return
	}

	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	validPack := false
	for _, pack := range models.CreditPacks {
		if req.PackID == pack {
			validPack = true
		}
	}
	if !validPack {
		respondError(ctx, w, http.StatusBadRequest, "bad_request", "packId must be 5|30|90")
		return
	}

	checkoutURL, err := h.Provider.CreateCheckout(identity.Email, req.PackID)
	if err != nil {
		logging.FromContext(ctx).Error("create checkout session", "email", identity.Email, "packId", req.PackID, "error", err)
		respondError(ctx, w, http.StatusBadGateway, "payment_error", "Failed to create checkout session")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"checkoutUrl": checkoutURL})
}

// Webhook handles POST /payments/webhook. The provider payload is verified
// and normalized by the provider integration; a usable event credits the
// account named in the session metadata. The response is always 200 for
// parseable events so the provider stops redelivering.
func (h PaymentsHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	event, err := h.Provider.ParseWebhook(r)
	if err != nil || !event.OK {
		logger.Warn("payment webhook rejected", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "bad_request", "Invalid webhook payload")
		return
	}

	if event.UserEmail != "" && event.Credits > 0 && h.Ledger != nil {
		balance, err := h.Ledger.Credit(ctx, event.UserEmail, event.Credits)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			logger.Warn("payment for unknown account", "email", event.UserEmail, "credits", event.Credits)
		case errors.Is(err, repositories.ErrNotConfigured):
			logger.Warn("payment received without a database", "email", event.UserEmail, "credits", event.Credits)
		case err != nil:
			logger.Error("apply payment credit", "email", event.UserEmail, "credits", event.Credits, "error", err)
		default:
			logger.Info("credits topped up", "email", event.UserEmail, "credits", event.Credits, "balance", balance)
		}
	}

	respondJSON(ctx, w, http.StatusOK, map[string]bool{"received": true})
}
