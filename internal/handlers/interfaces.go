package handlers

import (
	"context"
	"net/http"

	"github.com/darkchannel/backend/internal/auth"
	"github.com/darkchannel/backend/internal/models"
	"github.com/darkchannel/backend/internal/payments"
	"github.com/darkchannel/backend/internal/repositories"
	"github.com/darkchannel/backend/internal/workflow"
)

// IdentityResolver turns an incoming request into a verified caller identity.
type IdentityResolver interface {
	Resolve(r *http.Request) (auth.Identity, error)
}

// UserStore captures the account operations required by the HTTP handlers.
type UserStore interface {
	Ensure(ctx context.Context, email string) (models.User, error)
	UpsertProfile(ctx context.Context, email string, update repositories.ProfileUpdate) (models.User, error)
	List(ctx context.Context, query string, limit, offset int) ([]models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	AdminUpdate(ctx context.Context, id string, update repositories.AdminUserUpdate) (models.User, error)
	Delete(ctx context.Context, id string) error
}

// VideoStore captures the job operations required by the HTTP handlers.
type VideoStore interface {
	CreateBatch(ctx context.Context, userEmail string, creditsNeeded int, rows []models.Video) (int, error)
	ListForUser(ctx context.Context, email, status string, limit, offset int) ([]models.Video, error)
	FindForUser(ctx context.Context, id, email string) (models.Video, error)
	UpdateForUser(ctx context.Context, id, email string, update repositories.VideoUpdate) (models.Video, error)
	ApplyScreenplayResult(ctx context.Context, id string, result repositories.ScreenplayResult) error
	ApplyRenderResult(ctx context.Context, id string, result repositories.RenderResult) error
	ListAll(ctx context.Context, status string, limit, offset int) ([]models.Video, error)
}

// ChannelStore captures the channel operations required by the HTTP handlers.
type ChannelStore interface {
	ListForUser(ctx context.Context, email string) ([]models.Channel, error)
	Create(ctx context.Context, channel models.Channel) error
	Delete(ctx context.Context, id, email string) error
}

// GenreStore reads the per-language genre reference data.
type GenreStore interface {
	ListByLanguage(ctx context.Context, language string) ([]models.Genre, error)
}

// CreditLedger exposes the balance operations used outside batch creation.
type CreditLedger interface {
	Balance(ctx context.Context, email string) (int, error)
	Credit(ctx context.Context, email string, amount int) (int, error)
}

// WorkflowClient triggers the external automation pipeline.
type WorkflowClient interface {
	NotifyScreenplayBatch(triggers []workflow.ScreenplayTrigger)
	CallScreenplay(ctx context.Context, req workflow.ScreenplayRequest, idempotencyKey string) (workflow.ScreenplayResponse, error)
}

// SecretChecker validates the shared secret carried by automation callbacks.
type SecretChecker interface {
	Verify(provided string) bool
}

// CheckoutProvider creates checkout sessions and parses payment webhooks.
type CheckoutProvider interface {
	CreateCheckout(userEmail string, credits int) (string, error)
	ParseWebhook(r *http.Request) (payments.Event, error)
}

// OAuthSealer protects channel OAuth blobs before they reach the database.
type OAuthSealer interface {
	Seal(plaintext []byte) (string, error)
}

// RenderArchiver schedules background copies of finished renders.
type RenderArchiver interface {
	Enqueue(ctx context.Context, videoID, url string) error
}
