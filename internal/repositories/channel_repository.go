package repositories

import (
	"context"

	"github.com/darkchannel/backend/internal/models"
)

// ChannelRepository exposes data access for YouTube channels. Every query is
// scoped to the owning user's email.
type ChannelRepository interface {
	ListForUser(ctx context.Context, email string) ([]models.Channel, error)
	Create(ctx context.Context, channel models.Channel) error
	Delete(ctx context.Context, id, email string) error
}

// GenreRepository reads the per-language genre reference tables.
type GenreRepository interface {
	ListByLanguage(ctx context.Context, language string) ([]models.Genre, error)
}
