package repositories

import (
	"context"

	"github.com/darkchannel/backend/internal/models"
)

// The Disabled* repositories back the degraded no-database mode: reads
// return empty collections, writes fail with ErrNotConfigured so handlers
// can answer 501.

// DisabledUserRepository is the no-database user store.
type DisabledUserRepository struct{}

func (DisabledUserRepository) Ensure(_ context.Context, email string) (models.User, error) {
	return models.User{Email: email, Role: models.RoleUser}, nil
}

func (DisabledUserRepository) FindByEmail(context.Context, string) (models.User, error) {
	return models.User{}, ErrNotFound
}

func (DisabledUserRepository) FindByID(context.Context, string) (models.User, error) {
	return models.User{}, ErrNotFound
}

func (DisabledUserRepository) UpsertProfile(context.Context, string, ProfileUpdate) (models.User, error) {
	return models.User{}, ErrNotConfigured
}

func (DisabledUserRepository) List(context.Context, string, int, int) ([]models.User, error) {
	return nil, nil
}

func (DisabledUserRepository) AdminUpdate(context.Context, string, AdminUserUpdate) (models.User, error) {
	return models.User{}, ErrNotConfigured
}

func (DisabledUserRepository) Delete(context.Context, string) error {
	return ErrNotConfigured
}

// DisabledVideoRepository is the no-database job store. CreateBatch reports
// ErrNotConfigured; the creation handler still answers with generated ids
// so the frontend flow keeps working without persistence.
type DisabledVideoRepository struct{}

func (DisabledVideoRepository) CreateBatch(context.Context, string, int, []models.Video) (int, error) {
	return 0, ErrNotConfigured
}

func (DisabledVideoRepository) ListForUser(context.Context, string, string, int, int) ([]models.Video, error) {
	return nil, nil
}

func (DisabledVideoRepository) FindForUser(context.Context, string, string) (models.Video, error) {
	return models.Video{}, ErrNotFound
}

func (DisabledVideoRepository) UpdateForUser(context.Context, string, string, VideoUpdate) (models.Video, error) {
	return models.Video{}, ErrNotConfigured
}

func (DisabledVideoRepository) ApplyScreenplayResult(context.Context, string, ScreenplayResult) error {
	return nil
}

func (DisabledVideoRepository) ApplyRenderResult(context.Context, string, RenderResult) error {
	return nil
}

func (DisabledVideoRepository) ListAll(context.Context, string, int, int) ([]models.Video, error) {
	return nil, nil
}

// DisabledChannelRepository is the no-database channel store.
type DisabledChannelRepository struct{}

func (DisabledChannelRepository) ListForUser(context.Context, string) ([]models.Channel, error) {
	return nil, nil
}

func (DisabledChannelRepository) Create(context.Context, models.Channel) error {
	return ErrNotConfigured
}

func (DisabledChannelRepository) Delete(context.Context, string, string) error {
	return ErrNotConfigured
}

// DisabledGenreRepository is the no-database genre store.
type DisabledGenreRepository struct{}

func (DisabledGenreRepository) ListByLanguage(context.Context, string) ([]models.Genre, error) {
	return nil, nil
}

var _ UserRepository = DisabledUserRepository{}
var _ VideoRepository = DisabledVideoRepository{}
var _ ChannelRepository = DisabledChannelRepository{}
var _ GenreRepository = DisabledGenreRepository{}
