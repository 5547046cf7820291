package repositories

import (
	"context"

	"github.com/darkchannel/backend/internal/models"
)

// VideoUpdate carries the owner-editable fields of a video row. Nil pointers
// leave the stored value untouched.
type VideoUpdate struct {
	Description           *string
	Structure             *string
	Screenplay            *string
	Tone                  *string
	Elements              *string
	CompositionRules      *string
	Techniques            *string
	LightingAndAtmosphere *string
	Status                *string
}

// IsEmpty reports whether the update contains no fields.
func (u VideoUpdate) IsEmpty() bool {
	return u.Description == nil && u.Structure == nil && u.Screenplay == nil &&
		u.Tone == nil && u.Elements == nil && u.CompositionRules == nil &&
		u.Techniques == nil && u.LightingAndAtmosphere == nil && u.Status == nil
}

// ScreenplayResult carries the creative fields delivered by the automation
// once a screenplay has been generated. The row's status is reset to Draft
// when the result is applied.
type ScreenplayResult struct {
	Language              *string
	Screenplay            *string
	Description           *string
	Structure             *string
	Tone                  *string
	Elements              *string
	CompositionRules      *string
	Techniques            *string
	LightingAndAtmosphere *string
}

// RenderResult carries the terminal fields delivered by the automation once
// a render has finished. Status is applied verbatim.
type RenderResult struct {
	Status   *string
	VideoURL *string
}

// VideoRepository exposes data access for script/video generation jobs.
type VideoRepository interface {
	// CreateBatch debits creditsNeeded from the owner's balance and inserts
	// the rows in a single transaction. It returns the remaining balance.
	// ErrInsufficientCredits is returned, with no mutation, when the balance
	// cannot cover the batch; any insert failure rolls the debit back.
	CreateBatch(ctx context.Context, userEmail string, creditsNeeded int, rows []models.Video) (int, error)
	ListForUser(ctx context.Context, email, status string, limit, offset int) ([]models.Video, error)
	FindForUser(ctx context.Context, id, email string) (models.Video, error)
	UpdateForUser(ctx context.Context, id, email string, update VideoUpdate) (models.Video, error)
	// ApplyScreenplayResult updates the row matching id. A missing row is
	// not an error: the update matches zero rows and the call succeeds.
	ApplyScreenplayResult(ctx context.Context, id string, result ScreenplayResult) error
	// ApplyRenderResult updates the row matching id; missing rows succeed.
	ApplyRenderResult(ctx context.Context, id string, result RenderResult) error
	// ListAll returns jobs across all users, optionally filtered by status.
	ListAll(ctx context.Context, status string, limit, offset int) ([]models.Video, error)
}

// ArchiveUpdater persists archive status changes for finished renders.
type ArchiveUpdater interface {
	MarkArchiveReady(ctx context.Context, id, location string, size int64) error
	MarkArchiveFailed(ctx context.Context, id string) error
}
