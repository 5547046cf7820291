package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/darkchannel/backend/internal/db"
	"github.com/darkchannel/backend/internal/models"
)

const videoColumns = `id, user_email, channel_id, language, status, genre, description,
        structure, screenplay, tone, elements, composition_rules, techniques,
        lighting_and_atmosphere, character_count, video_yt_url,
        archive_status, archive_url, archive_size, created_at, updated_at`

const insertVideoSQL = `
        INSERT INTO videos (id, user_email, channel_id, language, status, genre,
                description, structure, screenplay, tone, elements, composition_rules,
                techniques, lighting_and_atmosphere, character_count, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

// PostgresVideoRepository provides PostgreSQL-backed persistence for
// generation jobs.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// CreateBatch debits creditsNeeded from the owner's balance and inserts the
// rows in one transaction. The debit is a conditional decrement: a balance
// below creditsNeeded leaves the account untouched and returns
// ErrInsufficientCredits, and an insert failure rolls the debit back.
func (r *PostgresVideoRepository) CreateBatch(ctx context.Context, userEmail string, creditsNeeded int, rows []models.Video) (int, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin batch transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var remaining int
	err = tx.QueryRow(ctx, `
        UPDATE users
        SET credits = credits - $2, updated_at = NOW()
        WHERE email = $1 AND credits >= $2
        RETURNING credits
    `, userEmail, creditsNeeded).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrInsufficientCredits
		}
		return 0, fmt.Errorf("debit credits: %w", err)
	}

	for _, row := range rows {
		_, err := tx.Exec(ctx, insertVideoSQL,
			row.ID, row.UserEmail, row.ChannelID, row.Language, row.Status,
			row.Genre, row.Description, row.Structure, row.Screenplay, row.Tone,
			row.Elements, row.CompositionRules, row.Techniques,
			row.LightingAndAtmosphere, row.CharacterCount, row.CreatedAt, row.UpdatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return 0, ErrConflict
			}
			return 0, fmt.Errorf("insert video %s: %w", row.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit batch transaction: %w", err)
	}

	return remaining, nil
}

// ListForUser returns the caller's jobs, newest first, optionally filtered
// by status.
func (r *PostgresVideoRepository) ListForUser(ctx context.Context, email, status string, limit, offset int) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := conn.Query(ctx, `
        SELECT `+videoColumns+`
        FROM videos
        WHERE user_email = $1 AND ($2 = '' OR status = $2)
        ORDER BY created_at DESC
        LIMIT $3 OFFSET $4
    `, email, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	return collectVideos(rows)
}

// FindForUser fetches a single job scoped to the owning email.
func (r *PostgresVideoRepository) FindForUser(ctx context.Context, id, email string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return scanVideo(conn.QueryRow(ctx, `
        SELECT `+videoColumns+`
        FROM videos
        WHERE id = $1 AND user_email = $2
    `, id, email))
}

// UpdateForUser applies an owner patch to a job scoped to the owning email.
func (r *PostgresVideoRepository) UpdateForUser(ctx context.Context, id, email string, update VideoUpdate) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	sets := []string{"updated_at = NOW()"}
	args := []any{id, email}
	appendSet := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	appendSet("description", update.Description)
	appendSet("structure", update.Structure)
	appendSet("screenplay", update.Screenplay)
	appendSet("tone", update.Tone)
	appendSet("elements", update.Elements)
	appendSet("composition_rules", update.CompositionRules)
	appendSet("techniques", update.Techniques)
	appendSet("lighting_and_atmosphere", update.LightingAndAtmosphere)
	appendSet("status", update.Status)

	query := fmt.Sprintf(`
        UPDATE videos SET %s
        WHERE id = $1 AND user_email = $2
        RETURNING %s
    `, strings.Join(sets, ", "), videoColumns)

	return scanVideo(conn.QueryRow(ctx, query, args...))
}

// ApplyScreenplayResult writes the generated creative fields onto the row
// matching id and resets its status to Draft. A missing row matches zero
// rows and is not an error.
func (r *PostgresVideoRepository) ApplyScreenplayResult(ctx context.Context, id string, result ScreenplayResult) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	sets := []string{"status = 'Draft'", "updated_at = NOW()"}
	args := []any{id}
	appendSet := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	appendSet("language", result.Language)
	appendSet("screenplay", result.Screenplay)
	appendSet("description", result.Description)
	appendSet("structure", result.Structure)
	appendSet("tone", result.Tone)
	appendSet("elements", result.Elements)
	appendSet("composition_rules", result.CompositionRules)
	appendSet("techniques", result.Techniques)
	appendSet("lighting_and_atmosphere", result.LightingAndAtmosphere)

	query := fmt.Sprintf(`UPDATE videos SET %s WHERE id = $1`, strings.Join(sets, ", "))
	if _, err := conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("apply screenplay result: %w", err)
	}

	return nil
}

// ApplyRenderResult writes the render outcome onto the row matching id.
// Status is applied verbatim; a missing row matches zero rows and is not an
// error.
func (r *PostgresVideoRepository) ApplyRenderResult(ctx context.Context, id string, result RenderResult) error {
	if result.Status == nil && result.VideoURL == nil {
		return nil
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	sets := []string{"updated_at = NOW()"}
	args := []any{id}
	if result.Status != nil {
		args = append(args, *result.Status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if result.VideoURL != nil {
		args = append(args, *result.VideoURL)
		sets = append(sets, fmt.Sprintf("video_yt_url = $%d", len(args)))
	}

	query := fmt.Sprintf(`UPDATE videos SET %s WHERE id = $1`, strings.Join(sets, ", "))
	if _, err := conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("apply render result: %w", err)
	}

	return nil
}

// ListAll returns jobs across all users, newest first, optionally filtered
// by status.
func (r *PostgresVideoRepository) ListAll(ctx context.Context, status string, limit, offset int) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := conn.Query(ctx, `
        SELECT `+videoColumns+`
        FROM videos
        WHERE ($1 = '' OR status = $1)
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query all videos: %w", err)
	}
	defer rows.Close()

	return collectVideos(rows)
}

// MarkArchiveReady records a successful render archive for the given job.
func (r *PostgresVideoRepository) MarkArchiveReady(ctx context.Context, id, location string, size int64) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET archive_status = $2, archive_url = $3, archive_size = $4, updated_at = NOW()
        WHERE id = $1
    `, id, models.ArchiveStatusReady, location, size)
	if err != nil {
		return fmt.Errorf("update archive status ready: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// MarkArchiveFailed records a failed archive attempt for the given job.
func (r *PostgresVideoRepository) MarkArchiveFailed(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET archive_status = $2, archive_url = '', archive_size = 0, updated_at = NOW()
        WHERE id = $1
    `, id, models.ArchiveStatusFailed)
	if err != nil {
		return fmt.Errorf("update archive status failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func collectVideos(rows pgx.Rows) ([]models.Video, error) {
	var videos []models.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}
	return videos, nil
}

func scanVideo(row pgx.Row) (models.Video, error) {
	var video models.Video
	err := row.Scan(
		&video.ID, &video.UserEmail, &video.ChannelID, &video.Language,
		&video.Status, &video.Genre, &video.Description, &video.Structure,
		&video.Screenplay, &video.Tone, &video.Elements, &video.CompositionRules,
		&video.Techniques, &video.LightingAndAtmosphere, &video.CharacterCount,
		&video.VideoURL, &video.ArchiveStatus, &video.ArchiveURL, &video.ArchiveSize,
		&video.CreatedAt, &video.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("scan video: %w", err)
	}
	return video, nil
}

var _ VideoRepository = (*PostgresVideoRepository)(nil)
var _ ArchiveUpdater = (*PostgresVideoRepository)(nil)
