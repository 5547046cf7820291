package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/darkchannel/backend/internal/db"
	"github.com/darkchannel/backend/internal/models"
)

const userColumns = `id, email, name, credits, role, phone, found_us, preferred_language, created_at, updated_at`

// PostgresUserRepository provides PostgreSQL-backed persistence for accounts.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Ensure fetches the account for the given email, inserting a fresh record
// when none exists yet.
func (r *PostgresUserRepository) Ensure(ctx context.Context, email string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	now := time.Now().UTC()
	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, email, role, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $4)
        ON CONFLICT (email) DO NOTHING
    `, uuid.NewString(), email, models.RoleUser, now)
	if err != nil {
		return models.User{}, fmt.Errorf("ensure user: %w", err)
	}

	return scanUser(conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// FindByEmail fetches an account by its email address.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return scanUser(conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// FindByID fetches an account by its identifier.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return scanUser(conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// UpsertProfile applies a self-service profile patch, creating the account
// when absent.
func (r *PostgresUserRepository) UpsertProfile(ctx context.Context, email string, update ProfileUpdate) (models.User, error) {
	if _, err := r.Ensure(ctx, email); err != nil {
		return models.User{}, err
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	sets := []string{"updated_at = NOW()"}
	args := []any{email}
	appendSet := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, strings.TrimSpace(*value))
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	appendSet("name", update.Name)
	appendSet("phone", update.Phone)
	appendSet("found_us", update.FoundUs)
	appendSet("preferred_language", update.PreferredLanguage)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE email = $1 RETURNING %s`, strings.Join(sets, ", "), userColumns)
	return scanUser(conn.QueryRow(ctx, query, args...))
}

// List returns accounts matching the query string (name or email substring),
// ordered by name.
func (r *PostgresUserRepository) List(ctx context.Context, query string, limit, offset int) ([]models.User, error) {
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

	needle := strings.TrimSpace(query)
	rows, err := conn.Query(ctx, `
        SELECT `+userColumns+`
        FROM users
        WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%')
        ORDER BY name ASC
        LIMIT $2 OFFSET $3
    `, needle, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// AdminUpdate applies credit and role mutations to the account with the
// given id. Credit writes clamp the stored balance to zero or above.
func (r *PostgresUserRepository) AdminUpdate(ctx context.Context, id string, update AdminUserUpdate) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	sets := []string{"updated_at = NOW()"}
	args := []any{id}
	switch {
	case update.Credits != nil:
		args = append(args, *update.Credits)
		sets = append(sets, fmt.Sprintf("credits = GREATEST(0, $%d)", len(args)))
	case update.CreditsDelta != nil:
		args = append(args, *update.CreditsDelta)
		sets = append(sets, fmt.Sprintf("credits = GREATEST(0, credits + $%d)", len(args)))
	}
	if update.Role != nil {
		args = append(args, *update.Role)
		sets = append(sets, fmt.Sprintf("role = $%d", len(args)))
	}

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $1 RETURNING %s`, strings.Join(sets, ", "), userColumns)
	return scanUser(conn.QueryRow(ctx, query, args...))
}

// Delete removes the account with the given id.
func (r *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.Credits, &user.Role,
		&user.Phone, &user.FoundUs, &user.PreferredLanguage,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}

// PostgresChannelRepository provides PostgreSQL-backed persistence for
// YouTube channels.
type PostgresChannelRepository struct {
	pool db.Pool
}

// NewPostgresChannelRepository constructs a channel repository backed by PostgreSQL.
func NewPostgresChannelRepository(pool db.Pool) *PostgresChannelRepository {
	return &PostgresChannelRepository{pool: pool}
}

// ListForUser returns the caller's channels, newest first.
func (r *PostgresChannelRepository) ListForUser(ctx context.Context, email string) ([]models.Channel, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, user_email, name, oauth_encrypted, created_at
        FROM youtube_channels
        WHERE user_email = $1
        ORDER BY created_at DESC
    `, email)
	if err != nil {
		return nil, fmt.Errorf("query channels: %w", err)
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		var channel models.Channel
		if err := rows.Scan(&channel.ID, &channel.UserEmail, &channel.Name, &channel.OAuthEncrypted, &channel.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		channels = append(channels, channel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate channels: %w", err)
	}

	return channels, nil
}

// Create persists a new channel record.
func (r *PostgresChannelRepository) Create(ctx context.Context, channel models.Channel) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO youtube_channels (id, user_email, name, oauth_encrypted, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, channel.ID, channel.UserEmail, channel.Name, channel.OAuthEncrypted, channel.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert channel: %w", err)
	}

	return nil
}

// Delete removes a channel owned by the given email.
func (r *PostgresChannelRepository) Delete(ctx context.Context, id, email string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM youtube_channels WHERE id = $1 AND user_email = $2`, id, email)
	if err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// PostgresGenreRepository reads the genre reference tables.
type PostgresGenreRepository struct {
	pool db.Pool
}

// NewPostgresGenreRepository constructs a genre repository backed by PostgreSQL.
func NewPostgresGenreRepository(pool db.Pool) *PostgresGenreRepository {
	return &PostgresGenreRepository{pool: pool}
}

// ListByLanguage returns the genre rows for the given language ordered by name.
func (r *PostgresGenreRepository) ListByLanguage(ctx context.Context, language string) ([]models.Genre, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT language, name, description, structure, tone, elements,
               composition_rules, techniques, lighting_and_atmosphere
        FROM genres
        WHERE language = $1
        ORDER BY name ASC
    `, language)
	if err != nil {
		return nil, fmt.Errorf("query genres: %w", err)
	}
	defer rows.Close()

	var genres []models.Genre
	for rows.Next() {
		var genre models.Genre
		if err := rows.Scan(
			&genre.Language, &genre.Name, &genre.Description, &genre.Structure,
			&genre.Tone, &genre.Elements, &genre.CompositionRules,
			&genre.Techniques, &genre.LightingAndAtmosphere,
		); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, genre)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genres: %w", err)
	}

	return genres, nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
var _ ChannelRepository = (*PostgresChannelRepository)(nil)
var _ GenreRepository = (*PostgresGenreRepository)(nil)
