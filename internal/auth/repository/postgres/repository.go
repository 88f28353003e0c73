package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atreidesdev/listopiaBackend/internal/auth/domain"
	autherror "github.com/atreidesdev/listopiaBackend/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repository needs. pgxmock satisfies it
// in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type PostgresRepository struct {
	db DB
}

func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, email, username, password_hash, role, avatar_path, profile_name, active, last_login, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role,
		&u.AvatarPath, &u.ProfileName, &u.Active, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 LIMIT 1`
	return scanUser(r.db.QueryRow(ctx, query, username))
}

func (r *PostgresRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $1 LIMIT 1`
	return scanUser(r.db.QueryRow(ctx, query, identifier))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (email, username, password_hash, role, avatar_path, profile_name, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.Role,
		user.AvatarPath, user.ProfileName, user.Active,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login = $1, updated_at = now() WHERE id = $2`, at, id)
	return err
}

func (r *PostgresRepository) UpdateEmail(ctx context.Context, id int64, email string) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET email = $1, updated_at = now() WHERE id = $2`, email, id)
	return err
}

func (r *PostgresRepository) UpdateUsername(ctx context.Context, id int64, username string) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET username = $1, updated_at = now() WHERE id = $2`, username, id)
	return err
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`, passwordHash, id)
	return err
}

func (r *PostgresRepository) UpdateProfileName(ctx context.Context, id int64, profileName string) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET profile_name = $1, updated_at = now() WHERE id = $2`, profileName, id)
	return err
}

func (r *PostgresRepository) UpdateRole(ctx context.Context, id int64, role string) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET role = $1, updated_at = now() WHERE id = $2`, role, id)
	return err
}

func (r *PostgresRepository) Deactivate(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET active = FALSE, updated_at = now() WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	query := `SELECT id, user_id, token, expires_at, active, created_at FROM refresh_tokens WHERE token = $1 LIMIT 1`
	var rt domain.RefreshToken
	err := r.db.QueryRow(ctx, query, token).Scan(
		&rt.ID, &rt.UserID, &rt.Token, &rt.ExpiresAt, &rt.Active, &rt.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return &rt, nil
}

func (r *PostgresRepository) Store(ctx context.Context, rt *domain.RefreshToken) error {
	query := `INSERT INTO refresh_tokens (user_id, token, expires_at, active) VALUES ($1, $2, $3, $4)`
	_, err := r.db.Exec(ctx, query, rt.UserID, rt.Token, rt.ExpiresAt, rt.Active)
	return err
}

// Rotate deactivates oldToken and stores its replacement in one transaction.
// The deactivation is conditional on the token still being active; when a
// concurrent rotation already claimed it, zero rows match and the whole
// transaction fails with ErrRefreshTokenInvalid.
func (r *PostgresRepository) Rotate(ctx context.Context, oldToken string, replacement *domain.RefreshToken) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin rotation: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE refresh_tokens SET active = FALSE WHERE token = $1 AND active`, oldToken)
	if err != nil {
		return fmt.Errorf("failed to deactivate refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return autherror.ErrRefreshTokenInvalid
	}

	_, err = tx.Exec(ctx, `INSERT INTO refresh_tokens (user_id, token, expires_at, active) VALUES ($1, $2, $3, $4)`,
		replacement.UserID, replacement.Token, replacement.ExpiresAt, replacement.Active)
	if err != nil {
		return fmt.Errorf("failed to store replacement token: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *PostgresRepository) Delete(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	return err
}

func (r *PostgresRepository) GetAttempt(ctx context.Context, ip string, userID int64) (*domain.LoginAttempt, error) {
	query := `
		SELECT id, ip_address, user_id, attempt_count, last_attempt_time, block_end_time, lock_multiplier
		FROM login_attempts
		WHERE ip_address = $1 AND user_id = $2
		LIMIT 1`
	var a domain.LoginAttempt
	err := r.db.QueryRow(ctx, query, ip, userID).Scan(
		&a.ID, &a.IPAddress, &a.UserID, &a.AttemptCount, &a.LastAttemptTime, &a.BlockEndTime, &a.LockMultiplier)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get login attempt: %w", err)
	}
	return &a, nil
}

func (r *PostgresRepository) CreateAttempt(ctx context.Context, attempt *domain.LoginAttempt) error {
	query := `
		INSERT INTO login_attempts (ip_address, user_id, attempt_count, last_attempt_time, block_end_time, lock_multiplier)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	return r.db.QueryRow(ctx, query,
		attempt.IPAddress, attempt.UserID, attempt.AttemptCount,
		attempt.LastAttemptTime, attempt.BlockEndTime, attempt.LockMultiplier,
	).Scan(&attempt.ID)
}

func (r *PostgresRepository) UpdateAttempt(ctx context.Context, attempt *domain.LoginAttempt) error {
	query := `
		UPDATE login_attempts
		SET attempt_count = $1, last_attempt_time = $2, block_end_time = $3, lock_multiplier = $4
		WHERE id = $5`
	_, err := r.db.Exec(ctx, query,
		attempt.AttemptCount, attempt.LastAttemptTime, attempt.BlockEndTime,
		attempt.LockMultiplier, attempt.ID)
	return err
}
