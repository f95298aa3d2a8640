package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/tandem/internal/domain/repository"
)

const userColumns = `
	id::text, email, password_hash, full_name, bio, profile_pic,
	native_language, learning_language, location, is_onboarded, friends::text[],
	reset_password_otp, reset_password_otp_expires, created_at, updated_at`

// UserStore implementa repository.UserRepository sobre la tabla app_user.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore crea el store. El pool lo maneja el caller.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

var _ repository.UserRepository = (*UserStore)(nil)

func (s *UserStore) Create(ctx context.Context, in repository.CreateUserInput) (*repository.User, error) {
	if in.Email == "" || in.PasswordHash == "" {
		return nil, repository.ErrInvalidInput
	}
	q := `INSERT INTO app_user (email, password_hash, full_name, profile_pic)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	u, err := scanUser(s.pool.QueryRow(ctx, q, in.Email, in.PasswordHash, in.FullName, in.ProfilePic))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("pg: create user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	q := `SELECT ` + userColumns + ` FROM app_user WHERE email = $1 LIMIT 1`
	u, err := scanUser(s.pool.QueryRow(ctx, q, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get user by email: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*repository.User, error) {
	if !looksLikeUUID(id) {
		// evita un error de cast en postgres para IDs basura
		return nil, repository.ErrNotFound
	}
	q := `SELECT ` + userColumns + ` FROM app_user WHERE id = $1`
	u, err := scanUser(s.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get user by id: %w", err)
	}
	return u, nil
}

func (s *UserStore) SetResetOTP(ctx context.Context, userID, otpHash string, expires time.Time) error {
	const q = `UPDATE app_user
		SET reset_password_otp = $2, reset_password_otp_expires = $3, updated_at = NOW()
		WHERE id = $1`
	return s.execOne(ctx, "set reset otp", q, userID, otpHash, expires.UTC())
}

func (s *UserStore) ClearResetOTP(ctx context.Context, userID, otpHash string) error {
	if !looksLikeUUID(userID) {
		return repository.ErrNotFound
	}
	// el UPDATE sólo toca la fila si el digest no cambió; el SELECT distingue "no existe"
	const q = `WITH cleared AS (
			UPDATE app_user
			SET reset_password_otp = NULL, reset_password_otp_expires = NULL, updated_at = NOW()
			WHERE id = $1 AND reset_password_otp = $2
			RETURNING id
		)
		SELECT EXISTS (SELECT 1 FROM app_user WHERE id = $1)`
	var exists bool
	if err := s.pool.QueryRow(ctx, q, userID, otpHash).Scan(&exists); err != nil {
		return fmt.Errorf("pg: clear reset otp: %w", err)
	}
	if !exists {
		return repository.ErrNotFound
	}
	return nil
}

func (s *UserStore) CompletePasswordReset(ctx context.Context, userID, newHash string) error {
	if newHash == "" {
		return repository.ErrInvalidInput
	}
	const q = `UPDATE app_user
		SET password_hash = $2, reset_password_otp = NULL, reset_password_otp_expires = NULL, updated_at = NOW()
		WHERE id = $1`
	return s.execOne(ctx, "complete password reset", q, userID, newHash)
}

func (s *UserStore) Onboard(ctx context.Context, userID string, in repository.OnboardInput) (*repository.User, error) {
	if !looksLikeUUID(userID) {
		return nil, repository.ErrNotFound
	}
	q := `UPDATE app_user SET
			full_name = $2, bio = $3, native_language = $4, learning_language = $5,
			location = $6, is_onboarded = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	u, err := scanUser(s.pool.QueryRow(ctx, q, userID, in.FullName, in.Bio, in.NativeLanguage, in.LearningLanguage, in.Location))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: onboard user: %w", err)
	}
	return u, nil
}

func (s *UserStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// execOne ejecuta un UPDATE por ID y traduce 0 filas a ErrNotFound.
func (s *UserStore) execOne(ctx context.Context, op, q string, args ...any) error {
	if id, _ := args[0].(string); !looksLikeUUID(id) {
		return repository.ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("pg: %s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*repository.User, error) {
	var u repository.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Bio, &u.ProfilePic,
		&u.NativeLanguage, &u.LearningLanguage, &u.Location, &u.IsOnboarded, &u.Friends,
		&u.ResetPasswordOTP, &u.ResetPasswordOTPExpires, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if u.Friends == nil {
		u.Friends = []string{}
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// looksLikeUUID es un chequeo barato de forma (36 chars, guiones en su lugar).
func looksLikeUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	for i, r := range s {
		switch i {
		case 8, 13, 18, 23:
			if r != '-' {
				return false
			}
		default:
			if !('0' <= r && r <= '9' || 'a' <= r && r <= 'f' || 'A' <= r && r <= 'F') {
				return false
			}
		}
	}
	return true
}
