package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stockmaster-api/internal/domain"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
)

var _ repository.PasswordResetRepository = (*PasswordResetRepo)(nil)

// PasswordResetRepo OTP de restablecimiento (solo el hash bcrypt).
type PasswordResetRepo struct {
	q Querier
}

// NewPasswordResetRepository construye el adaptador.
func NewPasswordResetRepository(q Querier) *PasswordResetRepo {
	return &PasswordResetRepo{q: q}
}

func (r *PasswordResetRepo) Create(ctx context.Context, pr *entity.PasswordReset) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO password_resets (id, email, otp_hash, expires_at, used, created_at)
		VALUES ($1, lower($2), $3, $4, $5, $6)`,
		pr.ID, pr.Email, pr.OTPHash, pr.ExpiresAt, pr.Used, pr.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert password reset: %w", err)
	}
	return nil
}

// LatestActive el último OTP no usado del email (puede estar vencido; lo decide el caso de uso).
func (r *PasswordResetRepo) LatestActive(ctx context.Context, email string) (*entity.PasswordReset, error) {
	var pr entity.PasswordReset
	err := r.q.QueryRow(ctx, `
		SELECT id, email, otp_hash, expires_at, used, created_at
		FROM password_resets
		WHERE email = lower($1) AND NOT used
		ORDER BY created_at DESC
		LIMIT 1`, email).Scan(&pr.ID, &pr.Email, &pr.OTPHash, &pr.ExpiresAt, &pr.Used, &pr.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get password reset: %w", err)
	}
	return &pr, nil
}

func (r *PasswordResetRepo) MarkUsed(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE password_resets SET used = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark password reset used: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
