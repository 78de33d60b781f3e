package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/martijn/serverlist/internal/core/domain"
	"github.com/martijn/serverlist/internal/core/repository"
)

type authCodeRepository struct {
	db *DB
}

func NewAuthCodeRepository(db *DB) repository.AuthCodeRepository {
	return &authCodeRepository{db: db}
}

func (r *authCodeRepository) Create(ctx context.Context, authCode *domain.AuthCode) error {
	query := `
		INSERT INTO auth_code (code, user_id, scopes, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		authCode.Code,
		authCode.UserID,
		joinScopes(authCode.Scopes),
		authCode.ExpiresAt,
		authCode.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create auth code: %w", err)
	}
	return nil
}

func (r *authCodeRepository) FindByCode(ctx context.Context, code string) (*domain.AuthCode, error) {
	query := `
		SELECT code, user_id, scopes, expires_at, created_at
		FROM auth_code
		WHERE code = ?
	`
	var authCode domain.AuthCode
	var scopes string
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&authCode.Code,
		&authCode.UserID,
		&scopes,
		&authCode.ExpiresAt,
		&authCode.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("auth code not found: %s", code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find auth code: %w", err)
	}
	authCode.Scopes = splitScopes(scopes)

	return &authCode, nil
}

func (r *authCodeRepository) Delete(ctx context.Context, code string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM auth_code WHERE code = ?`, code)
	if err != nil {
		return fmt.Errorf("failed to delete auth code: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("auth code not found: %s", code)
	}

	return nil
}

func (r *authCodeRepository) DeleteExpired(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM auth_code WHERE expires_at < ?`, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete expired auth codes: %w", err)
	}
	return nil
}

// Scopes are stored space delimited, the same way OAuth2 puts them on the wire.
func joinScopes(scopes []string) string {
	return strings.Join(scopes, " ")
}

func splitScopes(scopes string) []string {
	return strings.Fields(scopes)
}
