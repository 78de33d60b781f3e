package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/martijn/serverlist/internal/core/domain"
	"github.com/martijn/serverlist/internal/core/repository"
)

const clientColumns = `id, secret, label, scopes, created_at, updated_at`

type clientRepository struct {
	db *DB
}

func NewClientRepository(db *DB) repository.ClientRepository {
	return &clientRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClient(row rowScanner) (*domain.Client, error) {
	var client domain.Client
	var scopes string
	err := row.Scan(
		&client.ID,
		&client.Secret,
		&client.Label,
		&scopes,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	client.Scopes = splitScopes(scopes)
	return &client, nil
}

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	query := `
		INSERT INTO client (` + clientColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		client.ID,
		client.Secret,
		client.Label,
		joinScopes(client.Scopes),
		client.CreatedAt,
		client.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

func (r *clientRepository) FindByID(ctx context.Context, id string) (*domain.Client, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM client WHERE id = ?`, id)
	client, err := scanClient(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("client not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	return client, nil
}

func (r *clientRepository) Update(ctx context.Context, client *domain.Client) error {
	query := `
		UPDATE client
		SET label = ?, scopes = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		client.Label,
		joinScopes(client.Scopes),
		client.UpdatedAt,
		client.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("client not found: %s", client.ID)
	}

	return nil
}

func (r *clientRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM client WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("client not found: %s", id)
	}

	return nil
}

func (r *clientRepository) List(ctx context.Context) ([]*domain.Client, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+clientColumns+` FROM client ORDER BY label`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []*domain.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, client)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}

	return clients, nil
}
