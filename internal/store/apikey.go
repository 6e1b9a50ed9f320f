package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/waymark-io/waymark/internal/model"
)

// CreateAPIKey inserts a new API key record. KeyHash must already be set
// (use HashKey). ID and CreatedAt are populated after insert.
func (s *Store) CreateAPIKey(ctx context.Context, key *model.APIKey) error {
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now().UTC()
	}

	const q = `INSERT INTO api_keys
		(key_hash, key_prefix, user_name, description, is_active, expires_at, created_at)
		VALUES
		(:key_hash, :key_prefix, :user_name, :description, :is_active, :expires_at, :created_at)`

	if s.dialect == dialectPostgres {
		rows, err := sqlx.NamedQueryContext(ctx, s.db, q+" RETURNING id", key)
		if err != nil {
			return fmt.Errorf("insert api key: %w", err)
		}
		defer rows.Close()
		if rows.Next() {
			if err := rows.Scan(&key.ID); err != nil {
				return fmt.Errorf("scan api key id: %w", err)
			}
		}
		return rows.Err()
	}

	result, err := s.db.NamedExecContext(ctx, q, key)
	if err != nil {
		return fmt.Errorf("insert api key: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get api key id: %w", err)
	}
	key.ID = id
	return nil
}

// GetAPIKeyByHash looks up an API key by its SHA-256 hash regardless of
// active state. Callers decide how revoked or expired keys are treated.
func (s *Store) GetAPIKeyByHash(ctx context.Context, hash string) (*model.APIKey, error) {
	var key model.APIKey
	err := s.db.GetContext(ctx, &key, s.db.Rebind("SELECT * FROM api_keys WHERE key_hash = ?"), hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get api key by hash: %w", err)
	}
	return &key, nil
}

// ListAPIKeys returns all API keys, newest first.
func (s *Store) ListAPIKeys(ctx context.Context) ([]model.APIKey, error) {
	var keys []model.APIKey
	const q = "SELECT * FROM api_keys ORDER BY created_at DESC, id DESC"
	if err := s.db.SelectContext(ctx, &keys, q); err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	return keys, nil
}

// ListAPIKeysByUser returns the active keys owned by a user.
func (s *Store) ListAPIKeysByUser(ctx context.Context, userName string) ([]model.APIKey, error) {
	const q = `SELECT * FROM api_keys
		WHERE user_name = ? AND is_active = ?
		ORDER BY created_at DESC, id DESC`

	var keys []model.APIKey
	if err := s.db.SelectContext(ctx, &keys, s.db.Rebind(q), userName, true); err != nil {
		return nil, fmt.Errorf("list api keys by user: %w", err)
	}
	return keys, nil
}

// RevokeAPIKey marks the key with the given hash as inactive. It succeeds
// whether or not the key was already revoked and returns ErrNotFound only
// when no row exists at all, making revocation idempotent.
func (s *Store) RevokeAPIKey(ctx context.Context, hash string) error {
	key, err := s.GetAPIKeyByHash(ctx, hash)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		s.db.Rebind("UPDATE api_keys SET is_active = ? WHERE id = ?"), false, key.ID)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	return nil
}

// RevokeAPIKeyByPrefix marks all active keys with the given display prefix
// as inactive. Used by the CLI, where only the prefix is known.
func (s *Store) RevokeAPIKeyByPrefix(ctx context.Context, prefix string) error {
	result, err := s.db.ExecContext(ctx,
		s.db.Rebind("UPDATE api_keys SET is_active = ? WHERE key_prefix = ? AND is_active = ?"),
		false, prefix, true)
	if err != nil {
		return fmt.Errorf("revoke api key by prefix: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke api key rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchLastUsed sets the last_used timestamp for the key with the given hash.
func (s *Store) TouchLastUsed(ctx context.Context, hash string) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		s.db.Rebind("UPDATE api_keys SET last_used = ? WHERE key_hash = ?"), now, hash)
	if err != nil {
		return fmt.Errorf("touch api key last used: %w", err)
	}
	return nil
}
