package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/waymark-io/waymark/internal/model"
	"github.com/waymark-io/waymark/internal/store"
)

var (
	// ErrMissingKey means no key was presented at all (maps to 401).
	ErrMissingKey = errors.New("api key required")
	// ErrInvalidKey means the presented key is unknown, revoked, or
	// expired (maps to 403).
	ErrInvalidKey = errors.New("invalid api key")
)

// KeyPrefixLen is the length of the stored display prefix: "wm_" plus the
// first 8 hex characters of the random key.
const KeyPrefixLen = 11

// KeyInfo describes the owner of a verified key.
type KeyInfo struct {
	User      string     `json:"user"`
	CreatedAt time.Time  `json:"created_at"`
	LastUsed  *time.Time `json:"last_used,omitempty"`
}

// AuthService verifies, issues, and revokes API keys, and optionally
// guards the admin endpoints with a shared-secret bearer token.
type AuthService struct {
	store       *store.Store
	adminSecret []byte
	logger      *slog.Logger
}

// NewAuthService creates an AuthService. An empty adminSecret disables the
// built-in admin gate; the admin routes are then expected to sit behind a
// reverse proxy with basic auth.
func NewAuthService(st *store.Store, adminSecret string, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:       st,
		adminSecret: []byte(adminSecret),
		logger:      logger,
	}
}

// Verify checks a presented raw key against the stored hashes. Revoked keys
// never match regardless of value equality, and an expiry, when set, is
// checked on every call. On success the key's last_used timestamp is
// updated as a side effect before returning.
func (s *AuthService) Verify(ctx context.Context, rawKey string) (*KeyInfo, error) {
	if rawKey == "" {
		return nil, ErrMissingKey
	}

	hash := store.HashKey(rawKey)
	key, err := s.store.GetAPIKeyByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidKey
		}
		return nil, fmt.Errorf("verify api key: %w", err)
	}

	if !key.IsActive {
		return nil, ErrInvalidKey
	}
	if key.ExpiresAt != nil && key.ExpiresAt.Before(time.Now()) {
		return nil, ErrInvalidKey
	}

	// Best effort: a failed touch must not fail the request.
	if err := s.store.TouchLastUsed(ctx, hash); err != nil {
		s.logger.Warn("failed to update api key last_used", "prefix", key.KeyPrefix, "error", err)
	}

	return &KeyInfo{
		User:      key.UserName,
		CreatedAt: key.CreatedAt,
		LastUsed:  key.LastUsed,
	}, nil
}

// GenerateKey creates a new API key for a user. The returned raw key is
// shown exactly once; only its hash and display prefix are persisted.
func (s *AuthService) GenerateKey(ctx context.Context, userName, description string, expiresAt *time.Time) (string, *model.APIKey, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", nil, fmt.Errorf("generate key material: %w", err)
	}
	rawKey := "wm_" + hex.EncodeToString(rawBytes)

	key := &model.APIKey{
		KeyHash:     store.HashKey(rawKey),
		KeyPrefix:   rawKey[:KeyPrefixLen],
		UserName:    userName,
		Description: description,
		IsActive:    true,
		ExpiresAt:   expiresAt,
	}
	if err := s.store.CreateAPIKey(ctx, key); err != nil {
		return "", nil, err
	}
	return rawKey, key, nil
}

// RevokeKey soft-deletes the key matching the presented raw value. Returns
// store.ErrNotFound when no such key ever existed; revoking an
// already-revoked key succeeds.
func (s *AuthService) RevokeKey(ctx context.Context, rawKey string) error {
	return s.store.RevokeAPIKey(ctx, store.HashKey(rawKey))
}

// AdminAuthEnabled reports whether the built-in admin bearer gate is on.
func (s *AuthService) AdminAuthEnabled() bool {
	return len(s.adminSecret) > 0
}

// IssueAdminToken mints a signed bearer token for the admin endpoints.
func (s *AuthService) IssueAdminToken(ttl time.Duration) (string, error) {
	if !s.AdminAuthEnabled() {
		return "", errors.New("admin secret not configured")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		Issuer:    "waymark",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.adminSecret)
}

// ValidateAdminToken verifies an admin bearer token.
func (s *AuthService) ValidateAdminToken(tokenStr string) error {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.adminSecret, nil
	})
	if err != nil {
		return ErrInvalidKey
	}
	if !token.Valid {
		return ErrInvalidKey
	}
	return nil
}
