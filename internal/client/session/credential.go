package session

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/client/repositories/kv"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// CredentialStore persists the session credential on the device.
type CredentialStore struct {
	repo kv.Repository
}

func NewCredentialStore(repo kv.Repository) *CredentialStore {
	return &CredentialStore{repo: repo}
}

// Load returns the persisted credential or "" when there is none.
func (c *CredentialStore) Load(ctx context.Context) (string, error) {
	b, err := c.repo.Get(ctx, common.CredentialKey)
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}
	return string(b), nil
}

func (c *CredentialStore) Save(ctx context.Context, token string) error {
	if token == "" {
		return common.ErrEmptyCredential
	}
	if err := c.repo.Set(ctx, common.CredentialKey, []byte(token)); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (c *CredentialStore) Delete(ctx context.Context) error {
	if err := c.repo.Delete(ctx, common.CredentialKey); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

// expired reports whether token is a JWT whose exp lies before now. The
// signature is not checked; the backend does that. Tokens that do not parse
// as JWTs are opaque and never considered expired.
func expired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !claims.ExpiresAt.After(now)
}
