package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReferralCache is a read-through side cache for referral codes. Entries are
// keyed by owner id; an email index maps a normalized email to that id so
// lookups by email and invalidation by owner hit the same entry.
//
//	<prefix>:referral_code:user:<owner-id>  -> code
//	<prefix>:referral_code:email:<email>    -> owner id
type ReferralCache struct {
	store  Store
	prefix string
	ttl    time.Duration
}

func NewReferralCache(store Store, prefix string, ttl time.Duration) *ReferralCache {
	return &ReferralCache{
		store:  store,
		prefix: strings.TrimSpace(prefix),
		ttl:    ttl,
	}
}

func (c *ReferralCache) ownerKey(ownerID uuid.UUID) string {
	return c.buildKey("referral_code:user:" + ownerID.String())
}

func (c *ReferralCache) emailKey(email string) string {
	return c.buildKey("referral_code:email:" + strings.ToLower(strings.TrimSpace(email)))
}

func (c *ReferralCache) buildKey(key string) string {
	if c.prefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", c.prefix, key)
}

// Put stores code for ownerID and, when email is non-empty, the email index.
func (c *ReferralCache) Put(ctx context.Context, ownerID uuid.UUID, email, code string) error {
	if err := c.store.Set(ctx, c.ownerKey(ownerID), []byte(code), c.ttl); err != nil {
		return fmt.Errorf("cache referral code: %w", err)
	}
	if email == "" {
		return nil
	}
	if err := c.store.Set(ctx, c.emailKey(email), []byte(ownerID.String()), c.ttl); err != nil {
		return fmt.Errorf("cache email index: %w", err)
	}
	return nil
}

func (c *ReferralCache) CodeByOwner(ctx context.Context, ownerID uuid.UUID) (string, bool, error) {
	val, err := c.store.Get(ctx, c.ownerKey(ownerID))
	if err != nil {
		return "", false, err
	}
	if val == nil {
		return "", false, nil
	}
	return string(val), true, nil
}

func (c *ReferralCache) CodeByEmail(ctx context.Context, email string) (string, bool, error) {
	val, err := c.store.Get(ctx, c.emailKey(email))
	if err != nil {
		return "", false, err
	}
	if val == nil {
		return "", false, nil
	}
	ownerID, err := uuid.ParseBytes(val)
	if err != nil {
		// A corrupt index entry is treated as a miss; the store is authoritative.
		return "", false, nil
	}
	return c.CodeByOwner(ctx, ownerID)
}

// Evict drops the owner's code entry. The email index is left in place: it
// only points at the owner id, whose entry is now gone.
func (c *ReferralCache) Evict(ctx context.Context, ownerID uuid.UUID) error {
	return c.store.Delete(ctx, c.ownerKey(ownerID))
}
