package service

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

type Claims struct {
	UserID uuid.UUID
	Role   string
	ID     string // jti
	Exp    time.Time
}

type TokenProvider interface {
	SignAccess(ctx context.Context, sub uuid.UUID, role string, ttl time.Duration) (token string, exp time.Time, err error)
	ParseAndValidateAccess(ctx context.Context, token string) (*Claims, error)
}

type CacheClient interface {
	SetRateLimit(ctx context.Context, key string, ttl time.Duration) error
	CheckRateLimit(ctx context.Context, key string) (bool, error)

	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenBlacklisted(ctx context.Context, jti string) (bool, error)
}

// ReadThrough caches loader results as JSON under key; concurrent misses share one load.
type ReadThrough interface {
	Fetch(ctx context.Context, key string, dst any, load func(ctx context.Context) (any, error)) error
	Invalidate(ctx context.Context, prefixes ...string) error
}

// nopReadThrough always loads. It is the fallback when Redis is disabled.
type nopReadThrough struct{}

func (nopReadThrough) Fetch(ctx context.Context, _ string, dst any, load func(ctx context.Context) (any, error)) error {
	v, err := load(ctx)
	if err != nil {
		return err
	}
	return assign(dst, v)
}

func (nopReadThrough) Invalidate(context.Context, ...string) error { return nil }

// NopReadThrough returns a ReadThrough that never caches.
func NopReadThrough() ReadThrough { return nopReadThrough{} }

type nopCache struct{}

func (nopCache) SetRateLimit(context.Context, string, time.Duration) error   { return nil }
func (nopCache) CheckRateLimit(context.Context, string) (bool, error)        { return false, nil }
func (nopCache) BlacklistToken(context.Context, string, time.Duration) error { return nil }
func (nopCache) IsTokenBlacklisted(context.Context, string) (bool, error)    { return false, nil }

// NopCache disables rate limits and the token denylist.
func NopCache() CacheClient { return nopCache{} }

func assign(dst, v any) error {
	dv := reflect.ValueOf(dst)
	if dv.Kind() != reflect.Pointer || dv.IsNil() {
		return fmt.Errorf("read-through: dst must be a non-nil pointer, got %T", dst)
	}
	sv := reflect.ValueOf(v)
	if sv.Kind() == reflect.Pointer && sv.Type() == dv.Type() {
		sv = sv.Elem()
	}
	if !sv.IsValid() || !sv.Type().AssignableTo(dv.Elem().Type()) {
		return fmt.Errorf("read-through: cannot assign %T to %T", v, dst)
	}
	dv.Elem().Set(sv)
	return nil
}
