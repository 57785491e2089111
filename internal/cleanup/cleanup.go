package cleanup

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// UsedTokenRetention is how long consumed reset tokens are kept for auditing.
const UsedTokenRetention = 24 * time.Hour

type TokenStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteUsedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type CleanupService struct {
	tokens TokenStore
	now    func() time.Time
	log    *zap.Logger
}

func NewCleanupService(tokens TokenStore, log *zap.Logger) *CleanupService {
	return &CleanupService{
		tokens: tokens,
		now:    time.Now,
		log:    log,
	}
}

// CleanupExpiredTokens removes password reset tokens past their expiry.
func (c *CleanupService) CleanupExpiredTokens(ctx context.Context) error {
	n, err := c.tokens.DeleteExpired(ctx, c.now())
	if err != nil {
		c.log.Error("failed to cleanup expired password reset tokens", zap.Error(err))
		return err
	}
	if n > 0 {
		c.log.Info("cleaned up expired password reset tokens", zap.Int64("count", n))
	}
	return nil
}

// CleanupUsedTokens removes consumed tokens older than UsedTokenRetention.
func (c *CleanupService) CleanupUsedTokens(ctx context.Context) error {
	n, err := c.tokens.DeleteUsedBefore(ctx, c.now().Add(-UsedTokenRetention))
	if err != nil {
		c.log.Error("failed to cleanup used password reset tokens", zap.Error(err))
		return err
	}
	if n > 0 {
		c.log.Info("cleaned up used password reset tokens", zap.Int64("count", n))
	}
	return nil
}

func (c *CleanupService) RunFullCleanup(ctx context.Context) error {
	c.log.Info("starting full cleanup")
	if err := c.CleanupExpiredTokens(ctx); err != nil {
		return err
	}
	if err := c.CleanupUsedTokens(ctx); err != nil {
		return err
	}
	c.log.Info("full cleanup completed")
	return nil
}
