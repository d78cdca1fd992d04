package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/campus-placement-api/internal/models"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
)

const (
	otpKeyPrefix     = "otp:"
	revokedKeyPrefix = "session:revoked:"
)

// ErrOTPNotFound is returned when no pending code exists for an email.
var ErrOTPNotFound = errors.New("otp not found")

// OTPRepository stores pending verification codes and revoked sessions in Redis.
type OTPRepository struct {
	cache *CacheRepository
}

// NewOTPRepository wraps a cache repository.
func NewOTPRepository(cache *CacheRepository) *OTPRepository {
	return &OTPRepository{cache: cache}
}

// Save stores the record until its expiry.
func (r *OTPRepository) Save(ctx context.Context, email string, record models.OTPRecord) error {
	ttl := time.Until(record.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	return r.cache.Set(ctx, otpKey(email), record, ttl)
}

// Get returns the pending record or ErrOTPNotFound.
func (r *OTPRepository) Get(ctx context.Context, email string) (*models.OTPRecord, error) {
	var record models.OTPRecord
	if err := r.cache.Get(ctx, otpKey(email), &record); err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, ErrOTPNotFound
		}
		return nil, err
	}
	return &record, nil
}

// UpdateAttempts persists the attempt counter without extending the expiry.
func (r *OTPRepository) UpdateAttempts(ctx context.Context, email string, record models.OTPRecord) error {
	return r.cache.Set(ctx, otpKey(email), record, redis.KeepTTL)
}

// Delete removes the pending record.
func (r *OTPRepository) Delete(ctx context.Context, email string) error {
	return r.cache.Delete(ctx, otpKey(email))
}

// RevokeSession deny-lists a token id until it would have expired anyway.
func (r *OTPRepository) RevokeSession(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return r.cache.Set(ctx, revokedKeyPrefix+tokenID, true, ttl)
}

// IsSessionRevoked reports whether a token id was deny-listed.
func (r *OTPRepository) IsSessionRevoked(ctx context.Context, tokenID string) (bool, error) {
	return r.cache.Exists(ctx, revokedKeyPrefix+tokenID)
}

func otpKey(email string) string {
	return otpKeyPrefix + strings.ToLower(strings.TrimSpace(email))
}
