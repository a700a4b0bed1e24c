package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"easyrent/internal/models"

	"github.com/redis/go-redis/v9"
)

// Cache key prefixes
const (
	walletPrefix = "wallet"
	ratePrefix   = "rate"
)

// CacheService wraps redis with the serialization conventions used
// across the wallet engine.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations

func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

// Get reads key into dest; the bool reports whether the key existed.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// GenerateKey builds a namespaced cache key.
func (s *CacheService) GenerateKey(entityType, keyType string, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entityType, keyType, value)
}

// Wallet caching

func (s *CacheService) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	found, err := s.Get(ctx, s.GenerateKey(walletPrefix, "user", userID), &wallet)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, redis.Nil
	}
	return &wallet, nil
}

func (s *CacheService) SetWallet(ctx context.Context, wallet *models.Wallet) error {
	if wallet == nil {
		return fmt.Errorf("cannot cache nil wallet")
	}
	return s.SetWithTTL(ctx, s.GenerateKey(walletPrefix, "user", wallet.UserID), wallet, 5*time.Minute)
}

func (s *CacheService) InvalidateWallet(ctx context.Context, userID uint) error {
	return s.Delete(ctx, s.GenerateKey(walletPrefix, "user", userID))
}

// Rate quote caching

// RateQuote is the cached shape of one (from,to) conversion rate.
type RateQuote struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Rate      float64   `json:"rate"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *CacheService) GetRate(ctx context.Context, from, to string) (*RateQuote, bool, error) {
	var quote RateQuote
	found, err := s.Get(ctx, s.GenerateKey(ratePrefix, from, to), &quote)
	if err != nil || !found {
		return nil, false, err
	}
	return &quote, true, nil
}

func (s *CacheService) SetRate(ctx context.Context, quote *RateQuote, ttl time.Duration) error {
	return s.SetWithTTL(ctx, s.GenerateKey(ratePrefix, quote.From, quote.To), quote, ttl)
}

// Lifecycle

func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

func (s *CacheService) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

func (s *CacheService) Close() error {
	return s.client.Close()
}
