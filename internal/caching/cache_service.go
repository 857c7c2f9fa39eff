package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"stockmed/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Product caching
	GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error
	DeleteProduct(ctx context.Context, productID uuid.UUID) error

	// Dashboard snapshot caching
	GetDashboard(ctx context.Context, key string, dest any) (bool, error)
	SetDashboard(ctx context.Context, key string, value any, ttl time.Duration) error
	InvalidateDashboard(ctx context.Context) error

	// Generic string operations for token management
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis://host:port as well as bare host:port
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	key := fmt.Sprintf("stockmed:product:%s", productID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *redisCacheService) SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error {
	key := fmt.Sprintf("stockmed:product:%s", product.ID.String())
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	key := fmt.Sprintf("stockmed:product:%s", productID.String())
	return r.client.Del(ctx, key).Err()
}

// GetDashboard unmarshals a cached dashboard payload into dest. The bool
// result distinguishes a miss from a hit.
func (r *redisCacheService) GetDashboard(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.client.Get(ctx, "stockmed:dashboard:"+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCacheService) SetDashboard(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, "stockmed:dashboard:"+key, data, ttl).Err()
}

func (r *redisCacheService) InvalidateDashboard(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, "stockmed:dashboard:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, "stockmed:"+key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, "stockmed:"+key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, "stockmed:"+key).Err()
}
