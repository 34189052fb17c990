package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"bakery-backend/internal/logger"
	"bakery-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const productsCacheKey = "bakery:products"

// ProductCache ürün listesini saklar. Hatalar çağırana dönmez; cache olmadan
// veritabanından okunmaya devam edilir.
type ProductCache interface {
	Get(ctx context.Context) ([]models.Product, bool)
	Set(ctx context.Context, products []models.Product)
	Invalidate(ctx context.Context)
}

type noopCache struct{}

func (noopCache) Get(context.Context) ([]models.Product, bool) { return nil, false }
func (noopCache) Set(context.Context, []models.Product)         {}
func (noopCache) Invalidate(context.Context)                    {}

type redisCmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type RedisProductCache struct {
	client redisCmdable
	ttl    time.Duration
	log    *logger.Logger
}

func NewRedisProductCache(client redisCmdable, ttl time.Duration, log *logger.Logger) *RedisProductCache {
	if log == nil {
		log = logger.Nop()
	}
	return &RedisProductCache{client: client, ttl: ttl, log: log.With("component", "product_cache")}
}

func (c *RedisProductCache) Get(ctx context.Context) ([]models.Product, bool) {
	raw, err := c.client.Get(ctx, productsCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Msg("Ürün cache okunamadı")
		}
		return nil, false
	}
	var products []models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		c.log.Warn().Err(err).Msg("Ürün cache çözümlenemedi")
		return nil, false
	}
	return products, true
}

func (c *RedisProductCache) Set(ctx context.Context, products []models.Product) {
	raw, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, productsCacheKey, raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Msg("Ürün cache yazılamadı")
	}
}

func (c *RedisProductCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, productsCacheKey).Err(); err != nil {
		c.log.Warn().Err(err).Msg("Ürün cache temizlenemedi")
	}
}
