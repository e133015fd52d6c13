package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"ecommerce-service/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// cachedCartRepository wraps a CartRepository with a Redis read-through
// cache. Mutations invalidate; only cache hits/misses on reads.
type cachedCartRepository struct {
	inner   CartRepository
	client  *redis.Client
	baseTTL time.Duration
	sfg     singleflight.Group // prevents cache stampede
}

func NewCachedCartRepository(inner CartRepository, client *redis.Client) CartRepository {
	return &cachedCartRepository{
		inner:   inner,
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

func (r *cachedCartRepository) FindByUser(ctx context.Context, userID string) (*models.Cart, error) {
	v, err, _ := r.sfg.Do(userID, func() (interface{}, error) {
		data, errGet := r.client.Get(ctx, cacheKey(userID)).Bytes()
		if errGet == nil {
			var cart models.Cart
			if errUnmarshal := json.Unmarshal(data, &cart); errUnmarshal == nil {
				return &cart, nil
			}
			// 缓存内容损坏，当作未命中
		} else if !errors.Is(errGet, redis.Nil) {
			log.Printf("cache get error: %v", errGet)
		}

		cart, errInner := r.inner.FindByUser(ctx, userID)
		if errInner != nil {
			return nil, errInner
		}

		if errSet := r.set(ctx, userID, cart); errSet != nil {
			log.Printf("cache set error: %v", errSet)
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	// Do shares one result across collapsed callers; hand each caller
	// its own copy so read-modify-write flows don't race on Items.
	cart := v.(*models.Cart)
	copied := *cart
	copied.Items = append([]models.CartItem(nil), cart.Items...)
	return &copied, nil
}

func (r *cachedCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	if err := r.inner.Save(ctx, cart); err != nil {
		return err
	}
	r.invalidate(cart.UserID)
	return nil
}

func (r *cachedCartRepository) Clear(ctx context.Context, userID string) error {
	if err := r.inner.Clear(ctx, userID); err != nil {
		return err
	}
	r.invalidate(userID)
	return nil
}

func (r *cachedCartRepository) set(ctx context.Context, userID string, cart *models.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	if err := r.client.Set(ctx, cacheKey(userID), data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *cachedCartRepository) invalidate(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.client.Del(ctx, cacheKey(userID)).Err(); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}

func cacheKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}
