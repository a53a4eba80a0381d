package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const productIndexKey = "products:created"

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

// RedisRepository keeps each product as a JSON document and orders them
// through a sorted set scored by creation time.
type RedisRepository struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisRepository(rdb *redis.Client) *RedisRepository {
	return &RedisRepository{rdb: rdb, now: time.Now}
}

func (r *RedisRepository) Count(ctx context.Context) (int64, error) {
	return r.rdb.ZCard(ctx, productIndexKey).Result()
}

func (r *RedisRepository) List(ctx context.Context, skip, limit int) ([]*Product, error) {
	start := int64(skip)
	stop := int64(-1)
	if limit > 0 {
		if start > math.MaxInt64-int64(limit) {
			return []*Product{}, nil
		}
		stop = start + int64(limit) - 1
	}

	ids, err := r.rdb.ZRevRange(ctx, productIndexKey, start, stop).Result()
	if err != nil {
		return nil, err
	}
	products := make([]*Product, 0, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}
	vals, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			// deleted between ZREVRANGE and MGET
			continue
		}
		var p Product
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}
	return products, nil
}

func (r *RedisRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	data, err := r.rdb.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var p Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *RedisRepository) Create(ctx context.Context, in Input) (*Product, error) {
	now := r.now().UTC()
	p := &Product{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Price:     in.Price,
		CreatedAt: now,
		UpdatedAt: now,
	}

	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, productKey(p.ID), data, 0)
		pipe.ZAdd(ctx, productIndexKey, &redis.Z{
			Score:  float64(now.UnixMicro()),
			Member: p.ID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *RedisRepository) Update(ctx context.Context, id string, in Input) (*Product, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Name = in.Name
	p.Price = in.Price
	p.UpdatedAt = r.now().UTC()

	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	ok, err := r.rdb.SetXX(ctx, productKey(id), data, 0).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	var del *redis.IntCmd
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, productKey(id))
		pipe.ZRem(ctx, productIndexKey, id)
		return nil
	})
	if err != nil {
		return err
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}
