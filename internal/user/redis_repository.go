package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const userIndexKey = "users:created"

// maxUpdateAttempts bounds optimistic retries when a watched user key
// changes between read and commit.
const maxUpdateAttempts = 5

func userKey(id string) string { return "user:" + id }

func emailKey(email string) string { return "user:email:" + email }

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// storedUser is the Redis document; unlike User it keeps the hash.
type storedUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toStored(u *User) storedUser {
	return storedUser(*u)
}

func (s storedUser) user() *User {
	u := User(s)
	return &u
}

// RedisRepository stores users as JSON documents, a creation-ordered
// sorted set and an email-to-id key that enforces uniqueness.
type RedisRepository struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisRepository(rdb *redis.Client) *RedisRepository {
	return &RedisRepository{rdb: rdb, now: time.Now}
}

func decodeUser(data []byte) (*User, error) {
	var s storedUser
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return s.user(), nil
}

func (r *RedisRepository) List(ctx context.Context) ([]*User, error) {
	ids, err := r.rdb.ZRange(ctx, userIndexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	users := make([]*User, 0, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = userKey(id)
	}
	vals, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		u, err := decodeUser([]byte(s))
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *RedisRepository) GetByID(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return r.get(ctx, r.rdb, id)
}

func (r *RedisRepository) get(ctx context.Context, c getter, id string) (*User, error) {
	data, err := c.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decodeUser(data)
}

func (r *RedisRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	id, err := r.rdb.Get(ctx, emailKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r.get(ctx, r.rdb, id)
}

func (r *RedisRepository) Create(ctx context.Context, u *User) error {
	now := r.now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now

	claimed, err := r.rdb.SetNX(ctx, emailKey(u.Email), u.ID, 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return ErrDuplicateEmail
	}

	data, err := json.Marshal(toStored(u))
	if err != nil {
		_ = r.rdb.Del(ctx, emailKey(u.Email)).Err()
		return err
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, userKey(u.ID), data, 0)
		pipe.ZAdd(ctx, userIndexKey, &redis.Z{
			Score:  float64(now.UnixMicro()),
			Member: u.ID,
		})
		return nil
	})
	if err != nil {
		_ = r.rdb.Del(ctx, emailKey(u.Email)).Err()
		return err
	}
	return nil
}

func (r *RedisRepository) Update(ctx context.Context, id string, apply func(u *User) error) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var updated *User
	key := userKey(id)
	update := func(tx *redis.Tx) error {
		u, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		oldEmail := u.Email

		if err := apply(u); err != nil {
			return err
		}
		u.UpdatedAt = r.now().UTC()

		emailChanged := u.Email != oldEmail
		if emailChanged {
			claimed, err := tx.SetNX(ctx, emailKey(u.Email), id, 0).Result()
			if err != nil {
				return err
			}
			if !claimed {
				return ErrDuplicateEmail
			}
		}

		data, err := json.Marshal(toStored(u))
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			if emailChanged {
				pipe.Del(ctx, emailKey(oldEmail))
			}
			return nil
		})
		if err != nil {
			if emailChanged {
				_ = r.rdb.Del(ctx, emailKey(u.Email)).Err()
			}
			return err
		}

		updated = u
		return nil
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := r.rdb.Watch(ctx, update, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("update user %s: %w", id, redis.TxFailedErr)
}

func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	var del *redis.IntCmd
	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, userKey(id))
		pipe.ZRem(ctx, userIndexKey, id)
		pipe.Del(ctx, emailKey(u.Email))
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
