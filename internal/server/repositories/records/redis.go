package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cyclelogin/internal/server/models"
	"github.com/redis/go-redis/v9"
)

// redisClient is the part of *redis.Client the repository needs.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Rename(ctx context.Context, key, newkey string) *redis.StatusCmd
	Close() error
}

// RedisRepository keeps users as one JSON document, visits as a list of
// JSON entries and the counter as decimal text.
type RedisRepository struct {
	client redisClient
	prefix string
}

// NewRedisRepository connects using a redis:// URL and checks the server
// answers.
func NewRedisRepository(ctx context.Context, url, prefix string) (*RedisRepository, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	return newRedisRepository(c, prefix), nil
}

func newRedisRepository(c redisClient, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = "cycle_login:"
	}
	return &RedisRepository{client: c, prefix: prefix}
}

func (r *RedisRepository) key(name string) string { return r.prefix + name }

func (r *RedisRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	b, err := r.client.Get(ctx, r.key("users")).Bytes()
	if errors.Is(err, redis.Nil) {
		return []models.User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return decodeUsers(b), nil
}

func (r *RedisRepository) PutUsers(ctx context.Context, users []models.User) error {
	b, err := json.Marshal(nonNilUsers(users))
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if err := r.client.Set(ctx, r.key("users"), b, 0).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}

// GetVisits skips list entries that do not decode.
func (r *RedisRepository) GetVisits(ctx context.Context) ([]models.Visit, error) {
	items, err := r.client.LRange(ctx, r.key("visits"), 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis: %w", err)
	}
	visits := make([]models.Visit, 0, len(items))
	for _, item := range items {
		var v models.Visit
		if json.Unmarshal([]byte(item), &v) != nil {
			continue
		}
		visits = append(visits, v)
	}
	return visits, nil
}

// PutVisits builds the new list under a scratch key and renames it over the
// old one, so readers never observe a half-written list.
func (r *RedisRepository) PutVisits(ctx context.Context, visits []models.Visit) error {
	if len(visits) == 0 {
		if err := r.client.Del(ctx, r.key("visits")).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	}

	values := make([]interface{}, 0, len(visits))
	for _, v := range visits {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		values = append(values, string(b))
	}

	scratch := r.key("visits:next")
	if err := r.client.Del(ctx, scratch).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if err := r.client.RPush(ctx, scratch, values...).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if err := r.client.Rename(ctx, scratch, r.key("visits")).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}

func (r *RedisRepository) AppendVisit(ctx context.Context, v models.Visit) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if err := r.client.RPush(ctx, r.key("visits"), string(b)).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}

func (r *RedisRepository) GetCounter(ctx context.Context) (int64, error) {
	s, err := r.client.Get(ctx, r.key("visit_count")).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis: %w", err)
	}
	return parseCount(s), nil
}

func (r *RedisRepository) PutCounter(ctx context.Context, n int64) error {
	if err := r.client.Set(ctx, r.key("visit_count"), n, 0).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}

// incrementCounterScript bumps the counter in one step. A value that is not
// a decimal integer counts as 0, the same as GetCounter reads it; plain INCR
// would fail on it instead.
const incrementCounterScript = `
local v = redis.call('GET', KEYS[1])
local n = 0
local d = v and string.match(v, '^%s*(-?%d+)%s*$')
if d then
  n = tonumber(d)
end
n = n + 1
redis.call('SET', KEYS[1], string.format('%d', n))
return n
`

func (r *RedisRepository) IncrementCounter(ctx context.Context) (int64, error) {
	n, err := r.client.Eval(ctx, incrementCounterScript, []string{r.key("visit_count")}).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis: %w", err)
	}
	return n, nil
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}
