// Package guard rejects a second concurrent submission of the same search.
// It is a convenience for interactive callers, not a lock that protects
// shared state.
package guard

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/leadgen"
)

// ErrBusy is returned when the same search is already running.
var ErrBusy = eris.New("guard: search already in progress")

// Guard hands out short-lived exclusive claims on a key.
type Guard interface {
	// Acquire claims key for at most ttl. The returned release func drops the
	// claim and is safe to call more than once.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// SearchKey builds the claim key for a search. Niche and location are
// folded so "Padarias"/"padárias" collide.
func SearchKey(user, niche, location string) string {
	return strings.Join([]string{"search", user, leadgen.NameKey(niche), leadgen.NameKey(location)}, ":")
}

// New returns a Redis guard when url is set, otherwise an in-process one.
func New(url string) (Guard, error) {
	if url == "" {
		return NewMemory(), nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, eris.Wrap(err, "guard: parse redis url")
	}
	return NewRedis(redis.NewClient(opts)), nil
}

// Memory is an in-process Guard.
type Memory struct {
	mu     sync.Mutex
	claims map[string]claim
	now    func() time.Time
}

type claim struct {
	token   string
	expires time.Time
}

// NewMemory creates an empty in-process guard.
func NewMemory() *Memory {
	return &Memory{claims: make(map[string]claim), now: time.Now}
}

func (m *Memory) Acquire(_ context.Context, key string, ttl time.Duration) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if c, ok := m.claims[key]; ok && now.Before(c.expires) {
		return nil, eris.Wrapf(ErrBusy, "key %s", key)
	}
	token := uuid.NewString()
	m.claims[key] = claim{token: token, expires: now.Add(ttl)}

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if c, ok := m.claims[key]; ok && c.token == token {
			delete(m.claims, key)
		}
	}, nil
}

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Guard shared by every process pointed at the same server.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, prefix: "prospect:guard:"}
}

func (r *Redis) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	k := r.prefix + key
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, k, token, ttl).Result()
	if err != nil {
		return nil, eris.Wrapf(err, "guard: redis set %s", k)
	}
	if !ok {
		return nil, eris.Wrapf(ErrBusy, "key %s", key)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// Release must run even when the request context is done.
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
			defer cancel()
			_ = releaseScript.Run(ctx, r.client, []string{k}, token).Err()
		})
	}, nil
}

// Close closes the Redis client.
func (r *Redis) Close() error {
	return r.client.Close()
}
