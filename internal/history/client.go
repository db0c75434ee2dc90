package history

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when no stored draw matches an ID.
var ErrNotFound = errors.New("draw not found")

// Client provides game-scoped Redis operations for draw history.
// All keys are automatically namespaced with the game slug.
// The client is thread-safe and can be used concurrently from multiple goroutines.
type Client struct {
	rdb  *redis.Client
	game string
}

// NewClient creates a history client for the given game name.
// Returns an error if the name has no letters or digits to build a namespace from.
func NewClient(redisOpts *redis.Options, gameName string) (*Client, error) {
	slug := Slug(gameName)
	if slug == "" {
		return nil, fmt.Errorf("game name %q cannot be used as a history namespace", gameName)
	}

	return &Client{
		rdb:  redis.NewClient(redisOpts),
		game: slug,
	}, nil
}

// NewClientFromURL parses a redis:// or rediss:// URL and creates a client.
func NewClientFromURL(redisURL, gameName string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}
	return NewClient(opts, gameName)
}

// Namespace returns the slug every key of this client is prefixed with.
func (c *Client) Namespace() string {
	return c.game
}

// Close closes the Redis connection. Implements io.Closer.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Save writes a draw record and adds it to the game's index in one transaction.
func (c *Client) Save(ctx context.Context, r *Record) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("invalid draw record: %w", err)
	}

	hash, err := RecordToHash(r)
	if err != nil {
		return fmt.Errorf("failed to serialize draw record: %w", err)
	}

	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, DrawKey(c.game, r.ID), hash)
		pipe.ZAdd(ctx, DrawIndexKey(c.game), redis.Z{
			Score:  float64(r.CreatedAtMs),
			Member: r.ID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write draw record to Redis: %w", err)
	}
	return nil
}

// Get retrieves a draw by its full ID.
// Returns an error matching ErrNotFound if the draw doesn't exist.
func (c *Client) Get(ctx context.Context, drawID string) (*Record, error) {
	hashData, err := c.rdb.HGetAll(ctx, DrawKey(c.game, drawID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read draw from Redis: %w", err)
	}

	// HGetAll returns an empty map for missing keys
	if len(hashData) == 0 {
		return nil, &NotFoundError{ID: drawID}
	}

	r, err := HashToRecord(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize draw %s: %w", drawID, err)
	}
	return r, nil
}

// Exists checks if a draw exists without fetching it.
func (c *Client) Exists(ctx context.Context, drawID string) (bool, error) {
	n, err := c.rdb.Exists(ctx, DrawKey(c.game, drawID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check draw existence: %w", err)
	}
	return n > 0, nil
}

// Range bounds a listing by creation time. Zero means unbounded.
type Range struct {
	SinceMs int64
	UntilMs int64
}

// List returns every stored draw of the game, newest first.
func (c *Client) List(ctx context.Context) ([]*Record, error) {
	return c.ListRange(ctx, Range{})
}

// ListRange returns the draws created within r, newest first.
// Index entries whose record has vanished are skipped.
func (c *Client) ListRange(ctx context.Context, r Range) ([]*Record, error) {
	by := &redis.ZRangeBy{Min: "-inf", Max: "+inf"}
	if r.SinceMs > 0 {
		by.Min = strconv.FormatInt(r.SinceMs, 10)
	}
	if r.UntilMs > 0 {
		by.Max = strconv.FormatInt(r.UntilMs, 10)
	}

	ids, err := c.rdb.ZRevRangeByScore(ctx, DrawIndexKey(c.game), by).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read draw index: %w", err)
	}

	records := make([]*Record, 0, len(ids))
	for _, id := range ids {
		r, err := c.Get(ctx, id)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// scanIDs returns the IDs of every draw whose ID starts with prefix.
func (c *Client) scanIDs(ctx context.Context, prefix string) ([]string, error) {
	keyPrefix := DrawKeyPrefix(c.game)

	var ids []string
	iter := c.rdb.Scan(ctx, 0, keyPrefix+prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), keyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan draws: %w", err)
	}
	return ids, nil
}

// IsNotFound reports whether err means a draw does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
