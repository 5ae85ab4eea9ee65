// Package reminder keeps the delayed queue of ticket reminders.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Queue holds at most one pending reminder per ticket.
type Queue interface {
	// Schedule sets the ticket's reminder to fire at at, replacing any
	// earlier entry.
	Schedule(ctx context.Context, ticketID string, at time.Time) error
	Cancel(ctx context.Context, ticketID string) error
	// ClaimDue removes and returns up to limit tickets due by now. An entry
	// is returned to exactly one caller.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]string, error)
	Next(ctx context.Context, ticketID string) (time.Time, bool, error)
}

// RedisQueue stores reminders in a sorted set scored by due time in unix
// milliseconds.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue builds the queue on key.
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key}
}

func (q *RedisQueue) Schedule(ctx context.Context, ticketID string, at time.Time) error {
	return q.client.ZAdd(ctx, q.key, redis.Z{Score: float64(at.UnixMilli()), Member: ticketID}).Err()
}

func (q *RedisQueue) Cancel(ctx context.Context, ticketID string) error {
	return q.client.ZRem(ctx, q.key, ticketID).Err()
}

func (q *RedisQueue) ClaimDue(ctx context.Context, now time.Time, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}
	candidates, err := q.client.ZRangeByScore(ctx, q.key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("read due reminders: %w", err)
	}

	claimed := make([]string, 0, len(candidates))
	for _, id := range candidates {
		removed, err := q.client.ZRem(ctx, q.key, id).Result()
		if err != nil {
			return claimed, fmt.Errorf("claim reminder %s: %w", id, err)
		}
		if removed == 1 {
			claimed = append(claimed, id)
		}
	}
	return claimed, nil
}

func (q *RedisQueue) Next(ctx context.Context, ticketID string) (time.Time, bool, error) {
	score, err := q.client.ZScore(ctx, q.key, ticketID).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return time.UnixMilli(int64(score)).UTC(), true, nil
}

// NextDaily returns the first occurrence of hour:00 UTC strictly after now
// on a following day.
func NextDaily(now time.Time, hourUTC int) time.Time {
	n := now.UTC()
	return time.Date(n.Year(), n.Month(), n.Day()+1, hourUTC, 0, 0, 0, time.UTC)
}
