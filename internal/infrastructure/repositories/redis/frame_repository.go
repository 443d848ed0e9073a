package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tilecast/internal/core/domain"
	"tilecast/internal/core/ports"
)

// frameTTL bounds how long a stale snapshot outlives its call.
const frameTTL = 24 * time.Hour

type RedisFrameRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisFrameRepository(client *redis.Client) ports.FrameRepository {
	return &RedisFrameRepository{
		client: client,
		prefix: "tilecast:frame:",
	}
}

func (r *RedisFrameRepository) frameKey(callID domain.CallID) string {
	return r.prefix + string(callID)
}

func (r *RedisFrameRepository) Save(ctx context.Context, callID domain.CallID, frame domain.Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}

	if err := r.client.Set(ctx, r.frameKey(callID), data, frameTTL).Err(); err != nil {
		return fmt.Errorf("failed to set frame in Redis: %w", err)
	}
	return nil
}

func (r *RedisFrameRepository) Latest(ctx context.Context, callID domain.CallID) (domain.Frame, error) {
	data, err := r.client.Get(ctx, r.frameKey(callID)).Result()
	if err == redis.Nil {
		return domain.Frame{}, domain.ErrFrameNotFound
	}
	if err != nil {
		return domain.Frame{}, fmt.Errorf("failed to get frame from Redis: %w", err)
	}

	var frame domain.Frame
	if err := json.Unmarshal([]byte(data), &frame); err != nil {
		return domain.Frame{}, fmt.Errorf("failed to unmarshal frame: %w", err)
	}
	return frame, nil
}

func (r *RedisFrameRepository) Delete(ctx context.Context, callID domain.CallID) error {
	if err := r.client.Del(ctx, r.frameKey(callID)).Err(); err != nil {
		return fmt.Errorf("failed to delete frame from Redis: %w", err)
	}
	return nil
}
