package progress

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"convert-service/ddd/domain/port"
)

const progressKeyTTL = 24 * time.Hour

// RedisSink mirrors progress into Redis so status polls skip the database.
type RedisSink struct {
	client *redis.Client
}

func NewRedisSink(client *redis.Client) *RedisSink {
	return &RedisSink{client: client}
}

var _ port.ProgressSink = (*RedisSink)(nil)

func (s *RedisSink) SaveProgress(ctx context.Context, jobID string, progress float64) error {
	if s.client == nil {
		return nil
	}
	value := strconv.FormatFloat(progress, 'f', 4, 64)
	return s.client.Set(ctx, progressKey(jobID), value, progressKeyTTL).Err()
}

// LoadProgress reads the cached value; a missing key yields ok=false.
func (s *RedisSink) LoadProgress(ctx context.Context, jobID string) (float64, bool, error) {
	if s.client == nil {
		return 0, false, nil
	}
	raw, err := s.client.Get(ctx, progressKey(jobID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func progressKey(jobID string) string {
	return fmt.Sprintf("convert:progress:%s", jobID)
}
