package offline

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
)

// 固定键：每类实体一个 JSON 数组
const (
	KeyTrainingProgress      = "offline:training_progress"
	KeyCertificationProgress = "offline:certification_progress"
	KeyAssessmentSubmissions = "offline:assessment_submissions"
)

// Store 本地持久存储：固定键下追加/读取 JSON 记录。
// 远程写超时或失败时，记录落到这里等待人工处理（不做自动回写，见 DESIGN.md）。
type Store interface {
	Append(ctx context.Context, key string, record interface{}) error
	List(ctx context.Context, key string) ([]json.RawMessage, error)
	Clear(ctx context.Context, key string) error
}

// RedisStore 基于本机 Redis 的离线存储实现
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Append(ctx context.Context, key string, record interface{}) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.rdb.RPush(ctx, key, data).Err()
}

func (s *RedisStore) List(ctx context.Context, key string) ([]json.RawMessage, error) {
	items, err := s.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	records := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		records = append(records, json.RawMessage(item))
	}
	return records, nil
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
