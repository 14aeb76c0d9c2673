package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"hse_training_backend/pkg/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB 每个测试一个独立的内存 sqlite 库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// 内存库绑定在单条连接上
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// memStore 内存版离线存储
type memStore struct {
	mu   sync.Mutex
	data map[string][]json.RawMessage
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]json.RawMessage)}
}

func (s *memStore) Append(_ context.Context, key string, record interface{}) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append(s.data[key], raw)
	return nil
}

func (s *memStore) List(_ context.Context, key string) ([]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]json.RawMessage, len(s.data[key]))
	copy(out, s.data[key])
	return out, nil
}

func (s *memStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *memStore) count(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data[key])
}
