package configwatcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"hse_training_backend/internal/config"
)

func writeConfig(t *testing.T, path, port string) {
	t.Helper()
	content := "server:\n  port: \"" + port + "\"\n  mode: debug\njwt:\n  secret: test-secret\n  expire_hours: 72\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestWatchConfigReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, "8080")

	reloaded := make(chan *config.Config, 1)
	go WatchConfig(path, func(cfg *config.Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})

	// 等 watcher 挂上文件后再改写
	time.Sleep(200 * time.Millisecond)
	writeConfig(t, path, "9090")

	select {
	case cfg := <-reloaded:
		if cfg.Server.Port != "9090" {
			t.Fatalf("reloaded port = %q, want 9090", cfg.Server.Port)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config change was not observed")
	}
}
