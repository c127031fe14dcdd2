package configwatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"quiz_adaptive_backend/internal/config"
)

func TestWatchConfig_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: \"8080\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	loads := make(chan string, 4)
	load := func(d string) (*config.Config, error) {
		loads <- d
		return &config.Config{Server: config.ServerConfig{Port: "9090"}}, nil
	}
	reloaded := make(chan *config.Config, 4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(ctx, path, load, func(cfg *config.Config) { reloaded <- cfg })
	}()

	// 等待 watcher 注册目录
	time.Sleep(200 * time.Millisecond)

	// 另一个文件的改动不应触发重载
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("server:\n  port: \"9090\"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case cfg := <-reloaded:
		if cfg.Server.Port != "9090" {
			t.Errorf("reloaded port = %q", cfg.Server.Port)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	if d := <-loads; d != dir {
		t.Errorf("load called with %q, want %q", d, dir)
	}
	// 多次写入合并成一次重载
	select {
	case <-reloaded:
		t.Error("writes were not debounced")
	case <-time.After(1500 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WatchConfig returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
