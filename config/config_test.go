package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not created: %v", err)
	}

	// 第二次读取写出的文件
	again, err := Load(path)
	if err != nil {
		t.Fatalf("Load() existing error = %v", err)
	}
	if *again != *cfg {
		t.Errorf("reloaded config = %+v, want %+v", again, cfg)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(`{"speed": 12, "port": "9000"}`), 0644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Speed != 12 || cfg.Port != "9000" {
		t.Errorf("Load() speed=%d port=%s, want 12/9000", cfg.Speed, cfg.Port)
	}
	if cfg.Blocksize != 20 {
		t.Errorf("Blocksize = %d, want default 20", cfg.Blocksize)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed json", `{"speed": `},
		{"zero blocksize", `{"blocksize": 0}`},
		{"canvas too small", `{"width": 10, "blocksize": 20}`},
		{"no max speed", `{"maxspeed": 0}`},
		{"max speed above limit", `{"maxspeed": 5000}`},
		{"zero speed", `{"speed": 0}`},
		{"negative speed", `{"speed": -3}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			os.WriteFile(path, []byte(tt.content), 0644)
			if _, err := Load(path); err == nil {
				t.Error("Load() expected error")
			}
		})
	}
}

func TestGetConfigValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(`{"blocksize": 16, "selfpath": "game.example.com"}`), 0644)

	if _, err := LoadConfig(path); err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if got := GetConfigValue("blocksize").(int); got != 16 {
		t.Errorf("blocksize = %d, want 16", got)
	}
	if got := GetConfigValue("selfpath").(string); got != "game.example.com" {
		t.Errorf("selfpath = %q", got)
	}
	if got := GetConfigValue("unknown"); got != "" {
		t.Errorf("unknown key = %v, want empty string", got)
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if _, err := Load(path); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *AppConfig, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *AppConfig) { changes <- cfg })
	}()

	// 给 watcher 注册的时间
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte(`{"speed": 15}`), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case cfg := <-changes:
		if cfg.Speed != 15 {
			t.Errorf("reloaded speed = %d, want 15", cfg.Speed)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after write")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Watch() did not return after cancel")
	}
}
