package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.App.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.App.HTTPAddr)
	}
	if cfg.App.MetricsAddr != ":9090" {
		t.Errorf("MetricsAddr = %q, want :9090", cfg.App.MetricsAddr)
	}
	if cfg.Telegram.SendTimeout != 5*time.Second {
		t.Errorf("SendTimeout = %v, want 5s", cfg.Telegram.SendTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must be valid: %v", err)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
app:
  http_addr: ":8081"
  log_level: debug
telegram:
  endpoint: "https://notify.example.com/send"
  chat_ids: ["chat-1", "chat-2"]
  send_timeout: 2s
postgres:
  dsn: "postgres://localhost:5432/nucoffee"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.App.HTTPAddr != ":8081" {
		t.Errorf("HTTPAddr = %q, want :8081", cfg.App.HTTPAddr)
	}
	// Не заданные в файле поля берутся из дефолтов.
	if cfg.App.MetricsAddr != ":9090" {
		t.Errorf("MetricsAddr = %q, want default :9090", cfg.App.MetricsAddr)
	}
	if len(cfg.Telegram.ChatIDs) != 2 {
		t.Errorf("ChatIDs = %v, want 2 entries", cfg.Telegram.ChatIDs)
	}
	if cfg.Telegram.SendTimeout != 2*time.Second {
		t.Errorf("SendTimeout = %v, want 2s", cfg.Telegram.SendTimeout)
	}
	if cfg.Postgres.DSN == "" {
		t.Error("Postgres.DSN not loaded")
	}
}

func TestLoadConfig_EnvOverlay(t *testing.T) {
	t.Setenv("NUCOFFEE_APP__HTTP_ADDR", ":7070")
	t.Setenv("NUCOFFEE_POSTGRES__DSN", "postgres://env-host:5432/nucoffee")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.HTTPAddr != ":7070" {
		t.Errorf("HTTPAddr = %q, want :7070 from env", cfg.App.HTTPAddr)
	}
	if cfg.Postgres.DSN != "postgres://env-host:5432/nucoffee" {
		t.Errorf("Postgres.DSN = %q, want env value", cfg.Postgres.DSN)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mut     func(c *Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mut:     func(*Config) {},
			wantErr: false,
		},
		{
			name:    "empty http addr",
			mut:     func(c *Config) { c.App.HTTPAddr = "" },
			wantErr: true,
		},
		{
			name:    "empty metrics addr",
			mut:     func(c *Config) { c.App.MetricsAddr = "" },
			wantErr: true,
		},
		{
			name: "chat ids without endpoint",
			mut: func(c *Config) {
				c.Telegram.ChatIDs = []string{"chat-1"}
			},
			wantErr: true,
		},
		{
			name: "chat ids with endpoint",
			mut: func(c *Config) {
				c.Telegram.ChatIDs = []string{"chat-1"}
				c.Telegram.Endpoint = "https://notify.example.com/send"
			},
			wantErr: false,
		},
		{
			name:    "negative send timeout",
			mut:     func(c *Config) { c.Telegram.SendTimeout = -time.Second },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mut(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
