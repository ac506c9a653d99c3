package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func baseConfig() Config {
	return Config{
		Port:               "8081",
		RateLimitPerMinute: 60,
		DataBackend:        BackendSQLite,
		SQLiteDBPath:       "./test.db",
		APITimeout:         10 * time.Second,
		APIMaxRetries:      3,
		ExportInterval:     time.Hour,
		TrendMonths:        6,
		LogLevel:           "info",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid sqlite backend config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "valid api backend config",
			mutate: func(c *Config) {
				c.DataBackend = BackendAPI
				c.APIBaseURL = "https://cuotas.example.com/api"
			},
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid data backend",
			mutate:      func(c *Config) { c.DataBackend = "sheets" },
			wantErr:     true,
			errorString: "invalid data backend 'sheets': must be one of [sqlite api]",
		},
		{
			name:        "sqlite backend missing database path",
			mutate:      func(c *Config) { c.SQLiteDBPath = "" },
			wantErr:     true,
			errorString: "SQLite database path cannot be empty when using sqlite backend",
		},
		{
			name:        "api backend missing base URL",
			mutate:      func(c *Config) { c.DataBackend = BackendAPI },
			wantErr:     true,
			errorString: "API base URL is required when using api backend",
		},
		{
			name: "api backend with non-http URL",
			mutate: func(c *Config) {
				c.DataBackend = BackendAPI
				c.APIBaseURL = "ftp://cuotas.example.com"
			},
			wantErr:     true,
			errorString: "invalid API base URL 'ftp://cuotas.example.com'",
		},
		{
			name: "api backend with too many retries",
			mutate: func(c *Config) {
				c.DataBackend = BackendAPI
				c.APIBaseURL = "http://localhost:3000"
				c.APIMaxRetries = 11
			},
			wantErr:     true,
			errorString: "invalid API max retries 11",
		},
		{
			name:        "invalid AMQP URL scheme",
			mutate:      func(c *Config) { c.AMQPURL = "http://localhost:5672/"; c.AMQPExchange = "x"; c.AMQPQueue = "q" },
			wantErr:     true,
			errorString: "invalid AMQP URL scheme 'http': must be 'amqp' or 'amqps'",
		},
		{
			name:        "AMQP URL without queue",
			mutate:      func(c *Config) { c.AMQPURL = "amqp://localhost:5672/"; c.AMQPExchange = "x" },
			wantErr:     true,
			errorString: "AMQP queue name cannot be empty when AMQP URL is provided",
		},
		{
			name:        "missing service account file",
			mutate:      func(c *Config) { c.GoogleServiceAccountFile = "/non/existent/sa.json" },
			wantErr:     true,
			errorString: "Google service account file does not exist",
		},
		{
			name:        "trend window too small",
			mutate:      func(c *Config) { c.TrendMonths = 0 },
			wantErr:     true,
			errorString: "invalid trend months 0: must be between 1 and 36",
		},
		{
			name:        "export interval too short",
			mutate:      func(c *Config) { c.ExportInterval = 30 * time.Second },
			wantErr:     true,
			errorString: "invalid export interval 30s: must be at least 1 minute",
		},
		{
			name:        "export interval too long",
			mutate:      func(c *Config) { c.ExportInterval = 25 * time.Hour },
			wantErr:     true,
			errorString: "invalid export interval 25h0m0s: must be at most 24 hours",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.LogLevel = "verbose" },
			wantErr:     true,
			errorString: "invalid log level 'verbose'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Config.Validate() error = nil, wantErr %v", tt.wantErr)
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := baseConfig()
	cfg.Port = "0"
	cfg.TrendMonths = 99

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"invalid port 0", "invalid trend months 99"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err.Error(), want)
		}
	}
}

func TestConfig_SheetsEnabled(t *testing.T) {
	dir := t.TempDir()
	saFile := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(saFile, []byte(`{"type":"service_account"}`), 0600); err != nil {
		t.Fatalf("write service account file: %v", err)
	}

	cfg := baseConfig()
	if cfg.SheetsEnabled() {
		t.Fatal("sheets should be disabled without a spreadsheet")
	}

	cfg.GoogleSpreadsheetID = "sheet-123"
	if cfg.SheetsEnabled() {
		t.Fatal("sheets should be disabled without credentials")
	}

	cfg.GoogleServiceAccountFile = saFile
	if !cfg.SheetsEnabled() {
		t.Fatal("sheets should be enabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func TestLoad(t *testing.T) {
	for _, key := range []string{
		"PORT", "DATA_BACKEND", "SQLITE_DB_PATH", "API_BASE_URL", "API_TIMEOUT",
		"AMQP_URL", "EXPORT_INTERVAL", "TREND_MONTHS", "RATE_LIMIT_PER_MINUTE",
	} {
		t.Setenv(key, "")
	}

	t.Run("default values", func(t *testing.T) {
		cfg := Load()

		if cfg.Port != "8081" {
			t.Errorf("Load() Port = %v, want 8081", cfg.Port)
		}
		if cfg.DataBackend != BackendSQLite {
			t.Errorf("Load() DataBackend = %v, want sqlite", cfg.DataBackend)
		}
		if cfg.SQLiteDBPath != "./data/cuotas.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want ./data/cuotas.db", cfg.SQLiteDBPath)
		}
		if cfg.AMQPURL != "" {
			t.Errorf("Load() AMQPURL = %v, want empty", cfg.AMQPURL)
		}
		if cfg.TrendMonths != 6 {
			t.Errorf("Load() TrendMonths = %v, want 6", cfg.TrendMonths)
		}
		if cfg.ExportInterval != time.Hour {
			t.Errorf("Load() ExportInterval = %v, want 1h", cfg.ExportInterval)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("DATA_BACKEND", "api")
		t.Setenv("API_BASE_URL", "http://localhost:3000/api")
		t.Setenv("API_TIMEOUT", "3s")
		t.Setenv("TREND_MONTHS", "12")
		t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")

		cfg := Load()

		if cfg.Port != "9090" {
			t.Errorf("Load() Port = %v, want 9090", cfg.Port)
		}
		if cfg.DataBackend != BackendAPI {
			t.Errorf("Load() DataBackend = %v, want api", cfg.DataBackend)
		}
		if cfg.APITimeout != 3*time.Second {
			t.Errorf("Load() APITimeout = %v, want 3s", cfg.APITimeout)
		}
		if cfg.TrendMonths != 12 {
			t.Errorf("Load() TrendMonths = %v, want 12", cfg.TrendMonths)
		}
		// unparseable values fall back to the default
		if cfg.RateLimitPerMinute != 60 {
			t.Errorf("Load() RateLimitPerMinute = %v, want 60", cfg.RateLimitPerMinute)
		}
	})
}
