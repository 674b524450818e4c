package cfg

import (
	"strings"
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load([]string{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.DBDriver != DriverSQLite {
		t.Errorf("Expected driver 'sqlite', got '%s'", cfg.DBDriver)
	}
	if cfg.SchedulerIntervalDuration() != time.Hour {
		t.Errorf("Expected hourly interval, got %v", cfg.SchedulerIntervalDuration())
	}
	if cfg.StartupDelayDuration() != 2*time.Second {
		t.Errorf("Expected startup delay 2s, got %v", cfg.StartupDelayDuration())
	}
	if cfg.FetchTimeoutDuration() != 30*time.Second {
		t.Errorf("Expected fetch timeout 30s, got %v", cfg.FetchTimeoutDuration())
	}
	if cfg.WorkerCount != 1 {
		t.Errorf("Expected worker count 1, got %d", cfg.WorkerCount)
	}
	if cfg.SourcesFile != DefaultSourcesFile {
		t.Errorf("Expected sources file '%s', got '%s'", DefaultSourcesFile, cfg.SourcesFile)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("Expected log format 'text', got '%s'", cfg.LogFormat)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("WORKER_COUNT", "4")
	t.Setenv("SCHEDULER_INTERVAL", "600")
	t.Setenv("API_ACCESS_KEY", "secret")

	cfg, err := load([]string{"--port", "9090"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.WorkerCount != 4 {
		t.Errorf("Expected worker count 4, got %d", cfg.WorkerCount)
	}
	if cfg.SchedulerInterval != 600 {
		t.Errorf("Expected scheduler interval 600, got %d", cfg.SchedulerInterval)
	}
	if cfg.APIAccessKey != "secret" {
		t.Errorf("Expected API key 'secret', got '%s'", cfg.APIAccessKey)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got '%s'", cfg.Port)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"zero workers", []string{"--worker-count", "0"}, "worker count"},
		{"zero interval", []string{"--scheduler-interval", "0"}, "scheduler interval"},
		{"zero timeout", []string{"--fetch-timeout", "0"}, "fetch timeout"},
		{"postgres without password", []string{"--db-driver", "postgres"}, "password"},
		{"unknown driver", []string{"--db-driver", "mysql"}, "db-driver"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(tt.args)
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error to mention '%s', got: %v", tt.want, err)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := &Cfg{
		DBDriver:   DriverPostgres,
		DBHost:     "db",
		DBPort:     "5432",
		DBUser:     "rss",
		DBPassword: "p@ss",
		DBName:     "feeds",
		DBSSLMode:  "require",
	}

	dsn := cfg.DSN()
	if dsn != "postgres://rss:p%40ss@db:5432/feeds?sslmode=require" {
		t.Errorf("Unexpected postgres DSN: %s", dsn)
	}

	cfg = &Cfg{DBDriver: DriverSQLite, DBPath: "/tmp/feeds.db"}
	if !strings.HasPrefix(cfg.DSN(), "/tmp/feeds.db?") {
		t.Errorf("Unexpected sqlite DSN: %s", cfg.DSN())
	}
}
