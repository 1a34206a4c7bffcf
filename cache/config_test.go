package cache

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Backend != BackendSturdyc {
		t.Errorf("expected sturdyc backend, got %q", cfg.Backend)
	}
	if cfg.TTL != 24*time.Hour {
		t.Errorf("expected 24h TTL, got %v", cfg.TTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to be valid, got %v", err)
	}
}

func TestConfig_Capacity(t *testing.T) {
	cfg := DefaultConfig()

	if got := cfg.Capacity(PartitionTotalChallengeCount); got != 1 {
		t.Errorf("expected default capacity 1, got %d", got)
	}
	if got := cfg.Capacity(PartitionLeaderboardPages); got != 100 {
		t.Errorf("expected default capacity 100, got %d", got)
	}

	cfg.Capacities = map[string]int{PartitionLeaderboardPages: 5}
	if got := cfg.Capacity(PartitionLeaderboardPages); got != 5 {
		t.Errorf("expected override capacity 5, got %d", got)
	}
	if got := cfg.Capacity(PartitionUserPositions); got != 10000 {
		t.Errorf("expected untouched default 10000, got %d", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "lru needs no shard settings",
			mutate: func(c *Config) { *c = Config{Backend: BackendLRU} },
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Backend = "redis" },
			wantErr: "Backend",
		},
		{
			name:    "missing shards",
			mutate:  func(c *Config) { c.NumShards = 0 },
			wantErr: "NumShards",
		},
		{
			name:    "eviction percentage above 100",
			mutate:  func(c *Config) { c.EvictionPercentage = 150 },
			wantErr: "EvictionPercentage",
		},
		{
			name:    "unknown partition override",
			mutate:  func(c *Config) { c.Capacities = map[string]int{"sessions": 10} },
			wantErr: "sessions",
		},
		{
			name:    "zero partition capacity",
			mutate:  func(c *Config) { c.Capacities = map[string]int{PartitionRewards: 0} },
			wantErr: "rewards",
		},
		{
			name:    "negative key length",
			mutate:  func(c *Config) { c.MaxKeyLength = -1 },
			wantErr: "MaxKeyLength",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected no error but got: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}
