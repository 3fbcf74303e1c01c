package duocore

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "DefaultIsValid", mutate: func(c *Config) {}},
		{name: "ZeroBufferSize", mutate: func(c *Config) { c.BufferSize = 0 }, wantErr: true},
		{name: "NegativeBufferSize", mutate: func(c *Config) { c.BufferSize = -1 }, wantErr: true},
		{name: "NegativeTimeout", mutate: func(c *Config) { c.Timeout = -1 }, wantErr: true},
		{name: "ZeroBackoff", mutate: func(c *Config) { c.BackoffInterval = 0 }, wantErr: true},
		{name: "RoundRobinSeedZero", mutate: func(c *Config) { c.RoundRobinSeed = 0 }},
		{name: "RoundRobinSeedInvalid", mutate: func(c *Config) { c.RoundRobinSeed = 2 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrInvalid) {
					t.Errorf("got %v, want Invalid", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewRegionAllocatesDistinctBuffers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BufferSize = 256
	region := NewRegion(cfg)

	if len(region.Buffers[0]) != 256 || len(region.Buffers[1]) != 256 {
		t.Fatalf("buffer sizes = %d, %d, want 256, 256", len(region.Buffers[0]), len(region.Buffers[1]))
	}
	region.Buffers[0][0] = 0xAB
	if region.Buffers[1][0] == 0xAB {
		t.Fatal("buffer 0 and buffer 1 alias the same backing array")
	}
	if region.Control.state(0) != stateIdle || region.Control.state(1) != stateIdle {
		t.Fatal("new region's control block must start both states IDLE")
	}
}
