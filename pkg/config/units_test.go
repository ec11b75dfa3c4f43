package config

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"10s", 10 * time.Second, false},
		{"1m", 1 * time.Minute, false},
		{"1.5h", 90 * time.Minute, false},
		{"1d", 24 * time.Hour, false},
		{"1w", 168 * time.Hour, false},
		{"2d2h", 50 * time.Hour, false},
		{"100ms", 100 * time.Millisecond, false},
		{"invalid", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDuration(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestYAMLDuration(t *testing.T) {
	type retentionConfig struct {
		Retention Duration `yaml:"retention"`
		Interval  Duration `yaml:"interval"`
	}

	yamlData := `
retention: 2w
interval: 90m
`
	var cfg retentionConfig
	if err := yaml.Unmarshal([]byte(yamlData), &cfg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if time.Duration(cfg.Retention) != 14*Day {
		t.Errorf("Expected 336h, got %v", time.Duration(cfg.Retention))
	}
	if time.Duration(cfg.Interval) != 90*time.Minute {
		t.Errorf("Expected 90m, got %v", time.Duration(cfg.Interval))
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var back retentionConfig
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("re-Unmarshal failed: %v", err)
	}
	if back != cfg {
		t.Errorf("round trip mismatch: %+v vs %+v", back, cfg)
	}
}
