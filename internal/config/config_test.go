package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Review.LowConfidence != 0.70 || cfg.Review.AutoApprove != 0.95 || cfg.Review.TieGap != 0.05 {
		t.Errorf("review thresholds = %+v, want documented defaults", cfg.Review)
	}
	if cfg.Review.BulkWorkers != 4 {
		t.Errorf("bulk workers = %d, want 4", cfg.Review.BulkWorkers)
	}
	if cfg.Vectorizer.Enabled {
		t.Error("vectorizer should be disabled by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "9001")
	t.Setenv("REVIEW_AUTO_APPROVE", "0.9")
	t.Setenv("REVIEW_LOW_CONFIDENCE", "0.5")
	t.Setenv("SERVER_READ_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9001 {
		t.Errorf("port = %d, want 9001", cfg.Server.Port)
	}
	if cfg.Review.AutoApprove != 0.9 || cfg.Review.LowConfidence != 0.5 {
		t.Errorf("review thresholds = %+v, want overrides applied", cfg.Review)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("read timeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing jwt secret",
			env:     map[string]string{"JWT_SECRET": ""},
			wantErr: "JWT_SECRET is required",
		},
		{
			name: "auto approve must exceed low confidence",
			env: map[string]string{
				"JWT_SECRET":            "test-secret",
				"REVIEW_AUTO_APPROVE":   "0.6",
				"REVIEW_LOW_CONFIDENCE": "0.7",
			},
			wantErr: "REVIEW_AUTO_APPROVE must be greater",
		},
		{
			name: "threshold out of range",
			env: map[string]string{
				"JWT_SECRET":          "test-secret",
				"REVIEW_AUTO_APPROVE": "1.5",
			},
			wantErr: "REVIEW_AUTO_APPROVE must be within [0,1]",
		},
		{
			name: "zero workers",
			env: map[string]string{
				"JWT_SECRET":          "test-secret",
				"REVIEW_BULK_WORKERS": "0",
			},
			wantErr: "REVIEW_BULK_WORKERS must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("Load succeeded, want validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
