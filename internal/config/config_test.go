package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.MaxMessageLen != 2000 {
		t.Errorf("Expected default max message length 2000, got %d", cfg.MaxMessageLen)
	}
	if cfg.ConversationTTL != 30*time.Minute {
		t.Errorf("Expected default conversation TTL 30m, got %s", cfg.ConversationTTL)
	}
	if !cfg.IsDevelopment() {
		t.Error("Expected development mode with empty FRONTEND_URL")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MAX_MESSAGE_LENGTH", "500")
	t.Setenv("CONVERSATION_TTL", "10m")
	t.Setenv("AI_ENABLED", "false")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected port 9000, got %s", cfg.Port)
	}
	if cfg.MaxMessageLen != 500 {
		t.Errorf("Expected max message length 500, got %d", cfg.MaxMessageLen)
	}
	if cfg.ConversationTTL != 10*time.Minute {
		t.Errorf("Expected TTL 10m, got %s", cfg.ConversationTTL)
	}
	if cfg.AIEnabled {
		t.Error("Expected AI disabled")
	}
	if cfg.RateLimit.WindowDuration != 30*time.Second {
		t.Errorf("Expected 30s window, got %s", cfg.RateLimit.WindowDuration)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cfg.MaxMessageLen = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for zero max message length")
	}

	cfg.MaxMessageLen = 2000
	cfg.Port = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for empty port")
	}
}
