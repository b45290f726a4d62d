package passkey

import "testing"

func TestLoadConfigFromEnvDefaults(t *testing.T) {
	cfg := LoadConfigFromEnv()
	if cfg.RPID != "localhost" {
		t.Fatalf("rp id = %q, want %q", cfg.RPID, "localhost")
	}
	if cfg.RPDisplayName != "Todo App" {
		t.Fatalf("rp display name = %q, want %q", cfg.RPDisplayName, "Todo App")
	}
	if len(cfg.RPOrigins) != 1 || cfg.RPOrigins[0] != "http://localhost:3000" {
		t.Fatalf("rp origins = %v, want default origin", cfg.RPOrigins)
	}
}

func TestLoadConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("TODO_APP_RP_ID", "todo.example.com")
	t.Setenv("TODO_APP_RP_ORIGINS", "https://todo.example.com,https://www.todo.example.com")
	t.Setenv("TODO_APP_RP_DISPLAY_NAME", "Example Todo")

	cfg := LoadConfigFromEnv()
	if cfg.RPID != "todo.example.com" {
		t.Fatalf("rp id = %q", cfg.RPID)
	}
	if len(cfg.RPOrigins) != 2 {
		t.Fatalf("rp origins = %v, want 2 entries", cfg.RPOrigins)
	}
	if cfg.RPDisplayName != "Example Todo" {
		t.Fatalf("rp display name = %q", cfg.RPDisplayName)
	}
}
