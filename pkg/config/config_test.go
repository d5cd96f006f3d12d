package config

import "testing"

func TestFromEnvCredentials(t *testing.T) {
	tests := []struct {
		name         string
		email        string
		password     string
		wantComplete bool
	}{
		{
			name:         "Both present",
			email:        "author@example.com",
			password:     "hunter2",
			wantComplete: true,
		},
		{
			name:         "Missing password",
			email:        "author@example.com",
			password:     "",
			wantComplete: false,
		},
		{
			name:         "Missing email",
			email:        "",
			password:     "hunter2",
			wantComplete: false,
		},
		{
			name:         "Both missing",
			email:        "",
			password:     "",
			wantComplete: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LEANPUB_EMAIL", tt.email)
			t.Setenv("LEANPUB_PASSWORD", tt.password)

			cfg := FromEnv()

			if got := cfg.Credentials.Complete(); got != tt.wantComplete {
				t.Errorf("Credentials.Complete() = %v, want %v", got, tt.wantComplete)
			}
			if cfg.Credentials.Email != tt.email {
				t.Errorf("Email = %q, want %q", cfg.Credentials.Email, tt.email)
			}
		})
	}
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("TEMPORAL_HOST", "")
	t.Setenv("HEADLESS", "")

	cfg := FromEnv()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.TemporalHost != "localhost:7233" {
		t.Errorf("TemporalHost = %q, want localhost:7233", cfg.TemporalHost)
	}
	if !cfg.Headless {
		t.Error("Headless should default to true")
	}

	t.Setenv("HEADLESS", "false")
	if FromEnv().Headless {
		t.Error("HEADLESS=false should disable headless mode")
	}
}
