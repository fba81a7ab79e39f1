package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestReadConfig_Defaults(t *testing.T) {
	dir := writeConfig(t, "server:\n  port: 9090\n")

	cfg, err := ReadConfig(dir)
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Clinic.BookingLeadMinutes != 30 || cfg.Clinic.ChangeLeadMinutes != 120 {
		t.Errorf("lead times = %d/%d, want 30/120", cfg.Clinic.BookingLeadMinutes, cfg.Clinic.ChangeLeadMinutes)
	}
	if cfg.Clinic.DailyCap != 3 {
		t.Errorf("daily cap = %d, want 3", cfg.Clinic.DailyCap)
	}
	if cfg.Notifications.Transport != "direct" {
		t.Errorf("transport = %q, want direct", cfg.Notifications.Transport)
	}
}

func TestReadConfig_EnvOverride(t *testing.T) {
	dir := writeConfig(t, "clinic:\n  daily_cap: 3\n")
	t.Setenv("MEDICONNECT_CLINIC_DAILY_CAP", "5")

	cfg, err := ReadConfig(dir)
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if cfg.Clinic.DailyCap != 5 {
		t.Errorf("daily cap = %d, want 5", cfg.Clinic.DailyCap)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"bad timezone", func(c *Config) { c.Clinic.Timezone = "Mars/Olympus" }, true},
		{"negative lead", func(c *Config) { c.Clinic.ChangeLeadMinutes = -1 }, true},
		{"unknown transport", func(c *Config) { c.Notifications.Transport = "carrier-pigeon" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Server: ServerConfig{Port: 8080}, Clinic: ClinicConfig{Timezone: "UTC"}}
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
