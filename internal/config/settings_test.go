package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadSettings_Defaults(t *testing.T) {
	for _, k := range []string{"ADDR", "MAX_UPLOAD_MB", "RETAIN_FILES", "VALIDATOR_USERS", "METRICS_BACKEND", "SESSION_TTL_MIN"} {
		t.Setenv(k, "")
	}

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.Addr != ":8080" || s.MaxUploadBytes != 500<<20 || s.RetainFiles != 16 {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if s.SessionTTL != time.Hour || s.MetricsBackend != "none" {
		t.Fatalf("unexpected defaults: %+v", s)
	}
}

func TestLoadSettings_DotEnvAndUsers(t *testing.T) {
	t.Setenv("RETAIN_FILES", "")
	t.Setenv("VALIDATOR_USERS", "")
	os.Unsetenv("RETAIN_FILES")
	os.Unsetenv("VALIDATOR_USERS")

	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	body := "RETAIN_FILES=4\nVALIDATOR_USERS=Admin@Example.org:s3cret, ops@example.org:pw\n"
	if err := os.WriteFile(env, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("RETAIN_FILES")
		os.Unsetenv("VALIDATOR_USERS")
	})

	s, err := LoadSettings(env, filepath.Join(dir, "absent.env"))
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.RetainFiles != 4 {
		t.Fatalf("RetainFiles = %d, want 4", s.RetainFiles)
	}
	if s.Users["admin@example.org"] != "s3cret" || s.Users["ops@example.org"] != "pw" {
		t.Fatalf("Users = %v", s.Users)
	}
}

func TestSettings_Validate(t *testing.T) {
	base := Settings{
		Addr: ":1", UploadDir: "u", DownloadDir: "d",
		MaxUploadBytes: 1, SessionTTL: time.Minute, RetainFiles: 1,
	}
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"ok", func(*Settings) {}, false},
		{"no-retain", func(s *Settings) { s.RetainFiles = 0 }, true},
		{"push-no-url", func(s *Settings) { s.MetricsBackend = "pushgateway" }, true},
		{"push-url", func(s *Settings) {
			s.MetricsBackend = "pushgateway"
			s.PushgatewayURL = "http://pg:9091"
		}, false},
		{"bad-backend", func(s *Settings) { s.MetricsBackend = "graphite" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			tt.mutate(&s)
			if err := s.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseUsers_Malformed(t *testing.T) {
	if _, err := parseUsers("nopassword"); err == nil {
		t.Fatal("expected error")
	}
}
