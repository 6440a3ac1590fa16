package database

import (
	"compliance_edu_backend/internal/config"
	"testing"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		driver  string
		name    string
		wantErr bool
	}{
		{driver: "mysql", name: "mysql"},
		{driver: "", name: "mysql"},
		{driver: "postgres", name: "postgres"},
		{driver: "sqlite", wantErr: true},
	}
	for _, tt := range tests {
		d, err := DSN(&config.DatabaseConfig{Driver: tt.driver, Host: "localhost", Port: 1, DBName: "x"})
		if tt.wantErr {
			if err == nil {
				t.Fatalf("driver %q: expected error", tt.driver)
			}
			continue
		}
		if err != nil {
			t.Fatalf("driver %q: %v", tt.driver, err)
		}
		if d.Name() != tt.name {
			t.Fatalf("driver %q: dialector = %q, want %q", tt.driver, d.Name(), tt.name)
		}
	}
}

func TestModelsCoverDomainTables(t *testing.T) {
	if n := len(Models()); n != 10 {
		t.Fatalf("models = %d, want 10", n)
	}
}
