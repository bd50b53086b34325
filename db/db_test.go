package db

import (
	"strings"
	"testing"
)

func TestDsnFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    string
		wantErr bool
	}{
		{
			name: "DATABASE_URL wins over discrete variables",
			env: map[string]string{
				"DATABASE_URL": "postgres://app:secret@db:5432/watches",
				"DB_HOST":      "ignored",
			},
			want: "postgres://app:secret@db:5432/watches",
		},
		{
			name: "discrete variables with defaults",
			env: map[string]string{
				"DB_HOST": "localhost",
				"DB_USER": "app",
				"DB_NAME": "watches",
			},
			want: "host=localhost port=5432 user=app password= dbname=watches sslmode=disable",
		},
		{
			name: "explicit port and sslmode",
			env: map[string]string{
				"DB_HOST":     "db.internal",
				"DB_PORT":     "6432",
				"DB_USER":     "app",
				"DB_PASSWORD": "secret",
				"DB_NAME":     "watches",
				"DB_SSLMODE":  "require",
			},
			want: "host=db.internal port=6432 user=app password=secret dbname=watches sslmode=require",
		},
		{
			name:    "missing required variables",
			env:     map[string]string{"DB_HOST": "localhost"},
			wantErr: true,
		},
	}

	keys := []string{"DATABASE_URL", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range keys {
				t.Setenv(key, tt.env[key])
			}

			got, err := dsnFromEnv()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got dsn %q", got)
				}
				if !strings.Contains(err.Error(), "DATABASE_URL") {
					t.Errorf("error should name the missing variables, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("dsnFromEnv() = %q, want %q", got, tt.want)
			}
		})
	}
}
