package database

import (
	"testing"

	"quiz_adaptive_backend/internal/config"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DatabaseConfig
		want string
	}{
		{
			name: "mysql",
			cfg: config.DatabaseConfig{
				Driver: "mysql", Host: "db", Port: 3306, User: "quiz", Password: "pw",
				DBName: "quiz", Charset: "utf8mb4", ParseTime: true,
			},
			want: "quiz:pw@tcp(db:3306)/quiz?charset=utf8mb4&parseTime=true&loc=Local",
		},
		{
			name: "postgres",
			cfg: config.DatabaseConfig{
				Driver: "postgres", Host: "db", Port: 5432, User: "quiz", Password: "pw",
				DBName: "quiz", SSLMode: "disable",
			},
			want: "host=db port=5432 user=quiz password=pw dbname=quiz sslmode=disable TimeZone=UTC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DSN(&tt.cfg); got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}
