package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/studiodesk/studio-backend/config"
)

func TestDSN(t *testing.T) {
	cfg := &config.DatabaseConfig{Host: "db", Port: 5433, User: "studio", Password: "secret", Name: "docs"}
	assert.Equal(t, "host=db port=5433 user=studio password=secret dbname=docs sslmode=disable", DSN(cfg))

	cfg.SSLMode = "require"
	assert.Contains(t, DSN(cfg), "sslmode=require")
}
