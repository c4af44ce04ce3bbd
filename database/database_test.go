package database

import (
	"testing"

	"incometracker/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialector(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host: "localhost", Port: "3306", Username: "u", Password: "p", DBName: "income", Charset: "utf8mb4",
	}

	d, err := Dialector(cfg)
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name())

	cfg.Driver = "postgres"
	cfg.Port = "5432"
	d, err = Dialector(cfg)
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	cfg.Driver = "oracle"
	_, err = Dialector(cfg)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestOrDefault(t *testing.T) {
	assert.Equal(t, 10, orDefault(0, 10))
	assert.Equal(t, 10, orDefault(-1, 10))
	assert.Equal(t, 5, orDefault(5, 10))
}
