package adapter

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownAdapterError_Error(t *testing.T) {
	err := &UnknownAdapterError{
		Type:      "fake_db",
		Available: []string{"duckdb", "sqlite"},
	}

	msg := err.Error()
	assert.Contains(t, msg, "fake_db")
	assert.Contains(t, msg, "skyoverlay.yaml")
}

func TestRegister(t *testing.T) {
	Register("test_adapter_internal", func(_ *slog.Logger) Adapter { return nil })

	assert.True(t, IsRegistered("test_adapter_internal"))

	factory, ok := Get("test_adapter_internal")
	assert.True(t, ok)
	assert.NotNil(t, factory)
}

func TestBuiltinAdapters(t *testing.T) {
	for _, name := range []string{"duckdb", "sqlite", "postgres"} {
		assert.True(t, IsRegistered(name), name)
	}
	assert.Subset(t, ListAdapters(), []string{"duckdb", "postgres", "sqlite"})

	a, err := NewAdapter(Config{Type: "postgres"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "pgx", a.DriverName())
}

func TestNewAdapter_Errors(t *testing.T) {
	_, err := NewAdapter(Config{}, nil)
	require.Error(t, err)
	assert.Equal(t, "adapter type not specified", err.Error())

	_, err = NewAdapter(Config{Type: "oracle"}, nil)
	var unknown *UnknownAdapterError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "oracle", unknown.Type)

	_, err = ReadTable(context.Background(), Config{Type: "oracle"}, Request{Name: "t"}, nil)
	assert.ErrorAs(t, err, &unknown)
}
