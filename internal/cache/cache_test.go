package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapRemote struct {
	data map[string][]byte
	err  error
	sets int
}

func (m *mapRemote) Get(_ context.Context, key string) ([]byte, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapRemote) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.sets++
	m.data[key] = value
	return nil
}

func (m *mapRemote) Close() error { return nil }

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestKeyIgnoresOrder(t *testing.T) {
	a := url.Values{"location": {"Malibu"}, "guests": {"2"}}
	b := url.Values{"guests": {"2"}, "location": {"Malibu"}}
	c := url.Values{"guests": {"3"}, "location": {"Malibu"}}

	assert.Equal(t, Key("properties", a), Key("properties", b))
	assert.NotEqual(t, Key("properties", a), Key("properties", c))
	assert.Contains(t, Key("properties", a), "properties:")
}

func TestKeyEscapesValues(t *testing.T) {
	tests := []struct {
		name string
		a, b url.Values
	}{
		{
			"ampersand in value",
			url.Values{"location": {"california&propertyType=beach"}},
			url.Values{"location": {"california"}, "propertyType": {"beach"}},
		},
		{
			"equals in key",
			url.Values{"location=malibu": {""}},
			url.Values{"location": {"malibu"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, Key("properties", tt.a), Key("properties", tt.b))
		})
	}
}

func TestLocalOnly(t *testing.T) {
	c := New(Config{}, nil, discard())
	defer c.Close()
	ctx := context.Background()

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	c.Set(ctx, "k", []byte("v"))
	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestRemoteHitFillsLocal(t *testing.T) {
	remote := &mapRemote{data: map[string][]byte{"k": []byte("shared")}}
	c := New(Config{}, remote, discard())
	defer c.Close()
	ctx := context.Background()

	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("shared"), got)

	delete(remote.data, "k")
	got, ok = c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("shared"), got)
}

func TestRemoteErrorsAreMisses(t *testing.T) {
	remote := &mapRemote{data: map[string][]byte{}, err: errors.New("connection refused")}
	c := New(Config{}, remote, discard())
	defer c.Close()
	ctx := context.Background()

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	c.Set(ctx, "k", []byte("v"))
	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestNilCache(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"))
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.NoError(t, c.Close())
}
