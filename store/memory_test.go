package store

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/always-cache/conditional/rfc7232"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	r := httptest.NewRequest("GET", "/resources/a?v=1", nil)
	assert.Equal(t, "/resources/a?v=1", Key(r))
	// same resource, different method, same key
	assert.Equal(t, Key(r), Key(httptest.NewRequest("PUT", "/resources/a?v=1", nil)))
}

func TestMemoryStorePutGetPurge(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "/a")
	require.NoError(t, err)
	assert.False(t, ok)

	v := rfc7232.TimedValidator{
		ETag:         rfc7232.StrongTag("abc"),
		LastModified: time.Date(2023, 2, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.Put(ctx, "/a", v))

	got, ok, err := s.Get(ctx, "/a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, v, got)

	require.NoError(t, s.Purge(ctx, "/a"))
	_, ok, err = s.Get(ctx, "/a")
	require.NoError(t, err)
	assert.False(t, ok)
}
