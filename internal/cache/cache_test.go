package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTTLCache_SetGet(t *testing.T) {
	c, err := New(4)
	require.NoError(t, err)

	c.Set("key", "value", time.Minute)
	require.Equal(t, "value", c.Get("key"))
	require.Nil(t, c.Get("missing"))
}

func TestTTLCache_Expiry(t *testing.T) {
	c, err := New(4)
	require.NoError(t, err)

	c.Set("key", "value", 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	require.Nil(t, c.Get("key"))
}

func TestTTLCache_Delete(t *testing.T) {
	c, err := New(4)
	require.NoError(t, err)

	c.Set("key", "value", time.Minute)
	c.Delete("key")
	require.Nil(t, c.Get("key"))
}
