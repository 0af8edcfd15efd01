// ABOUTME: Tests for the charm client wrapper
// ABOUTME: Runs against the badger-backed test client

package charm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSetGetDelete(t *testing.T) {
	c := NewTestClient(t)

	require.NoError(t, c.Set([]byte("accounts:1"), []byte(`{"name":"Acme"}`)))

	v, err := c.Get([]byte("accounts:1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Acme"}`, string(v))

	require.NoError(t, c.Delete([]byte("accounts:1")))

	_, err = c.Get([]byte("accounts:1"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKeysWithPrefix(t *testing.T) {
	c := NewTestClient(t)

	require.NoError(t, c.Set([]byte("accounts:1"), []byte("{}")))
	require.NoError(t, c.Set([]byte("accounts:2"), []byte("{}")))
	require.NoError(t, c.Set([]byte("settings:theme"), []byte("{}")))

	keys, err := c.KeysWithPrefix([]byte("accounts:"))
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}

func TestResetAndLocalSync(t *testing.T) {
	c := NewTestClient(t)

	require.NoError(t, c.Set([]byte("k"), []byte("v")))
	require.NoError(t, c.Sync())
	require.NoError(t, c.Reset())

	keys, err := c.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.True(t, c.IsConnected())
	assert.False(t, c.Config().AutoSync)
}

func TestConfigDefaults(t *testing.T) {
	var nilCfg *Config
	cfg := nilCfg.withDefaults()
	assert.Equal(t, DefaultCharmHost, cfg.Host)

	cfg = (&Config{Host: "example.test"}).withDefaults()
	assert.Equal(t, "example.test", cfg.Host)
	assert.NotZero(t, cfg.StaleThreshold)
}
