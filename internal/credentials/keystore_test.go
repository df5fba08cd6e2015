package credentials

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyStoreRoundTrip(t *testing.T) {
	ks := NewKeyStoreWithRing(keyring.NewArrayKeyring(nil))

	_, err := ks.Get("demo.search.windows.net")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, ks.Save("demo.search.windows.net", "abc123"))

	key, err := ks.Get("Demo.search.windows.net/")
	require.NoError(t, err)
	assert.Equal(t, "abc123", key)

	require.NoError(t, ks.Delete("demo.search.windows.net"))
	_, err = ks.Get("demo.search.windows.net")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	assert.NoError(t, ks.Delete("demo.search.windows.net"))
}

func TestKeyStoreRejectsEmptyKey(t *testing.T) {
	ks := NewKeyStoreWithRing(keyring.NewArrayKeyring(nil))
	assert.ErrorIs(t, ks.Save("host", "  "), ErrEmptyKey)
}

func TestFileBackend(t *testing.T) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      serviceName,
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          t.TempDir(),
		FilePasswordFunc: keyring.FixedStringPrompt("test-pass"),
	})
	require.NoError(t, err)

	ks := NewKeyStoreWithRing(ring)
	require.NoError(t, ks.Save("files.search.windows.net", "k1"))

	key, err := ks.Get("files.search.windows.net")
	require.NoError(t, err)
	assert.Equal(t, "k1", key)
}

func TestDeriveFilePasswordStable(t *testing.T) {
	a, err := deriveFilePassword()
	require.NoError(t, err)
	b, err := deriveFilePassword()
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
}

func TestFieldAfter(t *testing.T) {
	out := "  \"IOPlatformSerialNumber\" = \"X\"\n  \"IOPlatformUUID\" = \"1234-ABCD\"\n"
	assert.Equal(t, "1234-ABCD", fieldAfter(out, "IOPlatformUUID", "="))
	assert.Empty(t, fieldAfter(out, "Missing", "="))
}
