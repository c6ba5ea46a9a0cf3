package storefront_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phoneempire/internal/storefront"
)

func TestBoltStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	st, err := storefront.OpenBoltStorage(path)
	require.NoError(t, err)

	v, err := st.Load(storefront.KeyTheme)
	require.NoError(t, err)
	assert.Nil(t, v, "missing key")

	require.NoError(t, st.Save(storefront.KeyTheme, []byte("dark")))
	require.NoError(t, st.Save(storefront.KeyCart, []byte(`[]`)))
	require.NoError(t, st.Close())

	st, err = storefront.OpenBoltStorage(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	v, err = st.Load(storefront.KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, "dark", string(v))

	require.NoError(t, st.Delete(storefront.KeyTheme))
	v, err = st.Load(storefront.KeyTheme)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestMemoryStorageCopies(t *testing.T) {
	st := storefront.NewMemoryStorage()
	buf := []byte("light")
	require.NoError(t, st.Save(storefront.KeyTheme, buf))
	buf[0] = 'n'
	v, _ := st.Load(storefront.KeyTheme)
	assert.Equal(t, "light", string(v))
}
