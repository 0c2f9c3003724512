package repo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksumReader(t *testing.T) {
	sums, err := ChecksumReader(strings.NewReader("hello"))
	require.NoError(t, err)

	assert.Equal(t, int64(5), sums.Size)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", sums.MD5)
	assert.Equal(t, "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d", sums.SHA1)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", sums.SHA256)
}

func TestChecksumWriter(t *testing.T) {
	w := NewChecksumWriter()
	_, err := w.Write([]byte("hel"))
	require.NoError(t, err)
	_, err = w.Write([]byte("lo"))
	require.NoError(t, err)

	sums := w.Sums()
	assert.Equal(t, int64(5), sums.Size)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", sums.MD5)
	assert.Equal(t, "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d", sums.SHA1)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", sums.SHA256)
}

func TestChecksumFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	sums, err := ChecksumFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", sums.SHA256)

	_, err = ChecksumFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
