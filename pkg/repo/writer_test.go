package repo

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_WriteIndexes(t *testing.T) {
	outDir := t.TempDir()
	w := NewWriter(outDir, "stable", "main")

	ix := NewIndex()
	require.True(t, ix.Add(makeEntry(t, "tool", "1.0", "amd64")))
	require.True(t, ix.Add(makeEntry(t, "scripts", "2.0", "all")))

	files, err := w.WriteIndexes(ix)
	require.NoError(t, err)

	// amd64 and all buckets, Packages + Packages.gz each, sorted.
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	assert.Equal(t, []string{
		"main/binary-all/Packages",
		"main/binary-all/Packages.gz",
		"main/binary-amd64/Packages",
		"main/binary-amd64/Packages.gz",
	}, paths)

	// The amd64 index holds both the native entry and the all entry,
	// separated by a blank line.
	data, err := os.ReadFile(filepath.Join(outDir, "dists", "stable", "main", "binary-amd64", "Packages"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Package: tool\n")
	assert.Contains(t, string(data), "Package: scripts\n")
	assert.Contains(t, string(data), "\n\nPackage: tool\n")
	assert.True(t, bytes.HasSuffix(data, []byte("\n")))
	assert.False(t, bytes.HasSuffix(data, []byte("\n\n")))

	// Packages.gz decompresses to the exact Packages bytes.
	gzData, err := os.ReadFile(filepath.Join(outDir, "dists", "stable", "main", "binary-amd64", "Packages.gz"))
	require.NoError(t, err)
	gz, err := gzip.NewReader(bytes.NewReader(gzData))
	require.NoError(t, err)
	plain, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, data, plain)

	// Reported checksums match the bytes on disk.
	for _, f := range files {
		sums, err := ChecksumFile(filepath.Join(w.SuiteDir(), filepath.FromSlash(f.Path)))
		require.NoError(t, err)
		assert.Equal(t, *sums, f.Checksums, f.Path)
	}
}

func TestWriter_WriteIndexes_ClearsStaleBuckets(t *testing.T) {
	outDir := t.TempDir()
	w := NewWriter(outDir, "stable", "main")

	staleDir := filepath.Join(w.SuiteDir(), "main", "binary-riscv64")
	require.NoError(t, os.MkdirAll(staleDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(staleDir, "Packages"), []byte("stale"), 0644))

	ix := NewIndex()
	require.True(t, ix.Add(makeEntry(t, "tool", "1.0", "amd64")))

	_, err := w.WriteIndexes(ix)
	require.NoError(t, err)

	_, err = os.Stat(staleDir)
	assert.True(t, os.IsNotExist(err), "stale architecture bucket must be removed")
}

func TestWriter_WriteIndexes_Deterministic(t *testing.T) {
	outDir := t.TempDir()
	w := NewWriter(outDir, "stable", "main")

	build := func() []byte {
		ix := NewIndex()
		require.True(t, ix.Add(makeEntry(t, "tool", "1.0", "amd64")))
		require.True(t, ix.Add(makeEntry(t, "bat", "2.0", "amd64")))
		_, err := w.WriteIndexes(ix)
		require.NoError(t, err)
		data, err := os.ReadFile(filepath.Join(w.SuiteDir(), "main", "binary-amd64", "Packages.gz"))
		require.NoError(t, err)
		return data
	}

	first := build()
	second := build()
	assert.Equal(t, first, second)
}

func TestWriter_WriteRelease(t *testing.T) {
	outDir := t.TempDir()
	w := NewWriter(outDir, "stable", "main")

	ix := NewIndex()
	require.True(t, ix.Add(makeEntry(t, "tool", "1.0", "amd64")))

	files, err := w.WriteIndexes(ix)
	require.NoError(t, err)

	err = w.WriteRelease(&ReleaseData{
		Origin:        "Test",
		Label:         "Test",
		Suite:         "stable",
		Codename:      "stable",
		Architectures: ix.Architectures(),
		Components:    []string{"main"},
		Files:         files,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(w.SuiteDir(), "Release"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Architectures: amd64\n")
	assert.Contains(t, string(data), "main/binary-amd64/Packages.gz")
}

func TestWriter_PoolFilePath(t *testing.T) {
	w := NewWriter("/out", "stable", "main")
	got := w.PoolFilePath("pool/main/t/tool/tool_1.0_amd64.deb")
	assert.Equal(t, filepath.Join("/out", "pool", "main", "t", "tool", "tool_1.0_amd64.deb"), got)
}
