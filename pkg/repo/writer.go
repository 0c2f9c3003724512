package repo

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
)

// Writer materializes the dists/<suite> tree under an output directory.
type Writer struct {
	OutputDir string
	Suite     string
	Component string
}

// NewWriter creates a repository writer.
func NewWriter(outputDir, suite, component string) *Writer {
	return &Writer{OutputDir: outputDir, Suite: suite, Component: component}
}

// SuiteDir returns the absolute dists directory for the suite.
func (w *Writer) SuiteDir() string {
	return filepath.Join(w.OutputDir, "dists", w.Suite)
}

// PoolFilePath returns the absolute location for a pool-relative path.
func (w *Writer) PoolFilePath(poolRel string) string {
	return filepath.Join(w.OutputDir, filepath.FromSlash(poolRel))
}

// WriteIndexes rebuilds the suite's index tree from the index: one
// binary-<arch> directory per bucket holding Packages and Packages.gz.
// The previous dists/<suite> subtree is removed first so stale buckets
// from earlier runs cannot survive. It returns the written files with
// their checksums, sorted by path, ready for the Release file.
func (w *Writer) WriteIndexes(ix *Index) ([]IndexFile, error) {
	suiteDir := w.SuiteDir()
	if err := os.RemoveAll(suiteDir); err != nil {
		return nil, fmt.Errorf("failed to clear %s: %w", suiteDir, err)
	}

	var files []IndexFile

	for arch, entries := range ix.Buckets() {
		archDir := filepath.Join(suiteDir, w.Component, "binary-"+arch)
		if err := os.MkdirAll(archDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", archDir, err)
		}

		rendered := make([]string, len(entries))
		for i, e := range entries {
			rendered[i] = e.Render()
		}
		content := []byte(strings.Join(rendered, "\n"))

		relDir := path.Join(w.Component, "binary-"+arch)

		plain, err := w.writeIndexFile(filepath.Join(archDir, "Packages"), content)
		if err != nil {
			return nil, err
		}
		files = append(files, IndexFile{Path: path.Join(relDir, "Packages"), Checksums: *plain})

		gzContent, err := gzipIndex(content)
		if err != nil {
			return nil, err
		}
		gzSums, err := w.writeIndexFile(filepath.Join(archDir, "Packages.gz"), gzContent)
		if err != nil {
			return nil, err
		}
		files = append(files, IndexFile{Path: path.Join(relDir, "Packages.gz"), Checksums: *gzSums})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// WriteRelease writes dists/<suite>/Release covering the given files.
func (w *Writer) WriteRelease(data *ReleaseData) error {
	if data.Date.IsZero() {
		data.Date = time.Now()
	}

	// The suite directory only exists once WriteIndexes created a
	// bucket; a run where nothing matched still gets a Release file.
	if err := os.MkdirAll(w.SuiteDir(), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", w.SuiteDir(), err)
	}

	f, err := os.Create(filepath.Join(w.SuiteDir(), "Release"))
	if err != nil {
		return fmt.Errorf("failed to create Release: %w", err)
	}
	defer f.Close()

	if err := WriteRelease(f, data); err != nil {
		return err
	}
	return f.Close()
}

func (w *Writer) writeIndexFile(path string, content []byte) (*Checksums, error) {
	if err := os.WriteFile(path, content, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	sums, err := ChecksumReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	return sums, nil
}

// gzipIndex compresses the exact Packages bytes. The gzip header
// carries no mod time so regeneration is byte-stable.
func gzipIndex(content []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(content); err != nil {
		return nil, fmt.Errorf("failed to gzip index: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("failed to gzip index: %w", err)
	}
	return buf.Bytes(), nil
}
