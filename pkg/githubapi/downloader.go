package githubapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// ProgressCallback is called with download progress updates.
type ProgressCallback func(downloaded, total int64)

// DownloadOptions configures a single asset download.
type DownloadOptions struct {
	URL          string
	DestPath     string
	ExpectedSize int64     // Size the API reported for the asset; 0 skips the check
	Tee          io.Writer // optional extra sink, receives the bytes as they stream
	OnProgress   ProgressCallback
}

// Downloader fetches release assets over HTTP.
type Downloader struct {
	client *http.Client
	token  string
}

// NewDownloader creates an asset downloader. The token is optional;
// public release assets do not require one.
func NewDownloader(token string) *Downloader {
	return &Downloader{
		client: &http.Client{
			Timeout: 0, // No timeout for large downloads
		},
		token: token,
	}
}

// Download streams an asset to opts.DestPath. The file is written next
// to the destination with a ".downloading" suffix and renamed into
// place only after the size check passes, so an interrupted run never
// leaves a truncated file at the final path.
func (d *Downloader) Download(ctx context.Context, opts DownloadOptions) error {
	destDir := filepath.Dir(opts.DestPath)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	tmpPath := opts.DestPath + ".downloading"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	renamed := false
	defer func() {
		out.Close()
		if !renamed {
			os.Remove(tmpPath)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/octet-stream")
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}

	reader := &progressReader{
		reader:     resp.Body,
		total:      resp.ContentLength,
		onProgress: opts.OnProgress,
	}

	var sink io.Writer = out
	if opts.Tee != nil {
		sink = io.MultiWriter(out, opts.Tee)
	}

	written, err := io.Copy(sink, reader)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	if opts.ExpectedSize > 0 && written != opts.ExpectedSize {
		return fmt.Errorf("size mismatch for %s: expected %d bytes, got %d", filepath.Base(opts.DestPath), opts.ExpectedSize, written)
	}

	// Close file before rename
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, opts.DestPath); err != nil {
		return fmt.Errorf("failed to move file: %w", err)
	}
	renamed = true

	return nil
}

// progressReader wraps a reader and reports progress.
type progressReader struct {
	reader     io.Reader
	total      int64
	downloaded int64
	onProgress ProgressCallback
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.downloaded += int64(n)
	if r.onProgress != nil {
		r.onProgress(r.downloaded, r.total)
	}
	return n, err
}
