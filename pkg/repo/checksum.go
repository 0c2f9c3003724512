package repo

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
)

// Checksums holds the digests and size of one file.
type Checksums struct {
	MD5    string
	SHA1   string
	SHA256 string
	Size   int64
}

// ChecksumFile computes MD5, SHA1 and SHA256 of a file in one pass.
func ChecksumFile(path string) (*Checksums, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return ChecksumReader(f)
}

// ChecksumReader computes MD5, SHA1 and SHA256 of a stream in one pass.
func ChecksumReader(r io.Reader) (*Checksums, error) {
	w := NewChecksumWriter()
	if _, err := io.Copy(w, r); err != nil {
		return nil, fmt.Errorf("failed to checksum: %w", err)
	}
	return w.Sums(), nil
}

// ChecksumWriter accumulates MD5, SHA1 and SHA256 over everything
// written to it, so digests can be computed while the data is being
// streamed somewhere else.
type ChecksumWriter struct {
	md5h    hash.Hash
	sha1h   hash.Hash
	sha256h hash.Hash
	size    int64
}

// NewChecksumWriter creates an empty ChecksumWriter.
func NewChecksumWriter() *ChecksumWriter {
	return &ChecksumWriter{
		md5h:    md5.New(),
		sha1h:   sha1.New(),
		sha256h: sha256.New(),
	}
}

// Write feeds p into all three digests. It never returns an error.
func (w *ChecksumWriter) Write(p []byte) (int, error) {
	w.md5h.Write(p)
	w.sha1h.Write(p)
	w.sha256h.Write(p)
	w.size += int64(len(p))
	return len(p), nil
}

// Sums returns the digests of everything written so far.
func (w *ChecksumWriter) Sums() *Checksums {
	return &Checksums{
		MD5:    hex.EncodeToString(w.md5h.Sum(nil)),
		SHA1:   hex.EncodeToString(w.sha1h.Sum(nil)),
		SHA256: hex.EncodeToString(w.sha256h.Sum(nil)),
		Size:   w.size,
	}
}
