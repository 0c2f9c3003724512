package deb

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/blakesmith/ar"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// ReadControl extracts and parses the control stanza from a .deb
// archive stream. A .deb is an ar archive containing a debian-binary
// member and a control.tar member compressed with gzip, xz, zstd, or
// not at all.
func ReadControl(r io.Reader) (*Control, error) {
	arReader := ar.NewReader(r)

	for {
		hdr, err := arReader.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("no control.tar member found")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read ar archive: %w", err)
		}

		// GNU ar pads member names with trailing spaces, some writers
		// append a trailing slash.
		name := strings.TrimRight(hdr.Name, " /")
		if !strings.HasPrefix(name, "control.tar") {
			continue
		}

		decompressed, closeFn, err := decompress(name, arReader)
		if err != nil {
			return nil, err
		}
		defer closeFn()

		return controlFromTar(decompressed)
	}
}

// ReadControlFile extracts the control stanza from a .deb on disk.
func ReadControlFile(path string) (*Control, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	ctrl, err := ReadControl(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ctrl, nil
}

// decompress wraps r with the decompressor the member suffix calls for.
func decompress(name string, r io.Reader) (io.Reader, func(), error) {
	switch {
	case strings.HasSuffix(name, ".gz"):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open gzip control member: %w", err)
		}
		return gz, func() { gz.Close() }, nil
	case strings.HasSuffix(name, ".xz"):
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open xz control member: %w", err)
		}
		return xzr, func() {}, nil
	case strings.HasSuffix(name, ".zst"):
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open zstd control member: %w", err)
		}
		return zr.IOReadCloser(), func() { zr.Close() }, nil
	case strings.HasSuffix(name, ".tar"):
		return r, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported control member compression: %s", name)
	}
}

// controlFromTar walks a control tarball for the ./control file.
func controlFromTar(r io.Reader) (*Control, error) {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("control.tar has no control file")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read control.tar: %w", err)
		}

		name := strings.TrimPrefix(hdr.Name, "./")
		if name != "control" {
			continue
		}

		ctrl, err := ParseControl(tr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse control file: %w", err)
		}
		return ctrl, nil
	}
}
