package repo

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRelease(t *testing.T) {
	data := &ReleaseData{
		Origin:        "Test Repo",
		Label:         "Test Repo",
		Suite:         "stable",
		Codename:      "stable",
		Description:   "Packages mirrored from GitHub releases",
		Architectures: []string{"all", "amd64", "arm64"},
		Components:    []string{"main"},
		Date:          time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Files: []IndexFile{
			{Path: "main/binary-amd64/Packages", Checksums: Checksums{MD5: "aa", SHA1: "bb", SHA256: "cc", Size: 1234}},
			{Path: "main/binary-amd64/Packages.gz", Checksums: Checksums{MD5: "dd", SHA1: "ee", SHA256: "ff", Size: 321}},
		},
	}

	var sb strings.Builder
	err := WriteRelease(&sb, data)
	require.NoError(t, err)
	out := sb.String()

	assert.Contains(t, out, "Origin: Test Repo\n")
	assert.Contains(t, out, "Suite: stable\n")
	assert.Contains(t, out, "Codename: stable\n")
	assert.Contains(t, out, "Date: Sun, 30 Aug 2026 12:00:00 UTC\n")
	assert.Contains(t, out, "Architectures: all amd64 arm64\n")
	assert.Contains(t, out, "Components: main\n")
	assert.Contains(t, out, "Description: Packages mirrored from GitHub releases\n")

	// Checksum blocks: one line per file per algorithm, apt-ftparchive
	// column layout (16-wide right-aligned size).
	md5Line := fmt.Sprintf(" aa %16d main/binary-amd64/Packages\n", 1234)
	gzLine := fmt.Sprintf(" dd %16d main/binary-amd64/Packages.gz\n", 321)
	assert.Contains(t, out, "MD5Sum:\n"+md5Line)
	assert.Contains(t, out, gzLine)
	assert.Contains(t, out, fmt.Sprintf("SHA1:\n bb %16d main/binary-amd64/Packages\n", 1234))
	assert.Contains(t, out, fmt.Sprintf("SHA256:\n cc %16d main/binary-amd64/Packages\n", 1234))

	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestWriteRelease_NoDescription(t *testing.T) {
	data := &ReleaseData{
		Origin:        "r",
		Label:         "r",
		Suite:         "stable",
		Codename:      "stable",
		Architectures: []string{"amd64"},
		Components:    []string{"main"},
		Date:          time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	var sb strings.Builder
	require.NoError(t, WriteRelease(&sb, data))
	assert.NotContains(t, sb.String(), "Description:")
}

func TestWriteRelease_DefaultsDate(t *testing.T) {
	data := &ReleaseData{
		Origin:        "r",
		Label:         "r",
		Suite:         "stable",
		Codename:      "stable",
		Architectures: []string{"amd64"},
		Components:    []string{"main"},
	}

	var sb strings.Builder
	require.NoError(t, WriteRelease(&sb, data))
	assert.NotContains(t, sb.String(), "Date: Mon, 01 Jan 0001")
}
