// Package repo builds the on-disk layout of a static APT repository:
// the pool of .deb files, the per-architecture Packages indices, and
// the suite Release file.
package repo

import (
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/mietzen/debrepo/pkg/deb"
)

// Entry is one .deb in the repository: its control stanza plus the
// fields computed from the pool file itself.
type Entry struct {
	Control  *deb.Control
	Filename string // pool-relative path, forward slashes
	Size     int64
	MD5      string
	SHA1     string
	SHA256   string
}

// Render emits the entry in Packages-index format: the original
// control stanza with Filename, Size and checksum fields appended.
func (e *Entry) Render() string {
	var sb strings.Builder

	stanza := &deb.Control{Fields: append([]deb.Field(nil), e.Control.Fields...)}
	stanza.Set("Filename", e.Filename)
	stanza.Set("Size", strconv.FormatInt(e.Size, 10))
	stanza.Set("MD5sum", e.MD5)
	stanza.Set("SHA1", e.SHA1)
	stanza.Set("SHA256", e.SHA256)

	stanza.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

// Index collects entries and groups them into architecture buckets.
type Index struct {
	entries []*Entry
	seen    map[string]bool
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{seen: map[string]bool{}}
}

// Add inserts an entry unless an entry with the same Package, Version
// and Architecture is already present. It reports whether the entry
// was added.
func (ix *Index) Add(e *Entry) bool {
	key := e.Control.Package() + "\x00" + e.Control.Version() + "\x00" + e.Control.Architecture()
	if ix.seen[key] {
		return false
	}
	ix.seen[key] = true
	ix.entries = append(ix.entries, e)
	return true
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Buckets returns the per-architecture entry lists. Entries with
// Architecture "all" are appended to every concrete bucket and also
// keep their own "all" bucket. Each bucket is sorted by package name,
// version, then filename so regeneration is deterministic.
func (ix *Index) Buckets() map[string][]*Entry {
	buckets := map[string][]*Entry{}
	var allEntries []*Entry

	for _, e := range ix.entries {
		arch := e.Control.Architecture()
		buckets[arch] = append(buckets[arch], e)
		if arch == "all" {
			allEntries = append(allEntries, e)
		}
	}

	if len(allEntries) > 0 {
		for arch := range buckets {
			if arch == "all" {
				continue
			}
			buckets[arch] = append(buckets[arch], allEntries...)
		}
	}

	for arch := range buckets {
		sortEntries(buckets[arch])
	}

	return buckets
}

// Architectures returns the sorted list of bucket names.
func (ix *Index) Architectures() []string {
	buckets := ix.Buckets()
	archs := make([]string, 0, len(buckets))
	for arch := range buckets {
		archs = append(archs, arch)
	}
	sort.Strings(archs)
	return archs
}

func sortEntries(entries []*Entry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if p1, p2 := a.Control.Package(), b.Control.Package(); p1 != p2 {
			return p1 < p2
		}
		if v1, v2 := a.Control.Version(), b.Control.Version(); v1 != v2 {
			return v1 < v2
		}
		return a.Filename < b.Filename
	})
}

// PoolPath returns the pool-relative location for an asset, following
// the Debian pool convention: pool/<component>/<initial>/<package>/
// where <initial> is the first letter of the package name, or the
// four-character "libX" prefix for library packages.
func PoolPath(component, pkgName, assetName string) string {
	initial := pkgName[:1]
	if strings.HasPrefix(pkgName, "lib") && len(pkgName) > 3 {
		initial = pkgName[:4]
	}
	return path.Join("pool", component, initial, pkgName, assetName)
}
