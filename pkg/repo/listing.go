package repo

import (
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// ListingOptions configures WriteListings.
type ListingOptions struct {
	// Exclude holds glob patterns matched against each entry's
	// slash-separated path relative to the root. Matching entries are
	// neither listed nor descended into.
	Exclude []string

	// IncludeDot lists entries whose name starts with a dot. They are
	// skipped by default.
	IncludeDot bool
}

// listingRow is one table row of a directory listing.
type listingRow struct {
	Href     string
	Name     string
	Size     string
	Modified string
}

type listingData struct {
	Title  string
	Parent bool
	Rows   []listingRow
}

var listingTmpl = template.Must(template.New("listing").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Directory Listing</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            margin: 20px;
        }
        table {
            width: 100%;
            border-collapse: collapse;
        }
        th, td {
            padding: 10px;
            border: 1px solid #ddd;
            text-align: left;
        }
        th {
            background-color: #f4f4f4;
        }
        a {
            text-decoration: none;
            color: #007bff;
        }
        a:hover {
            text-decoration: underline;
        }
    </style>
</head>
<body>
<h1>Index of {{.Title}}</h1>
<table>
<tr><th>Name</th><th>Size</th><th>Last Modified (UTC)</th></tr>
{{if .Parent}}<tr><td><a href="../index.html">..</a></td><td>-</td><td>-</td></tr>
{{end -}}
{{range .Rows}}<tr><td><a href="{{.Href}}">{{.Name}}</a></td><td>{{.Size}}</td><td>{{.Modified}}</td></tr>
{{end -}}
</table>
</body>
</html>
`))

// WriteListings walks root and writes an index.html directory listing
// into every directory. Static hosts like GitHub Pages serve no
// listings of their own, so without these a browser cannot navigate
// the pool.
func WriteListings(root string, opts ListingOptions) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if rel != "." && excluded(rel, d.Name(), opts) {
			return fs.SkipDir
		}

		return writeListing(p, rel, opts)
	})
}

// writeListing renders one directory's index.html.
func writeListing(dir, rel string, opts ListingOptions) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}

	title := "/"
	if rel != "." {
		title = "/" + rel
	}
	data := listingData{Title: title, Parent: rel != "."}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	// Directories first, matching what a browser of an FTP-style
	// listing expects.
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if excluded(path.Join(rel, e.Name()), e.Name(), opts) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return err
		}
		data.Rows = append(data.Rows, listingRow{
			Href:     "./" + e.Name() + "/index.html",
			Name:     e.Name() + "/",
			Size:     "-",
			Modified: info.ModTime().UTC().Format("2006-01-02 15:04:05"),
		})
	}

	for _, e := range entries {
		if e.IsDir() || e.Name() == "index.html" {
			continue
		}
		if excluded(path.Join(rel, e.Name()), e.Name(), opts) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return err
		}
		data.Rows = append(data.Rows, listingRow{
			Href:     e.Name(),
			Name:     e.Name(),
			Size:     readableSize(info.Size()),
			Modified: info.ModTime().UTC().Format("2006-01-02 15:04:05"),
		})
	}

	f, err := os.Create(filepath.Join(dir, "index.html"))
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	defer f.Close()

	if err := listingTmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to render listing for %s: %w", dir, err)
	}
	return f.Close()
}

// excluded reports whether an entry should be left out of the listings.
func excluded(rel, name string, opts ListingOptions) bool {
	if !opts.IncludeDot && strings.HasPrefix(name, ".") {
		return true
	}
	for _, pattern := range opts.Exclude {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := path.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// readableSize formats a byte count as B through PiB with one decimal.
func readableSize(size int64) string {
	if size < 1024 {
		return fmt.Sprintf("%d B", size)
	}
	v := float64(size)
	for _, unit := range []string{"KiB", "MiB", "GiB", "TiB", "PiB"} {
		v /= 1024
		if v < 1024 || unit == "PiB" {
			return fmt.Sprintf("%.1f %s", v, unit)
		}
	}
	return "" // unreachable
}
