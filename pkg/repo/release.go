package repo

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"
)

// ReleaseData is everything the Release file template needs.
type ReleaseData struct {
	Origin        string
	Label         string
	Suite         string
	Codename      string
	Description   string
	Architectures []string
	Components    []string
	Date          time.Time
	Files         []IndexFile
}

// IndexFile is one file listed in the Release checksum blocks, with a
// path relative to the suite directory.
type IndexFile struct {
	Path      string
	Checksums Checksums
}

var releaseTmpl = template.Must(template.New("release").Funcs(template.FuncMap{
	"join":    strings.Join,
	"debDate": func(t time.Time) string { return t.UTC().Format("Mon, 02 Jan 2006 15:04:05 MST") },
	"line": func(sum string, f IndexFile) string {
		return fmt.Sprintf(" %s %16d %s", sum, f.Checksums.Size, f.Path)
	},
}).Parse(`Origin: {{ .Origin }}
Label: {{ .Label }}
Suite: {{ .Suite }}
Codename: {{ .Codename }}
Date: {{ debDate .Date }}
Architectures: {{ join .Architectures " " }}
Components: {{ join .Components " " }}
{{- if .Description }}
Description: {{ .Description }}
{{- end }}
MD5Sum:
{{- range .Files }}
{{ line .Checksums.MD5 . }}
{{- end }}
SHA1:
{{- range .Files }}
{{ line .Checksums.SHA1 . }}
{{- end }}
SHA256:
{{- range .Files }}
{{ line .Checksums.SHA256 . }}
{{- end }}
`))

// WriteRelease renders the suite Release file.
func WriteRelease(w io.Writer, data *ReleaseData) error {
	if data.Date.IsZero() {
		data.Date = time.Now()
	}
	if err := releaseTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render Release: %w", err)
	}
	return nil
}
