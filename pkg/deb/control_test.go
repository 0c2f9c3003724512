package deb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleControl = `Package: lazygit
Version: 0.44.1
Architecture: amd64
Maintainer: Jesse Duffield <jesse@example.com>
Installed-Size: 21480
Section: default
Priority: extra
Homepage: https://github.com/jesseduffield/lazygit
Description: A simple terminal UI for git commands
 Supports staging individual lines.
 .
 And much more.
`

func TestParseControl(t *testing.T) {
	ctrl, err := ParseControl(strings.NewReader(sampleControl))
	require.NoError(t, err)

	assert.Equal(t, "lazygit", ctrl.Package())
	assert.Equal(t, "0.44.1", ctrl.Version())
	assert.Equal(t, "amd64", ctrl.Architecture())
	assert.Equal(t, "Jesse Duffield <jesse@example.com>", ctrl.Get("Maintainer"))

	// Multi-line description with dot continuation lines preserved.
	assert.Equal(t, "A simple terminal UI for git commands\nSupports staging individual lines.\n.\nAnd much more.", ctrl.Get("Description"))

	// Field order must survive for re-emission.
	keys := make([]string, len(ctrl.Fields))
	for i, f := range ctrl.Fields {
		keys[i] = f.Key
	}
	assert.Equal(t, []string{"Package", "Version", "Architecture", "Maintainer", "Installed-Size", "Section", "Priority", "Homepage", "Description"}, keys)
}

func TestParseControl_RoundTrip(t *testing.T) {
	ctrl, err := ParseControl(strings.NewReader(sampleControl))
	require.NoError(t, err)
	assert.Equal(t, sampleControl, ctrl.String())
}

func TestParseControl_CaseInsensitiveGet(t *testing.T) {
	ctrl, err := ParseControl(strings.NewReader("Package: a\nVersion: 1\narchitecture: all\n"))
	require.NoError(t, err)
	assert.Equal(t, "all", ctrl.Get("Architecture"))
	assert.Equal(t, "a", ctrl.Get("package"))
}

func TestParseControl_StopsAtStanzaBoundary(t *testing.T) {
	input := "Package: first\nVersion: 1\nArchitecture: amd64\n\nPackage: second\nVersion: 2\nArchitecture: arm64\n"
	ctrl, err := ParseControl(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "first", ctrl.Package())
}

func TestParseControl_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"only blank lines", "\n\n"},
		{"no colon", "Package lazygit\n"},
		{"empty key", ": value\n"},
		{"leading continuation", " orphan line\nPackage: a\n"},
		{"duplicate field", "Package: a\nPackage: b\nVersion: 1\nArchitecture: all\n"},
		{"duplicate field different case", "Package: a\npackage: b\nVersion: 1\nArchitecture: all\n"},
		{"missing package", "Version: 1\nArchitecture: all\n"},
		{"missing version", "Package: a\nArchitecture: all\n"},
		{"missing architecture", "Package: a\nVersion: 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseControl(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestControl_Set(t *testing.T) {
	ctrl, err := ParseControl(strings.NewReader("Package: a\nVersion: 1\nArchitecture: all\n"))
	require.NoError(t, err)

	ctrl.Set("Filename", "pool/main/a/a/a_1_all.deb")
	assert.Equal(t, "pool/main/a/a/a_1_all.deb", ctrl.Get("Filename"))

	ctrl.Set("Version", "2")
	assert.Equal(t, "2", ctrl.Version())
	assert.Len(t, ctrl.Fields, 4, "Set on an existing key must not append")
}
