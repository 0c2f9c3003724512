package config

import (
	"fmt"
	"os"
)

// scaffold is the packages.yml template written by `debrepo init`.
const scaffold = `# debrepo configuration.
#
# Each entry under "packages" names a GitHub repository whose release
# assets ending in .deb are pulled into the APT repository. "version"
# is either "latest" (the latest non-prerelease release) or an exact
# release tag. "asset_regex" optionally narrows the matched assets.

origin: My APT Repo
suite: stable
component: main

packages:
  - repo: jesseduffield/lazygit
    version: latest
    asset_regex: "Linux.*"
`

// WriteScaffold writes a commented starter packages.yml at path. It
// refuses to overwrite an existing file.
func WriteScaffold(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists, refusing to overwrite", path)
	}

	if err := os.WriteFile(path, []byte(scaffold), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
