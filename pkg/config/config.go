// Package config loads and validates the packages.yml configuration
// that names the upstream GitHub repositories whose release assets are
// assembled into the APT repository.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the configuration file debrepo looks for when no
// --config flag is given.
const DefaultFileName = "packages.yml"

var (
	// ErrNoPackages is returned when the configuration defines no packages.
	ErrNoPackages = errors.New("packages.yml defines no packages")

	repoRe = regexp.MustCompile(`^[A-Za-z0-9._-]+/[A-Za-z0-9._-]+$`)

	// pathwordRe restricts values that become path segments under the
	// output directory. A suite of "../.." would otherwise escape it.
	pathwordRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
)

// Config is the top-level packages.yml schema.
type Config struct {
	Origin      string    `yaml:"origin"`      // Release "Origin" field, default "debrepo"
	Label       string    `yaml:"label"`       // Release "Label" field, default: origin
	Suite       string    `yaml:"suite"`       // dists/<suite>, default "stable"
	Codename    string    `yaml:"codename"`    // Release "Codename" field, default: suite
	Component   string    `yaml:"component"`   // default "main"
	Description string    `yaml:"description"` // optional Release "Description" field
	Packages    []Package `yaml:"packages"`
}

// Package names one upstream GitHub repository to pull .deb assets from.
type Package struct {
	Repo       string `yaml:"repo"`        // "owner/name", required
	Version    string `yaml:"version"`     // release tag or "latest" (default)
	AssetRegex string `yaml:"asset_regex"` // optional filter on asset file names

	assetRe *regexp.Regexp
}

// Owner returns the owner half of the "owner/name" repo slug.
func (p *Package) Owner() string {
	owner, _, _ := strings.Cut(p.Repo, "/")
	return owner
}

// Name returns the repository half of the "owner/name" repo slug.
func (p *Package) Name() string {
	_, name, _ := strings.Cut(p.Repo, "/")
	return name
}

// MatchAsset reports whether an asset file name passes the package's
// filter: the fixed .deb suffix plus the optional asset_regex.
func (p *Package) MatchAsset(name string) bool {
	if !strings.HasSuffix(name, ".deb") {
		return false
	}
	if p.assetRe == nil {
		return true
	}
	return p.assetRe.MatchString(name)
}

// Load reads and decodes a packages.yml file, applies defaults and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes packages.yml bytes, applies defaults and validates the
// result. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyDefaults fills in the optional repository metadata fields.
func (c *Config) ApplyDefaults() {
	if c.Origin == "" {
		c.Origin = "debrepo"
	}
	if c.Label == "" {
		c.Label = c.Origin
	}
	if c.Suite == "" {
		c.Suite = "stable"
	}
	if c.Codename == "" {
		c.Codename = c.Suite
	}
	if c.Component == "" {
		c.Component = "main"
	}
	for i := range c.Packages {
		if c.Packages[i].Version == "" {
			c.Packages[i].Version = "latest"
		}
	}
}

// Validate checks the configuration for structural errors and compiles
// each asset_regex. It must be called before MatchAsset is used.
func (c *Config) Validate() error {
	if err := validPathword("suite", c.Suite); err != nil {
		return err
	}
	if err := validPathword("component", c.Component); err != nil {
		return err
	}

	if len(c.Packages) == 0 {
		return ErrNoPackages
	}

	for i := range c.Packages {
		pkg := &c.Packages[i]

		if pkg.Repo == "" {
			return fmt.Errorf("packages[%d]: repo is required", i)
		}
		if !repoRe.MatchString(pkg.Repo) {
			return fmt.Errorf("packages[%d]: repo %q must be of the form owner/name", i, pkg.Repo)
		}

		if pkg.AssetRegex != "" {
			re, err := regexp.Compile(pkg.AssetRegex)
			if err != nil {
				return fmt.Errorf("packages[%d] (%s): invalid asset_regex: %w", i, pkg.Repo, err)
			}
			pkg.assetRe = re
		}
	}

	return nil
}

// validPathword rejects values that cannot safely form a single path
// segment under the output directory.
func validPathword(field, value string) error {
	if value == "." || value == ".." || !pathwordRe.MatchString(value) {
		return fmt.Errorf("%s %q must contain only letters, digits, dots, underscores and dashes", field, value)
	}
	return nil
}
