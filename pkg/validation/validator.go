// Package validation provides packages.yml validation for debrepo.
// Unlike config.Load, which fails on the first problem, the validator
// collects every issue so a CI run can report them all at once.
package validation

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Severity represents the severity of a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue represents a validation issue found in the config file.
type Issue struct {
	File     string   `json:"file"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Result holds all validation results.
type Result struct {
	Issues []Issue `json:"issues"`
}

// HasErrors returns true if there are any error-level issues.
func (r *Result) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of error-level issues.
func (r *Result) ErrorCount() int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			count++
		}
	}
	return count
}

// WarningCount returns the number of warning-level issues.
func (r *Result) WarningCount() int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityWarning {
			count++
		}
	}
	return count
}

// rawConfig mirrors the config schema loosely so validation can keep
// going on files the strict loader rejects.
type rawConfig struct {
	Origin    string `yaml:"origin"`
	Suite     string `yaml:"suite"`
	Component string `yaml:"component"`
	Packages  []struct {
		Repo       string `yaml:"repo"`
		Version    string `yaml:"version"`
		AssetRegex string `yaml:"asset_regex"`
	} `yaml:"packages"`
}

var (
	repoRe     = regexp.MustCompile(`^[A-Za-z0-9._-]+/[A-Za-z0-9._-]+$`)
	pathwordRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
)

// ValidateFile validates a packages.yml file and returns every issue
// found.
func ValidateFile(path string) *Result {
	result := &Result{Issues: []Issue{}}

	data, err := os.ReadFile(path)
	if err != nil {
		result.add(path, "", fmt.Sprintf("cannot read file: %v", err), SeverityError)
		return result
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		result.add(path, "", fmt.Sprintf("invalid YAML: %v", err), SeverityError)
		return result
	}

	// Strict decode catches typos the loose decode swallows.
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var strict rawConfig
	if err := dec.Decode(&strict); err != nil {
		result.add(path, "", fmt.Sprintf("unknown or misplaced key: %v", err), SeverityError)
	}

	if raw.Suite != "" && !validPathword(raw.Suite) {
		result.add(path, "suite", fmt.Sprintf("suite %q must not contain path separators or spaces", raw.Suite), SeverityError)
	}
	if raw.Component != "" && !validPathword(raw.Component) {
		result.add(path, "component", fmt.Sprintf("component %q must not contain path separators or spaces", raw.Component), SeverityError)
	}

	if len(raw.Packages) == 0 {
		result.add(path, "packages", "no packages defined", SeverityError)
		return result
	}

	seen := map[string]bool{}
	for i, pkg := range raw.Packages {
		field := fmt.Sprintf("packages[%d]", i)

		if pkg.Repo == "" {
			result.add(path, field+".repo", "repo is required", SeverityError)
			continue
		}
		if !repoRe.MatchString(pkg.Repo) {
			result.add(path, field+".repo", fmt.Sprintf("repo %q must be of the form owner/name", pkg.Repo), SeverityError)
			continue
		}

		version := pkg.Version
		if version == "" {
			version = "latest"
		}
		key := pkg.Repo + "@" + version
		if seen[key] {
			result.add(path, field, fmt.Sprintf("duplicate entry for %s", key), SeverityWarning)
		}
		seen[key] = true

		if pkg.AssetRegex != "" {
			if _, err := regexp.Compile(pkg.AssetRegex); err != nil {
				result.add(path, field+".asset_regex", fmt.Sprintf("invalid regular expression: %v", err), SeverityError)
			} else if strings.HasSuffix(pkg.AssetRegex, `\.deb$`) {
				// The .deb suffix is always enforced; anchoring it in
				// the regex is harmless but usually a misunderstanding.
				result.add(path, field+".asset_regex", "the .deb suffix is matched automatically", SeverityWarning)
			}
		}
	}

	return result
}

// validPathword reports whether a value is safe to use as a single path
// segment under the output directory.
func validPathword(value string) bool {
	return value != "." && value != ".." && pathwordRe.MatchString(value)
}

func (r *Result) add(file, field, message string, severity Severity) {
	r.Issues = append(r.Issues, Issue{File: file, Field: field, Message: message, Severity: severity})
}
