// Package deb extracts and parses the control metadata embedded in
// Debian binary packages.
package deb

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Field is one key/value pair of a control stanza. Multi-line values
// store continuation lines newline-joined, without their leading space.
type Field struct {
	Key   string
	Value string
}

// Control is a parsed control stanza. Field order is preserved so the
// stanza can be re-emitted byte-for-byte into a Packages index.
type Control struct {
	Fields []Field
}

// Get returns the value of the named field, or "" when absent. Key
// comparison is case-insensitive per Debian policy.
func (c *Control) Get(key string) string {
	for _, f := range c.Fields {
		if strings.EqualFold(f.Key, key) {
			return f.Value
		}
	}
	return ""
}

// Set replaces the named field, or appends it when absent.
func (c *Control) Set(key, value string) {
	for i, f := range c.Fields {
		if strings.EqualFold(f.Key, key) {
			c.Fields[i].Value = value
			return
		}
	}
	c.Fields = append(c.Fields, Field{Key: key, Value: value})
}

// Package returns the Package field.
func (c *Control) Package() string { return c.Get("Package") }

// Version returns the Version field.
func (c *Control) Version() string { return c.Get("Version") }

// Architecture returns the Architecture field.
func (c *Control) Architecture() string { return c.Get("Architecture") }

// WriteTo renders the stanza in control-file format, continuation
// lines re-indented with a single space. It ends with a newline after
// the final field and no trailing blank line.
func (c *Control) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, f := range c.Fields {
		lines := strings.Split(f.Value, "\n")
		n, err := fmt.Fprintf(w, "%s: %s\n", f.Key, lines[0])
		total += int64(n)
		if err != nil {
			return total, err
		}
		for _, cont := range lines[1:] {
			n, err := fmt.Fprintf(w, " %s\n", cont)
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

// String renders the stanza in control-file format.
func (c *Control) String() string {
	var sb strings.Builder
	c.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

// ParseControl parses the first stanza of a control file: Key: value
// lines, with lines starting in space or tab continuing the previous
// field. Duplicate keys are an error.
func ParseControl(r io.Reader) (*Control, error) {
	ctrl := &Control{}
	seen := map[string]bool{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		// Blank line ends the stanza.
		if strings.TrimSpace(line) == "" {
			if len(ctrl.Fields) > 0 {
				break
			}
			continue
		}

		// Comment lines are legal in deb-control sources; dpkg strips
		// them from binary packages but tolerate them anyway.
		if strings.HasPrefix(line, "#") {
			continue
		}

		if line[0] == ' ' || line[0] == '\t' {
			if len(ctrl.Fields) == 0 {
				return nil, fmt.Errorf("continuation line before any field: %q", line)
			}
			last := &ctrl.Fields[len(ctrl.Fields)-1]
			last.Value += "\n" + strings.TrimLeft(line, " \t")
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("malformed control line: %q", line)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("malformed control line: %q", line)
		}
		lower := strings.ToLower(key)
		if seen[lower] {
			return nil, fmt.Errorf("duplicate control field %q", key)
		}
		seen[lower] = true

		ctrl.Fields = append(ctrl.Fields, Field{Key: key, Value: strings.TrimSpace(value)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading control data: %w", err)
	}

	if len(ctrl.Fields) == 0 {
		return nil, fmt.Errorf("empty control stanza")
	}

	// These three fields drive bucketing and the pool layout; a package
	// missing any of them cannot be indexed.
	for _, required := range []string{"Package", "Version", "Architecture"} {
		if ctrl.Get(required) == "" {
			return nil, fmt.Errorf("control stanza missing required field %s", required)
		}
	}

	return ctrl, nil
}
