package permalink

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Built-in format names.
const (
	WithPrefix   = "with_prefix"
	Postname     = "postname"
	DayAndName   = "day_and_name"
	MonthAndName = "month_and_name"
	Numeric      = "numeric"
)

var builtins = []Format{
	MustParse(WithPrefix, "{prefix}/{postname}"),
	MustParse(Postname, "{postname}"),
	MustParse(DayAndName, "{year}/{monthnum}/{day}/{postname}"),
	MustParse(MonthAndName, "{year}/{monthnum}/{postname}"),
	MustParse(Numeric, "archives/{post_id}"),
}

// Registry is a read-only set of named formats. Build it once at startup and
// share it freely.
type Registry struct {
	formats map[string]Format
}

// NewRegistry returns a registry holding the built-in formats plus extra.
// Extra formats replace built-ins of the same name.
func NewRegistry(extra ...Format) *Registry {
	r := &Registry{formats: make(map[string]Format, len(builtins)+len(extra))}
	for _, f := range builtins {
		r.formats[f.Name] = f
	}
	for _, f := range extra {
		r.formats[f.Name] = f
	}
	return r
}

// Lookup returns the format registered under name.
func (r *Registry) Lookup(name string) (Format, error) {
	f, ok := r.formats[name]
	if !ok {
		return Format{}, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return f, nil
}

// Formats returns every registered format sorted by name.
func (r *Registry) Formats() []Format {
	out := make([]Format, 0, len(r.formats))
	for _, f := range r.formats {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// fileConfig is the YAML layout of a custom formats file:
//
//	formats:
//	  archive: "archive/{year}/{postname}"
type fileConfig struct {
	Formats map[string]string `yaml:"formats"`
}

// LoadFile reads custom formats from a YAML file.
func LoadFile(path string) ([]Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read permalink file: %w", err)
	}
	return ParseYAML(data)
}

// ParseYAML compiles the formats declared in a YAML document.
func ParseYAML(data []byte) ([]Format, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse permalink yaml: %w", err)
	}

	names := make([]string, 0, len(fc.Formats))
	for name := range fc.Formats {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Format, 0, len(names))
	for _, name := range names {
		f, err := ParseTemplate(name, fc.Formats[name])
		if err != nil {
			return nil, fmt.Errorf("format %q: %w", name, err)
		}
		out = append(out, f)
	}
	return out, nil
}
