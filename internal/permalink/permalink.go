// Package permalink resolves request paths against configured permalink
// formats and renders canonical post paths from the same formats.
package permalink

import (
	"errors"
	"fmt"
	"strings"
)

// Field names a format can capture.
const (
	FieldPostname = "postname"
	FieldPostID   = "post_id"
	FieldYear     = "year"
	FieldMonth    = "monthnum"
	FieldDay      = "day"

	// prefixToken marks the configured leading segment, e.g. "blog".
	prefixToken = "prefix"
)

var (
	ErrInvalidTemplate = errors.New("invalid permalink template")
	ErrUnknownFormat   = errors.New("unknown permalink format")
	ErrMissingField    = errors.New("missing permalink field")
)

// Match maps field names to the values captured from a path.
type Match map[string]string

// Postname returns the captured post slug, or "".
func (m Match) Postname() string { return m[FieldPostname] }

type segmentKind int

const (
	literal segmentKind = iota
	prefix
	field
)

type segment struct {
	kind  segmentKind
	value string // literal text or field name
}

// Format is a compiled permalink template such as "{prefix}/{postname}".
type Format struct {
	Name     string
	Template string
	segments []segment
}

// Fields returns the names of the fields the format captures, in order.
func (f Format) Fields() []string {
	var out []string
	for _, s := range f.segments {
		if s.kind == field {
			out = append(out, s.value)
		}
	}
	return out
}

// HasPrefix reports whether the format starts with a {prefix} segment.
func (f Format) HasPrefix() bool {
	return len(f.segments) > 0 && f.segments[0].kind == prefix
}

// ParseTemplate compiles template. Segments are separated by "/"; a segment is
// either literal text or a single {name} placeholder. {prefix} may only appear
// first and {postname}, when present, must be last.
func ParseTemplate(name, template string) (Format, error) {
	f := Format{Name: name, Template: template}
	parts := strings.Split(strings.Trim(template, "/"), "/")
	seen := make(map[string]bool)

	for i, p := range parts {
		if p == "" {
			return Format{}, fmt.Errorf("%w %q: empty segment", ErrInvalidTemplate, template)
		}
		if !strings.HasPrefix(p, "{") || !strings.HasSuffix(p, "}") {
			if strings.ContainsAny(p, "{}") {
				return Format{}, fmt.Errorf("%w %q: placeholder must fill a whole segment", ErrInvalidTemplate, template)
			}
			f.segments = append(f.segments, segment{kind: literal, value: p})
			continue
		}

		key := p[1 : len(p)-1]
		switch {
		case key == prefixToken:
			if i != 0 {
				return Format{}, fmt.Errorf("%w %q: {prefix} must be the first segment", ErrInvalidTemplate, template)
			}
			f.segments = append(f.segments, segment{kind: prefix})
			continue
		case !knownField(key):
			return Format{}, fmt.Errorf("%w %q: unknown field {%s}", ErrInvalidTemplate, template, key)
		case seen[key]:
			return Format{}, fmt.Errorf("%w %q: duplicate field {%s}", ErrInvalidTemplate, template, key)
		case key == FieldPostname && i != len(parts)-1:
			return Format{}, fmt.Errorf("%w %q: {postname} must be the last segment", ErrInvalidTemplate, template)
		}
		seen[key] = true
		f.segments = append(f.segments, segment{kind: field, value: key})
	}

	if len(seen) == 0 {
		return Format{}, fmt.Errorf("%w %q: no fields", ErrInvalidTemplate, template)
	}
	return f, nil
}

// MustParse is ParseTemplate for templates known to be valid.
func MustParse(name, template string) Format {
	f, err := ParseTemplate(name, template)
	if err != nil {
		panic(err)
	}
	return f
}

// Resolve matches path against f. When f starts with {prefix} and
// prefixSegment is non-empty, the first path segment must equal it exactly.
// A trailing {postname} captures the whole remaining path. Any mismatch yields
// (nil, false); partial matches are never returned.
func Resolve(path string, f Format, prefixSegment string) (Match, bool) {
	if len(f.segments) == 0 {
		return nil, false
	}
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil, false
	}
	parts := strings.Split(trimmed, "/")

	m := make(Match)
	for i, seg := range f.segments {
		if i >= len(parts) {
			return nil, false
		}
		part := parts[i]
		if part == "" {
			return nil, false
		}

		switch seg.kind {
		case literal:
			if part != seg.value {
				return nil, false
			}
		case prefix:
			if prefixSegment != "" && part != prefixSegment {
				return nil, false
			}
		case field:
			if seg.value == FieldPostname && i == len(f.segments)-1 {
				rest := parts[i:]
				for _, r := range rest {
					if r == "" {
						return nil, false
					}
				}
				m[FieldPostname] = strings.Join(rest, "/")
				return m, true
			}
			if !validField(seg.value, part) {
				return nil, false
			}
			m[seg.value] = part
		}
	}

	if len(parts) != len(f.segments) {
		return nil, false
	}
	return m, true
}

// Build renders the path of a post under f. It is the inverse of Resolve:
// Resolve(Build(f, fields, p), f, p) returns fields restricted to f.Fields().
func Build(f Format, fields map[string]string, prefixSegment string) (string, error) {
	if len(f.segments) == 0 {
		return "", fmt.Errorf("%w: empty format", ErrInvalidTemplate)
	}
	parts := make([]string, 0, len(f.segments))
	for _, seg := range f.segments {
		switch seg.kind {
		case literal:
			parts = append(parts, seg.value)
		case prefix:
			if prefixSegment == "" {
				return "", fmt.Errorf("%w: prefix", ErrMissingField)
			}
			parts = append(parts, prefixSegment)
		case field:
			v := fields[seg.value]
			if v == "" {
				return "", fmt.Errorf("%w: %s", ErrMissingField, seg.value)
			}
			if seg.value != FieldPostname && !validField(seg.value, v) {
				return "", fmt.Errorf("%w: %s=%q", ErrInvalidTemplate, seg.value, v)
			}
			parts = append(parts, v)
		}
	}
	return "/" + strings.Join(parts, "/"), nil
}

func knownField(name string) bool {
	switch name {
	case FieldPostname, FieldPostID, FieldYear, FieldMonth, FieldDay:
		return true
	}
	return false
}

func validField(name, v string) bool {
	switch name {
	case FieldYear:
		return len(v) == 4 && digits(v)
	case FieldMonth, FieldDay:
		return len(v) == 2 && digits(v)
	case FieldPostID:
		return digits(v)
	}
	return v != ""
}

func digits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
