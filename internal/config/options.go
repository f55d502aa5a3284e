// Package config holds the immutable per-run configuration for a scrape:
// the source store (one entry per state source), reader option bags, and the
// top-level runtime settings.
package config

import "strings"

// Options is a JSON-friendly bag of reader/cleaner options.
//
// Readers pull typed values out of it with defaults, so adding a new option to
// one reader never forces a schema change on every source entry. Unknown keys
// are ignored by design.
type Options map[string]any

// String returns the option as a trimmed string, or def when absent/empty.
func (o Options) String(name, def string) string {
	v, ok := o[name]
	if !ok || v == nil {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

// Int returns the option as an int, or def when absent or not numeric.
// JSON decoding produces float64 for numbers, so both forms are accepted.
func (o Options) Int(name string, def int) int {
	v, ok := o[name]
	if !ok || v == nil {
		return def
	}
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	default:
		return def
	}
}

// Bool returns the option as a bool, or def when absent or not a bool.
func (o Options) Bool(name string, def bool) bool {
	v, ok := o[name]
	if !ok || v == nil {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// Rune returns the first rune of a string option, or def.
// Used for delimiter options like "comma": "\t".
func (o Options) Rune(name string, def rune) rune {
	s := o.String(name, "")
	if s == "" {
		return def
	}
	return []rune(s)[0]
}

// StringSlice returns the option as []string. Accepts []string directly or
// []any whose elements are strings (the shape JSON decoding produces).
func (o Options) StringSlice(name string) []string {
	v, ok := o[name]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, it := range t {
			if s, ok := it.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// IntSlice returns the option as []int, tolerating JSON float64 elements.
func (o Options) IntSlice(name string) []int {
	v, ok := o[name]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case []int:
		return t
	case []any:
		out := make([]int, 0, len(t))
		for _, it := range t {
			switch n := it.(type) {
			case int:
				out = append(out, n)
			case float64:
				out = append(out, int(n))
			}
		}
		return out
	default:
		return nil
	}
}

// StringMap returns the option as map[string]string.
func (o Options) StringMap(name string) map[string]string {
	v, ok := o[name]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case map[string]string:
		return t
	case map[string]any:
		out := make(map[string]string, len(t))
		for k, it := range t {
			if s, ok := it.(string); ok {
				out[k] = s
			}
		}
		return out
	default:
		return nil
	}
}

// Any returns the raw option value, or nil when absent.
func (o Options) Any(name string) any {
	return o[name]
}
