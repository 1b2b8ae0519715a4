// Package tags provides the label/value metadata map shared by every
// container codec.
package tags

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
)

// Map maps a tag label to its value. Keys are unique; iteration helpers
// always walk keys in sorted order so rendered output is deterministic.
type Map map[string]string

// New returns an empty map.
func New() Map {
	return make(Map)
}

// Get returns the value for key, or "" when the key is absent.
func (m Map) Get(key string) string {
	return m[key]
}

// Lookup returns the value for key and whether it was present.
func (m Map) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Set stores value under key.
func (m Map) Set(key, value string) {
	m[key] = value
}

// Keys returns the keys in ascending order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy. Cloning a nil map yields an empty map.
func (m Map) Clone() Map {
	c := make(Map, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// Merge copies every entry of other into m, overwriting existing keys.
func (m Map) Merge(other Map) {
	for k, v := range other {
		m[k] = v
	}
}

// Filter returns the entries whose key or value matches pattern,
// case-insensitively. An empty pattern matches everything.
func (m Map) Filter(pattern string) (Map, error) {
	if pattern == "" {
		return m.Clone(), nil
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid tag filter %q: %w", pattern, err)
	}
	out := make(Map)
	for k, v := range m {
		if re.MatchString(k) || re.MatchString(v) {
			out[k] = v
		}
	}
	return out, nil
}

// WriteTo writes one "key: value" line per entry in key order.
func (m Map) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, k := range m.Keys() {
		c, err := fmt.Fprintf(w, "%s: %s\n", k, m[k])
		n += int64(c)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func (m Map) String() string {
	var sb strings.Builder
	_, _ = m.WriteTo(&sb)
	return sb.String()
}

// MarshalJSON encodes the map as a compact JSON object with sorted keys.
func (m Map) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string(m))
}

// Parse decodes a JSON object. String members are kept verbatim; members of
// any other JSON type become "".
func Parse(data []byte) (Map, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("tag metadata is not a JSON object")
	}
	m := make(Map, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			s = ""
		}
		m[k] = s
	}
	return m, nil
}
