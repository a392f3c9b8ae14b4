package features

import (
	"strconv"
	"strings"
)

// Tags are the key/value attributes of one feature.
type Tags map[string]string

// Get returns the trimmed value of key, or "".
func (t Tags) Get(key string) string {
	return strings.TrimSpace(t[key])
}

// Has reports whether key is present with a non-empty value.
func (t Tags) Has(key string) bool {
	return t.Get(key) != ""
}

// Truthy reports whether key is set to anything other than an explicit
// negative ("no", "false", "0") or empty value.
func (t Tags) Truthy(key string) bool {
	switch strings.ToLower(t.Get(key)) {
	case "", "no", "false", "0":
		return false
	}
	return true
}

// Int parses the leading integer of key. Multi-valued tags such as
// "1;2" yield their first entry.
func (t Tags) Int(key string) (int, bool) {
	v := t.Get(key)
	if i := strings.IndexAny(v, ";,"); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil {
			return 0, false
		}
		return int(f), true
	}
	return n, true
}

// Float parses key as a number, accepting a trailing " m".
func (t Tags) Float(key string) (float64, bool) {
	v := strings.TrimSuffix(t.Get(key), "m")
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Is reports whether key holds any of values.
func (t Tags) Is(key string, values ...string) bool {
	v := t.Get(key)
	for _, want := range values {
		if v == want {
			return true
		}
	}
	return false
}
