// Package thresholds parses and serves the quality threshold configuration.
package thresholds

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Kind discriminates the value variants a threshold entry can hold.
type Kind int

// Value kinds, in auto-detection order.
const (
	KindFloat Kind = iota
	KindInt
	KindString
)

// Value holds a single threshold entry: a float, an int, or a raw string,
// depending on what the configuration text parsed as.
type Value struct {
	kind Kind
	f    float64
	i    int
	s    string
}

// Float64 returns the value as a float64. Int values convert; strings do not.
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// Int returns the value as an int. Only int values qualify.
func (v Value) Int() (int, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// Text returns the raw string form of the value.
func (v Value) Text() string {
	switch v.kind {
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindInt:
		return strconv.Itoa(v.i)
	default:
		return v.s
	}
}

// Kind reports which variant the value holds.
func (v Value) Kind() Kind {
	return v.kind
}

// Store maps category names to keyed threshold values. It is immutable
// after construction and safe for concurrent reads.
type Store struct {
	categories map[string]map[string]Value
}

// Load reads a threshold configuration file. A missing file is an error;
// no defaults are substituted.
func Load(path string) (*Store, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open thresholds: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only config.
			_ = cerr
		}
	}()
	store, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse thresholds %s: %w", path, err)
	}
	return store, nil
}

// Parse reads the line-oriented threshold format: blank lines and lines
// starting with '#' are skipped, "[section]" opens a category, and
// "key = value" lines add entries to the open category. A key/value line
// before any section header is a configuration error.
func Parse(r io.Reader) (*Store, error) {
	store := &Store{categories: map[string]map[string]Value{}}
	current := ""
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = strings.TrimSpace(line[1 : len(line)-1])
			if current == "" {
				return nil, fmt.Errorf("line %d: empty section name", lineNo)
			}
			if _, ok := store.categories[current]; !ok {
				store.categories[current] = map[string]Value{}
			}
			continue
		}
		if !strings.Contains(line, "=") {
			continue
		}
		if current == "" {
			return nil, fmt.Errorf("line %d: key/value before any [section] header", lineNo)
		}
		key, raw, _ := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("line %d: empty key", lineNo)
		}
		store.categories[current][key] = parseValue(raw)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read thresholds: %w", err)
	}
	return store, nil
}

func parseValue(raw string) Value {
	// Strip a trailing comment before type detection.
	if idx := strings.Index(raw, "#"); idx >= 0 {
		raw = raw[:idx]
	}
	raw = strings.TrimSpace(raw)

	lower := strings.ToLower(raw)
	if strings.Contains(raw, ".") || strings.Contains(lower, "e-") || strings.Contains(lower, "e+") {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return Value{kind: KindFloat, f: f}
		}
	}
	if i, err := strconv.Atoi(raw); err == nil {
		return Value{kind: KindInt, i: i}
	}
	return Value{kind: KindString, s: raw}
}

// Has reports whether a category exists.
func (s *Store) Has(category string) bool {
	_, ok := s.categories[category]
	return ok
}

// Lookup returns the raw value for a category/key pair.
func (s *Store) Lookup(category, key string) (Value, bool) {
	cat, ok := s.categories[category]
	if !ok {
		return Value{}, false
	}
	v, ok := cat[key]
	return v, ok
}

// Float returns a numeric threshold. Int entries convert to float64.
func (s *Store) Float(category, key string) (float64, error) {
	v, err := s.require(category, key)
	if err != nil {
		return 0, err
	}
	f, ok := v.Float64()
	if !ok {
		return 0, fmt.Errorf("threshold %s.%s is not numeric (got %q)", category, key, v.Text())
	}
	return f, nil
}

// Int returns an integer threshold.
func (s *Store) Int(category, key string) (int, error) {
	v, err := s.require(category, key)
	if err != nil {
		return 0, err
	}
	i, ok := v.Int()
	if !ok {
		return 0, fmt.Errorf("threshold %s.%s is not an integer (got %q)", category, key, v.Text())
	}
	return i, nil
}

func (s *Store) require(category, key string) (Value, error) {
	cat, ok := s.categories[category]
	if !ok {
		return Value{}, fmt.Errorf("threshold category %q not configured", category)
	}
	v, ok := cat[key]
	if !ok {
		return Value{}, fmt.Errorf("threshold %s.%s not configured", category, key)
	}
	return v, nil
}
