// Package tomlkeys flattens TOML documents into normalised dotted keys and
// types those keys against a schema, so file, environment and command-line
// values all land in one map.
package tomlkeys

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Store is a decoded document keyed by normalised dotted key.
type Store struct {
	flat map[string]any
}

func Decode(data []byte) (Store, error) {
	raw := map[string]any{}
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return Store{}, err
	}
	return FromRaw(raw), nil
}

// FromRaw flattens nested tables. When two spellings normalise to the same
// key, the lexically first one wins.
func FromRaw(raw map[string]any) Store {
	flat := make(map[string]any)
	flattenMap("", raw, flat)

	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	normalized := make(map[string]any, len(flat))
	for _, key := range keys {
		normalizedKey := NormalizeKey(key)
		if _, exists := normalized[normalizedKey]; exists {
			continue
		}
		normalized[normalizedKey] = flat[key]
	}
	return Store{flat: normalized}
}

// Flat returns a copy of the normalised key map.
func (s Store) Flat() map[string]any {
	flat := make(map[string]any, len(s.flat))
	for key, value := range s.flat {
		flat[key] = value
	}
	return flat
}

// Keys returns the normalised keys in sorted order.
func (s Store) Keys() []string {
	keys := make([]string, 0, len(s.flat))
	for key := range s.flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (s Store) GetBool(key string) (bool, bool) {
	value, ok := s.flat[NormalizeKey(key)]
	if !ok {
		return false, false
	}
	typed, ok := value.(bool)
	return typed, ok
}

func (s Store) GetInt(key string) (int64, bool) {
	value, ok := s.flat[NormalizeKey(key)]
	if !ok {
		return 0, false
	}
	return AsInt(value)
}

func (s Store) GetString(key string) (string, bool) {
	value, ok := s.flat[NormalizeKey(key)]
	if !ok {
		return "", false
	}
	typed, ok := value.(string)
	return typed, ok
}

// AsInt accepts the integer types TOML decoding and callers produce, and
// floats without a fractional part.
func AsInt(value any) (int64, bool) {
	switch typed := value.(type) {
	case int64:
		return typed, true
	case int:
		return int64(typed), true
	case int32:
		return int64(typed), true
	case uint32:
		return int64(typed), true
	case float64:
		if typed == float64(int64(typed)) {
			return int64(typed), true
		}
	}
	return 0, false
}

// NormalizeKey lower-cases each dotted part and maps '_' to '-', so
// Watch.Read_Limit_Bytes and watch.read-limit-bytes are the same key.
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	parts := strings.Split(key, ".")
	for i, part := range parts {
		parts[i] = strings.ReplaceAll(strings.ToLower(part), "_", "-")
	}
	return strings.Join(parts, ".")
}

// EnvName maps a key to an environment variable, for example
// KIOSK_WATCH_POLL_INTERVAL_MS for watch.poll-interval-ms with prefix KIOSK_.
func EnvName(prefix, key string) string {
	replacer := strings.NewReplacer(".", "_", "-", "_")
	return prefix + strings.ToUpper(replacer.Replace(NormalizeKey(key)))
}

type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindBool:
		return "boolean"
	default:
		return "string"
	}
}

// Schema lists the recognised keys and the type of each.
type Schema struct {
	kinds map[string]Kind
}

func NewSchema(keys map[string]Kind) Schema {
	kinds := make(map[string]Kind, len(keys))
	for key, kind := range keys {
		kinds[NormalizeKey(key)] = kind
	}
	return Schema{kinds: kinds}
}

func (s Schema) Known(key string) bool {
	_, ok := s.kinds[NormalizeKey(key)]
	return ok
}

func (s Schema) Kind(key string) (Kind, bool) {
	kind, ok := s.kinds[NormalizeKey(key)]
	return kind, ok
}

// Keys returns the recognised keys in sorted order.
func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s.kinds))
	for key := range s.kinds {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Coerce parses a textual value, as given on the command line or in the
// environment, into the key's type.
func (s Schema) Coerce(key, raw string) (any, error) {
	kind, ok := s.Kind(key)
	if !ok {
		return nil, fmt.Errorf("unknown setting %s", key)
	}
	raw = strings.TrimSpace(raw)
	switch kind {
	case KindInt:
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: expected %s, got %q", key, kind, raw)
		}
		return parsed, nil
	case KindBool:
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: expected %s, got %q", key, kind, raw)
		}
		return parsed, nil
	default:
		return raw, nil
	}
}

// Unknown lists the keys of store the schema does not recognise.
func (s Schema) Unknown(store Store) []string {
	var unknown []string
	for _, key := range store.Keys() {
		if !s.Known(key) {
			unknown = append(unknown, key)
		}
	}
	return unknown
}

func flattenMap(prefix string, raw map[string]any, out map[string]any) {
	for key, value := range raw {
		flattenValue(joinKey(prefix, key), value, out)
	}
}

func flattenValue(key string, value any, out map[string]any) {
	switch typed := value.(type) {
	case map[string]any:
		flattenMap(key, typed, out)
	default:
		out[key] = value
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
