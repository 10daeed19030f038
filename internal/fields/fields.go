// Package fields holds the value rules shared by the typed stores: text
// trimming, hex colours, integer flags, dimension pairs, the sparse indexed
// list and JSON records.
package fields

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const DefaultColor = "#000000"

// MaxListEntries is the number of candidate indices scanned for list entries.
const MaxListEntries = 10

var ErrNotObject = errors.New("record is not a JSON object")

var hexColorPattern = regexp.MustCompile(`(?:0x|#)?([0-9A-Fa-f]{6})`)

// TrimText normalises a text field value.
func TrimText(value string) string {
	return strings.TrimSpace(value)
}

// ParseHexColor extracts the first six hex digits found in value and
// returns them as #RRGGBB in upper case.
func ParseHexColor(value string) string {
	match := hexColorPattern.FindStringSubmatch(value)
	if match == nil {
		return DefaultColor
	}
	return "#" + strings.ToUpper(match[1])
}

// IntFlag reports whether value is the integer 1.
func IntFlag(value string) bool {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	return err == nil && parsed == 1
}

// ParseInt parses a decimal integer, returning fallback when value is not one.
func ParseInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

// ParseDimensions parses a "W;H" pair. Anything other than exactly two
// integer parts returns the fallback pair.
func ParseDimensions(value string, width, height int) (int, int) {
	parts := strings.Split(value, ";")
	if len(parts) != 2 {
		return width, height
	}
	w, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errW != nil || errH != nil {
		return width, height
	}
	return w, h
}

// ListEntry is one entry of the sparse indexed list.
type ListEntry struct {
	Icon     string `json:"icon" yaml:"icon"`
	Category string `json:"category" yaml:"category"`
	Total    int    `json:"total" yaml:"total"`
	Index    int    `json:"index" yaml:"index"`
}

// ListKeys builds the per-index key names of an indexed list.
type ListKeys struct {
	Icon     func(index int) string
	Category func(index int) string
	Total    func(index int) string
}

// PrefixedListKeys names keys as prefix+suffix+index, for example
// hello_list-cat3.
func PrefixedListKeys(prefix, iconSuffix, categorySuffix, totalSuffix string) ListKeys {
	key := func(suffix string) func(int) string {
		return func(index int) string {
			return fmt.Sprintf("%s%s%d", prefix, suffix, index)
		}
	}
	return ListKeys{
		Icon:     key(iconSuffix),
		Category: key(categorySuffix),
		Total:    key(totalSuffix),
	}
}

// Lookup returns a key's value and whether the key is present at all.
type Lookup func(key string) (string, bool)

// ExtractIndexedList scans indices 0..9 and includes an entry exactly when
// its category key is present, even if empty. Output order is ascending
// index with no gaps.
func ExtractIndexedList(lookup Lookup, keys ListKeys) []ListEntry {
	if lookup == nil {
		return nil
	}
	entries := make([]ListEntry, 0, MaxListEntries)
	for index := 0; index < MaxListEntries; index++ {
		category, ok := lookup(keys.Category(index))
		if !ok {
			continue
		}
		entry := ListEntry{Category: category, Index: index}
		if icon, ok := lookup(keys.Icon(index)); ok {
			entry.Icon = icon
		}
		if total, ok := lookup(keys.Total(index)); ok {
			entry.Total = ParseInt(total, 0)
		}
		entries = append(entries, entry)
	}
	return entries
}

// ParseRecord decodes a JSON object of arbitrary depth.
func ParseRecord(data []byte) (map[string]any, error) {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("parse record: %w", err)
	}
	record, ok := value.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return record, nil
}

// CloneRecord deep copies a decoded record so callers cannot mutate the
// stored snapshot.
func CloneRecord(record map[string]any) map[string]any {
	if record == nil {
		return map[string]any{}
	}
	return cloneValue(record).(map[string]any)
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return typed
	}
}
