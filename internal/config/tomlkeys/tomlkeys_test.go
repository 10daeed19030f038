package tomlkeys

import "testing"

func TestTableAndDottedKeysAreEquivalent(t *testing.T) {
	cases := []string{
		`[watch]
read-limit-bytes = 4096
`,
		`watch.read-limit-bytes = 4096
`,
	}
	for _, input := range cases {
		store, err := Decode([]byte(input))
		if err != nil {
			t.Fatalf("decode toml: %v", err)
		}
		value, ok := store.GetInt("watch.read-limit-bytes")
		if !ok {
			t.Fatalf("expected watch.read-limit-bytes value")
		}
		if value != 4096 {
			t.Fatalf("expected 4096, got %d", value)
		}
	}
}

func TestNormalizationHandlesUnderscoresAndCase(t *testing.T) {
	input := `[Watch]
READ_LIMIT_BYTES = 123
`
	store, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("decode toml: %v", err)
	}
	value, ok := store.GetInt("watch.read-limit-bytes")
	if !ok {
		t.Fatalf("expected normalized key to resolve")
	}
	if value != 123 {
		t.Fatalf("expected 123, got %d", value)
	}
}

func TestTypePreservation(t *testing.T) {
	input := `flag = true
count = 7
name = "hello"
`
	store, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("decode toml: %v", err)
	}
	flag, ok := store.GetBool("flag")
	if !ok || !flag {
		t.Fatalf("expected flag true")
	}
	count, ok := store.GetInt("count")
	if !ok || count != 7 {
		t.Fatalf("expected count 7, got %d", count)
	}
	name, ok := store.GetString("name")
	if !ok || name != "hello" {
		t.Fatalf("expected name hello, got %q", name)
	}
	if _, ok := store.GetString("count"); ok {
		t.Fatalf("expected count to not be a string")
	}
}

func TestArraysArePreservedAsValues(t *testing.T) {
	input := `paths = ["alpha", "beta"]
`
	store, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("decode toml: %v", err)
	}
	value, ok := store.Flat()["paths"]
	if !ok {
		t.Fatalf("expected paths key")
	}
	items, ok := value.([]any)
	if !ok {
		t.Fatalf("expected paths to be []any, got %T", value)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(items))
	}
}

func TestSchemaCoerce(t *testing.T) {
	schema := NewSchema(map[string]Kind{
		"watch.poll_interval_ms": KindInt,
		"metrics.textfile":       KindString,
		"watch.enabled":          KindBool,
	})
	if !schema.Known("Watch.Poll-Interval-MS") {
		t.Fatalf("expected key lookup to normalise")
	}
	value, err := schema.Coerce("watch.poll-interval-ms", " 250 ")
	if err != nil || value != int64(250) {
		t.Fatalf("expected int64 250, got %#v (%v)", value, err)
	}
	if _, err := schema.Coerce("watch.poll-interval-ms", "fast"); err == nil {
		t.Fatalf("expected integer error")
	}
	value, err = schema.Coerce("metrics.textfile", "2024")
	if err != nil || value != "2024" {
		t.Fatalf("expected string 2024, got %#v (%v)", value, err)
	}
	value, err = schema.Coerce("watch.enabled", "true")
	if err != nil || value != true {
		t.Fatalf("expected true, got %#v (%v)", value, err)
	}
	if _, err := schema.Coerce("watch.other", "1"); err == nil {
		t.Fatalf("expected unknown key error")
	}
	keys := schema.Keys()
	if len(keys) != 3 || keys[0] != "metrics.textfile" || keys[2] != "watch.poll-interval-ms" {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestSchemaUnknown(t *testing.T) {
	schema := NewSchema(map[string]Kind{"log.level": KindString})
	store, err := Decode([]byte("[log]\nlevel = \"debug\"\nColour = true\n[extra]\nx = 1\n"))
	if err != nil {
		t.Fatalf("decode toml: %v", err)
	}
	unknown := schema.Unknown(store)
	if len(unknown) != 2 || unknown[0] != "extra.x" || unknown[1] != "log.colour" {
		t.Fatalf("unexpected unknown keys %v", unknown)
	}
}

func TestEnvName(t *testing.T) {
	if got := EnvName("KIOSK_", "Watch.Read_Limit-Bytes"); got != "KIOSK_WATCH_READ_LIMIT_BYTES" {
		t.Fatalf("unexpected env name %s", got)
	}
}
