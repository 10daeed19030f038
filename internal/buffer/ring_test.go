package buffer

import "testing"

func TestRingOverwritesOldest(t *testing.T) {
	ring := NewRing[int](3)
	for i := 1; i <= 5; i++ {
		ring.Add(i)
	}

	got := ring.List()
	want := []int{3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestRingLast(t *testing.T) {
	ring := NewRing[string](4)
	for _, value := range []string{"a", "b", "c", "d", "e"} {
		ring.Add(value)
	}

	cases := []struct {
		count int
		want  []string
	}{
		{count: 2, want: []string{"d", "e"}},
		{count: 0, want: []string{"b", "c", "d", "e"}},
		{count: 10, want: []string{"b", "c", "d", "e"}},
	}
	for _, tc := range cases {
		got := ring.Last(tc.count)
		if len(got) != len(tc.want) {
			t.Fatalf("count %d: expected %v, got %v", tc.count, tc.want, got)
		}
		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Fatalf("count %d: expected %v, got %v", tc.count, tc.want, got)
			}
		}
	}
}

func TestRingReset(t *testing.T) {
	ring := NewRing[int](2)
	ring.Add(1)
	ring.Add(2)
	ring.Reset()

	if ring.Len() != 0 {
		t.Fatalf("expected empty ring, got %d entries", ring.Len())
	}
	if ring.Cap() != 2 {
		t.Fatalf("expected capacity 2, got %d", ring.Cap())
	}
	if entries := ring.List(); entries != nil {
		t.Fatalf("expected nil list, got %v", entries)
	}
}
