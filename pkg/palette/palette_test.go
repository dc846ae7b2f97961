package palette

import (
	"reflect"
	"testing"
)

func TestAssign_FirstSeenOrder(t *testing.T) {
	got := Assign([]string{"Carol", "Alice", "Bob"}, Default)
	want := map[string]string{
		"Carol": Default[0],
		"Alice": Default[1],
		"Bob":   Default[2],
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Assign() = %v, want %v", got, want)
	}
}

func TestAssign_Wraps(t *testing.T) {
	colors := []string{"#000000", "#ffffff"}
	got := Assign([]string{"a", "b", "c", "d", "e"}, colors)

	want := []string{"#000000", "#ffffff", "#000000", "#ffffff", "#000000"}
	for i, p := range []string{"a", "b", "c", "d", "e"} {
		if got[p] != want[i] {
			t.Errorf("Assign()[%q] = %q, want %q", p, got[p], want[i])
		}
	}
}

func TestAssign_Deterministic(t *testing.T) {
	participants := []string{"x", "y", "z", "x"}
	first := Assign(participants, nil)
	for i := 0; i < 10; i++ {
		if got := Assign(participants, nil); !reflect.DeepEqual(got, first) {
			t.Fatalf("Assign() run %d = %v, want %v", i, got, first)
		}
	}
	if len(first) != 3 {
		t.Errorf("Assign() has %d entries, want 3", len(first))
	}
	if first["z"] != Default[2] {
		t.Errorf("duplicate participant shifted assignment: z = %q", first["z"])
	}
}

func TestInitials(t *testing.T) {
	tests := []struct {
		name, want string
	}{
		{"Alice", "A"},
		{"mary jane watson", "MJ"},
		{"  Bob   Stone ", "BS"},
		{"élodie roux", "ÉR"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Initials(tt.name); got != tt.want {
			t.Errorf("Initials(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSorted(t *testing.T) {
	in := []string{"Carol", "Alice", "Bob"}
	got := Sorted(in)
	if !reflect.DeepEqual(got, []string{"Alice", "Bob", "Carol"}) {
		t.Errorf("Sorted() = %v", got)
	}
	if in[0] != "Carol" {
		t.Error("Sorted() modified its input")
	}
}
