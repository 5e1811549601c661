package intern

import (
	"fmt"
	"testing"
)

func TestIntern_Idempotent(t *testing.T) {
	tab := New()
	a := tab.Intern([]byte("foo"))
	b := tab.Intern([]byte("foo"))
	if a != b {
		t.Fatalf("Intern(foo) twice = %d, %d", a, b)
	}
	if tab.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tab.Len())
	}
	if id := tab.InternString("foo"); id != a {
		t.Errorf("InternString(foo) = %d, want %d", id, a)
	}
}

func TestIntern_Distinct(t *testing.T) {
	tab := New()
	seen := make(map[ID]string)
	inputs := []string{"", "a", "ab", "ba", "foo", "bar", "localizedMessage", "target"}
	for i := 0; i < 200; i++ {
		inputs = append(inputs, fmt.Sprintf("key-%d", i))
	}
	for _, s := range inputs {
		id := tab.InternString(s)
		if prev, ok := seen[id]; ok && prev != s {
			t.Fatalf("id %d shared by %q and %q", id, prev, s)
		}
		seen[id] = s
	}
	if tab.Len() != len(inputs) {
		t.Errorf("Len() = %d, want %d", tab.Len(), len(inputs))
	}
}

func TestIntern_Sequential(t *testing.T) {
	tab := New()
	for i, s := range []string{"x", "y", "z"} {
		if id := tab.InternString(s); id != ID(i) {
			t.Errorf("InternString(%q) = %d, want %d", s, id, i)
		}
	}
}

func TestLookup(t *testing.T) {
	tab := New()
	src := []byte("bar")
	id := tab.Intern(src)
	src[0] = 'c'

	got, ok := tab.Lookup(id)
	if !ok || string(got) != "bar" {
		t.Fatalf("Lookup(%d) = %q, %v; want bar", id, got, ok)
	}

	empty := tab.InternString("")
	got, ok = tab.Lookup(empty)
	if !ok || len(got) != 0 {
		t.Errorf("Lookup(empty) = %q, %v", got, ok)
	}

	if _, ok := tab.Lookup(99); ok {
		t.Error("Lookup of unknown id should fail")
	}
}

func TestLookup_NoAliasOnAppend(t *testing.T) {
	tab := New()
	first, _ := tab.Lookup(tab.InternString("ab"))
	first = append(first, 'X')
	tab.InternString("cd")
	second, _ := tab.Lookup(1)
	if string(second) != "cd" {
		t.Errorf("Lookup(1) = %q, want cd", second)
	}
	if string(first) != "abX" {
		t.Errorf("appended slice = %q", first)
	}
}
