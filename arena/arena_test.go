package arena

import "testing"

func TestAlloc(t *testing.T) {
	a := New[byte](10)

	x := a.Alloc(4)
	y := a.Alloc(6)
	if len(x) != 4 || len(y) != 6 {
		t.Fatalf("lens = %d, %d", len(x), len(y))
	}
	copy(x, "abcd")
	copy(y, "efghij")
	if string(x) != "abcd" {
		t.Errorf("allocations overlap: x = %q", x)
	}
	if a.Used() != 10 {
		t.Errorf("Used() = %d, want 10", a.Used())
	}

	if z := a.Alloc(1); z != nil {
		t.Errorf("Alloc past capacity = %v, want nil", z)
	}
	if z := a.Alloc(-1); z != nil {
		t.Error("negative Alloc should return nil")
	}
	if z := a.Alloc(0); z == nil || len(z) != 0 {
		t.Error("zero Alloc should return an empty non-nil slice")
	}
}

func TestAlloc_CapacityLimited(t *testing.T) {
	a := New[byte](8)
	x := a.Alloc(2)
	y := a.Alloc(2)
	copy(y, "yy")
	x = append(x, 'z')
	if string(y) != "yy" {
		t.Errorf("append to x clobbered y: %q", y)
	}
	_ = x
}

func TestReset(t *testing.T) {
	a := New[int](3)
	s := a.Alloc(3)
	s[0] = 7
	if a.Alloc(1) != nil {
		t.Fatal("arena should be exhausted")
	}
	a.Reset()
	if a.Used() != 0 {
		t.Errorf("Used() after Reset = %d", a.Used())
	}
	s = a.Alloc(3)
	if s == nil || s[0] != 0 {
		t.Errorf("Alloc after Reset = %v, want zeroed", s)
	}
	if a.Cap() != 3 {
		t.Errorf("Cap() = %d", a.Cap())
	}
}
