package val

import (
	"math"
	"math/rand"
	"testing"
)

func TestEncodeRoundTrip(t *testing.T) {
	tags := []Tag{TagNull, TagBool, TagString, TagObject, TagArray, TagError}
	lengths := []uint32{0, 1, 2, 255, 1024, MaxInlineLen - 1}
	pointers := []uint32{0, 1, 0xFFFF, 0x12345678, math.MaxUint32}

	for _, tag := range tags {
		for _, l := range lengths {
			for _, p := range pointers {
				v := Encode(tag, l, p)
				if !v.IsBoxed() {
					t.Fatalf("Encode(%v, %d, %#x) is not boxed", tag, l, p)
				}
				if v.RawTag() != tag {
					t.Errorf("Encode(%v, %d, %#x).RawTag() = %v", tag, l, p, v.RawTag())
				}
				if v.InlineLen() != l {
					t.Errorf("Encode(%v, %d, %#x).InlineLen() = %d", tag, l, p, v.InlineLen())
				}
				if v.Pointer() != p {
					t.Errorf("Encode(%v, %d, %#x).Pointer() = %#x", tag, l, p, v.Pointer())
				}
			}
		}
	}
}

func TestNumberPassthrough(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	samples := []float64{0, math.Copysign(0, -1), 1, -1, 0.1, 42, 1e308, -1e-308,
		math.MaxFloat64, math.SmallestNonzeroFloat64, math.Inf(1), math.Inf(-1)}
	for i := 0; i < 10000; i++ {
		x := math.Float64frombits(r.Uint64())
		if math.IsNaN(x) {
			continue
		}
		samples = append(samples, x)
	}

	for _, x := range samples {
		v := NewNumber(x)
		if v.IsBoxed() {
			t.Fatalf("NewNumber(%v) produced a boxed value %#x", x, v.Bits())
		}
		if v.Tag() != TagNumber {
			t.Fatalf("NewNumber(%v).Tag() = %v", x, v.Tag())
		}
		if math.Float64bits(v.AsNumber()) != math.Float64bits(x) {
			t.Fatalf("NewNumber(%v).AsNumber() = %v", x, v.AsNumber())
		}
		n, ok := Decode(v).(Number)
		if !ok || math.Float64bits(float64(n)) != math.Float64bits(x) {
			t.Fatalf("Decode(NewNumber(%v)) = %#v", x, Decode(v))
		}
	}
}

func TestNaNIsCanonicalised(t *testing.T) {
	payloads := []uint64{
		0x7FF8000000000000,
		0x7FFC000000000000,
		0xFFFC000000000001,
		0x7FF0000000000001,
	}
	for _, bits := range payloads {
		x := math.Float64frombits(bits)
		if !math.IsNaN(x) {
			t.Fatalf("%#x is not a NaN", bits)
		}
		v := NewNumber(x)
		if v.IsBoxed() {
			t.Errorf("NewNumber(NaN %#x) is boxed", bits)
		}
		if !math.IsNaN(v.AsNumber()) {
			t.Errorf("NewNumber(NaN %#x).AsNumber() = %v", bits, v.AsNumber())
		}
	}
}

func TestBoxedPatternIsNaN(t *testing.T) {
	if !math.IsNaN(math.Float64frombits(nanMask)) {
		t.Fatal("box pattern must be a NaN")
	}
	if !math.IsNaN(NewNull().AsNumber()) {
		t.Fatal("boxed null must read as a NaN double")
	}
}

func TestInlineLengthSentinel(t *testing.T) {
	tests := []struct {
		name   string
		length uint32
		want   uint32
		inline bool
	}{
		{"largest inline", MaxInlineLen - 1, MaxInlineLen - 1, true},
		{"sentinel", MaxInlineLen, MaxInlineLen, false},
		{"just above", MaxInlineLen + 1, MaxInlineLen, false},
		{"large", 1 << 20, MaxInlineLen, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewString(7, tt.length)
			if v.InlineLen() != tt.want {
				t.Errorf("InlineLen() = %d, want %d", v.InlineLen(), tt.want)
			}
			if v.HasInlineLen() != tt.inline {
				t.Errorf("HasInlineLen() = %v, want %v", v.HasInlineLen(), tt.inline)
			}
			if v.Pointer() != 7 {
				t.Errorf("Pointer() = %d, want 7", v.Pointer())
			}
			s := Decode(v).(String)
			if s.Inline() != tt.inline {
				t.Errorf("String.Inline() = %v, want %v", s.Inline(), tt.inline)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   Val
		want Value
	}{
		{"null", NewNull(), Null{}},
		{"true", NewBool(true), Bool(true)},
		{"false", NewBool(false), Bool(false)},
		{"number", NewNumber(1.5), Number(1.5)},
		{"string", NewString(10, 3), String{Ptr: 10, Len: 3}},
		{"object", NewObject(2, 4), Object{Ptr: 2, Len: 4}},
		{"array", NewArray(5, 0), Array{Ptr: 5, Len: 0}},
		{"error", NewError(ErrIndexOutOfBounds), Error{Code: ErrIndexOutOfBounds}},
		{"boxed number tag", Encode(TagNumber, 0, 0), Error{Code: ErrDecode}},
		{"unknown tag", Encode(Tag(9), 0, 0), Error{Code: ErrDecode}},
		{"unknown error code", Encode(TagError, 0, 99), Error{Code: ErrUnknown}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.in)
			if got != tt.want {
				t.Errorf("Decode() = %#v, want %#v", got, tt.want)
			}
			if got.Tag() != tt.in.Tag() {
				t.Errorf("Tag() = %v, variant tag %v", tt.in.Tag(), got.Tag())
			}
		})
	}
}

func TestVariantEncode(t *testing.T) {
	vals := []Val{
		NewNull(), NewBool(true), NewNumber(-3), NewString(1, 2),
		NewObject(3, 4), NewArray(5, 6), NewError(ErrNotAnArray),
	}
	for _, v := range vals {
		if got := Decode(v).Encode(); got != v {
			t.Errorf("Decode(%#x).Encode() = %#x", v.Bits(), got.Bits())
		}
	}
}

func TestTagString(t *testing.T) {
	if TagArray.String() != "array" {
		t.Errorf("TagArray.String() = %q", TagArray.String())
	}
	if Tag(9).String() != "unknown" {
		t.Errorf("Tag(9).String() = %q", Tag(9).String())
	}
	if ErrorCode(100).String() != "unknown error" {
		t.Errorf("ErrorCode(100).String() = %q", ErrorCode(100).String())
	}
}
