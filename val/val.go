package val

import "math"

const (
	nanMask     uint64 = 0x7FFC000000000000
	tagMask     uint64 = 0x0003C00000000000
	valueMask   uint64 = 0x00003FFFFFFFFFFF
	pointerMask uint64 = 0x00000000FFFFFFFF
	tagShift           = 46
	lenShift           = 32

	// canonicalNaN is the quiet NaN every NaN double is stored as, so that
	// no number can alias the boxed pattern.
	canonicalNaN uint64 = 0x7FF8000000000000
)

// MaxInlineLen is the inline length sentinel. A length field equal to it
// means "ask the host"; any smaller value is the exact length.
const MaxInlineLen uint32 = 1<<14 - 1

// Val is a NaN-boxed value handle.
type Val uint64

// FromBits wraps raw bits without interpretation.
func FromBits(bits uint64) Val { return Val(bits) }

// Bits returns the raw 64-bit pattern.
func (v Val) Bits() uint64 { return uint64(v) }

// IsBoxed reports whether v uses the reserved quiet-NaN pattern.
func (v Val) IsBoxed() bool {
	return uint64(v)&nanMask == nanMask
}

// RawTag returns the 4-bit tag field exactly as stored. For unboxed values
// it returns TagNumber.
func (v Val) RawTag() Tag {
	if !v.IsBoxed() {
		return TagNumber
	}
	return Tag((uint64(v) & tagMask) >> tagShift)
}

// Tag returns the value tag. Boxed values whose tag field is not a live tag,
// including a boxed Number, are reported as TagError.
func (v Val) Tag() Tag {
	t := v.RawTag()
	if !v.IsBoxed() {
		return t
	}
	if t == TagNumber || !t.Valid() {
		return TagError
	}
	return t
}

// InlineLen returns the 14-bit length field. Callers must treat
// MaxInlineLen as unknown.
func (v Val) InlineLen() uint32 {
	return uint32((uint64(v) & valueMask) >> lenShift)
}

// HasInlineLen reports whether the length field is authoritative.
func (v Val) HasInlineLen() bool {
	return v.InlineLen() < MaxInlineLen
}

// Pointer returns the low 32 bits.
func (v Val) Pointer() uint32 {
	return uint32(uint64(v) & pointerMask)
}

// AsBool returns the low bit of the pointer field. Only meaningful for TagBool.
func (v Val) AsBool() bool {
	return v.Pointer()&1 != 0
}

// AsNumber reinterprets the bits as a double. Only meaningful when !IsBoxed.
func (v Val) AsNumber() float64 {
	return math.Float64frombits(uint64(v))
}

// ErrorCode returns the code stored in an Error-tagged value.
func (v Val) ErrorCode() ErrorCode {
	c := ErrorCode(v.Pointer())
	if c > ErrUnknown {
		return ErrUnknown
	}
	return c
}

// Encode boxes a tag, length and pointer. Lengths at or above MaxInlineLen
// are stored as the sentinel; the true length must then be served by the
// host's length query. TagNumber cannot be boxed; use NewNumber.
func Encode(tag Tag, length, ptr uint32) Val {
	if length > MaxInlineLen {
		length = MaxInlineLen
	}
	bits := nanMask |
		(uint64(tag&0xF) << tagShift) |
		(uint64(length) << lenShift) |
		uint64(ptr)
	return Val(bits)
}

// NewNull returns the null value.
func NewNull() Val { return Encode(TagNull, 0, 0) }

// NewBool boxes a boolean.
func NewBool(b bool) Val {
	var p uint32
	if b {
		p = 1
	}
	return Encode(TagBool, 0, p)
}

// NewNumber stores a double unboxed. NaN is canonicalised to the standard
// quiet NaN, which lies outside the boxed pattern.
func NewNumber(x float64) Val {
	if math.IsNaN(x) {
		return Val(canonicalNaN)
	}
	return Val(math.Float64bits(x))
}

// NewString boxes a host string reference.
func NewString(ptr, length uint32) Val { return Encode(TagString, length, ptr) }

// NewObject boxes a host object handle with its entry count.
func NewObject(ptr, length uint32) Val { return Encode(TagObject, length, ptr) }

// NewArray boxes a host array handle with its element count.
func NewArray(ptr, length uint32) Val { return Encode(TagArray, length, ptr) }

// NewError boxes an error code.
func NewError(code ErrorCode) Val { return Encode(TagError, 0, uint32(code)) }
