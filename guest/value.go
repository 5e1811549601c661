package guest

import (
	"math"
	"unsafe"

	"github.com/wippyai/function-abi/arena"
	"github.com/wippyai/function-abi/intern"
	"github.com/wippyai/function-abi/val"
)

// Value is a lazily navigated input value. Navigation on the wrong kind of
// value yields an Error value instead of failing, so chains like
// v.Prop("cart").Prop("lines").Index(0) are safe.
type Value struct {
	ctx *Context
	v   val.Val
}

// Raw returns the underlying handle.
func (v Value) Raw() val.Val { return v.v }

// Tag returns the value's type tag.
func (v Value) Tag() val.Tag { return v.v.Tag() }

// Decode returns the decoded variant.
func (v Value) Decode() val.Value { return val.Decode(v.v) }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.v.Tag() == val.TagNull }

// IsError reports whether the value is an Error.
func (v Value) IsError() bool { return v.v.Tag() == val.TagError }

// IsObject reports whether the value is an object.
func (v Value) IsObject() bool { return v.v.Tag() == val.TagObject }

// IsArray reports whether the value is an array.
func (v Value) IsArray() bool { return v.v.Tag() == val.TagArray }

// ErrorCode returns the code of an Error value.
func (v Value) ErrorCode() val.ErrorCode { return v.v.ErrorCode() }

// AsBool returns the boolean and whether the value is a Bool.
func (v Value) AsBool() (bool, bool) {
	if v.v.Tag() != val.TagBool {
		return false, false
	}
	return v.v.AsBool(), true
}

// AsNumber returns the number and whether the value is a Number.
func (v Value) AsNumber() (float64, bool) {
	if v.v.Tag() != val.TagNumber {
		return 0, false
	}
	return v.v.AsNumber(), true
}

// Int32 returns the number as an int32 when it is integral and in range.
func (v Value) Int32() (int32, bool) {
	x, ok := v.AsNumber()
	if !ok || x != math.Trunc(x) || x < math.MinInt32 || x > math.MaxInt32 {
		return 0, false
	}
	return int32(x), true
}

// Len returns the byte length of a string or the item count of an object or
// array. The host is only consulted when the inline length is the sentinel.
func (v Value) Len() uint32 {
	switch v.v.Tag() {
	case val.TagString, val.TagObject, val.TagArray:
	default:
		return 0
	}
	if v.v.HasInlineLen() {
		return v.v.InlineLen()
	}
	if v.ctx.finalized {
		return 0
	}
	return v.ctx.host.ValueLen(v.v)
}

// ObjLen returns the entry count of an object, or false for other values.
func (v Value) ObjLen() (uint32, bool) {
	if !v.IsObject() {
		return 0, false
	}
	return v.Len(), true
}

// ArrayLen returns the element count of an array, or false for other values.
func (v Value) ArrayLen() (uint32, bool) {
	if !v.IsArray() {
		return 0, false
	}
	return v.Len(), true
}

// ReadInto copies the string into dst, which must hold at least Len() bytes,
// and returns the filled prefix.
func (v Value) ReadInto(dst []byte) ([]byte, bool) {
	if v.v.Tag() != val.TagString {
		return nil, false
	}
	n := v.Len()
	if uint64(len(dst)) < uint64(n) {
		return nil, false
	}
	return v.read(dst[:n])
}

func (v Value) read(dst []byte) ([]byte, bool) {
	if v.ctx.finalized {
		return nil, false
	}
	if len(dst) > 0 {
		v.ctx.host.ReadUTF8(v.v.Pointer(), dst)
	}
	return dst, true
}

// Bytes reads the string into a new buffer.
func (v Value) Bytes() ([]byte, bool) {
	if v.v.Tag() != val.TagString {
		return nil, false
	}
	return v.read(make([]byte, v.Len()))
}

// Text reads the string into a new Go string.
func (v Value) Text() (string, bool) {
	b, ok := v.Bytes()
	if !ok {
		return "", false
	}
	return unsafe.String(unsafe.SliceData(b), len(b)), true
}

// StringInto reads the string into scratch space from a. It returns false if
// the value is not a string or the arena is exhausted.
func (v Value) StringInto(a *arena.Arena[byte]) ([]byte, bool) {
	if v.v.Tag() != val.TagString {
		return nil, false
	}
	buf := a.Alloc(int(v.Len()))
	if buf == nil {
		return nil, false
	}
	return v.read(buf)
}

// Prop looks up an object property by name. Missing properties are null.
func (v Value) Prop(name string) Value {
	if v.ctx.finalized {
		return v.ctx.errValue(val.ErrRead)
	}
	return Value{ctx: v.ctx, v: v.ctx.host.ObjProp(v.v, bytesOf(name))}
}

// InternedProp looks up an object property by interned name.
func (v Value) InternedProp(id intern.ID) Value {
	if v.ctx.finalized {
		return v.ctx.errValue(val.ErrRead)
	}
	return Value{ctx: v.ctx, v: v.ctx.host.InternedObjProp(v.v, id)}
}

// Index returns the i-th array element or object value.
func (v Value) Index(i uint32) Value {
	if v.ctx.finalized {
		return v.ctx.errValue(val.ErrRead)
	}
	return Value{ctx: v.ctx, v: v.ctx.host.AtIndex(v.v, i)}
}

// KeyAt returns the i-th key of an object.
func (v Value) KeyAt(i uint32) Value {
	if v.ctx.finalized {
		return v.ctx.errValue(val.ErrRead)
	}
	return Value{ctx: v.ctx, v: v.ctx.host.KeyAtIndex(v.v, i)}
}
