package val

// Value is the decoded form of a Val. It is sealed: the only
// implementations are the variants below, produced by Decode.
type Value interface {
	Tag() Tag
	Encode() Val
	isValue()
}

// Null is the null value.
type Null struct{}

// Bool is a boolean value.
type Bool bool

// Number is a double.
type Number float64

// String references host string bytes. Len may be MaxInlineLen.
type String struct {
	Ptr uint32
	Len uint32
}

// Object references a host object. Len is the entry count and may be MaxInlineLen.
type Object struct {
	Ptr uint32
	Len uint32
}

// Array references a host array. Len is the element count and may be MaxInlineLen.
type Array struct {
	Ptr uint32
	Len uint32
}

// Error is a host-signaled failure or an undecodable bit pattern.
type Error struct {
	Code ErrorCode
}

func (Null) Tag() Tag { return TagNull }
func (Bool) Tag() Tag { return TagBool }
func (Number) Tag() Tag { return TagNumber }
func (String) Tag() Tag { return TagString }
func (Object) Tag() Tag { return TagObject }
func (Array) Tag() Tag { return TagArray }
func (Error) Tag() Tag { return TagError }

func (Null) isValue() {}
func (Bool) isValue() {}
func (Number) isValue() {}
func (String) isValue() {}
func (Object) isValue() {}
func (Array) isValue() {}
func (Error) isValue() {}

// Inline reports whether Len is the exact length.
func (s String) Inline() bool { return s.Len < MaxInlineLen }

// Inline reports whether Len is the exact entry count.
func (o Object) Inline() bool { return o.Len < MaxInlineLen }

// Inline reports whether Len is the exact element count.
func (a Array) Inline() bool { return a.Len < MaxInlineLen }

// Decode converts a Val into its variant.
func Decode(v Val) Value {
	switch v.Tag() {
	case TagNumber:
		return Number(v.AsNumber())
	case TagNull:
		return Null{}
	case TagBool:
		return Bool(v.AsBool())
	case TagString:
		return String{Ptr: v.Pointer(), Len: v.InlineLen()}
	case TagObject:
		return Object{Ptr: v.Pointer(), Len: v.InlineLen()}
	case TagArray:
		return Array{Ptr: v.Pointer(), Len: v.InlineLen()}
	}
	if v.RawTag() == TagError {
		return Error{Code: v.ErrorCode()}
	}
	return Error{Code: ErrDecode}
}

// Encode converts a variant back into a Val.
func (Null) Encode() Val { return NewNull() }
func (b Bool) Encode() Val { return NewBool(bool(b)) }
func (n Number) Encode() Val { return NewNumber(float64(n)) }
func (s String) Encode() Val { return NewString(s.Ptr, s.Len) }
func (o Object) Encode() Val { return NewObject(o.Ptr, o.Len) }
func (a Array) Encode() Val { return NewArray(a.Ptr, a.Len) }
func (e Error) Encode() Val { return NewError(e.Code) }
