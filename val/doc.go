// Package val implements the NaN-boxed 64-bit value encoding shared by the
// guest and the host.
//
// A Val is either the raw IEEE-754 bit pattern of a double, or a boxed value
// whose top 13 bits equal the reserved quiet-NaN pattern:
//
//	| 1 sign | 11 exponent (all 1) | 2 quiet-NaN | 4 tag | 14 length | 32 pointer |
//
// The 14-bit length is authoritative when it is below MaxInlineLen. The
// sentinel MaxInlineLen (16383) means the true length must be queried from
// the host. The 32-bit pointer is an opaque host reference: a string offset,
// a container handle, the bool bit, or an ErrorCode.
//
// # Decoding
//
// Decode turns a Val into the sealed Value sum type so callers switch on
// variants instead of re-deriving bit masks:
//
//	switch v := val.Decode(raw).(type) {
//	case val.Number:
//	case val.String:
//	    if v.Len == val.MaxInlineLen { /* ask the host */ }
//	case val.Error:
//	}
//
// Bit patterns with an unrecognised tag decode as Error(DecodeError).
package val
