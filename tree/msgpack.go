package tree

import (
	"bytes"
	"io"
	"math"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/wippyai/function-abi/errors"
)

// DecodeMsgpack parses a single MessagePack value. Binary payloads decode
// as strings and map keys must be strings. Trailing bytes are an error.
func DecodeMsgpack(data []byte) (*Node, error) {
	r := bytes.NewReader(data)
	dec := msgpack.NewDecoder(r)
	n, err := decodeMsgpack(dec, nil)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, errors.InvalidData(errors.PhaseDecode, nil,
			strconv.Itoa(r.Len())+" trailing bytes after msgpack value")
	}
	return n, nil
}

func decodeMsgpack(dec *msgpack.Decoder, path []string) (*Node, error) {
	c, err := dec.PeekCode()
	if err != nil {
		return nil, decodeErr(path, err)
	}

	switch {
	case c == msgpcode.Nil:
		if err := dec.DecodeNil(); err != nil {
			return nil, decodeErr(path, err)
		}
		return Null(), nil

	case c == msgpcode.False || c == msgpcode.True:
		b, err := dec.DecodeBool()
		if err != nil {
			return nil, decodeErr(path, err)
		}
		return Bool(b), nil

	case c == msgpcode.Float || c == msgpcode.Double:
		x, err := dec.DecodeFloat64()
		if err != nil {
			return nil, decodeErr(path, err)
		}
		return Float(x), nil

	case c == msgpcode.Uint64:
		u, err := dec.DecodeUint64()
		if err != nil {
			return nil, decodeErr(path, err)
		}
		if u > math.MaxInt64 {
			return Float(float64(u)), nil
		}
		return Int(int64(u)), nil

	case msgpcode.IsFixedNum(c) ||
		c == msgpcode.Uint8 || c == msgpcode.Uint16 || c == msgpcode.Uint32 ||
		c == msgpcode.Int8 || c == msgpcode.Int16 || c == msgpcode.Int32 || c == msgpcode.Int64:
		i, err := dec.DecodeInt64()
		if err != nil {
			return nil, decodeErr(path, err)
		}
		return Int(i), nil

	case msgpcode.IsString(c):
		s, err := dec.DecodeString()
		if err != nil {
			return nil, decodeErr(path, err)
		}
		return String(s), nil

	case msgpcode.IsBin(c):
		b, err := dec.DecodeBytes()
		if err != nil {
			return nil, decodeErr(path, err)
		}
		return String(string(b)), nil

	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, decodeErr(path, err)
		}
		out := &Node{Kind: KindArray, Items: make([]*Node, 0, prealloc(n))}
		for i := 0; i < n; i++ {
			item, err := decodeMsgpack(dec, append(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, item)
		}
		return out, nil

	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		n, err := dec.DecodeMapLen()
		if err != nil {
			return nil, decodeErr(path, err)
		}
		out := Object(prealloc(n))
		for i := 0; i < n; i++ {
			key, err := decodeMsgpack(dec, append(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			if key.Kind != KindString {
				return nil, errors.TypeMismatch(errors.PhaseDecode, append(path, strconv.Itoa(i)), "string map key", key.Kind.String())
			}
			v, err := decodeMsgpack(dec, append(path, key.Str))
			if err != nil {
				return nil, err
			}
			out.SetKey(key, v)
		}
		return out, nil
	}

	return nil, errors.New(errors.PhaseDecode, errors.KindUnsupported).
		Path(path...).
		Value(c).
		Detail("msgpack code 0x%02x", c).
		Build()
}

// prealloc bounds up-front capacity; declared lengths come from the input.
func prealloc(n int) int {
	return min(max(n, 0), 1024)
}

func decodeErr(path []string, err error) error {
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Path(path...).
		Cause(err).
		Detail("msgpack").
		Build()
}

// EncodeMsgpack serialises n as MessagePack. Integer nodes encode in the
// smallest integer form; other numbers encode as float64.
func EncodeMsgpack(n *Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := encodeMsgpack(enc, n); err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, err, "msgpack")
	}
	return buf.Bytes(), nil
}

func encodeMsgpack(enc *msgpack.Encoder, n *Node) error {
	switch n.Kind {
	case KindNull:
		return enc.EncodeNil()
	case KindBool:
		return enc.EncodeBool(n.Bool)
	case KindNumber:
		if n.Int && n.Num == math.Trunc(n.Num) && math.Abs(n.Num) <= 1<<53 {
			return enc.EncodeInt(int64(n.Num))
		}
		return enc.EncodeFloat64(n.Num)
	case KindString:
		return enc.EncodeString(n.Str)
	case KindArray:
		if err := enc.EncodeArrayLen(len(n.Items)); err != nil {
			return err
		}
		for _, it := range n.Items {
			if err := encodeMsgpack(enc, it); err != nil {
				return err
			}
		}
		return nil
	case KindObject:
		if err := enc.EncodeMapLen(len(n.Items)); err != nil {
			return err
		}
		for i, k := range n.Keys {
			if err := encodeMsgpack(enc, k); err != nil {
				return err
			}
			if err := encodeMsgpack(enc, n.Items[i]); err != nil {
				return err
			}
		}
		return nil
	}
	return errors.Unsupported(errors.PhaseEncode, "node kind "+n.Kind.String())
}
