package tree

import (
	"math"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"

	"github.com/wippyai/function-abi/errors"
)

// DecodeJSON parses JSON, tolerating comments and trailing commas.
// Object key order is preserved.
func DecodeJSON(data []byte) (*Node, error) {
	clean := jsonc.ToJSON(data)
	if !gjson.ValidBytes(clean) {
		return nil, errors.InvalidData(errors.PhaseDecode, nil, "invalid JSON")
	}
	return fromResult(gjson.ParseBytes(clean)), nil
}

func fromResult(r gjson.Result) *Node {
	switch r.Type {
	case gjson.Null:
		return Null()
	case gjson.False:
		return Bool(false)
	case gjson.True:
		return Bool(true)
	case gjson.Number:
		n := Float(r.Num)
		n.Int = isIntLiteral(r.Raw) && math.Abs(r.Num) <= 1<<53
		return n
	case gjson.String:
		return String(r.Str)
	}
	if r.IsArray() {
		out := Array()
		r.ForEach(func(_, v gjson.Result) bool {
			out.Items = append(out.Items, fromResult(v))
			return true
		})
		return out
	}
	out := Object(0)
	r.ForEach(func(k, v gjson.Result) bool {
		out.Set(k.Str, fromResult(v))
		return true
	})
	return out
}

func isIntLiteral(raw string) bool {
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '.', 'e', 'E':
			return false
		}
	}
	return raw != ""
}

// EncodeJSON serialises n as compact JSON. Non-string object keys are
// rendered as their JSON text; container keys and non-finite numbers are
// rejected.
func EncodeJSON(n *Node) ([]byte, error) {
	return appendJSON(nil, n, nil)
}

func appendJSON(dst []byte, n *Node, path []string) ([]byte, error) {
	var err error
	switch n.Kind {
	case KindNull:
		return append(dst, "null"...), nil
	case KindBool:
		return strconv.AppendBool(dst, n.Bool), nil
	case KindNumber:
		return appendNumber(dst, n.Num, path)
	case KindString:
		return gjson.AppendJSONString(dst, n.Str), nil
	case KindArray:
		dst = append(dst, '[')
		for i, it := range n.Items {
			if i > 0 {
				dst = append(dst, ',')
			}
			if dst, err = appendJSON(dst, it, append(path, strconv.Itoa(i))); err != nil {
				return nil, err
			}
		}
		return append(dst, ']'), nil
	case KindObject:
		dst = append(dst, '{')
		for i, k := range n.Keys {
			if i > 0 {
				dst = append(dst, ',')
			}
			key, err := keyText(k, path)
			if err != nil {
				return nil, err
			}
			dst = gjson.AppendJSONString(dst, key)
			dst = append(dst, ':')
			if dst, err = appendJSON(dst, n.Items[i], append(path, key)); err != nil {
				return nil, err
			}
		}
		return append(dst, '}'), nil
	}
	return nil, errors.Unsupported(errors.PhaseEncode, "node kind "+n.Kind.String())
}

func keyText(k *Node, path []string) (string, error) {
	switch k.Kind {
	case KindString:
		return k.Str, nil
	case KindNull, KindBool, KindNumber:
		b, err := appendJSON(nil, k, path)
		return string(b), err
	}
	return "", errors.TypeMismatch(errors.PhaseEncode, path, "scalar object key", k.Kind.String())
}

// appendNumber formats like encoding/json: shortest representation,
// exponent form only for very small or very large magnitudes.
func appendNumber(dst []byte, x float64, path []string) ([]byte, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil, errors.New(errors.PhaseEncode, errors.KindUnsupported).
			Path(path...).
			Value(x).
			Detail("non-finite number has no JSON form").
			Build()
	}
	abs := math.Abs(x)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	dst = strconv.AppendFloat(dst, x, format, -1, 64)
	if format == 'e' {
		// clean up e-09 to e-9
		n := len(dst)
		if n >= 4 && dst[n-4] == 'e' && dst[n-3] == '-' && dst[n-2] == '0' {
			dst[n-2] = dst[n-1]
			dst = dst[:n-1]
		}
	}
	return dst, nil
}
