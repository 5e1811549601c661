package tree

import (
	"strings"

	"github.com/wippyai/function-abi/errors"
)

// Format names a wire encoding of a tree.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat resolves a format name. The empty string means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "msgpack", "messagepack", "mp":
		return FormatMsgpack, nil
	}
	return "", errors.InvalidInput(errors.PhaseConfig, "unknown format "+s)
}

// Decode parses data in the given format.
func Decode(f Format, data []byte) (*Node, error) {
	switch f {
	case FormatJSON, "":
		return DecodeJSON(data)
	case FormatMsgpack:
		return DecodeMsgpack(data)
	}
	return nil, errors.Unsupported(errors.PhaseDecode, "format "+string(f))
}

// Encode serialises n in the given format.
func Encode(f Format, n *Node) ([]byte, error) {
	switch f {
	case FormatJSON, "":
		return EncodeJSON(n)
	case FormatMsgpack:
		return EncodeMsgpack(n)
	}
	return nil, errors.Unsupported(errors.PhaseEncode, "format "+string(f))
}
