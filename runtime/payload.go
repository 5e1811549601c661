package runtime

import (
	"bytes"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/wippyai/function-abi/errors"
)

// maxDecodedPayload bounds the decompressed size of a single payload.
const maxDecodedPayload = 256 << 20

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// zstd.Decoder is safe for concurrent DecodeAll calls, so one is shared.
var zstdDecoder = sync.OnceValues(func() (*zstd.Decoder, error) {
	return zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(0),
		zstd.WithDecoderMaxMemory(maxDecodedPayload),
	)
})

// IsZstd reports whether data starts with a zstd frame header.
func IsZstd(data []byte) bool {
	return bytes.HasPrefix(data, zstdMagic)
}

// unwrap returns data decompressed when it is a zstd frame and unchanged
// otherwise. Applied to both module binaries and input payloads.
func unwrap(phase errors.Phase, data []byte) ([]byte, error) {
	if !IsZstd(data) {
		return data, nil
	}
	dec, err := zstdDecoder()
	if err != nil {
		return nil, errors.Wrap(phase, errors.KindInvalidData, err, "zstd decoder")
	}
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, errors.Wrap(phase, errors.KindInvalidData, err, "zstd decompress")
	}
	return out, nil
}
