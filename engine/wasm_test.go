package engine

import (
	fnabi "github.com/wippyai/function-abi"
	"github.com/wippyai/function-abi/internal/wasmtest"
)

type guestModule = wasmtest.Module

// newGuest starts a guest exporting _start that imports the named boundary
// functions with the signatures the host declares.
func newGuest(imports ...string) *guestModule {
	g := wasmtest.New(DefaultEntrypoint)
	for _, name := range imports {
		f, ok := LookupImport(name)
		if !ok {
			panic("unknown import " + name)
		}
		g.ImportTypes(fnabi.ModuleName, name, valueTypes(f.Params), valueTypes(f.Results))
	}
	return g
}

func valueTypes[T ~byte](ts []T) []byte {
	out := make([]byte, len(ts))
	for i, t := range ts {
		out[i] = byte(t)
	}
	return out
}
