package fnabi

import (
	"github.com/wippyai/function-abi/intern"
	"github.com/wippyai/function-abi/val"
)

// ModuleName is the import namespace of the boundary functions.
const ModuleName = "shopify_function_v2"

// Reader navigates the invocation input. Failures are reported in-band as
// Error-tagged values.
type Reader interface {
	InputGet() val.Val
	ValueLen(scope val.Val) uint32
	ReadUTF8(src uint32, dst []byte)
	ObjProp(scope val.Val, name []byte) val.Val
	InternedObjProp(scope val.Val, name intern.ID) val.Val
	AtIndex(scope val.Val, index uint32) val.Val
	KeyAtIndex(scope val.Val, index uint32) val.Val
}

// Writer streams the invocation output.
type Writer interface {
	WriteNull() val.WriteResult
	WriteBool(b bool) val.WriteResult
	WriteI32(n int32) val.WriteResult
	WriteF64(x float64) val.WriteResult
	WriteUTF8(s []byte) val.WriteResult
	WriteInterned(id intern.ID) val.WriteResult
	OpenObject(n uint32) val.WriteResult
	CloseObject() val.WriteResult
	OpenArray(n uint32) val.WriteResult
	CloseArray() val.WriteResult
	Finalize() val.WriteResult
}

// Interner registers strings for reuse by id.
type Interner interface {
	Intern(s []byte) intern.ID
}

// Logger receives fire-and-forget log messages.
type Logger interface {
	Log(msg []byte)
}

// Host is the full capability set a function receives for one invocation.
// The in-process host.Session and the wasm import binding both implement it.
type Host interface {
	Reader
	Writer
	Interner
	Logger
}
