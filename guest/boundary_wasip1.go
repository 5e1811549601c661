//go:build wasip1

package guest

import (
	"errors"
	"os"
	"unsafe"

	fnabi "github.com/wippyai/function-abi"
	"github.com/wippyai/function-abi/intern"
	"github.com/wippyai/function-abi/val"
)

//go:wasmimport shopify_function_v2 shopify_function_input_get
func inputGet() uint64

//go:wasmimport shopify_function_v2 shopify_function_input_get_val_len
func inputGetValLen(scope uint64) uint32

//go:wasmimport shopify_function_v2 shopify_function_input_read_utf8_str
func inputReadUTF8Str(src uint32, out *byte, n uint32)

//go:wasmimport shopify_function_v2 shopify_function_input_get_obj_prop
func inputGetObjProp(scope uint64, ptr *byte, n uint32) uint64

//go:wasmimport shopify_function_v2 shopify_function_input_get_interned_obj_prop
func inputGetInternedObjProp(scope uint64, id uint32) uint64

//go:wasmimport shopify_function_v2 shopify_function_input_get_at_index
func inputGetAtIndex(scope uint64, index uint32) uint64

//go:wasmimport shopify_function_v2 shopify_function_input_get_obj_key_at_index
func inputGetObjKeyAtIndex(scope uint64, index uint32) uint64

//go:wasmimport shopify_function_v2 shopify_function_output_new_null
func outputNewNull() uint32

//go:wasmimport shopify_function_v2 shopify_function_output_new_bool
func outputNewBool(b uint32) uint32

//go:wasmimport shopify_function_v2 shopify_function_output_new_i32
func outputNewI32(n int32) uint32

//go:wasmimport shopify_function_v2 shopify_function_output_new_f64
func outputNewF64(x float64) uint32

//go:wasmimport shopify_function_v2 shopify_function_output_new_utf8_str
func outputNewUTF8Str(ptr *byte, n uint32) uint32

//go:wasmimport shopify_function_v2 shopify_function_output_new_interned_utf8_str
func outputNewInternedUTF8Str(id uint32) uint32

//go:wasmimport shopify_function_v2 shopify_function_output_new_object
func outputNewObject(n uint32) uint32

//go:wasmimport shopify_function_v2 shopify_function_output_finish_object
func outputFinishObject() uint32

//go:wasmimport shopify_function_v2 shopify_function_output_new_array
func outputNewArray(n uint32) uint32

//go:wasmimport shopify_function_v2 shopify_function_output_finish_array
func outputFinishArray() uint32

//go:wasmimport shopify_function_v2 shopify_function_output_finalize
func outputFinalize() uint32

//go:wasmimport shopify_function_v2 shopify_function_intern_utf8_str
func internUTF8Str(ptr *byte, n uint32) uint32

//go:wasmimport shopify_function_v2 shopify_function_log_new_utf8_str
func logNewUTF8Str(ptr *byte, n uint32)

// boundary forwards every capability to the host imports.
type boundary struct{}

var _ fnabi.Host = boundary{}

// Boundary returns the host capability backed by the wasm imports.
func Boundary() fnabi.Host { return boundary{} }

// Main runs fn against the import boundary and exits. A returned error or
// a panic is logged to the host and turns into exit status 1.
func Main(fn Func) {
	err := Protect(Boundary(), fn)
	if err == nil {
		return
	}
	if !errors.Is(err, ErrPanic) {
		msg := err.Error()
		logNewUTF8Str(unsafe.StringData(msg), uint32(len(msg)))
	}
	os.Exit(1)
}

func ptr(b []byte) *byte { return unsafe.SliceData(b) }

func result(r uint32) val.WriteResult { return val.WriteResult(r) }

func (boundary) InputGet() val.Val { return val.FromBits(inputGet()) }

func (boundary) ValueLen(scope val.Val) uint32 { return inputGetValLen(scope.Bits()) }

func (boundary) ReadUTF8(src uint32, dst []byte) {
	inputReadUTF8Str(src, ptr(dst), uint32(len(dst)))
}

func (boundary) ObjProp(scope val.Val, name []byte) val.Val {
	return val.FromBits(inputGetObjProp(scope.Bits(), ptr(name), uint32(len(name))))
}

func (boundary) InternedObjProp(scope val.Val, id intern.ID) val.Val {
	return val.FromBits(inputGetInternedObjProp(scope.Bits(), uint32(id)))
}

func (boundary) AtIndex(scope val.Val, index uint32) val.Val {
	return val.FromBits(inputGetAtIndex(scope.Bits(), index))
}

func (boundary) KeyAtIndex(scope val.Val, index uint32) val.Val {
	return val.FromBits(inputGetObjKeyAtIndex(scope.Bits(), index))
}

func (boundary) WriteNull() val.WriteResult { return result(outputNewNull()) }

func (boundary) WriteBool(b bool) val.WriteResult {
	var v uint32
	if b {
		v = 1
	}
	return result(outputNewBool(v))
}

func (boundary) WriteI32(n int32) val.WriteResult { return result(outputNewI32(n)) }

func (boundary) WriteF64(x float64) val.WriteResult { return result(outputNewF64(x)) }

func (boundary) WriteUTF8(s []byte) val.WriteResult {
	return result(outputNewUTF8Str(ptr(s), uint32(len(s))))
}

func (boundary) WriteInterned(id intern.ID) val.WriteResult {
	return result(outputNewInternedUTF8Str(uint32(id)))
}

func (boundary) OpenObject(n uint32) val.WriteResult { return result(outputNewObject(n)) }

func (boundary) CloseObject() val.WriteResult { return result(outputFinishObject()) }

func (boundary) OpenArray(n uint32) val.WriteResult { return result(outputNewArray(n)) }

func (boundary) CloseArray() val.WriteResult { return result(outputFinishArray()) }

func (boundary) Finalize() val.WriteResult { return result(outputFinalize()) }

func (boundary) Intern(s []byte) intern.ID {
	return intern.ID(internUTF8Str(ptr(s), uint32(len(s))))
}

func (boundary) Log(msg []byte) { logNewUTF8Str(ptr(msg), uint32(len(msg))) }
