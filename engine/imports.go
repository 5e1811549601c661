package engine

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/function-abi/errors"
	"github.com/wippyai/function-abi/host"
	"github.com/wippyai/function-abi/intern"
	"github.com/wippyai/function-abi/val"
)

var (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
	f64 = api.ValueTypeF64
)

// HostFunc describes one boundary import and its core wasm signature.
type HostFunc struct {
	Name    string
	Params  []api.ValueType
	Results []api.ValueType
	call    func(s *host.Session, mod api.Module, stack []uint64)
}

func writeResult(stack []uint64, r val.WriteResult) {
	stack[0] = api.EncodeU32(uint32(r))
}

// Imports is the import table served under fnabi.ModuleName.
var Imports = []HostFunc{
	{
		Name:    "shopify_function_input_get",
		Results: []api.ValueType{i64},
		call: func(s *host.Session, _ api.Module, stack []uint64) {
			stack[0] = s.InputGet().Bits()
		},
	},
	{
		Name:    "shopify_function_input_get_val_len",
		Params:  []api.ValueType{i64},
		Results: []api.ValueType{i32},
		call: func(s *host.Session, _ api.Module, stack []uint64) {
			stack[0] = api.EncodeU32(s.ValueLen(val.FromBits(stack[0])))
		},
	},
	{
		Name:   "shopify_function_input_read_utf8_str",
		Params: []api.ValueType{i32, i32, i32},
		call: func(s *host.Session, mod api.Module, stack []uint64) {
			src, out, n := api.DecodeU32(stack[0]), api.DecodeU32(stack[1]), api.DecodeU32(stack[2])
			b, err := s.StringBytes(src, n)
			if err != nil {
				panic(err)
			}
			memoryOf(mod).write(out, b)
		},
	},
	{
		Name:    "shopify_function_input_get_obj_prop",
		Params:  []api.ValueType{i64, i32, i32},
		Results: []api.ValueType{i64},
		call: func(s *host.Session, mod api.Module, stack []uint64) {
			name := memoryOf(mod).read(api.DecodeU32(stack[1]), api.DecodeU32(stack[2]))
			stack[0] = s.ObjProp(val.FromBits(stack[0]), name).Bits()
		},
	},
	{
		Name:    "shopify_function_input_get_interned_obj_prop",
		Params:  []api.ValueType{i64, i32},
		Results: []api.ValueType{i64},
		call: func(s *host.Session, _ api.Module, stack []uint64) {
			id := intern.ID(api.DecodeU32(stack[1]))
			stack[0] = s.InternedObjProp(val.FromBits(stack[0]), id).Bits()
		},
	},
	{
		Name:    "shopify_function_input_get_at_index",
		Params:  []api.ValueType{i64, i32},
		Results: []api.ValueType{i64},
		call: func(s *host.Session, _ api.Module, stack []uint64) {
			stack[0] = s.AtIndex(val.FromBits(stack[0]), api.DecodeU32(stack[1])).Bits()
		},
	},
	{
		Name:    "shopify_function_input_get_obj_key_at_index",
		Params:  []api.ValueType{i64, i32},
		Results: []api.ValueType{i64},
		call: func(s *host.Session, _ api.Module, stack []uint64) {
			stack[0] = s.KeyAtIndex(val.FromBits(stack[0]), api.DecodeU32(stack[1])).Bits()
		},
	},
	{
		Name:    "shopify_function_output_new_null",
		Results: []api.ValueType{i32},
		call: func(s *host.Session, _ api.Module, stack []uint64) {
			writeResult(stack, s.WriteNull())
		},
	},
	{
		Name:    "shopify_function_output_new_bool",
		Params:  []api.ValueType{i32},
		Results: []api.ValueType{i32},
		call: func(s *host.Session, _ api.Module, stack []uint64) {
			writeResult(stack, s.WriteBool(api.DecodeU32(stack[0]) != 0))
		},
	},
	{
		Name:    "shopify_function_output_new_i32",
		Params:  []api.ValueType{i32},
		Results: []api.ValueType{i32},
		call: func(s *host.Session, _ api.Module, stack []uint64) {
			writeResult(stack, s.WriteI32(api.DecodeI32(stack[0])))
		},
	},
	{
		Name:    "shopify_function_output_new_f64",
		Params:  []api.ValueType{f64},
		Results: []api.ValueType{i32},
		call: func(s *host.Session, _ api.Module, stack []uint64) {
			writeResult(stack, s.WriteF64(api.DecodeF64(stack[0])))
		},
	},
	{
		Name:    "shopify_function_output_new_utf8_str",
		Params:  []api.ValueType{i32, i32},
		Results: []api.ValueType{i32},
		call: func(s *host.Session, mod api.Module, stack []uint64) {
			b := memoryOf(mod).read(api.DecodeU32(stack[0]), api.DecodeU32(stack[1]))
			writeResult(stack, s.WriteUTF8(b))
		},
	},
	{
		Name:    "shopify_function_output_new_interned_utf8_str",
		Params:  []api.ValueType{i32},
		Results: []api.ValueType{i32},
		call: func(s *host.Session, _ api.Module, stack []uint64) {
			writeResult(stack, s.WriteInterned(intern.ID(api.DecodeU32(stack[0]))))
		},
	},
	{
		Name:    "shopify_function_output_new_object",
		Params:  []api.ValueType{i32},
		Results: []api.ValueType{i32},
		call: func(s *host.Session, _ api.Module, stack []uint64) {
			writeResult(stack, s.OpenObject(api.DecodeU32(stack[0])))
		},
	},
	{
		Name:    "shopify_function_output_finish_object",
		Results: []api.ValueType{i32},
		call: func(s *host.Session, _ api.Module, stack []uint64) {
			writeResult(stack, s.CloseObject())
		},
	},
	{
		Name:    "shopify_function_output_new_array",
		Params:  []api.ValueType{i32},
		Results: []api.ValueType{i32},
		call: func(s *host.Session, _ api.Module, stack []uint64) {
			writeResult(stack, s.OpenArray(api.DecodeU32(stack[0])))
		},
	},
	{
		Name:    "shopify_function_output_finish_array",
		Results: []api.ValueType{i32},
		call: func(s *host.Session, _ api.Module, stack []uint64) {
			writeResult(stack, s.CloseArray())
		},
	},
	{
		Name:    "shopify_function_output_finalize",
		Results: []api.ValueType{i32},
		call: func(s *host.Session, _ api.Module, stack []uint64) {
			writeResult(stack, s.Finalize())
		},
	},
	{
		Name:    "shopify_function_intern_utf8_str",
		Params:  []api.ValueType{i32, i32},
		Results: []api.ValueType{i32},
		call: func(s *host.Session, mod api.Module, stack []uint64) {
			b := memoryOf(mod).read(api.DecodeU32(stack[0]), api.DecodeU32(stack[1]))
			stack[0] = api.EncodeU32(uint32(s.Intern(b)))
		},
	},
	{
		Name:   "shopify_function_log_new_utf8_str",
		Params: []api.ValueType{i32, i32},
		call: func(s *host.Session, mod api.Module, stack []uint64) {
			s.Log(memoryOf(mod).read(api.DecodeU32(stack[0]), api.DecodeU32(stack[1])))
		},
	},
}

var importsByName = func() map[string]*HostFunc {
	m := make(map[string]*HostFunc, len(Imports))
	for i := range Imports {
		m[Imports[i].Name] = &Imports[i]
	}
	return m
}()

// LookupImport returns the boundary function with the given name.
func LookupImport(name string) (*HostFunc, bool) {
	f, ok := importsByName[name]
	return f, ok
}

// handler binds f to the session carried by the call context.
func (f *HostFunc) handler() api.GoModuleFunc {
	return func(ctx context.Context, mod api.Module, stack []uint64) {
		s := SessionFrom(ctx)
		if s == nil {
			panic(errors.NoSession(f.Name))
		}
		if debug {
			debugf("host call %s session=%d", f.Name, s.ID())
		}
		f.call(s, mod, stack)
	}
}
