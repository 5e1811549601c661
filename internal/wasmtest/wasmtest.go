// Package wasmtest assembles tiny core wasm modules for tests. A module has
// function imports, one page of exported memory, optional data segments and
// a single exported function whose body is written with the emit helpers.
package wasmtest

import (
	"encoding/binary"
	"math"
)

// Module is a module under construction.
type Module struct {
	imports []importRef
	body    []byte
	data    []dataSegment
	export  string
}

type importRef struct {
	module  string
	name    string
	params  []byte
	results []byte
}

type dataSegment struct {
	offset uint32
	bytes  []byte
}

const (
	opCall     = 0x10
	opDrop     = 0x1a
	opI32Const = 0x41
	opI64Const = 0x42
	opF64Const = 0x44
	opI32Wrap  = 0xa7
	opEnd      = 0x0b
)

func wasmType(t byte) byte {
	switch t {
	case 'i':
		return 0x7f
	case 'I':
		return 0x7e
	case 'F':
		return 0x7c
	}
	panic("unknown value type")
}

// New starts a module whose function is exported as export.
func New(export string) *Module {
	return &Module{export: export}
}

// Import adds a function import with a signature written as a type string,
// 'i' for i32, 'I' for i64 and 'F' for f64.
func (g *Module) Import(module, name, params, results string) *Module {
	ref := importRef{module: module, name: name}
	for i := 0; i < len(params); i++ {
		ref.params = append(ref.params, wasmType(params[i]))
	}
	for i := 0; i < len(results); i++ {
		ref.results = append(ref.results, wasmType(results[i]))
	}
	g.imports = append(g.imports, ref)
	return g
}

// ImportTypes adds a function import with raw wasm value type bytes.
func (g *Module) ImportTypes(module, name string, params, results []byte) *Module {
	g.imports = append(g.imports, importRef{module: module, name: name, params: params, results: results})
	return g
}

func (g *Module) I32(v int32) *Module {
	g.body = append(g.body, opI32Const)
	g.body = appendSLEB(g.body, int64(v))
	return g
}

func (g *Module) I64(v int64) *Module {
	g.body = append(g.body, opI64Const)
	g.body = appendSLEB(g.body, v)
	return g
}

func (g *Module) F64(x float64) *Module {
	g.body = append(g.body, opF64Const)
	g.body = binary.LittleEndian.AppendUint64(g.body, math.Float64bits(x))
	return g
}

func (g *Module) Call(name string) *Module {
	for i, imp := range g.imports {
		if imp.name == name {
			g.body = append(g.body, opCall)
			g.body = appendULEB(g.body, uint64(i))
			return g
		}
	}
	panic("call to undeclared import " + name)
}

func (g *Module) Drop() *Module {
	g.body = append(g.body, opDrop)
	return g
}

func (g *Module) Wrap() *Module {
	g.body = append(g.body, opI32Wrap)
	return g
}

// Spin emits loop br 0 end, which never returns.
func (g *Module) Spin() *Module {
	g.body = append(g.body, 0x03, 0x40, 0x0c, 0x00, opEnd)
	return g
}

func (g *Module) Data(offset uint32, b string) *Module {
	g.data = append(g.data, dataSegment{offset: offset, bytes: []byte(b)})
	return g
}

// Bytes encodes the module.
func (g *Module) Bytes() []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	// type section: one type per import, then () -> () for the entrypoint
	var types []byte
	types = appendULEB(types, uint64(len(g.imports)+1))
	for _, imp := range g.imports {
		types = append(types, 0x60)
		types = appendBytes(types, imp.params)
		types = appendBytes(types, imp.results)
	}
	types = append(types, 0x60, 0x00, 0x00)
	out = appendSection(out, 1, types)

	var imports []byte
	imports = appendULEB(imports, uint64(len(g.imports)))
	for i, imp := range g.imports {
		imports = appendBytes(imports, []byte(imp.module))
		imports = appendBytes(imports, []byte(imp.name))
		imports = append(imports, 0x00)
		imports = appendULEB(imports, uint64(i))
	}
	out = appendSection(out, 2, imports)

	var funcs []byte
	funcs = appendULEB(funcs, 1)
	funcs = appendULEB(funcs, uint64(len(g.imports)))
	out = appendSection(out, 3, funcs)

	out = appendSection(out, 5, []byte{0x01, 0x00, 0x01})

	var exports []byte
	exports = appendULEB(exports, 2)
	exports = appendBytes(exports, []byte(g.export))
	exports = append(exports, 0x00)
	exports = appendULEB(exports, uint64(len(g.imports)))
	exports = appendBytes(exports, []byte("memory"))
	exports = append(exports, 0x02, 0x00)
	out = appendSection(out, 7, exports)

	fn := []byte{0x00} // no locals
	fn = append(fn, g.body...)
	fn = append(fn, opEnd)
	var code []byte
	code = appendULEB(code, 1)
	code = appendBytes(code, fn)
	out = appendSection(out, 10, code)

	if len(g.data) > 0 {
		var data []byte
		data = appendULEB(data, uint64(len(g.data)))
		for _, d := range g.data {
			data = append(data, 0x00, opI32Const)
			data = appendSLEB(data, int64(int32(d.offset)))
			data = append(data, opEnd)
			data = appendBytes(data, d.bytes)
		}
		out = appendSection(out, 11, data)
	}
	return out
}

func appendSection(dst []byte, id byte, content []byte) []byte {
	dst = append(dst, id)
	return appendBytes(dst, content)
}

func appendBytes(dst, b []byte) []byte {
	dst = appendULEB(dst, uint64(len(b)))
	return append(dst, b...)
}

func appendULEB(dst []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			dst = append(dst, b|0x80)
			continue
		}
		return append(dst, b)
	}
}

func appendSLEB(dst []byte, v int64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(dst, b)
		}
		dst = append(dst, b|0x80)
	}
}
