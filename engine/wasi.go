package engine

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

const wasiModuleName = wasi_snapshot_preview1.ModuleName

// instantiateWASI instantiates WASI preview1 for GOOS=wasip1 guests, which
// need it for their runtime even when they only talk to the boundary.
func instantiateWASI(ctx context.Context, r wazero.Runtime) (api.Module, error) {
	builder := r.NewHostModuleBuilder(wasiModuleName)
	wasi_snapshot_preview1.NewFunctionExporter().ExportFunctions(builder)
	return builder.Instantiate(ctx)
}

// wasiExports lists the function names the WASI host module provides.
func wasiExports(r wazero.Runtime) map[string]struct{} {
	mod := r.Module(wasiModuleName)
	if mod == nil {
		return nil
	}
	defs := mod.ExportedFunctionDefinitions()
	names := make(map[string]struct{}, len(defs))
	for name := range defs {
		names[name] = struct{}{}
	}
	return names
}
