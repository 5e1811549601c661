package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	fnabi "github.com/wippyai/function-abi"
	"github.com/wippyai/function-abi/errors"
)

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means the wazero default (65536 pages = 4GB).
	MemoryLimitPages uint32

	// DisableWASI skips instantiating wasi_snapshot_preview1. Modules built
	// with GOOS=wasip1 need it.
	DisableWASI bool
}

// Engine owns a wazero runtime with the boundary host module instantiated.
// It is safe for concurrent use.
type Engine struct {
	runtime      wazero.Runtime
	hostInitMu   sync.Mutex
	hostInitDone atomic.Bool
	wasi         bool
}

// New creates an engine. Cancelling the context passed to Module.Run closes
// the running instance.
func New(ctx context.Context, cfg *Config) (*Engine, error) {
	runtimeCfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	wasi := true
	if cfg != nil {
		if cfg.MemoryLimitPages > 0 {
			runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
		}
		wasi = !cfg.DisableWASI
	}

	e := &Engine{
		runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		wasi:    wasi,
	}
	if err := e.initHostModules(ctx); err != nil {
		_ = e.runtime.Close(ctx)
		return nil, err
	}
	return e, nil
}

// initHostModules instantiates the boundary module and, unless disabled,
// WASI preview1. Safe for concurrent calls.
func (e *Engine) initHostModules(ctx context.Context) error {
	if e.hostInitDone.Load() {
		return nil
	}

	e.hostInitMu.Lock()
	defer e.hostInitMu.Unlock()

	if e.hostInitDone.Load() {
		return nil
	}

	if e.runtime.Module(fnabi.ModuleName) == nil {
		builder := e.runtime.NewHostModuleBuilder(fnabi.ModuleName)
		for i := range Imports {
			f := &Imports[i]
			builder = builder.NewFunctionBuilder().
				WithGoModuleFunction(f.handler(), f.Params, f.Results).
				WithName(f.Name).
				Export(f.Name)
		}
		if _, err := builder.Instantiate(ctx); err != nil {
			return errors.Wrap(errors.PhaseLoad, errors.KindInstantiation, err, "instantiate "+fnabi.ModuleName)
		}
	}

	if e.wasi && e.runtime.Module(wasiModuleName) == nil {
		if _, err := instantiateWASI(ctx, e.runtime); err != nil {
			return errors.Wrap(errors.PhaseLoad, errors.KindInstantiation, err, "instantiate WASI")
		}
	}

	Logger().Debug("host modules ready",
		zap.String("module", fnabi.ModuleName),
		zap.Int("functions", len(Imports)),
		zap.Bool("wasi", e.wasi))
	e.hostInitDone.Store(true)
	return nil
}

// Compile compiles a core wasm module and checks its imports against the
// host modules. Unknown imports fail with *errors.MissingImportsError.
func (e *Engine) Compile(ctx context.Context, wasm []byte) (*Module, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Load("compile module", err)
	}
	if err := e.checkImports(compiled); err != nil {
		_ = compiled.Close(ctx)
		return nil, err
	}
	return &Module{engine: e, compiled: compiled}, nil
}

// Close releases the runtime and every compiled module.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}
