package runtime

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/function-abi/config"
	"github.com/wippyai/function-abi/engine"
	"github.com/wippyai/function-abi/errors"
	"github.com/wippyai/function-abi/tree"
)

// Runtime loads and runs function modules under one configuration.
// It is safe for concurrent use.
type Runtime struct {
	engine *engine.Engine
	cfg    *config.Config
	in     tree.Format
	out    tree.Format
}

// New creates a runtime. A nil cfg means config.Default().
func New(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	in, out, err := cfg.Formats()
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(ctx, &engine.Config{
		MemoryLimitPages: cfg.MemoryLimitPages,
		DisableWASI:      cfg.DisableWASI,
	})
	if err != nil {
		return nil, errors.Load("create engine", err)
	}

	return &Runtime{engine: eng, cfg: cfg, in: in, out: out}, nil
}

// Config returns the configuration the runtime was created with.
func (r *Runtime) Config() *config.Config {
	return r.cfg
}

// Close releases all runtime resources, including every loaded Function.
func (r *Runtime) Close(ctx context.Context) error {
	return r.engine.Close(ctx)
}

// Load compiles a function module. zstd-compressed binaries are accepted.
func (r *Runtime) Load(ctx context.Context, wasm []byte) (*Function, error) {
	wasm, err := unwrap(errors.PhaseLoad, wasm)
	if err != nil {
		return nil, err
	}
	mod, err := r.engine.Compile(ctx, wasm)
	if err != nil {
		return nil, err
	}
	Logger().Debug("function loaded",
		zap.Int("size", len(wasm)),
		zap.Strings("imports", mod.Imports()))
	return &Function{rt: r, mod: mod}, nil
}

// LoadFile reads and compiles the module at path.
func (r *Runtime) LoadFile(ctx context.Context, path string) (*Function, error) {
	wasm, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read "+path, err)
	}
	return r.Load(ctx, wasm)
}
