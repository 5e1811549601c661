package engine

import (
	"context"
	stderrors "errors"
	"io"
	"slices"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	fnabi "github.com/wippyai/function-abi"
	"github.com/wippyai/function-abi/errors"
	"github.com/wippyai/function-abi/host"
)

// DefaultEntrypoint is the export called when RunOptions names none.
const DefaultEntrypoint = "_start"

// Module is a compiled function module. It is safe for concurrent use;
// every Run instantiates a fresh instance.
type Module struct {
	engine   *Engine
	compiled wazero.CompiledModule
}

// RunOptions configures one invocation.
type RunOptions struct {
	// Entrypoint is the exported function to call. Empty means _start.
	Entrypoint string
	// Stdout and Stderr receive the guest's WASI output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer
	// Args are the WASI program arguments.
	Args []string
}

func (e *Engine) checkImports(compiled wazero.CompiledModule) error {
	wasi := wasiExports(e.runtime)

	var missing []string
	for _, def := range compiled.ImportedFunctions() {
		mod, name, _ := def.Import()
		switch mod {
		case fnabi.ModuleName:
			f, ok := LookupImport(name)
			if !ok {
				missing = append(missing, mod+"#"+name)
				continue
			}
			if !sameTypes(def.ParamTypes(), f.Params) || !sameTypes(def.ResultTypes(), f.Results) {
				return errors.New(errors.PhaseLoad, errors.KindTypeMismatch).
					Path(mod, name).
					Detail("signature %s, host provides %s",
						signature(def.ParamTypes(), def.ResultTypes()),
						signature(f.Params, f.Results)).
					Build()
			}
		case wasiModuleName:
			if _, ok := wasi[name]; !ok {
				missing = append(missing, mod+"#"+name)
			}
		default:
			missing = append(missing, mod+"#"+name)
		}
	}
	if len(missing) > 0 {
		return errors.NewMissingImportsError(missing)
	}
	return nil
}

func sameTypes(a, b []api.ValueType) bool {
	return slices.Equal(a, b)
}

func signature(params, results []api.ValueType) string {
	name := func(ts []api.ValueType) string {
		s := "("
		for i, t := range ts {
			if i > 0 {
				s += ", "
			}
			s += api.ValueTypeName(t)
		}
		return s + ")"
	}
	return name(params) + " -> " + name(results)
}

// Imports returns the module's imported functions as "module#name".
func (m *Module) Imports() []string {
	defs := m.compiled.ImportedFunctions()
	out := make([]string, 0, len(defs))
	for _, def := range defs {
		mod, name, _ := def.Import()
		out = append(out, mod+"#"+name)
	}
	return out
}

// Exports returns the names of the module's exported functions.
func (m *Module) Exports() []string {
	defs := m.compiled.ExportedFunctions()
	out := make([]string, 0, len(defs))
	for name := range defs {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Run instantiates the module and calls its entrypoint with s as the active
// session. A WASI exit with status 0 is success. Host faults, traps and
// non-zero exits are reported as run errors; output left in s must then be
// discarded.
func (m *Module) Run(ctx context.Context, s *host.Session, opts RunOptions) error {
	entry := opts.Entrypoint
	if entry == "" {
		entry = DefaultEntrypoint
	}
	if _, ok := m.compiled.ExportedFunctions()[entry]; !ok {
		return errors.NotFound(errors.PhaseRun, "export", entry)
	}

	modCfg := wazero.NewModuleConfig().
		WithName(""). // anonymous for parallel instantiation
		WithStartFunctions().
		WithArgs(opts.Args...)
	if opts.Stdout != nil {
		modCfg = modCfg.WithStdout(opts.Stdout)
	}
	if opts.Stderr != nil {
		modCfg = modCfg.WithStderr(opts.Stderr)
	}

	ctx = WithSession(ctx, s)
	inst, err := m.engine.runtime.InstantiateModule(ctx, m.compiled, modCfg)
	if err != nil {
		return errors.Instantiation(err)
	}
	defer func() {
		_ = inst.Close(context.WithoutCancel(ctx))
	}()

	log := Logger().With(zap.Uint64("session", s.ID()), zap.String("entry", entry))
	log.Debug("invoke")

	_, err = inst.ExportedFunction(entry).Call(ctx)
	return classify(ctx, entry, err, log)
}

func classify(ctx context.Context, entry string, err error, log *zap.Logger) error {
	if err == nil {
		return nil
	}

	var exit *sys.ExitError
	if stderrors.As(err, &exit) {
		switch exit.ExitCode() {
		case 0:
			return nil
		case sys.ExitCodeDeadlineExceeded, sys.ExitCodeContextCanceled:
			log.Debug("invocation canceled", zap.Error(ctx.Err()))
			return errors.Wrap(errors.PhaseRun, errors.KindCanceled, ctx.Err(), "call "+entry)
		}
		log.Debug("guest exited", zap.Uint32("code", exit.ExitCode()))
		return errors.New(errors.PhaseRun, errors.KindTrap).
			Value(exit.ExitCode()).
			Cause(err).
			Detail("call %s: exit status %d", entry, exit.ExitCode()).
			Build()
	}

	log.Debug("guest trapped", zap.Error(err))
	return errors.Trap(entry, err)
}
