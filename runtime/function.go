package runtime

import (
	"bytes"
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/function-abi/engine"
	"github.com/wippyai/function-abi/errors"
	"github.com/wippyai/function-abi/host"
	"github.com/wippyai/function-abi/tree"
	"github.com/wippyai/function-abi/val"
)

// Function is a loaded function module. Each Run gets a fresh instance and
// session, so a Function may be run concurrently.
type Function struct {
	rt  *Runtime
	mod *engine.Module
}

// Result is the outcome of one invocation.
type Result struct {
	// Output is Tree encoded in the runtime's output format. Nil on failure.
	Output []byte
	Tree   *tree.Node

	// Logs holds the newest guest log bytes; LogsDropped counts the rest.
	Logs        []byte
	LogsDropped uint64

	Stdout []byte
	Stderr []byte

	Stats    host.Stats
	Duration time.Duration
}

// Imports lists the module's imports as "module#name".
func (f *Function) Imports() []string { return f.mod.Imports() }

// Exports lists the module's exported functions.
func (f *Function) Exports() []string { return f.mod.Exports() }

// Run decodes input in the runtime's input format and invokes the function.
// zstd-compressed input is decompressed first.
//
// On failure the returned Result is still non-nil when the guest ran, so
// its logs and stdio are available; it never carries output.
func (f *Function) Run(ctx context.Context, input []byte) (*Result, error) {
	data, err := unwrap(errors.PhaseDecode, input)
	if err != nil {
		return nil, err
	}
	n, err := tree.Decode(f.rt.in, data)
	if err != nil {
		return nil, err
	}
	return f.RunTree(ctx, n)
}

// RunTree invokes the function with an already decoded input.
func (f *Function) RunTree(ctx context.Context, input *tree.Node) (*Result, error) {
	cfg := f.rt.cfg
	s, err := host.NewSession(input, host.SessionConfig{LogCapacity: cfg.LogCapacity})
	if err != nil {
		return nil, err
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	start := time.Now()
	runErr := f.mod.Run(ctx, s, engine.RunOptions{
		Entrypoint: cfg.Entrypoint,
		Stdout:     &stdout,
		Stderr:     &stderr,
	})

	res := &Result{
		Logs:        s.Logs(),
		LogsDropped: s.LogRing().Dropped(),
		Stdout:      stdout.Bytes(),
		Stderr:      stderr.Bytes(),
		Stats:       s.Stats(),
		Duration:    time.Since(start),
	}

	log := Logger().With(zap.Uint64("session", s.ID()))
	if runErr != nil {
		log.Debug("invocation failed", zap.Error(runErr), zap.Duration("took", res.Duration))
		return res, runErr
	}
	if err := f.rt.complete(s, res); err != nil {
		log.Debug("invocation incomplete", zap.Error(err))
		return res, err
	}
	log.Debug("invocation done",
		zap.Duration("took", res.Duration),
		zap.Uint64("writes", res.Stats.Writes),
		zap.Int("output", len(res.Output)))
	return res, nil
}

// complete finalizes s when the guest left a whole tree unfinalized and
// encodes the output into res.
func (r *Runtime) complete(s *host.Session, res *Result) error {
	if !s.Finalized() && s.Finalize() != val.WriteOK {
		return errors.Incomplete(s.Err())
	}
	out, ok := s.Output()
	if !ok {
		return errors.Incomplete(s.Err())
	}
	b, err := tree.Encode(r.out, out)
	if err != nil {
		return err
	}
	res.Tree = out
	res.Output = b
	return nil
}
