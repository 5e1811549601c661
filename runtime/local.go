package runtime

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/wippyai/function-abi/config"
	"github.com/wippyai/function-abi/errors"
	"github.com/wippyai/function-abi/guest"
	"github.com/wippyai/function-abi/host"
	"github.com/wippyai/function-abi/tree"
)

// RunLocal runs fn in-process against a fresh session, with the same input
// decoding, finalization and output encoding as a wasm invocation. Timeouts
// are not enforced: fn runs on the calling goroutine to completion. A panic
// in fn is logged to the session and reported as a trap.
func RunLocal(ctx context.Context, cfg *config.Config, fn guest.Func, input []byte) (res *Result, err error) {
	if cfg == nil {
		cfg = config.Default()
	}
	in, out, err := cfg.Formats()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.PhaseRun, errors.KindCanceled, err, "run local")
	}

	data, err := unwrap(errors.PhaseDecode, input)
	if err != nil {
		return nil, err
	}
	n, err := tree.Decode(in, data)
	if err != nil {
		return nil, err
	}
	s, err := host.NewSession(n, host.SessionConfig{LogCapacity: cfg.LogCapacity})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res = &Result{}
	defer func() {
		res.Logs = s.Logs()
		res.LogsDropped = s.LogRing().Dropped()
		res.Stats = s.Stats()
		res.Duration = time.Since(start)
	}()

	if err := guest.Protect(s, fn); err != nil {
		if stderrors.Is(err, guest.ErrPanic) {
			return res, errors.Trap(cfg.Entrypoint, err)
		}
		return res, errors.Wrap(errors.PhaseRun, errors.KindTrap, err, "run local")
	}
	rt := &Runtime{cfg: cfg, in: in, out: out}
	if err := rt.complete(s, res); err != nil {
		return res, err
	}
	return res, nil
}
