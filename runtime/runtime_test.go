package runtime

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	fnabi "github.com/wippyai/function-abi"
	"github.com/wippyai/function-abi/config"
	"github.com/wippyai/function-abi/engine"
	"github.com/wippyai/function-abi/errors"
	"github.com/wippyai/function-abi/examples/cartvalidation"
	"github.com/wippyai/function-abi/examples/echo"
	"github.com/wippyai/function-abi/guest"
	"github.com/wippyai/function-abi/internal/wasmtest"
	"github.com/wippyai/function-abi/tree"
)

func newRuntime(t *testing.T, cfg *config.Config) *Runtime {
	t.Helper()
	ctx := context.Background()
	rt, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close(ctx) })
	return rt
}

func guestModule(imports ...string) *wasmtest.Module {
	g := wasmtest.New(engine.DefaultEntrypoint)
	for _, name := range imports {
		f, ok := engine.LookupImport(name)
		if !ok {
			panic("unknown import " + name)
		}
		params := make([]byte, len(f.Params))
		for i, p := range f.Params {
			params[i] = byte(p)
		}
		results := make([]byte, len(f.Results))
		for i, r := range f.Results {
			results[i] = byte(r)
		}
		g.ImportTypes(fnabi.ModuleName, name, params, results)
	}
	return g
}

func compress(t *testing.T, b []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Close()
	return enc.EncodeAll(b, nil)
}

// objectGuest writes {"ok":true}, logs "hi" and finalizes when finalize is set.
func objectGuest(finalize bool) []byte {
	imports := []string{
		"shopify_function_log_new_utf8_str",
		"shopify_function_output_new_object",
		"shopify_function_output_new_utf8_str",
		"shopify_function_output_new_bool",
		"shopify_function_output_finish_object",
	}
	if finalize {
		imports = append(imports, "shopify_function_output_finalize")
	}
	g := guestModule(imports...).Data(0, "ok").Data(16, "hi")
	g.I32(16).I32(2).Call("shopify_function_log_new_utf8_str")
	g.I32(1).Call("shopify_function_output_new_object").Drop()
	g.I32(0).I32(2).Call("shopify_function_output_new_utf8_str").Drop()
	g.I32(1).Call("shopify_function_output_new_bool").Drop()
	g.Call("shopify_function_output_finish_object").Drop()
	if finalize {
		g.Call("shopify_function_output_finalize").Drop()
	}
	return g.Bytes()
}

func TestFunction_Run(t *testing.T) {
	for _, finalize := range []bool{true, false} {
		name := "guest finalizes"
		if !finalize {
			name = "runtime finalizes"
		}
		t.Run(name, func(t *testing.T) {
			rt := newRuntime(t, nil)
			ctx := context.Background()
			fn, err := rt.Load(ctx, objectGuest(finalize))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			res, err := fn.Run(ctx, []byte(`{}`))
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if string(res.Output) != `{"ok":true}` {
				t.Errorf("output = %s", res.Output)
			}
			if string(res.Logs) != "hi" {
				t.Errorf("logs = %q", res.Logs)
			}
			if res.Stats.Writes != 4+boolInt(finalize) {
				t.Errorf("writes = %d", res.Stats.Writes)
			}
		})
	}
}

func boolInt(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func TestFunction_Incomplete(t *testing.T) {
	rt := newRuntime(t, nil)
	ctx := context.Background()
	g := guestModule("shopify_function_output_new_object")
	g.I32(2).Call("shopify_function_output_new_object").Drop()

	fn, err := rt.Load(ctx, g.Bytes())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	res, err := fn.Run(ctx, []byte(`null`))
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseRun, Kind: errors.KindIncomplete}) {
		t.Fatalf("Run = %v, want incomplete", err)
	}
	if res == nil || res.Output != nil {
		t.Errorf("incomplete run must not produce output: %+v", res)
	}
}

func TestFunction_Timeout(t *testing.T) {
	cfg := config.Default()
	cfg.Timeout = 50 * time.Millisecond
	rt := newRuntime(t, cfg)
	ctx := context.Background()

	g := guestModule()
	g.Spin()
	fn, err := rt.Load(ctx, g.Bytes())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	_, err = fn.Run(ctx, []byte(`null`))
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseRun, Kind: errors.KindCanceled}) {
		t.Errorf("Run = %v, want canceled", err)
	}
}

func TestFunction_CompressedPayloads(t *testing.T) {
	rt := newRuntime(t, nil)
	ctx := context.Background()
	fn, err := rt.Load(ctx, compress(t, objectGuest(true)))
	if err != nil {
		t.Fatalf("Load compressed module: %v", err)
	}
	res, err := fn.Run(ctx, compress(t, []byte(`{"ignored":[1,2,3]}`)))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if string(res.Output) != `{"ok":true}` {
		t.Errorf("output = %s", res.Output)
	}
}

func TestRuntime_LoadErrors(t *testing.T) {
	rt := newRuntime(t, nil)
	ctx := context.Background()

	if _, err := rt.Load(ctx, []byte("not wasm")); err == nil {
		t.Error("Load accepted garbage")
	}
	if _, err := rt.LoadFile(ctx, "does-not-exist.wasm"); err == nil {
		t.Error("LoadFile accepted a missing file")
	}
	corrupt := append([]byte{}, zstdMagic...)
	corrupt = append(corrupt, 0xff, 0xff)
	if _, err := rt.Load(ctx, corrupt); err == nil {
		t.Error("Load accepted a corrupt zstd frame")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.OutputFormat = "xml"
	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatal("New accepted an invalid config")
	}
}

func TestRunLocal(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		fn    guest.Func
		input string
		want  string
	}{
		{"echo", echo.Run, `{"a":[1,2.5,"x",null,true]}`, `{"a":[1,2.5,"x",null,true]}`},
		{"interned echo", echo.RunInterned, `{"foo":1,"bar":"b"}`, `{"foo":1,"bar":"b"}`},
		{"cart valid", cartvalidation.Run, `{"cart":{"lines":[{"quantity":1}]}}`, `{"errors":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := RunLocal(ctx, nil, tt.fn, []byte(tt.input))
			if err != nil {
				t.Fatalf("RunLocal: %v", err)
			}
			if string(res.Output) != tt.want {
				t.Errorf("output = %s, want %s", res.Output, tt.want)
			}
		})
	}
}

func TestRunLocal_Msgpack(t *testing.T) {
	cfg := config.Default()
	cfg.InputFormat = "msgpack"
	cfg.OutputFormat = "msgpack"

	in, err := msgpack.Marshal(map[string]any{"name": "widget", "qty": 3})
	if err != nil {
		t.Fatal(err)
	}
	res, err := RunLocal(context.Background(), cfg, echo.Run, compress(t, in))
	if err != nil {
		t.Fatalf("RunLocal: %v", err)
	}
	got, err := tree.DecodeMsgpack(res.Output)
	if err != nil {
		t.Fatalf("DecodeMsgpack: %v", err)
	}
	want, err := tree.DecodeMsgpack(in)
	if err != nil {
		t.Fatal(err)
	}
	if !tree.Equal(got, want) {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestRunLocal_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("panic", func(t *testing.T) {
		res, err := RunLocal(ctx, nil, func(*guest.Context) error { panic("boom") }, []byte(`null`))
		if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseRun, Kind: errors.KindTrap}) {
			t.Fatalf("err = %v, want trap", err)
		}
		if res.Output != nil {
			t.Error("panicking function produced output")
		}
		if !stderrors.Is(err, guest.ErrPanic) {
			t.Errorf("err = %v, want ErrPanic cause", err)
		}
		if string(res.Logs) != "panic: boom" {
			t.Errorf("logs = %q", res.Logs)
		}
	})

	t.Run("panic after logging", func(t *testing.T) {
		res, err := RunLocal(ctx, nil, func(c *guest.Context) error {
			c.Log("before;")
			var m map[string]int
			m["x"] = 1
			return nil
		}, []byte(`null`))
		if !stderrors.Is(err, guest.ErrPanic) {
			t.Fatalf("err = %v, want ErrPanic", err)
		}
		if !strings.HasPrefix(string(res.Logs), "before;panic: assignment to entry in nil map") {
			t.Errorf("logs = %q", res.Logs)
		}
	})

	t.Run("no output", func(t *testing.T) {
		_, err := RunLocal(ctx, nil, func(*guest.Context) error { return nil }, []byte(`null`))
		if err == nil {
			t.Fatal("expected error for empty output")
		}
	})

	t.Run("canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := RunLocal(cctx, nil, echo.Run, []byte(`null`))
		if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseRun, Kind: errors.KindCanceled}) {
			t.Errorf("err = %v, want canceled", err)
		}
	})

	t.Run("bad input", func(t *testing.T) {
		if _, err := RunLocal(ctx, nil, echo.Run, []byte(`{`)); err == nil {
			t.Error("expected decode error")
		}
	})
}
