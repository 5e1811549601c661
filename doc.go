// Package fnabi defines the boundary between a sandboxed function and the
// host that runs it.
//
// A function receives one input tree and produces one output tree. It never
// sees the input as a buffer: it is handed NaN-boxed 64-bit handles (package
// val) and navigates lazily through host calls. The output is streamed to
// the host through a stack-disciplined builder that enforces declared
// container arity.
//
// # Architecture Overview
//
//	fnabi/               Capability interfaces shared by both sides
//	├── val/             NaN-boxed value codec
//	├── intern/          String interning table
//	├── tree/            Host value tree, JSON and MessagePack codecs
//	├── builder/         Output frame stack
//	├── host/            In-process session implementing Host
//	├── guest/           Function-side Context, input accessor, output helpers
//	├── arena/           Scratch bump allocator
//	├── engine/          wazero binding of the shopify_function_v2 imports
//	├── runtime/         Load and run function modules
//	├── config/          YAML configuration
//	├── errors/          Structured error types
//	└── examples/        Echo and cart validation functions
//
// # Quick Start
//
// Run a compiled function against JSON input:
//
//	rt, err := runtime.New(ctx, config.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	fn, err := rt.Load(ctx, wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := fn.Run(ctx, []byte(`{"cart":{"lines":[]}}`))
//	fmt.Println(string(res.Output)) // {"errors":[]}
//
// Or run Go function code in-process, without wasm:
//
//	res, err := runtime.RunLocal(ctx, cfg, cartvalidation.Run, input)
//
// # Protocol
//
// The implicit-context generation is implemented: every import lives in the
// shopify_function_v2 namespace and the host tracks one session per call.
// Write calls return a WriteResult (0 ok, 1 error). Reads signal failure
// with Error-tagged values carrying a val.ErrorCode. Memory faults trap.
//
// # Thread Safety
//
// A session serves exactly one invocation and is not safe for concurrent
// use. Runtime and Function are safe for concurrent use; each Run creates a
// fresh module instance and session.
package fnabi
