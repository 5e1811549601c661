// Package runtime loads and runs function modules against JSON or
// MessagePack input.
//
// # Quick Start
//
//	ctx := context.Background()
//	rt, err := runtime.New(ctx, config.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	fn, err := rt.LoadFile(ctx, "cart-validation.wasm")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := fn.Run(ctx, []byte(`{"cart":{"lines":[{"quantity":1}]}}`))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(string(res.Output))
//
// # Invocation
//
// Every Run decodes the input into a tree, opens a fresh host.Session and
// instantiates the module with that session active. The guest reads input
// and writes output through the shopify_function_v2 imports, then returns
// from its entrypoint or exits with status 0.
//
// If the guest returned with a whole but unfinalized tree, the runtime
// finalizes it. Anything else (a trap, a non-zero exit, an open container or
// no root value at all) fails the invocation and no output is produced.
//
// # Payloads
//
// Input and module bytes that start with a zstd frame header are
// decompressed transparently. Input is decoded and output encoded in the
// formats named by the configuration:
//
//	json     JSON (comments and trailing commas accepted on input)
//	msgpack  MessagePack
//
// # In-process functions
//
// RunLocal runs a guest.Func directly against a session, without wasm. It
// follows the same decode, finalize and encode path and is what the run
// command uses for the bundled examples.
package runtime
