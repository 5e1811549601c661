// Package engine binds the function boundary to wazero.
//
// An Engine owns one wazero runtime in which the shopify_function_v2 host
// module (and WASI preview1, for GOOS=wasip1 guests) is instantiated once.
// Host functions are stateless: each call resolves the active host.Session
// from the call context, so one compiled Module can serve many concurrent
// invocations.
//
// # Invocation Flow
//
//  1. Engine.Compile() compiles the module and checks every import against
//     the host modules, including signatures
//  2. Module.Run() instantiates a fresh anonymous instance with the session
//     in the context and calls the entrypoint (default _start)
//  3. Host functions translate between guest memory and the session:
//     Vals travel as i64, WriteResults and lengths as i32
//
// # Faults
//
// Guest memory ranges outside linear memory, and host calls without a
// session, panic with a structured error. wazero turns the panic into a
// trap and Run reports it as an errors.KindTrap error. A WASI proc_exit
// with status 0 is success.
package engine
