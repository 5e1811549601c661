// Package guest is the function side of the boundary.
//
// A Context wraps the host capability for one invocation. Input is
// navigated lazily through Value; output is written through the Context's
// builder calls, which mirror the host frame stack:
//
//	func run(ctx *guest.Context) error {
//	    cart := ctx.Input().Prop("cart")
//	    if err := ctx.OpenObject(1); err != nil {
//	        return err
//	    }
//	    ...
//	    return ctx.CloseObject()
//	}
//
// Under GOOS=wasip1 the Context is bound to the shopify_function_v2 imports
// (see Boundary and Main). Elsewhere any fnabi.Host can be supplied, such as
// host.Session for in-process execution and tests.
package guest
