// Package testbed runs the example functions as real wasip1 modules and
// checks them against their in-process runs.
//
// The modules are not checked in. Build them with go generate; tests skip
// when a module is missing.
package testbed

//go:generate env GOOS=wasip1 GOARCH=wasm go build -o echo.wasm ../examples/echo/cmd/echo
//go:generate env GOOS=wasip1 GOARCH=wasm go build -o interned-echo.wasm ../examples/echo/cmd/interned-echo
//go:generate env GOOS=wasip1 GOARCH=wasm go build -o cart-validation.wasm ../examples/cartvalidation/cmd/cart-validation
