package guest

import (
	"errors"
	"fmt"
	"math"
	"unsafe"

	fnabi "github.com/wippyai/function-abi"
	"github.com/wippyai/function-abi/intern"
	"github.com/wippyai/function-abi/val"
)

var (
	// ErrWrite is returned when the host rejects an output call.
	ErrWrite = errors.New("output write rejected by host")
	// ErrRead is returned when an input value cannot be read.
	ErrRead = errors.New("input read failed")
	// ErrFinalized is returned for any call made after Finalize.
	ErrFinalized = errors.New("context already finalized")
	// ErrPanic wraps a panic recovered by Protect.
	ErrPanic = errors.New("function panicked")
)

// Func is a function body run against one Context.
type Func func(*Context) error

// Context is the per-invocation session on the function side. It must not
// be shared across goroutines or reused after Finalize.
type Context struct {
	host      fnabi.Host
	root      val.Val
	rootOK    bool
	interned  map[string]intern.ID
	finalized bool
}

// NewContext binds a Context to a host.
func NewContext(h fnabi.Host) *Context {
	return &Context{host: h, interned: make(map[string]intern.ID)}
}

// Run executes fn against a fresh Context over h and finalizes the output
// if fn did not.
func Run(h fnabi.Host, fn Func) error {
	c := NewContext(h)
	if err := fn(c); err != nil {
		return err
	}
	if c.finalized {
		return nil
	}
	return c.Finalize()
}

// Protect is Run with panics turned into errors wrapping ErrPanic. The
// panic message is sent to the host log before Protect returns.
func Protect(h fnabi.Host, fn Func) (err error) {
	defer func() {
		if p := recover(); p != nil {
			h.Log(fmt.Appendf(nil, "panic: %v", p))
			err = fmt.Errorf("%w: %v", ErrPanic, p)
		}
	}()
	return Run(h, fn)
}

// Input returns the root input value. The host is asked once.
func (c *Context) Input() Value {
	if c.finalized {
		return c.errValue(val.ErrRead)
	}
	if !c.rootOK {
		c.root = c.host.InputGet()
		c.rootOK = true
	}
	return Value{ctx: c, v: c.root}
}

// Intern registers s with the host, memoizing the id for the life of the
// Context.
func (c *Context) Intern(s string) intern.ID {
	if id, ok := c.interned[s]; ok {
		return id
	}
	id := c.host.Intern(bytesOf(s))
	c.interned[s] = id
	return id
}

// Log sends a message to the host log.
func (c *Context) Log(msg string) {
	c.host.Log(bytesOf(msg))
}

// Finalized reports whether Finalize has succeeded.
func (c *Context) Finalized() bool { return c.finalized }

func (c *Context) check(r val.WriteResult) error {
	if r != val.WriteOK {
		return ErrWrite
	}
	return nil
}

func (c *Context) write(fn func() val.WriteResult) error {
	if c.finalized {
		return ErrFinalized
	}
	return c.check(fn())
}

// WriteNull writes null.
func (c *Context) WriteNull() error {
	return c.write(c.host.WriteNull)
}

// WriteBool writes a boolean.
func (c *Context) WriteBool(b bool) error {
	return c.write(func() val.WriteResult { return c.host.WriteBool(b) })
}

// WriteI32 writes a 32-bit integer.
func (c *Context) WriteI32(n int32) error {
	return c.write(func() val.WriteResult { return c.host.WriteI32(n) })
}

// WriteF64 writes a double.
func (c *Context) WriteF64(x float64) error {
	return c.write(func() val.WriteResult { return c.host.WriteF64(x) })
}

// WriteNumber writes x as an i32 when it is integral and fits, otherwise
// as a double.
func (c *Context) WriteNumber(x float64) error {
	if x == math.Trunc(x) && x >= math.MinInt32 && x <= math.MaxInt32 && !(x == 0 && math.Signbit(x)) {
		return c.WriteI32(int32(x))
	}
	return c.WriteF64(x)
}

// WriteString writes a string.
func (c *Context) WriteString(s string) error {
	return c.write(func() val.WriteResult { return c.host.WriteUTF8(bytesOf(s)) })
}

// WriteBytes writes UTF-8 bytes as a string.
func (c *Context) WriteBytes(b []byte) error {
	return c.write(func() val.WriteResult { return c.host.WriteUTF8(b) })
}

// WriteInterned writes a previously interned string.
func (c *Context) WriteInterned(id intern.ID) error {
	return c.write(func() val.WriteResult { return c.host.WriteInterned(id) })
}

// OpenObject starts an object of n entries; it must be followed by 2n writes.
func (c *Context) OpenObject(n int) error {
	return c.write(func() val.WriteResult { return c.host.OpenObject(uint32(n)) })
}

// CloseObject finishes the innermost object.
func (c *Context) CloseObject() error {
	return c.write(c.host.CloseObject)
}

// OpenArray starts an array of n elements.
func (c *Context) OpenArray(n int) error {
	return c.write(func() val.WriteResult { return c.host.OpenArray(uint32(n)) })
}

// CloseArray finishes the innermost array.
func (c *Context) CloseArray() error {
	return c.write(c.host.CloseArray)
}

// WriteObject opens an object of n entries, runs fn to write its keys and
// values, and closes it.
func (c *Context) WriteObject(n int, fn func() error) error {
	if err := c.OpenObject(n); err != nil {
		return err
	}
	if err := fn(); err != nil {
		return err
	}
	return c.CloseObject()
}

// WriteArray opens an array of n elements, runs fn to write them, and
// closes it.
func (c *Context) WriteArray(n int, fn func() error) error {
	if err := c.OpenArray(n); err != nil {
		return err
	}
	if err := fn(); err != nil {
		return err
	}
	return c.CloseArray()
}

// Finalize hands the completed output to the host. The Context is unusable
// afterwards.
func (c *Context) Finalize() error {
	if err := c.write(c.host.Finalize); err != nil {
		return err
	}
	c.finalized = true
	return nil
}

func (c *Context) errValue(code val.ErrorCode) Value {
	return Value{ctx: c, v: val.NewError(code)}
}

// bytesOf views s as bytes without copying. Hosts copy what they keep.
func bytesOf(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
