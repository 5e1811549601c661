// Package builder implements the host side of the output protocol: a frame
// stack that turns a stream of leaf and container writes into a tree.Node,
// enforcing declared container arity.
//
// Arity is structural. A nested container counts as one write toward its
// parent when it is closed, not when it is opened. Object frames expect
// 2×len writes, alternating key and value; keys are not type checked.
package builder

import (
	"errors"

	"github.com/wippyai/function-abi/intern"
	"github.com/wippyai/function-abi/tree"
)

var (
	ErrValueAlreadyWritten = errors.New("root value already written")
	ErrObjectLength        = errors.New("object length mismatch")
	ErrArrayLength         = errors.New("array length mismatch")
	ErrNotAnObject         = errors.New("current frame is not an object")
	ErrNotAnArray          = errors.New("current frame is not an array")
	ErrFinalized           = errors.New("output already finalized")
	ErrIncomplete          = errors.New("output tree is incomplete")
	ErrUnknownInterned     = errors.New("unknown interned string id")
)

type frame struct {
	node     *tree.Node
	key      *tree.Node // pending key of an object entry
	declared uint64
	observed uint64
}

func (f *frame) object() bool { return f.node.Kind == tree.KindObject }

func (f *frame) lengthErr() error {
	if f.object() {
		return ErrObjectLength
	}
	return ErrArrayLength
}

// Builder accumulates one output tree. It is not safe for concurrent use.
type Builder struct {
	strings   *intern.Table
	stack     []frame
	root      *tree.Node
	finalized bool
}

// New returns a builder resolving interned writes against strings.
// A nil table rejects every interned write.
func New(strings *intern.Table) *Builder {
	return &Builder{strings: strings}
}

// Null writes a null value.
func (b *Builder) Null() error { return b.leaf(tree.Null()) }

// Bool writes a boolean value.
func (b *Builder) Bool(v bool) error { return b.leaf(tree.Bool(v)) }

// I32 writes an integer value.
func (b *Builder) I32(v int32) error { return b.leaf(tree.Int(int64(v))) }

// F64 writes a floating point value.
func (b *Builder) F64(v float64) error { return b.leaf(tree.Float(v)) }

// UTF8 writes a string. The bytes are copied.
func (b *Builder) UTF8(s []byte) error { return b.leaf(tree.String(string(s))) }

// Interned writes a previously interned string.
func (b *Builder) Interned(id intern.ID) error {
	if b.finalized {
		return ErrFinalized
	}
	if b.strings == nil {
		return ErrUnknownInterned
	}
	s, ok := b.strings.Lookup(id)
	if !ok {
		return ErrUnknownInterned
	}
	return b.leaf(tree.String(string(s)))
}

// OpenObject starts an object of n entries.
func (b *Builder) OpenObject(n uint32) error {
	return b.open(tree.Object(prealloc(n)), 2*uint64(n))
}

// CloseObject completes the innermost open object.
func (b *Builder) CloseObject() error { return b.close(tree.KindObject) }

// OpenArray starts an array of n elements.
func (b *Builder) OpenArray(n uint32) error {
	items := make([]*tree.Node, 0, prealloc(n))
	return b.open(&tree.Node{Kind: tree.KindArray, Items: items}, uint64(n))
}

// CloseArray completes the innermost open array.
func (b *Builder) CloseArray() error { return b.close(tree.KindArray) }

// Finalize seals the output. It requires a written root and no open frames.
func (b *Builder) Finalize() error {
	if b.finalized {
		return ErrFinalized
	}
	if b.root == nil || len(b.stack) != 0 {
		return ErrIncomplete
	}
	b.finalized = true
	return nil
}

// Output returns the finalized tree.
func (b *Builder) Output() (*tree.Node, bool) {
	if !b.finalized {
		return nil, false
	}
	return b.root, true
}

// Finalized reports whether Finalize has succeeded.
func (b *Builder) Finalized() bool { return b.finalized }

// Depth returns the number of open frames.
func (b *Builder) Depth() int { return len(b.stack) }

// prealloc bounds up-front capacity; declared lengths come from the guest.
func prealloc(n uint32) int {
	return int(min(n, 1024))
}

func (b *Builder) leaf(n *tree.Node) error {
	if b.finalized {
		return ErrFinalized
	}
	return b.attach(n)
}

// attach places a completed value into the innermost frame or as the root.
// A write past the declared arity still counts so the frame can never close.
func (b *Builder) attach(n *tree.Node) error {
	if len(b.stack) == 0 {
		if b.root != nil {
			return ErrValueAlreadyWritten
		}
		b.root = n
		return nil
	}

	f := &b.stack[len(b.stack)-1]
	pos := f.observed
	f.observed++
	if pos >= f.declared {
		return f.lengthErr()
	}
	if !f.object() {
		f.node.Items = append(f.node.Items, n)
		return nil
	}
	if pos%2 == 0 {
		f.key = n
		return nil
	}
	f.node.SetKey(f.key, n)
	f.key = nil
	return nil
}

func (b *Builder) open(n *tree.Node, declared uint64) error {
	if b.finalized {
		return ErrFinalized
	}
	if len(b.stack) == 0 && b.root != nil {
		return ErrValueAlreadyWritten
	}
	if len(b.stack) > 0 {
		f := &b.stack[len(b.stack)-1]
		if f.observed >= f.declared {
			f.observed++
			return f.lengthErr()
		}
	}
	b.stack = append(b.stack, frame{node: n, declared: declared})
	return nil
}

func (b *Builder) close(kind tree.Kind) error {
	if b.finalized {
		return ErrFinalized
	}
	if len(b.stack) == 0 {
		if kind == tree.KindObject {
			return ErrNotAnObject
		}
		return ErrNotAnArray
	}
	f := b.stack[len(b.stack)-1]
	if f.node.Kind != kind {
		if kind == tree.KindObject {
			return ErrNotAnObject
		}
		return ErrNotAnArray
	}
	if f.observed != f.declared {
		return f.lengthErr()
	}
	b.stack = b.stack[:len(b.stack)-1]
	return b.attach(f.node)
}
