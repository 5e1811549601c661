// Package host implements the host side of a function invocation in process.
//
// A Session owns the input tree, the handle table and string heap that back
// the Vals handed to the guest, the interning table, the output builder and
// the guest log ring. It implements fnabi.Host, so Go function code can run
// against it directly; the engine package binds the same methods to wasm
// imports.
package host

import (
	"math"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"

	fnabi "github.com/wippyai/function-abi"
	"github.com/wippyai/function-abi/builder"
	"github.com/wippyai/function-abi/errors"
	"github.com/wippyai/function-abi/intern"
	"github.com/wippyai/function-abi/tree"
	"github.com/wippyai/function-abi/val"
)

var sessionSeq atomic.Uint64

var _ fnabi.Host = (*Session)(nil)

// SessionConfig configures a Session.
type SessionConfig struct {
	// LogCapacity bounds retained guest log bytes. Zero means DefaultLogCapacity.
	LogCapacity int
}

// Stats counts boundary calls made against a session.
type Stats struct {
	Reads      uint64
	LenQueries uint64
	Writes     uint64
	Interns    uint64
	Logs       uint64
}

// Session is the state of one invocation. It is not safe for concurrent use.
type Session struct {
	id    uint64
	input *tree.Node

	heap     []byte
	strOff   map[*tree.Node]uint32
	longStr  map[uint32]uint32
	handles  []*tree.Node
	handleOf map[*tree.Node]uint32

	strings *intern.Table
	out     *builder.Builder
	logs    *LogRing
	lastErr error
	readErr error
	stats   Stats
	log     *zap.Logger
}

// NewSession prepares a session over input. Inputs whose strings or
// containers exceed the 32-bit length range, or whose object keys are not
// strings, are rejected.
func NewSession(input *tree.Node, cfg SessionConfig) (*Session, error) {
	if input == nil {
		input = tree.Null()
	}
	if err := checkInput(input, nil); err != nil {
		return nil, err
	}
	capacity := cfg.LogCapacity
	if capacity == 0 {
		capacity = DefaultLogCapacity
	}

	strs := intern.New()
	s := &Session{
		id:       sessionSeq.Add(1),
		input:    input,
		strOff:   make(map[*tree.Node]uint32),
		longStr:  make(map[uint32]uint32),
		handleOf: make(map[*tree.Node]uint32),
		strings:  strs,
		out:      builder.New(strs),
		logs:     NewLogRing(capacity),
	}
	s.log = Logger().With(zap.Uint64("session", s.id))
	return s, nil
}

func checkInput(n *tree.Node, path []string) error {
	if uint64(n.Len()) > math.MaxUint32 {
		return errors.Overflow(errors.PhaseDecode, path, n.Len(), "u32 length")
	}
	for i, it := range n.Items {
		elem := "#"
		if n.Kind == tree.KindObject {
			k := n.Keys[i]
			if k.Kind != tree.KindString {
				return errors.TypeMismatch(errors.PhaseDecode, append(path, "#"), "string object key", k.Kind.String())
			}
			if uint64(len(k.Str)) > math.MaxUint32 {
				return errors.Overflow(errors.PhaseDecode, path, len(k.Str), "u32 length")
			}
			elem = k.Str
		}
		if err := checkInput(it, append(path, elem)); err != nil {
			return err
		}
	}
	return nil
}

// ID returns the session's process-unique id.
func (s *Session) ID() uint64 { return s.id }

// Input returns the input tree.
func (s *Session) Input() *tree.Node { return s.input }

// Strings returns the session's interning table.
func (s *Session) Strings() *intern.Table { return s.strings }

// Output returns the finalized output tree.
func (s *Session) Output() (*tree.Node, bool) { return s.out.Output() }

// Finalized reports whether the output has been finalized.
func (s *Session) Finalized() bool { return s.out.Finalized() }

// Logs returns the retained guest log bytes, oldest first.
func (s *Session) Logs() []byte { return s.logs.Bytes() }

// LogRing exposes the guest log ring.
func (s *Session) LogRing() *LogRing { return s.logs }

// Err returns the reason for the most recent failed write, if any.
func (s *Session) Err() error { return s.lastErr }

// ReadErr returns the detail behind the most recent input lookup that
// answered out of range or with an unknown interned id.
func (s *Session) ReadErr() error { return s.readErr }

func (s *Session) readFailed(code val.ErrorCode, err error) val.Val {
	s.readErr = err
	s.log.Debug("read failed", zap.Stringer("code", code), zap.Error(err))
	return val.NewError(code)
}

// Stats returns boundary call counters.
func (s *Session) Stats() Stats { return s.stats }

// encode returns the Val for a node, allocating heap space or a handle on
// first use.
func (s *Session) encode(n *tree.Node) val.Val {
	switch n.Kind {
	case tree.KindNull:
		return val.NewNull()
	case tree.KindBool:
		return val.NewBool(n.Bool)
	case tree.KindNumber:
		return val.NewNumber(n.Num)
	case tree.KindString:
		off, ok := s.strOff[n]
		if !ok {
			if uint64(len(s.heap))+uint64(len(n.Str)) > math.MaxUint32 {
				return val.NewError(val.ErrByteArrayOutOfBounds)
			}
			off = uint32(len(s.heap))
			s.heap = append(s.heap, n.Str...)
			s.strOff[n] = off
			if uint32(len(n.Str)) >= val.MaxInlineLen {
				s.longStr[off] = uint32(len(n.Str))
			}
		}
		return val.NewString(off, uint32(len(n.Str)))
	case tree.KindObject:
		return val.NewObject(s.handle(n), uint32(n.Len()))
	case tree.KindArray:
		return val.NewArray(s.handle(n), uint32(n.Len()))
	}
	return val.NewError(val.ErrDecode)
}

func (s *Session) handle(n *tree.Node) uint32 {
	if h, ok := s.handleOf[n]; ok {
		return h
	}
	h := uint32(len(s.handles))
	s.handles = append(s.handles, n)
	s.handleOf[n] = h
	return h
}

// container resolves an Object or Array Val to its node.
func (s *Session) container(v val.Val) (*tree.Node, bool) {
	switch v.Tag() {
	case val.TagObject, val.TagArray:
	default:
		return nil, false
	}
	p := v.Pointer()
	if int(p) >= len(s.handles) {
		return nil, false
	}
	n := s.handles[p]
	if (v.Tag() == val.TagObject) != (n.Kind == tree.KindObject) {
		return nil, false
	}
	return n, true
}

// InputGet returns the Val of the input root. Repeated calls return the
// same Val.
func (s *Session) InputGet() val.Val {
	s.stats.Reads++
	return s.encode(s.input)
}

// ValueLen returns the length of a string, object or array. Scalars and
// errors report 0.
func (s *Session) ValueLen(v val.Val) uint32 {
	s.stats.LenQueries++
	switch v.Tag() {
	case val.TagString:
		if v.HasInlineLen() {
			return v.InlineLen()
		}
		return s.longStr[v.Pointer()]
	case val.TagObject, val.TagArray:
		if n, ok := s.container(v); ok {
			return uint32(n.Len())
		}
	}
	return 0
}

// StringBytes returns n heap bytes starting at src. The slice aliases the
// heap and must not be modified.
func (s *Session) StringBytes(src, n uint32) ([]byte, error) {
	end := uint64(src) + uint64(n)
	if end > uint64(len(s.heap)) {
		return nil, errors.MemoryOutOfBounds(errors.PhaseRead, src, n, uint32(len(s.heap)))
	}
	return s.heap[src:end:end], nil
}

// ReadUTF8 copies len(dst) string bytes starting at src into dst. Reading
// past the heap is a guest fault and panics; the runtime reports it as a trap.
func (s *Session) ReadUTF8(src uint32, dst []byte) {
	s.stats.Reads++
	b, err := s.StringBytes(src, uint32(len(dst)))
	if err != nil {
		panic(err)
	}
	copy(dst, b)
}

// ObjProp looks up a property by name. A missing property is Null; a
// non-object scope is Error(NotAnObject).
func (s *Session) ObjProp(scope val.Val, name []byte) val.Val {
	s.stats.Reads++
	return s.prop(scope, string(name))
}

// InternedObjProp looks up a property whose name was interned.
func (s *Session) InternedObjProp(scope val.Val, id intern.ID) val.Val {
	s.stats.Reads++
	name, ok := s.strings.Lookup(id)
	if !ok {
		return s.readFailed(val.ErrRead, errors.NotFound(errors.PhaseIntern, "interned id", strconv.FormatUint(uint64(id), 10)))
	}
	return s.prop(scope, string(name))
}

func (s *Session) prop(scope val.Val, name string) val.Val {
	if scope.Tag() != val.TagObject {
		return val.NewError(val.ErrNotAnObject)
	}
	n, ok := s.container(scope)
	if !ok {
		return val.NewError(val.ErrRead)
	}
	v, ok := n.Get(name)
	if !ok {
		return val.NewNull()
	}
	return s.encode(v)
}

// AtIndex returns the i-th array element or object value.
func (s *Session) AtIndex(scope val.Val, index uint32) val.Val {
	s.stats.Reads++
	switch scope.Tag() {
	case val.TagObject, val.TagArray:
	default:
		return val.NewError(val.ErrNotIndexable)
	}
	n, ok := s.container(scope)
	if !ok {
		return val.NewError(val.ErrRead)
	}
	if int64(index) >= int64(len(n.Items)) {
		return s.readFailed(val.ErrIndexOutOfBounds, errors.OutOfBounds(errors.PhaseRead, nil, int(index), len(n.Items)))
	}
	return s.encode(n.Items[index])
}

// KeyAtIndex returns the i-th key of an object.
func (s *Session) KeyAtIndex(scope val.Val, index uint32) val.Val {
	s.stats.Reads++
	if scope.Tag() != val.TagObject {
		return val.NewError(val.ErrNotAnObject)
	}
	n, ok := s.container(scope)
	if !ok {
		return val.NewError(val.ErrRead)
	}
	if int64(index) >= int64(len(n.Keys)) {
		return s.readFailed(val.ErrIndexOutOfBounds, errors.OutOfBounds(errors.PhaseRead, []string{"keys"}, int(index), len(n.Keys)))
	}
	return s.encode(n.Keys[index])
}

func (s *Session) result(op string, err error) val.WriteResult {
	s.stats.Writes++
	if err != nil {
		s.lastErr = errors.Protocol(op, err)
		s.log.Debug("write rejected", zap.String("op", op), zap.Error(err), zap.Int("depth", s.out.Depth()))
	}
	return val.ResultOf(err)
}

func (s *Session) WriteNull() val.WriteResult {
	return s.result("write null", s.out.Null())
}

func (s *Session) WriteBool(b bool) val.WriteResult {
	return s.result("write bool", s.out.Bool(b))
}

func (s *Session) WriteI32(n int32) val.WriteResult {
	return s.result("write i32", s.out.I32(n))
}

func (s *Session) WriteF64(x float64) val.WriteResult {
	return s.result("write f64", s.out.F64(x))
}

func (s *Session) WriteUTF8(b []byte) val.WriteResult {
	return s.result("write string", s.out.UTF8(b))
}

func (s *Session) WriteInterned(id intern.ID) val.WriteResult {
	return s.result("write interned string", s.out.Interned(id))
}

func (s *Session) OpenObject(n uint32) val.WriteResult {
	return s.result("open object", s.out.OpenObject(n))
}

func (s *Session) CloseObject() val.WriteResult {
	return s.result("finish object", s.out.CloseObject())
}

func (s *Session) OpenArray(n uint32) val.WriteResult {
	return s.result("open array", s.out.OpenArray(n))
}

func (s *Session) CloseArray() val.WriteResult {
	return s.result("finish array", s.out.CloseArray())
}

// Finalize seals the output. Afterwards every write fails.
func (s *Session) Finalize() val.WriteResult {
	r := s.result("finalize", s.out.Finalize())
	if r == val.WriteOK {
		s.log.Debug("output finalized", zap.Uint64("writes", s.stats.Writes))
	}
	return r
}

// Intern registers b and returns its id.
func (s *Session) Intern(b []byte) intern.ID {
	s.stats.Interns++
	return s.strings.Intern(b)
}

// Log appends a guest message to the log ring.
func (s *Session) Log(msg []byte) {
	s.stats.Logs++
	_, _ = s.logs.Write(msg)
	s.log.Debug("guest log", zap.ByteString("message", msg))
}
