package tree

import "math"

// Kind is the type of a node.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindNumber: "number",
	KindString: "string",
	KindObject: "object",
	KindArray:  "array",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Node is one value in a tree. For objects Keys and Items are parallel;
// for arrays only Items is used.
type Node struct {
	Kind  Kind
	Bool  bool
	Num   float64
	Int   bool // number originated as an integer
	Str   string
	Keys  []*Node
	Items []*Node
}

// Null returns a null node.
func Null() *Node { return &Node{Kind: KindNull} }

// Bool returns a boolean node.
func Bool(b bool) *Node { return &Node{Kind: KindBool, Bool: b} }

// Float returns a floating point number node.
func Float(x float64) *Node { return &Node{Kind: KindNumber, Num: x} }

// Int returns an integer number node.
func Int(n int64) *Node { return &Node{Kind: KindNumber, Num: float64(n), Int: true} }

// String returns a string node.
func String(s string) *Node { return &Node{Kind: KindString, Str: s} }

// Array returns an array node holding items.
func Array(items ...*Node) *Node {
	if items == nil {
		items = []*Node{}
	}
	return &Node{Kind: KindArray, Items: items}
}

// Object returns an empty object node with room for n entries.
func Object(n int) *Node {
	return &Node{Kind: KindObject, Keys: make([]*Node, 0, n), Items: make([]*Node, 0, n)}
}

// Set appends an entry with a string key.
func (n *Node) Set(key string, v *Node) *Node {
	return n.SetKey(String(key), v)
}

// SetKey appends an entry with an arbitrary key node.
func (n *Node) SetKey(key, v *Node) *Node {
	n.Keys = append(n.Keys, key)
	n.Items = append(n.Items, v)
	return n
}

// Len returns the byte length of a string, the entry count of an object or
// the element count of an array. Scalars report 0.
func (n *Node) Len() int {
	switch n.Kind {
	case KindString:
		return len(n.Str)
	case KindObject, KindArray:
		return len(n.Items)
	}
	return 0
}

// Get returns the value of the first entry whose key is the string name.
func (n *Node) Get(name string) (*Node, bool) {
	if n.Kind != KindObject {
		return nil, false
	}
	for i, k := range n.Keys {
		if k.Kind == KindString && k.Str == name {
			return n.Items[i], true
		}
	}
	return nil, false
}

// IsInt32 reports whether the node is a number exactly representable as int32.
func (n *Node) IsInt32() bool {
	if n.Kind != KindNumber {
		return false
	}
	return n.Num == math.Trunc(n.Num) && n.Num >= math.MinInt32 && n.Num <= math.MaxInt32
}

// Equal reports whether a and b hold the same structure and values.
// Numbers compare by value; the Int flag is ignored.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindNumber:
		return a.Num == b.Num || (math.IsNaN(a.Num) && math.IsNaN(b.Num))
	case KindString:
		return a.Str == b.Str
	case KindObject:
		if len(a.Keys) != len(b.Keys) {
			return false
		}
		for i := range a.Keys {
			if !Equal(a.Keys[i], b.Keys[i]) {
				return false
			}
		}
	}
	if len(a.Items) != len(b.Items) {
		return false
	}
	for i := range a.Items {
		if !Equal(a.Items[i], b.Items[i]) {
			return false
		}
	}
	return true
}
