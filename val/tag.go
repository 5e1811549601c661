package val

// Tag identifies the type of a boxed value.
type Tag uint8

const (
	TagNull   Tag = 0
	TagBool   Tag = 1
	TagNumber Tag = 2
	TagString Tag = 3
	TagObject Tag = 4
	TagArray  Tag = 5
	TagError  Tag = 15
)

var tagNames = [...]string{
	TagNull:   "null",
	TagBool:   "bool",
	TagNumber: "number",
	TagString: "string",
	TagObject: "object",
	TagArray:  "array",
	TagError:  "error",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) && tagNames[t] != "" {
		return tagNames[t]
	}
	return "unknown"
}

// Valid reports whether t is one of the live tags or Error.
func (t Tag) Valid() bool {
	return t <= TagArray || t == TagError
}

// HasLength reports whether values with this tag carry a length field.
func (t Tag) HasLength() bool {
	return t == TagString || t == TagObject || t == TagArray
}

// ErrorCode is carried in the pointer field of an Error-tagged value.
type ErrorCode uint32

const (
	// ErrDecode means the scope value could not be decoded.
	ErrDecode ErrorCode = iota
	// ErrNotAnObject means an object operation was applied to a non-object.
	ErrNotAnObject
	// ErrByteArrayOutOfBounds means a read ran past the host byte storage.
	ErrByteArrayOutOfBounds
	// ErrRead means the host failed to read the value.
	ErrRead
	// ErrNotAnArray means an array operation was applied to a non-array.
	ErrNotAnArray
	// ErrIndexOutOfBounds means an index was at or past the container length.
	ErrIndexOutOfBounds
	// ErrNotIndexable means positional access on a value that is neither object nor array.
	ErrNotIndexable
	// ErrUnknown is any code outside the list above.
	ErrUnknown
)

var errorCodeNames = [...]string{
	ErrDecode:               "decode error",
	ErrNotAnObject:          "not an object",
	ErrByteArrayOutOfBounds: "byte array out of bounds",
	ErrRead:                 "read error",
	ErrNotAnArray:           "not an array",
	ErrIndexOutOfBounds:     "index out of bounds",
	ErrNotIndexable:         "not indexable",
	ErrUnknown:              "unknown error",
}

func (c ErrorCode) String() string {
	if int(c) < len(errorCodeNames) {
		return errorCodeNames[c]
	}
	return errorCodeNames[ErrUnknown]
}

// WriteResult is the two-valued status returned by every output call.
type WriteResult uint32

const (
	WriteOK    WriteResult = 0
	WriteError WriteResult = 1
)

func (r WriteResult) String() string {
	if r == WriteOK {
		return "ok"
	}
	return "error"
}

// ResultOf maps an error to its wire status.
func ResultOf(err error) WriteResult {
	if err != nil {
		return WriteError
	}
	return WriteOK
}
