package engine

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/function-abi/errors"
)

// guestMemory wraps a module's linear memory. Out-of-range access panics
// with a structured error, which wazero surfaces as a trap.
type guestMemory struct {
	mem api.Memory
}

func memoryOf(mod api.Module) guestMemory {
	mem := mod.Memory()
	if mem == nil {
		panic(errors.New(errors.PhaseHost, errors.KindNotFound).
			Detail("guest module %q exports no memory", mod.Name()).
			Build())
	}
	return guestMemory{mem: mem}
}

// read returns a view of n bytes at offset. The view aliases guest memory
// and is only valid until the guest runs again.
func (m guestMemory) read(offset, n uint32) []byte {
	data, ok := m.mem.Read(offset, n)
	if !ok {
		panic(errors.MemoryOutOfBounds(errors.PhaseHost, offset, n, m.mem.Size()))
	}
	return data
}

func (m guestMemory) write(offset uint32, data []byte) {
	if !m.mem.Write(offset, data) {
		panic(errors.MemoryOutOfBounds(errors.PhaseHost, offset, uint32(len(data)), m.mem.Size()))
	}
}
