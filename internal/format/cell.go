package format

import (
	"fmt"
	"unsafe"
)

// header mirrors the first HeaderSize bytes of every cell.
type header struct {
	size  uint64
	owner uint32
	magic uint32
}

// Cell is a typed view over the header of a cell living in memory the
// allocator obtained from the OS. The zero Cell is the nil cell and terminates
// free lists.
//
// Cell is an address, not a Go pointer: the memory it refers to is outside the
// Go heap, so the GC neither scans nor moves it.
type Cell uintptr

// CellAt returns the cell whose header starts at p.
func CellAt(p unsafe.Pointer) Cell {
	return Cell(uintptr(p))
}

// FromPayload recovers the cell owning a pointer previously returned by
// Payload. This is the only place that steps backwards from a caller pointer
// to its header; callers must Check the result before trusting it.
func FromPayload(p unsafe.Pointer) (Cell, error) {
	addr := uintptr(p)
	if addr <= HeaderSize || addr&AlignmentMask != 0 {
		return 0, fmt.Errorf("%w: %#x", ErrNilPointer, addr)
	}
	return Cell(addr - HeaderSize), nil
}

func (c Cell) ptr() unsafe.Pointer {
	return unsafe.Pointer(c) //nolint:govet // cells live in mmapped memory, not the Go heap
}

func (c Cell) hdr() *header {
	return (*header)(c.ptr())
}

// Addr returns the address of the cell header.
func (c Cell) Addr() uintptr { return uintptr(c) }

// Pointer returns the cell header as an unsafe.Pointer.
func (c Cell) Pointer() unsafe.Pointer { return c.ptr() }

// Nil reports whether c is the nil cell.
func (c Cell) Nil() bool { return c == 0 }

// Size returns the total cell size including the header.
func (c Cell) Size() int { return int(c.hdr().size) }

// SetSize records the total cell size including the header.
func (c Cell) SetSize(n int) { c.hdr().size = uint64(n) }

// Owner returns the id of the thread that owns the cell.
func (c Cell) Owner() uint32 { return c.hdr().owner }

// SetOwner records the owning thread id.
func (c Cell) SetOwner(id uint32) { c.hdr().owner = id }

// Magic returns the magic tag.
func (c Cell) Magic() uint32 { return c.hdr().magic }

// SetMagic sets the magic tag.
func (c Cell) SetMagic(m uint32) { c.hdr().magic = m }

// Init writes a complete header in one call.
func (c Cell) Init(size int, owner, magic uint32) {
	h := c.hdr()
	h.size = uint64(size)
	h.owner = owner
	h.magic = magic
}

// Next returns the free-list successor. Only valid for free cells.
func (c Cell) Next() Cell {
	return *(*Cell)(unsafe.Add(c.ptr(), HeaderSize))
}

// SetNext sets the free-list successor.
func (c Cell) SetNext(n Cell) {
	*(*Cell)(unsafe.Add(c.ptr(), HeaderSize)) = n
}

// End returns the address one past the last byte of the cell.
func (c Cell) End() uintptr {
	return uintptr(c) + uintptr(c.hdr().size)
}

// Adjacent reports whether next starts exactly where c ends.
func (c Cell) Adjacent(next Cell) bool {
	return !next.Nil() && c.End() == uintptr(next)
}

// Offset returns the cell starting n bytes after c.
func (c Cell) Offset(n int) Cell {
	return c + Cell(n)
}

// Payload returns the pointer handed to callers.
func (c Cell) Payload() unsafe.Pointer {
	return unsafe.Add(c.ptr(), HeaderSize)
}

// PayloadSize returns the number of usable bytes behind Payload.
func (c Cell) PayloadSize() int {
	return c.Size() - HeaderSize
}

// Bytes returns the first n payload bytes as a slice aliasing cell memory.
func (c Cell) Bytes(n int) []byte {
	return unsafe.Slice((*byte)(c.Payload()), n)
}

// Check validates header plausibility. smallLimit is the exclusive upper bound
// for the size of a live small cell (chunk size plus MinCellSize). It returns
// ErrFreeCell for a header tagged free, so double frees surface distinctly.
func (c Cell) Check(smallLimit int) error {
	size := c.Size()
	if size < MinCellSize || !Aligned(size) {
		return fmt.Errorf("%w: cell %#x size %d", ErrBadSize, uintptr(c), size)
	}
	switch c.Magic() {
	case MagicSmall:
		if size >= smallLimit {
			return fmt.Errorf("%w: small cell %#x size %d >= %d", ErrBadSize, uintptr(c), size, smallLimit)
		}
		return nil
	case MagicLarge:
		if size < smallLimit-MinCellSize {
			return fmt.Errorf("%w: large cell %#x size %d", ErrBadSize, uintptr(c), size)
		}
		return nil
	case MagicFree:
		return fmt.Errorf("%w: cell %#x", ErrFreeCell, uintptr(c))
	default:
		return fmt.Errorf("%w: cell %#x magic %#x", ErrBadMagic, uintptr(c), c.Magic())
	}
}

// String implements fmt.Stringer for debugging output.
func (c Cell) String() string {
	if c.Nil() {
		return "cell(nil)"
	}
	return fmt.Sprintf("cell(%#x size=%d owner=%d magic=%#x)", uintptr(c), c.Size(), c.Owner(), c.Magic())
}
