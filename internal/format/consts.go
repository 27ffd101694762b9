// Package format describes the in-memory layout of allocator cells. The goal
// is to keep every raw pointer computation in one place so the allocator core
// only ever handles typed Cell views.
package format

// Cell header layout (native endianness):
//
//	Offset  Size  Description
//	0x00    8     Total cell size in bytes, header included.
//	0x08    4     Id of the thread that owns (or last owned) the cell.
//	0x0C    4     Magic tag: MagicFree, MagicSmall or MagicLarge.
//	0x10    8     Next link. Only meaningful while the cell is free; for live
//	              cells this is the first word of the caller's payload.
const (
	// HeaderSize is the number of bytes preceding every pointer handed to a caller.
	HeaderSize = 0x10

	// LinkSize is the size of the free-list link stored after the header.
	LinkSize = 8

	// Alignment is the alignment of every cell and every returned pointer.
	Alignment = 16

	// AlignmentMask is Alignment - 1.
	AlignmentMask = Alignment - 1

	// MinCellSize is the smallest cell the allocator will create: a header plus
	// room for the free-list link, rounded up to Alignment.
	MinCellSize = (HeaderSize + LinkSize + AlignmentMask) &^ AlignmentMask

	// DefaultChunkSize is the unit of OS acquisition (64 KiB).
	DefaultChunkSize = 64 << 10
)

// Magic tags stored in the header.
const (
	MagicFree  uint32 = 0x45455246 // "FREE"
	MagicSmall uint32 = 0x4c4c4d53 // "SMLL"
	MagicLarge uint32 = 0x4547524c // "LRGE"
)
