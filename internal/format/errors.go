package format

import "errors"

var (
	// ErrBadMagic indicates a header whose magic tag is not one the allocator writes.
	ErrBadMagic = errors.New("format: bad cell magic")
	// ErrBadSize indicates a header whose size is misaligned or out of range.
	ErrBadSize = errors.New("format: implausible cell size")
	// ErrFreeCell indicates a cell marked free was encountered where a live cell was required.
	ErrFreeCell = errors.New("format: cell not in use")
	// ErrNilPointer indicates a nil or misaligned payload pointer.
	ErrNilPointer = errors.New("format: nil or misaligned pointer")
)
