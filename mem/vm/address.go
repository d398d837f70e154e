// Package vm provides the models for address translations
package vm

// Geometry of the simulated system. The virtual address space holds NumPages
// pages and the physical memory holds NumFrames frames, both of PageSize
// bytes.
const (
	Log2PageSize = 10
	PageSize     = 1 << Log2PageSize
	NumPages     = 1024
	NumFrames    = 256

	OffsetMask = PageSize - 1
	PageMask   = NumPages - 1

	VirtualMemorySize  = NumPages * PageSize
	PhysicalMemorySize = NumFrames * PageSize
)

// PageNumber identifies a logical page in the virtual address space.
type PageNumber uint16

// FrameNumber identifies a frame in the physical memory.
type FrameNumber uint16

// Decompose splits a virtual address into its logical page number and its
// offset within the page. Only the low 20 bits of the address are used; the
// address is treated as an unsigned bit pattern.
func Decompose(vAddr int32) (page PageNumber, offset uint32) {
	bits := uint32(vAddr)
	offset = bits & OffsetMask
	page = PageNumber((bits >> Log2PageSize) & PageMask)

	return page, offset
}

// Compose builds the physical address of an offset within a frame.
func Compose(frame FrameNumber, offset uint32) uint32 {
	return uint32(frame)<<Log2PageSize | offset&OffsetMask
}

// PageBase returns the address of the first byte of the page in the virtual
// address space.
func PageBase(page PageNumber) uint64 {
	return uint64(page) << Log2PageSize
}

// FrameBase returns the address of the first byte of the frame in the
// physical memory.
func FrameBase(frame FrameNumber) uint64 {
	return uint64(frame) << Log2PageSize
}
