package mmu

// A BackingStore provides the content of the virtual address space. The MMU
// reads one page from it on every page fault.
type BackingStore interface {
	Read(address uint64, length uint64) ([]byte, error)
}
