package mem

import (
	"fmt"
	"log"
	"os"
)

// A BackingStore is a read-only byte image of the whole virtual address
// space. Byte i of the image is the value of virtual address i.
type BackingStore struct {
	data  []byte
	close func() error
}

// NewBackingStore wraps an in-memory image. The image must hold at least
// size bytes; only the first size bytes are used.
func NewBackingStore(image []byte, size uint64) (*BackingStore, error) {
	if uint64(len(image)) < size {
		return nil, fmt.Errorf(
			"backing store holds %d bytes, need %d", len(image), size)
	}

	return &BackingStore{
		data:  image[:size],
		close: func() error { return nil },
	}, nil
}

// OpenBackingStore maps the first size bytes of the file at path read-only.
// Files shorter than size are rejected. A longer file is accepted and the
// extra bytes are ignored, which is reported to logger when it is not nil.
func OpenBackingStore(
	path string,
	size uint64,
	logger *log.Logger,
) (*BackingStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open backing store: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat backing store: %w", err)
	}

	fileSize := uint64(info.Size())
	if fileSize < size {
		return nil, fmt.Errorf("backing store %s holds %d bytes, need %d",
			path, fileSize, size)
	}

	if fileSize > size && logger != nil {
		logger.Printf("backing store %s holds %d bytes, using the first %d",
			path, fileSize, size)
	}

	data, unmap, err := mapFile(f, int(size))
	if err != nil {
		return nil, fmt.Errorf("map backing store: %w", err)
	}

	return &BackingStore{data: data, close: unmap}, nil
}

// Size returns the number of bytes in the image.
func (b *BackingStore) Size() uint64 {
	return uint64(len(b.data))
}

// Read returns a copy of length bytes starting at address.
func (b *BackingStore) Read(address uint64, length uint64) ([]byte, error) {
	size := b.Size()
	if address >= size || length > size-address {
		return nil, fmt.Errorf("%w: address %d, length %d, capacity %d",
			ErrOutOfRange, address, length, size)
	}

	res := make([]byte, length)
	copy(res, b.data[address:address+length])

	return res, nil
}

// Close releases the image. The store must not be used afterwards.
func (b *BackingStore) Close() error {
	if b.close == nil {
		return nil
	}

	err := b.close()
	b.close = nil
	b.data = nil

	return err
}
