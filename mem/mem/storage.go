// Package mem provides the byte stores of the simulated system: the physical
// memory and the read-only backing store.
package mem

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when an access falls outside a store.
var ErrOutOfRange = errors.New("access beyond the storage capacity")

// A Storage keeps the data of the physical memory.
//
// The storage is organized in units of the frame size. All the bytes are
// allocated up front and start at zero.
type Storage struct {
	unitSize uint64
	capacity uint64
	data     []byte
}

// NewStorage creates a storage object with the specified capacity. The
// capacity must be a multiple of the unit size.
func NewStorage(capacity, unitSize uint64) *Storage {
	if unitSize == 0 || capacity%unitSize != 0 {
		panic("capacity must be a multiple of the unit size")
	}

	storage := new(Storage)
	storage.unitSize = unitSize
	storage.capacity = capacity
	storage.data = make([]byte, capacity)

	return storage
}

// Capacity returns the number of bytes the storage holds.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

func (s *Storage) checkRange(address, length uint64) error {
	if address >= s.capacity || length > s.capacity-address {
		return fmt.Errorf("%w: address %d, length %d, capacity %d",
			ErrOutOfRange, address, length, s.capacity)
	}

	return nil
}

// Read returns a copy of length bytes starting at address.
func (s *Storage) Read(address uint64, length uint64) ([]byte, error) {
	if err := s.checkRange(address, length); err != nil {
		return nil, err
	}

	res := make([]byte, length)
	copy(res, s.data[address:address+length])

	return res, nil
}

// Write copies data into the storage starting at address.
func (s *Storage) Write(address uint64, data []byte) error {
	if err := s.checkRange(address, uint64(len(data))); err != nil {
		return err
	}

	copy(s.data[address:], data)

	return nil
}

// ReadUnit returns a copy of a whole unit.
func (s *Storage) ReadUnit(unit uint64) ([]byte, error) {
	return s.Read(unit*s.unitSize, s.unitSize)
}

// WriteUnit overwrites a whole unit. The data must be exactly one unit long.
func (s *Storage) WriteUnit(unit uint64, data []byte) error {
	if uint64(len(data)) != s.unitSize {
		return fmt.Errorf("unit data must be %d bytes, got %d",
			s.unitSize, len(data))
	}

	return s.Write(unit*s.unitSize, data)
}
