// Package mem provides the byte-addressable backing store that sits behind
// the cache model.
package mem

import "fmt"

// Memory size units.
const (
	KB uint64 = 1 << 10
	MB uint64 = 1 << 20
	GB uint64 = 1 << 30
)

// A Storage keeps the memory content of the simulated system.
//
// The storage is managed in units. Units are allocated lazily on first
// access, so a storage sized for a wide address space only consumes host
// memory for the regions that are actually touched.
type Storage struct {
	unitSize uint64
	capacity uint64
	data     map[uint64][]byte
}

// NewStorage creates a storage that can hold capacity bytes.
func NewStorage(capacity uint64) *Storage {
	return &Storage{
		unitSize: 4096,
		capacity: capacity,
		data:     make(map[uint64][]byte),
	}
}

// Capacity returns the number of bytes the storage can hold.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

func (s *Storage) parseAddress(addr uint64) (baseAddr, inUnitAddr uint64) {
	inUnitAddr = addr % s.unitSize
	baseAddr = addr - inUnitAddr

	return
}

func (s *Storage) unit(addr uint64) []byte {
	baseAddr, _ := s.parseAddress(addr)

	unit, ok := s.data[baseAddr]
	if !ok {
		unit = make([]byte, s.unitSize)
		s.data[baseAddr] = unit
	}

	return unit
}

// Read returns n bytes starting at addr.
func (s *Storage) Read(addr, n uint64) ([]byte, error) {
	if addr+n > s.capacity {
		return nil, fmt.Errorf(
			"reading [0x%x, 0x%x) is beyond the storage capacity 0x%x",
			addr, addr+n, s.capacity)
	}

	res := make([]byte, n)
	currAddr := addr
	dataOffset := uint64(0)

	for currAddr < addr+n {
		unit := s.unit(currAddr)
		baseAddr, inUnitAddr := s.parseAddress(currAddr)

		lenToRead := baseAddr + s.unitSize - currAddr
		if left := n - dataOffset; left < lenToRead {
			lenToRead = left
		}

		copy(res[dataOffset:dataOffset+lenToRead],
			unit[inUnitAddr:inUnitAddr+lenToRead])

		dataOffset += lenToRead
		currAddr += lenToRead
	}

	return res, nil
}

// Write stores data starting at addr.
func (s *Storage) Write(addr uint64, data []byte) error {
	n := uint64(len(data))
	if addr+n > s.capacity {
		return fmt.Errorf(
			"writing [0x%x, 0x%x) is beyond the storage capacity 0x%x",
			addr, addr+n, s.capacity)
	}

	currAddr := addr
	dataOffset := uint64(0)

	for dataOffset < n {
		unit := s.unit(currAddr)
		baseAddr, inUnitAddr := s.parseAddress(currAddr)

		lenToWrite := baseAddr + s.unitSize - currAddr
		if left := n - dataOffset; left < lenToWrite {
			lenToWrite = left
		}

		copy(unit[inUnitAddr:inUnitAddr+lenToWrite],
			data[dataOffset:dataOffset+lenToWrite])

		dataOffset += lenToWrite
		currAddr += lenToWrite
	}

	return nil
}
