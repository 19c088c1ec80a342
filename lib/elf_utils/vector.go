package elf_utils

import (
	"encoding/binary"
	"fmt"
	"io"
)

// VectorTableSize covers the first four vector table entries
const VectorTableSize = 16

// VectorTable holds the first four words of the Cortex-M vector table.
type VectorTable struct {
	StackPointer uint32
	Reset        uint32
	NMI          uint32
	HardFault    uint32
}

// ReadVectorTable seeks to the flash segment's file offset and decodes
// the four leading vector table words. A short read is ErrTruncated.
func ReadVectorTable(rs io.ReadSeeker, flashOffset uint32) (*VectorTable, error) {
	if _, err := rs.Seek(int64(flashOffset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to vector table: %v", err)
	}

	var buf [VectorTableSize]byte
	if _, err := io.ReadFull(rs, buf[:]); err != nil {
		return nil, fmt.Errorf("reading vector table: %w: %v", ErrTruncated, err)
	}

	return &VectorTable{
		StackPointer: binary.LittleEndian.Uint32(buf[0:4]),
		Reset:        binary.LittleEndian.Uint32(buf[4:8]),
		NMI:          binary.LittleEndian.Uint32(buf[8:12]),
		HardFault:    binary.LittleEndian.Uint32(buf[12:16]),
	}, nil
}
