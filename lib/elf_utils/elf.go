package elf_utils

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ELF constants
const (
	ELFCLASS32 = 1
	ELFCLASS64 = 2

	ELFDATA2LSB = 1

	// EM_ARM is the e_machine value for 32-bit ARM cores
	EM_ARM = 0x28

	// PT_LOAD marks a loadable program segment
	PT_LOAD = 1

	// ELF32HeaderSize is the size of a complete ELF32 file header
	ELF32HeaderSize = 52

	// ProgHeader32Size is the size of one ELF32 program header entry
	ProgHeader32Size = 32
)

// STM32 memory map
const (
	// FlashBase is where this MCU family maps internal flash
	FlashBase = 0x08000000
	// FlashEnd is the upper bound of the expected flash window (512 KB parts)
	FlashEnd = 0x08080000
	// RAMBase is the start of SRAM
	RAMBase = 0x20000000
	// RAMEnd is the upper bound of the expected initial SP (128 KB parts)
	RAMEnd = 0x20020000
)

var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

var (
	// ErrInvalidMagic means the file does not start with the ELF identifier
	ErrInvalidMagic = errors.New("invalid ELF magic number")
	// ErrTruncated means a fixed-size read got fewer bytes than the format requires
	ErrTruncated = errors.New("truncated ELF file")
	// ErrUnsupportedClass means the file is not a little-endian ELF32 image
	ErrUnsupportedClass = errors.New("unsupported ELF class")
	// ErrNoFlashSegment means no LOAD segment is mapped at FlashBase
	ErrNoFlashSegment = errors.New("no LOAD segment at flash base")
)

// ELF32Header represents the ELF header for 32-bit binaries.
type ELF32Header struct {
	Ident     [16]byte
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint32
	Phoff     uint32
	Shoff     uint32
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

// ProgHeader32 represents a 32-bit ELF program header.
type ProgHeader32 struct {
	Type   uint32
	Off    uint32
	Vaddr  uint32
	Paddr  uint32
	Filesz uint32
	Memsz  uint32
	Flags  uint32
	Align  uint32
}

// LoadSegment is a PT_LOAD program header together with its table index.
type LoadSegment struct {
	Index  int
	Header ProgHeader32
}

// IsFlash reports whether the segment is mapped at the flash base address.
func (seg LoadSegment) IsFlash() bool {
	return seg.Header.Vaddr == FlashBase
}

// ParseELF32Header reads exactly ELF32HeaderSize bytes from r and decodes
// the ELF header. The read advances r to byte 52; callers must reseek
// before scanning program headers. Any short read is ErrTruncated, never
// a partial header.
func ParseELF32Header(r io.Reader) (*ELF32Header, error) {
	var buf [ELF32HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("reading ELF header: %w: %v", ErrTruncated, err)
	}

	if !bytes.Equal(buf[:4], elfMagic) {
		return nil, ErrInvalidMagic
	}

	var header ELF32Header
	copy(header.Ident[:], buf[:16])

	if class := header.Ident[4]; class != ELFCLASS32 {
		return nil, fmt.Errorf("class %d (only ELF32 is supported): %w", class, ErrUnsupportedClass)
	}
	if data := header.Ident[5]; data != ELFDATA2LSB {
		return nil, fmt.Errorf("big-endian images are not supported: %w", ErrUnsupportedClass)
	}

	header.Type = binary.LittleEndian.Uint16(buf[16:18])
	header.Machine = binary.LittleEndian.Uint16(buf[18:20])
	header.Version = binary.LittleEndian.Uint32(buf[20:24])
	header.Entry = binary.LittleEndian.Uint32(buf[24:28])
	header.Phoff = binary.LittleEndian.Uint32(buf[28:32])
	header.Shoff = binary.LittleEndian.Uint32(buf[32:36])
	header.Flags = binary.LittleEndian.Uint32(buf[36:40])
	header.Ehsize = binary.LittleEndian.Uint16(buf[40:42])
	header.Phentsize = binary.LittleEndian.Uint16(buf[42:44])
	header.Phnum = binary.LittleEndian.Uint16(buf[44:46])
	header.Shentsize = binary.LittleEndian.Uint16(buf[46:48])
	header.Shnum = binary.LittleEndian.Uint16(buf[48:50])
	header.Shstrndx = binary.LittleEndian.Uint16(buf[50:52])

	if header.Phnum > 0 && header.Phentsize != ProgHeader32Size {
		return nil, fmt.Errorf("program header entry size %d, want %d: %w",
			header.Phentsize, ProgHeader32Size, ErrUnsupportedClass)
	}

	return &header, nil
}

// ScanLoadSegments seeks to the program header table and decodes all
// Phnum entries, returning the PT_LOAD ones in table order. A short read
// mid-loop aborts the scan with ErrTruncated; entries are never silently
// skipped.
func ScanLoadSegments(rs io.ReadSeeker, header *ELF32Header) ([]LoadSegment, error) {
	if _, err := rs.Seek(int64(header.Phoff), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to program headers: %v", err)
	}

	var segments []LoadSegment
	for i := 0; i < int(header.Phnum); i++ {
		var buf [ProgHeader32Size]byte
		if _, err := io.ReadFull(rs, buf[:]); err != nil {
			return nil, fmt.Errorf("reading program header %d: %w: %v", i, ErrTruncated, err)
		}

		var ph ProgHeader32
		if err := binary.Read(bytes.NewReader(buf[:]), binary.LittleEndian, &ph); err != nil {
			return nil, fmt.Errorf("decoding program header %d: %v", i, err)
		}

		if ph.Type == PT_LOAD {
			segments = append(segments, LoadSegment{Index: i, Header: ph})
		}
	}
	return segments, nil
}

// FindFlashSegment selects the LOAD segment mapped at FlashBase.
func FindFlashSegment(segments []LoadSegment) (LoadSegment, error) {
	for _, seg := range segments {
		if seg.IsFlash() {
			return seg, nil
		}
	}
	return LoadSegment{}, ErrNoFlashSegment
}
