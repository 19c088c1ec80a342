package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userx007/ustm32-tools/lib/elf_utils"
	"github.com/userx007/ustm32-tools/lib/logging"
)

// writeImage writes an ELF32 file with one LOAD segment at vaddr whose
// payload is the given vector table, and returns its path.
func writeImage(t *testing.T, vaddr uint32, vt [4]uint32) string {
	t.Helper()

	dataOff := uint32(elf_utils.ELF32HeaderSize + elf_utils.ProgHeader32Size)
	hdr := make([]byte, elf_utils.ELF32HeaderSize)
	copy(hdr, []byte{0x7f, 'E', 'L', 'F', elf_utils.ELFCLASS32, elf_utils.ELFDATA2LSB, 1})
	binary.LittleEndian.PutUint16(hdr[16:], 2) // ET_EXEC
	binary.LittleEndian.PutUint16(hdr[18:], elf_utils.EM_ARM)
	binary.LittleEndian.PutUint32(hdr[28:], elf_utils.ELF32HeaderSize)
	binary.LittleEndian.PutUint16(hdr[42:], elf_utils.ProgHeader32Size)
	binary.LittleEndian.PutUint16(hdr[44:], 1)

	buf := bytes.NewBuffer(hdr)
	ph := elf_utils.ProgHeader32{
		Type:   elf_utils.PT_LOAD,
		Off:    dataOff,
		Vaddr:  vaddr,
		Filesz: elf_utils.VectorTableSize,
	}
	require.NoError(t, binary.Write(buf, binary.LittleEndian, ph))
	for _, word := range vt {
		require.NoError(t, binary.Write(buf, binary.LittleEndian, word))
	}

	path := filepath.Join(t.TempDir(), "firmware.elf")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

// runCheckELF captures everything checkELF prints through the default
// logger.
func runCheckELF(t *testing.T, path string) (string, error) {
	t.Helper()
	color.NoColor = true

	buf := &bytes.Buffer{}
	logging.SetOutput(buf)
	defer logging.SetOutput(nil)

	err := checkELF(path)
	return buf.String(), err
}

// assertOrder requires every marker to appear in out, in the given order.
func assertOrder(t *testing.T, out string, markers ...string) {
	t.Helper()
	last := -1
	for _, marker := range markers {
		idx := strings.Index(out, marker)
		require.GreaterOrEqual(t, idx, 0, "missing %q in output:\n%s", marker, out)
		require.Greater(t, idx, last, "%q out of order in output:\n%s", marker, out)
		last = idx
	}
}

func TestCheckELFGoodImage(t *testing.T) {
	path := writeImage(t, elf_utils.FlashBase,
		[4]uint32{0x20001000, 0x08000101, 0x08000201, 0x08000301})

	out, err := runCheckELF(t, path)
	require.NoError(t, err)

	assertOrder(t, out,
		"ELF file: "+path,
		"Program headers: 1 at offset 0x34",
		"FILE OFFSET",
		"FLASH segment at 0x08000000",
		"=== VECTOR TABLE ===",
		"Initial SP:    0x20001000",
		"Reset Handler: 0x08000101",
		"NMI Handler:   0x08000201",
		"HardFault:     0x08000301",
		"Vector table looks good!",
	)
	assert.NotContains(t, out, "PROBLEMS FOUND")
}

func TestCheckELFWarningsOnlyStillPasses(t *testing.T) {
	path := writeImage(t, elf_utils.FlashBase,
		[4]uint32{0x10000000, 0x08000101, 0, 0})

	out, err := runCheckELF(t, path)
	require.NoError(t, err)

	assertOrder(t, out,
		"=== VECTOR TABLE ===",
		"PROBLEMS FOUND:",
		"WARNING: SP 0x10000000 outside expected RAM range",
		"Vector table looks good!",
	)
}

func TestCheckELFAccumulatesErrors(t *testing.T) {
	path := writeImage(t, elf_utils.FlashBase,
		[4]uint32{0, 0x09000000, 0, 0})

	out, err := runCheckELF(t, path)
	require.Error(t, err)

	assertOrder(t, out,
		"=== VECTOR TABLE ===",
		"PROBLEMS FOUND:",
		"ERROR: Stack Pointer is 0",
		"ERROR: Reset Handler 0x09000000 outside flash",
		"ERROR: Reset Handler 0x09000000 missing Thumb bit",
	)
	assert.NotContains(t, out, "Vector table looks good!")
}

func TestCheckELFNoFlashSegment(t *testing.T) {
	path := writeImage(t, 0x00000000, [4]uint32{1, 2, 3, 4})

	out, err := runCheckELF(t, path)
	require.ErrorIs(t, err, elf_utils.ErrNoFlashSegment)

	assert.Contains(t, out, "no segment found at 0x08000000")
	assert.NotContains(t, out, "VECTOR TABLE")
}

func TestCheckELFMissingFile(t *testing.T) {
	out, err := runCheckELF(t, filepath.Join(t.TempDir(), "nope.elf"))
	require.Error(t, err)
	assert.Contains(t, out, "cannot open")
}
