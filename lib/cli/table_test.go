package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildTable(t *testing.T) {
	out := BuildTable(
		[]string{"LOAD", "File Offset"},
		[][]string{
			{"0", "0x00000074"},
			{"2", "0x00010000"},
		})

	assert.Contains(t, out, "LOAD")
	assert.Contains(t, out, "FILE OFFSET")
	assert.Contains(t, out, "0x00000074")
	assert.Contains(t, out, "0x00010000")
}

func TestBuildKVTable(t *testing.T) {
	out := BuildKVTable("CPU STATUS REPORT", [][2]string{
		{"Halted", "true"},
		{"Program Counter", "0x08000400"},
	})

	assert.Contains(t, out, "CPU STATUS REPORT")
	assert.Contains(t, out, "Halted")
	assert.Contains(t, out, "0x08000400")
}
