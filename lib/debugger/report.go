package debugger

import (
	"errors"
	"fmt"

	"github.com/userx007/ustm32-tools/lib/cli"
)

// StatusReport reads the status registers from t and renders them as a
// console table. Targets without an instruction counter get "n/a"
// rather than an error; any other read failure aborts the report.
func StatusReport(t Target) (string, error) {
	halted, err := t.Halted()
	if err != nil {
		return "", fmt.Errorf("halt state: %v", err)
	}
	pc, err := t.ReadPC()
	if err != nil {
		return "", fmt.Errorf("read PC: %v", err)
	}
	sp, err := t.ReadSP()
	if err != nil {
		return "", fmt.Errorf("read SP: %v", err)
	}
	lr, err := t.ReadLR()
	if err != nil {
		return "", fmt.Errorf("read LR: %v", err)
	}

	insns := "n/a"
	if n, err := t.ExecutedInstructions(); err == nil {
		insns = fmt.Sprintf("%d", n)
	} else if !errors.Is(err, ErrNotSupported) {
		return "", fmt.Errorf("instruction count: %v", err)
	}

	pairs := [][2]string{
		{"Halted", fmt.Sprintf("%v", halted)},
		{"Program Counter", fmt.Sprintf("0x%08X", pc)},
		{"Stack Pointer", fmt.Sprintf("0x%08X", sp)},
		{"Instructions Exec", insns},
		{"LR (Return)", fmt.Sprintf("0x%08X", lr)},
	}
	return cli.BuildKVTable("CPU STATUS REPORT", pairs), nil
}
