package elf_utils

import "fmt"

// Severity classifies a validation finding. Only error-level findings
// fail the check; warnings are informational.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "ERROR"
	}
	return "WARNING"
}

// Diagnostic is a single validation finding.
type Diagnostic struct {
	Severity Severity
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// Verdict is the outcome of validating one vector table. Diagnostics
// keep detection order.
type Verdict struct {
	Diagnostics []Diagnostic
}

// OK reports whether the vector table passed, i.e. no error-level
// diagnostics were found. Warnings alone never fail the check.
func (v Verdict) OK() bool {
	for _, d := range v.Diagnostics {
		if d.Severity == SeverityError {
			return false
		}
	}
	return true
}

func (v *Verdict) errorf(format string, a ...interface{}) {
	v.Diagnostics = append(v.Diagnostics, Diagnostic{SeverityError, fmt.Sprintf(format, a...)})
}

func (v *Verdict) warnf(format string, a ...interface{}) {
	v.Diagnostics = append(v.Diagnostics, Diagnostic{SeverityWarning, fmt.Sprintf(format, a...)})
}

// ValidateVectorTable checks the initial stack pointer and the reset
// vector against the STM32 memory map. All applicable findings are
// accumulated so one run reports every problem; in particular the flash
// range check and the Thumb bit check on the reset vector are evaluated
// independently and can both fire for the same address. Pure function:
// the same table always yields the same verdict.
func ValidateVectorTable(vt *VectorTable) Verdict {
	var verdict Verdict

	if vt.StackPointer == 0 {
		verdict.errorf("Stack Pointer is 0")
	} else if vt.StackPointer < RAMBase || vt.StackPointer > RAMEnd {
		verdict.warnf("SP 0x%08X outside expected RAM range", vt.StackPointer)
	}

	if vt.Reset == 0 {
		verdict.errorf("Reset Handler is 0")
	} else {
		if vt.Reset < FlashBase || vt.Reset > FlashEnd {
			verdict.errorf("Reset Handler 0x%08X outside flash", vt.Reset)
		}
		if vt.Reset&1 == 0 {
			verdict.errorf("Reset Handler 0x%08X missing Thumb bit", vt.Reset)
		}
	}

	// NMI and HardFault entries are reported by the caller for
	// visibility but not range-checked.
	return verdict
}
