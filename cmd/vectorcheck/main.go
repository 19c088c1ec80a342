package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/userx007/ustm32-tools/lib/cli"
	"github.com/userx007/ustm32-tools/lib/elf_utils"
	"github.com/userx007/ustm32-tools/lib/logging"
)

func main() {
	root := &cobra.Command{
		Use:   "vectorcheck <elf-file>",
		Short: "Check an STM32 firmware ELF for a sane interrupt vector table",
		Long: "vectorcheck locates the flash-resident LOAD segment of an ELF32 " +
			"firmware image, reads the first four vector table entries and " +
			"validates the initial stack pointer and reset vector against the " +
			"STM32 memory map.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// a failed check should not dump usage text on top of the report
			cmd.SilenceUsage = true
			return checkELF(args[0])
		},
		SilenceErrors: true,
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stdout)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func checkELF(path string) error {
	f, err := os.Open(path)
	if err != nil {
		logging.Errorf("ERROR: cannot open %s: %v", path, err)
		return err
	}
	defer f.Close()

	header, err := elf_utils.ParseELF32Header(f)
	if err != nil {
		logging.Errorf("ERROR: %s: %v", path, err)
		return err
	}

	logging.Printf("ELF file: %s", path)
	logging.Printf("Entry point: 0x%08X", header.Entry)
	logging.Printf("Program headers: %d at offset 0x%X", header.Phnum, header.Phoff)
	if header.Machine != elf_utils.EM_ARM {
		logging.Warningf("WARNING: machine type 0x%X is not ARM", header.Machine)
	}

	segments, err := elf_utils.ScanLoadSegments(f, header)
	if err != nil {
		logging.Errorf("ERROR: %v", err)
		return err
	}

	if len(segments) > 0 {
		rows := make([][]string, 0, len(segments))
		for _, seg := range segments {
			rows = append(rows, []string{
				fmt.Sprintf("%d", seg.Index),
				fmt.Sprintf("0x%08X", seg.Header.Off),
				fmt.Sprintf("0x%08X", seg.Header.Vaddr),
				fmt.Sprintf("%d bytes", seg.Header.Filesz),
			})
		}
		logging.Printf("%s", cli.BuildTable([]string{"LOAD", "File Offset", "Virtual Addr", "Size"}, rows))
	}

	flash, err := elf_utils.FindFlashSegment(segments)
	if err != nil {
		logging.Errorf("ERROR: no segment found at 0x%08X (flash start)", uint32(elf_utils.FlashBase))
		return err
	}
	logging.Successf("*** LOAD segment %d is the FLASH segment at 0x%08X ***", flash.Index, uint32(elf_utils.FlashBase))

	vt, err := elf_utils.ReadVectorTable(f, flash.Header.Off)
	if err != nil {
		logging.Errorf("ERROR: %v", err)
		return err
	}

	logging.Printf("=== VECTOR TABLE ===")
	logging.Printf("Initial SP:    0x%08X", vt.StackPointer)
	logging.Printf("Reset Handler: 0x%08X", vt.Reset)
	logging.Printf("NMI Handler:   0x%08X", vt.NMI)
	logging.Printf("HardFault:     0x%08X", vt.HardFault)

	verdict := elf_utils.ValidateVectorTable(vt)
	if len(verdict.Diagnostics) > 0 {
		logging.Printf("PROBLEMS FOUND:")
		for _, d := range verdict.Diagnostics {
			if d.Severity == elf_utils.SeverityError {
				logging.Errorf("  %s", d)
			} else {
				logging.Warningf("  %s", d)
			}
		}
	}
	if !verdict.OK() {
		return errors.New("vector table check failed")
	}

	logging.Successf("Vector table looks good!")
	return nil
}
