package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/userx007/ustm32-tools/lib/debugger"
	"github.com/userx007/ustm32-tools/lib/logging"
)

type options struct {
	connect string
	timeout time.Duration
}

func addFlags(fs *pflag.FlagSet, opts *options) {
	fs.StringVarP(&opts.connect, "connect", "c", "localhost:3333", "GDB stub address (host:port)")
	fs.DurationVar(&opts.timeout, "timeout", 5*time.Second, "connect timeout")
}

func main() {
	opts := &options{}
	root := &cobra.Command{
		Use:   "cpustatus",
		Short: "Print a CPU status report from a live debug session",
		Long: "cpustatus connects to a GDB remote stub (QEMU, Renode, OpenOCD) " +
			"and prints the halted flag, program counter, stack pointer and " +
			"link register of the target CPU.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return printStatus(opts)
		},
		SilenceErrors: true,
	}
	addFlags(root.Flags(), opts)
	root.SetOut(os.Stdout)
	root.SetErr(os.Stdout)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func printStatus(opts *options) error {
	target, err := debugger.Dial(opts.connect, opts.timeout)
	if err != nil {
		logging.Errorf("ERROR: %v", err)
		return err
	}
	defer target.Close()

	report, err := debugger.StatusReport(target)
	if err != nil {
		logging.Errorf("ERROR: CPU status: %v", err)
		return err
	}
	logging.Printf("%s", report)
	return nil
}
