package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/faultline"
	"github.com/hugo-lorenzo-mato/faultline/internal/diagnostics"
)

var selftestMessage string

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Install the fault hook and trigger a fault on purpose",
	Long: `selftest exercises the whole dispatch path end to end: it installs the
fault hook, panics on a worker goroutine, and lets the process die. The
fault message appears on stderr (and a crash dump is recorded when dumps
are enabled), then the runtime terminates the process non-zero.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		faultline.InstallOnce()
		if cfg.Dumps.Enabled {
			writer := diagnostics.NewDumpWriter(
				cfg.Dumps.Dir,
				cfg.Dumps.MaxFiles,
				cfg.Dumps.IncludeStack,
				cfg.Dumps.IncludeEnv,
				logger,
			)
			faultline.SetHandler(writer.Handler())
		}

		faultline.Go(func() {
			panic(selftestMessage)
		})

		// The re-raised panic on the worker goroutine terminates the
		// process; this deadline only guards against it not arriving.
		time.Sleep(5 * time.Second)
		return nil
	},
}

func init() {
	selftestCmd.Flags().StringVar(&selftestMessage, "message", "faultline selftest fault",
		"panic message to raise")

	rootCmd.AddCommand(selftestCmd)
}
