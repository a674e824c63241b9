package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hugo-lorenzo-mato/faultline/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve recorded crash dumps over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		serverCfg := web.DefaultConfig()
		serverCfg.Host = cfg.Serve.Host
		serverCfg.Port = cfg.Serve.Port
		serverCfg.CORSOrigins = cfg.Serve.CORSOrigins
		serverCfg.DumpDir = cfg.Dumps.Dir

		server := web.New(serverCfg, logger)

		g, ctx := errgroup.WithContext(ctx)
		g.Go(server.Start)
		g.Go(func() error {
			<-ctx.Done()
			return server.Shutdown(context.Background())
		})
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
