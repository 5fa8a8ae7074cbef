package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shadowsync/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Receive edit and form-submit triggers over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.ServerAddr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.run(func(ws *workspace) error {
				if a.cfg.ServerToken == "" {
					log.Warn("server.token is not set; trigger routes accept unauthenticated requests")
				}
				srv := server.New(ws.h, a.cfg.ServerToken)

				errc := make(chan error, 1)
				go func() { errc <- srv.Start(addr) }()

				select {
				case err := <-errc:
					return err
				case <-ctx.Done():
				}
				log.Info("Shutting down trigger receiver")
				sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(sctx)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from config)")
	return cmd
}
