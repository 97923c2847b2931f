package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pario-ai/ipstrategy/pkg/server"
)

func newServeCmd(configPath *string) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP strategy API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			addr := a.cfg.Listen
			if listen != "" {
				addr = listen
			}
			a.logger.Info("starting ipstrategy",
				"listen", addr,
				"backend", a.gateway.Backend(),
				"cache", a.cfg.Cache.Driver,
				"ttl", a.gateway.TTL(),
			)
			return server.New(addr, a.gateway, a.logger).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "override the listen address")
	return cmd
}
