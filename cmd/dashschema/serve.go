package main

import (
	"github.com/spf13/cobra"

	"github.com/reoring/dashschema/internal/server"
)

func serveCmd(a *app) *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the schema catalog over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.catalog()
			if err != nil {
				return err
			}
			sc := a.cfg.Server
			if cmd.Flags().Changed("host") {
				sc.Host = host
			}
			if cmd.Flags().Changed("port") {
				sc.Port = port
			}
			return server.Run(cmd.Context(), server.Config{
				Host:            sc.Host,
				Port:            sc.Port,
				ReadTimeout:     sc.ReadTimeout,
				WriteTimeout:    sc.WriteTimeout,
				ShutdownTimeout: sc.ShutdownTimeout,
				CORSOrigins:     sc.CORSOrigins,
				Catalog:         c,
				MaxDepth:        a.cfg.Catalog.MaxDepth,
				Logger:          a.log,
			})
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides server.host)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides server.port)")
	return cmd
}
