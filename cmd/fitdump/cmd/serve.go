package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP decode service",
		Long: `Start an HTTP service that decodes FIT files posted to it.

Endpoints:
  POST /v1/decode   decode the request body; query: filter and read options
  POST /v1/check    integrity report for the request body
  GET  /healthz     liveness probe
  GET  /metrics     Prometheus metrics

Examples:
  fitdump serve --addr :8080
  curl --data-binary @activity.fit "localhost:8080/v1/decode?filter=name=='session'"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			profilePath, _ := cmd.Flags().GetString("profile")
			maxBody, _ := cmd.Flags().GetInt64("max-body-bytes")

			server := NewServer(ServerConfig{
				Addr:         addr,
				ProfilePath:  profilePath,
				MaxBodyBytes: maxBody,
			}, loggerFrom(cmd))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return server.ListenAndServe(ctx)
		},
	}

	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().String("profile", "", "YAML profile file (default: embedded profile)")
	serveCmd.Flags().Int64("max-body-bytes", 64<<20, "Maximum accepted request body size")
	return serveCmd
}
