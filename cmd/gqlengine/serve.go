package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	eventbus "github.com/hanpama/gqlengine/internal/eventbus"
	logging "github.com/hanpama/gqlengine/internal/logging"
	otel "github.com/hanpama/gqlengine/internal/otel"
	server "github.com/hanpama/gqlengine/internal/server"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the schema over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			eventbus.Use(eventbus.New())
			if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
				return err
			}
			shutdownTracing, err := otel.Setup(cfg.Opentelemetry.Endpoint, cfg.Opentelemetry.ServiceName)
			if err != nil {
				return err
			}
			defer func() { _ = shutdownTracing(context.Background()) }()

			eng, err := buildEngine(cfg)
			if err != nil {
				return err
			}

			sopts := []server.Option{server.WithTimeout(cfg.Server.TimeoutDuration())}
			if cfg.Server.Pretty {
				sopts = append(sopts, server.WithPretty())
			}
			if cfg.Server.MaxBodyBytes > 0 {
				sopts = append(sopts, server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes))
			}
			if len(cfg.Server.CORSOrigins) > 0 {
				sopts = append(sopts, server.WithCORS(cfg.Server.CORSOrigins...))
			}
			if len(cfg.Server.MetadataHeaders) > 0 {
				sopts = append(sopts, server.WithMetadataHeaders(cfg.Server.MetadataHeaders...))
			}
			var handler http.Handler = server.New(eng, sopts...)
			if cfg.Opentelemetry.Endpoint != "" {
				handler = otelhttp.NewHandler(handler, "graphql")
			}

			mux := http.NewServeMux()
			mux.Handle(cfg.Server.Path, handler)
			srv := &http.Server{Addr: cfg.Server.Addr, Handler: mux}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, os.Interrupt)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.WithFields(log.Fields{"addr": cfg.Server.Addr, "path": cfg.Server.Path}).Info("GraphQL server listening")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			log.Info("shutting down")
			sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeoutDuration())
			defer cancel()
			return srv.Shutdown(sctx)
		},
	}
	f := cmd.Flags()
	f.String("addr", ":8080", "HTTP listen address")
	f.String("path", "/graphql", "HTTP path of the GraphQL endpoint")
	f.String("timeout", "10s", "Per-request timeout")
	f.Bool("pretty", false, "Pretty-print JSON responses")
	f.Int64("max-body-bytes", 0, "Maximum request body size; 0 is unlimited")
	f.StringSlice("cors-origin", nil, "Allowed CORS origin; repeatable")
	f.StringSlice("metadata-header", nil, "Forward HTTP header into gRPC metadata; repeatable")
	f.Bool("introspection", true, "Enable GraphQL introspection")
	f.Int("max-concurrency", 0, "Maximum concurrent fields per selection set; 0 is unbounded")
	f.String("log-level", "info", "Log level")
	f.String("log-format", "text", "Log format: text or json")
	f.String("otel-endpoint", "", "OTLP gRPC collector endpoint")
	f.String("otel-service", "gqlengine", "OpenTelemetry service name")
	return cmd
}
