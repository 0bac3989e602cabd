package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/laszlokorte/damasc/internal/bag"
	"github.com/laszlokorte/damasc/internal/httpapi"
	"github.com/laszlokorte/damasc/internal/observability"
	"github.com/laszlokorte/damasc/internal/repl"
)

func newHTTPCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Start the HTTP front-end",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHTTP(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP listen address")
	return cmd
}

func runHTTP(addr string) error {
	registry := observability.NewRegistry()
	metrics := observability.NewMetrics(registry)
	session := repl.NewSessionWithMetrics(bag.NewBundle(), metrics)

	mux := http.NewServeMux()
	httpapi.New(session, slog.Default()).Routes(mux)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	slog.Info("damasc http listening", "addr", addr)
	fmt.Println("listening on", addr)
	return http.ListenAndServe(addr, mux)
}
