package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"peerlink/internal/logging"
	"peerlink/internal/relay"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logging.NewLogger(*logLevel)
	if err != nil {
		os.Stderr.WriteString("relay: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	srv := relay.NewServer(log, prometheus.DefaultRegisterer)

	log.Info("relay listening", zap.String("addr", *addr))
	if err := http.ListenAndServe(*addr, srv.Handler()); err != nil {
		log.Fatal("relay stopped", zap.Error(err))
	}
}
