package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/sysmon/backend/internal/collector"
	"github.com/sysmon/backend/internal/config"
	"github.com/sysmon/backend/internal/execpool"
	"github.com/sysmon/backend/internal/mock"
	"github.com/sysmon/backend/internal/worker"
	"github.com/sysmon/backend/internal/ws"
)

func main() {
	mockMode := flag.Bool("mock", false, "Serve synthetic telemetry instead of reading the system")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	port := flag.Int("port", 0, "Override server port")
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatal("failed to load config", zap.String("path", *configPath), zap.Error(err))
		}
		// Running without a config file is the common local case.
		cfg = config.Default()
		log.Info("no config file, using defaults", zap.String("path", *configPath))
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := worker.NewRegistry(cfg.Monitor.ClaimTTL, log)
	pool := execpool.New(cfg.Monitor.PoolSize)

	var hostC ws.HostCollector
	var netC ws.NetworkCollector
	if *mockMode {
		log.Info("starting in mock mode")
		hostC = mock.NewHostSource(cfg.Monitor.SampleInterval)
		netC = mock.NewNetworkSource(cfg.Monitor.Interface, cfg.Monitor.SampleInterval)
	} else {
		hostC = collector.NewHost(cfg.Monitor.ProcessCount, log)
		netC = collector.NewNetwork(cfg.Monitor.Interface, cfg.Monitor.SampleInterval)
	}

	loop := &ws.HostLoop{Source: hostC, Pool: pool}
	server := ws.NewServer(ctx, registry, loop, hostC, netC, log)

	mux := http.NewServeMux()
	server.SetupRoutes(mux)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down")
		cancel()
	}()

	if err := ws.ListenAndServe(ctx, cfg.Server.Host, cfg.Server.Port, mux, log); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
