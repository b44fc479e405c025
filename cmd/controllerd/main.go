package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nimbusmesh/controller/internal/ingress"
	"github.com/nimbusmesh/controller/internal/link"
	"github.com/nimbusmesh/controller/internal/reconciler"
	"github.com/nimbusmesh/controller/internal/registry"
	"github.com/nimbusmesh/controller/pkg/log"
	"github.com/nimbusmesh/controller/pkg/metrics"
)

var (
	// Version information (set via ldflags during build).
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "controllerd",
	Short: "controllerd runs the edge-function orchestration controller core",
	Long: `controllerd accepts workflow specs and node/cluster registrations,
lowers logical workflow graphs into per-node placements, and reconciles
the fleet against that target state through a single-writer event loop.`,
	Version: Version,
	RunE:    runController,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"controllerd version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.Flags().String("ingress-addr", "0.0.0.0:7447", "address the gRPC ingress server listens on")
	rootCmd.Flags().String("metrics-addr", "127.0.0.1:9090", "address the metrics/health HTTP server listens on")
	rootCmd.Flags().Bool("enable-pprof", false, "expose net/http/pprof endpoints on the metrics address")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "output logs in JSON format")

	cobra.OnInitialize(initLogging)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

func runController(cmd *cobra.Command, _ []string) error {
	ingressAddr, _ := cmd.Flags().GetString("ingress-addr")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	pprofEnabled, _ := cmd.Flags().GetBool("enable-pprof")

	log.Info("controllerd starting")

	reg := registry.New()
	multicast := link.NewMulticastController(uuid.New())
	links := link.NewRegistry(multicast)
	task := reconciler.New(reg, links)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go task.Run(ctx)
	log.Info("reconciler loop started")

	go reg.HealthLoop(ctx, task)
	log.Info("registry health loop started")

	collector := metrics.NewCollector(func() metrics.FleetSample {
		nodeCounts, clusterCounts := reg.FleetCounts()
		return metrics.FleetSample{
			NodeCounts:    nodeCounts,
			ClusterCounts: clusterCounts,
			Workflows:     len(task.ListWorkflows(ctx)),
		}
	})
	collector.Start()
	defer collector.Stop()
	log.Info("metrics collector started")

	metrics.SetVersion(Version)
	metrics.RegisterComponent("registry", true, "ready")
	metrics.RegisterComponent("reconciler", true, "ready")
	metrics.RegisterComponent("api", false, "initializing")

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/health", metrics.HealthHandler())
	mux.Handle("/ready", metrics.ReadyHandler())
	mux.Handle("/live", metrics.LivenessHandler())
	if pprofEnabled {
		mux.Handle("/debug/pprof/", http.DefaultServeMux)
	}
	metricsSrv := &http.Server{Addr: metricsAddr, Handler: mux}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Logger.Error().Err(err).Msg("metrics server error")
		}
	}()
	log.Logger.Info().Str("addr", metricsAddr).Msg("metrics/health endpoints listening")

	ingressSrv := ingress.NewServer(task, reg)
	errCh := make(chan error, 1)
	go func() {
		if err := ingressSrv.Start(ingressAddr); err != nil {
			errCh <- fmt.Errorf("ingress server error: %w", err)
		}
	}()

	time.Sleep(200 * time.Millisecond)
	metrics.RegisterComponent("api", true, "ready")
	log.Logger.Info().Str("addr", ingressAddr).Msg("ingress server listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info("shutdown signal received")
	case err := <-errCh:
		log.Logger.Error().Err(err).Msg("fatal server error")
	}

	ingressSrv.Stop()
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Logger.Warn().Err(err).Msg("metrics server shutdown error")
	}

	log.Info("controllerd shutdown complete")
	return nil
}
