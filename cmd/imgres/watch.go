package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gogpu/imgres"
	"github.com/gogpu/imgres/manager"
)

var watchCmd = &cobra.Command{
	Use:   "watch <ref>...",
	Short: "Keep resources open, reload them on change and serve metrics",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().String("metrics-addr", ":9090", "address of the /metrics endpoint")
	mustBindPFlag("metrics.addr", watchCmd.Flags().Lookup("metrics-addr"))
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log := imgres.Logger()
	var m *manager.Manager
	m = manager.New(
		manager.WithResourceOptions(resourceOptions()...),
		manager.WithEvictCallback(func(ref string) {
			// Reopen on change, like a widget would on its next frame.
			go func() {
				if _, err := m.Acquire(ctx, ref, nil); err != nil && !errors.Is(err, manager.ErrClosed) {
					log.Warn("reopen failed", "ref", ref, "error", err)
				}
			}()
		}),
	)
	defer m.Close()

	for _, ref := range args {
		r, err := m.Acquire(ctx, ref, nil)
		if err != nil {
			return err
		}
		printInfo(cmd.OutOrStdout(), r, false)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(manager.NewCollector(m, ""))
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              viper.GetString("metrics.addr"),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
			cancel()
		}
	}()
	defer func() {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		_ = srv.Shutdown(shutdownCtx)
	}()

	err := m.Watch(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
