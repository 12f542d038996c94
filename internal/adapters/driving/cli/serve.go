package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	promobs "github.com/custodia-labs/flightdeck/internal/adapters/driven/metrics/prometheus"
	"github.com/custodia-labs/flightdeck/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/flightdeck/internal/core/services"
	"github.com/custodia-labs/flightdeck/internal/logger"
)

var serveMetricsAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the briefing on a schedule",
	Long: `Runs the briefing every serve.interval_minutes until interrupted.
A failed run is recorded and retried at the next interval.

Prometheus metrics are served on serve.metrics_addr (override with
--metrics-addr, or pass an empty value to disable). Editing the config file
while serving updates the interval without a restart.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveMetricsAddr, "metrics-addr", "", "metrics listen address (default serve.metrics_addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	logger.SetTimestamps(true)
	defer logger.SetTimestamps(false)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.NewStore(settings.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening refresh log: %w", err)
	}
	defer store.Close()

	pipeline, err := newPipeline(ctx, settings, store.RunLog(), "")
	if err != nil {
		return err
	}
	observer := promobs.NewObserver()
	pipeline.AddObserver(observer)

	scheduler := services.NewScheduler(pipeline, settings.Serve.Interval)
	scheduler.SetStore(store.TaskStore())

	addr := settings.Serve.MetricsAddr
	if cmd.Flags().Changed("metrics-addr") {
		addr = serveMetricsAddr
	}
	if addr != "" {
		srv := newMetricsServer(addr, observer.Handler())
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("metrics server: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx) //nolint:errcheck
		}()
		logger.Info("metrics on http://%s/metrics", addr)
	}

	if configStore != nil {
		watcher, err := newConfigWatcher(configStore.Path(), func() {
			if err := configStore.Load(); err != nil {
				logger.Warn("reload config: %v", err)
				return
			}
			updated, err := settingsService.Get()
			if err != nil {
				logger.Warn("reload config: %v", err)
				return
			}
			scheduler.SetInterval(updated.Serve.Interval)
		})
		if err != nil {
			logger.Warn("config watch disabled: %v", err)
		} else {
			defer watcher.Close()
			go watcher.Run(ctx)
		}
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Briefing every %s; press Ctrl+C to stop\n", settings.Serve.Interval)
	err = scheduler.Start(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func newMetricsServer(addr string, metrics http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// configWatcher calls onChange when the config file is written or replaced.
// The directory is watched so editors that rename over the file still count.
type configWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange func()
}

func newConfigWatcher(path string, onChange func()) (*configWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}
	return &configWatcher{watcher: w, path: filepath.Clean(path), onChange: onChange}, nil
}

// Run dispatches events until ctx is cancelled or the watcher is closed.
func (c *configWatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if c.handleEvent(ev) {
				logger.Debug("config changed: %s", ev.Name)
				c.onChange()
			}
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("config watch: %v", err)
		}
	}
}

// handleEvent reports whether ev changes the watched file.
func (c *configWatcher) handleEvent(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != c.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}

// Close stops the watcher.
func (c *configWatcher) Close() error {
	return c.watcher.Close()
}
