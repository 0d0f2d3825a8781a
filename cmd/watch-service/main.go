package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	dashboardrepo "golang-stock-dashboard/internal/dashboard/repository"
	"golang-stock-dashboard/internal/watcher/config"
	"golang-stock-dashboard/internal/watcher/repository"
	"golang-stock-dashboard/internal/watcher/service"
	"golang-stock-dashboard/pkg/logger"
	"golang-stock-dashboard/pkg/redis"
	"golang-stock-dashboard/pkg/telegram"

	"github.com/spf13/cobra"
)

var (
	configPath string
	dryRun     bool
)

// stdoutNotifier prints digests instead of sending them.
type stdoutNotifier struct {
	w io.Writer
}

func (n stdoutNotifier) SendMessage(text string) error {
	_, err := fmt.Fprintln(n.w, text)
	return err
}

type watcher struct {
	svc     *service.SignalWatcherService
	logger  *logger.Logger
	cleanup func()
}

func setup(out io.Writer) *watcher {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding, cfg.Logger.OutputPaths...)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	appLogger.Info("Starting Watch Service",
		logger.Field("name", cfg.App.Name),
		logger.StringField("store", cfg.Watcher.Store),
		logger.Field("dry_run", dryRun))

	cleanup := func() { _ = appLogger.Sync() }

	var store repository.NotificationStore
	switch cfg.Watcher.Store {
	case config.StoreRedis:
		redisClient, err := redis.NewClient(cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
		}
		store = repository.NewRedisNotificationStore(redisClient.Client, cfg.Watcher.NotifyCooldown, appLogger)
		cleanup = func() {
			_ = redisClient.Close()
			_ = appLogger.Sync()
		}
	default:
		store = repository.NewMemoryNotificationStore(cfg.Watcher.NotifyCooldown)
	}

	var notifier telegram.Notifier = stdoutNotifier{w: out}
	if !dryRun {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
		}
	}

	repo := dashboardrepo.NewMarketAPIRepository(cfg.API, appLogger)
	svc := service.NewSignalWatcherService(repo, store, notifier, cfg.Watcher, appLogger)
	return &watcher{svc: svc, logger: appLogger, cleanup: cleanup}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the signal watcher on its cron schedule",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		w := setup(cmd.OutOrStdout())
		defer w.cleanup()

		if err := w.svc.Start(ctx); err != nil {
			w.logger.Fatal("Signal watcher failed", logger.ErrorField(err))
		}
		w.logger.Info("Watch service exiting")
	},
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Runs the signal watcher once and exits",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := setup(cmd.OutOrStdout())
		defer w.cleanup()

		res, err := w.svc.RunOnce(cmd.Context())
		if err != nil {
			return fmt.Errorf("signal watcher run failed: %s", dashboardrepo.ErrorMessage(err))
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%d signals, %d changes, %d messages\n", res.Signals, len(res.Changes), res.Messages)
		return nil
	},
}

func main() {
	rootCmd := &cobra.Command{Use: "watch-service"}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-watch.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Print digests to stdout instead of sending them to Telegram")

	rootCmd.AddCommand(serveCmd, onceCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing watch-service CLI: %s\n", err)
		os.Exit(1)
	}
}
