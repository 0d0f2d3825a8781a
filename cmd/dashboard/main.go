package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-stock-dashboard/internal/dashboard/config"
	delivery "golang-stock-dashboard/internal/dashboard/delivery/http"
	"golang-stock-dashboard/internal/dashboard/delivery/tui"
	"golang-stock-dashboard/internal/dashboard/panel"
	"golang-stock-dashboard/internal/dashboard/repository"
	"golang-stock-dashboard/internal/dashboard/service"
	"golang-stock-dashboard/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
)

const defaultTUILogFile = "dashboard-tui.log"

var (
	configPath  string
	panelSymbol string
	panelAmount float64
)

type app struct {
	cfg      *config.Config
	logger   *logger.Logger
	repo     repository.MarketAPIRepository
	registry *panel.Registry
}

func (a *app) newDashboardService() *service.DashboardService {
	return service.NewDashboardService(a.repo, a.registry, a.cfg.Dashboard, a.logger)
}

// setup loads the configuration and wires the backend client. fallbackOutputs
// are used when the configuration names no logger output paths.
func setup(fallbackOutputs ...string) *app {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	outputPaths := cfg.Logger.OutputPaths
	if len(outputPaths) == 0 {
		outputPaths = fallbackOutputs
	}
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding, outputPaths...)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	repo := repository.NewMarketAPIRepository(cfg.API, appLogger)
	return &app{cfg: cfg, logger: appLogger, repo: repo, registry: panel.NewRegistry(repo)}
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Starts the terminal dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Logs must not reach the alternate screen.
		a := setup(defaultTUILogFile)
		defer func() { _ = a.logger.Sync() }()

		a.logger.Info("Starting terminal dashboard", logger.StringField("api", a.cfg.API.BaseURL))
		svc := a.newDashboardService()
		defer svc.Close()
		return tui.Run(ctx, svc, a.logger)
	},
}

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Starts the web dashboard",
	Run:   runWeb,
}

func runWeb(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := setup()
	defer func() { _ = a.logger.Sync() }()

	a.logger.Info("Starting web dashboard",
		logger.Field("name", a.cfg.App.Name),
		logger.StringField("api", a.cfg.API.BaseURL))

	renderer, err := delivery.NewRenderer()
	if err != nil {
		a.logger.Fatal("Failed to parse templates", logger.ErrorField(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			a.logger.Debug("Request", logger.StringField("uri", v.URI), logger.IntField("status", v.Status))
			return nil
		},
	}))

	handler := delivery.NewDashboardHandler(a.repo, a.registry, a.cfg.Dashboard, a.logger)
	handler.RegisterRoutes(e.Group(""))

	go func() {
		addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
		a.logger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()

	a.logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		a.logger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	a.logger.Info("Server exiting")
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Prints the portfolio, signals and news once",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := setup("stderr")
		defer func() { _ = a.logger.Sync() }()

		svc := a.newDashboardService()
		defer svc.Close()

		st := svc.Load(cmd.Context())
		out := cmd.OutOrStdout()
		fmt.Fprint(out, tui.RenderText("Portfolio", svc.StockGridView()))
		if st.Err != nil {
			return fmt.Errorf("failed to load dashboard: %s", svc.ErrorMessage())
		}
		fmt.Fprintln(out)
		fmt.Fprint(out, tui.RenderText("Signals", svc.SignalsView()))
		fmt.Fprintln(out)
		fmt.Fprint(out, tui.RenderText("Market News", svc.NewsView()))
		return nil
	},
}

var panelCmd = &cobra.Command{
	Use:   "panel <provider> [tab]",
	Short: "Prints one provider tab",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := setup("stderr")
		defer func() { _ = a.logger.Sync() }()

		provider, ok := a.registry.Provider(args[0])
		if !ok {
			return fmt.Errorf("unknown provider %q", args[0])
		}

		req := panel.Request{Symbol: panelSymbol, Amount: panelAmount}
		if req.Symbol == "" {
			req.Symbol = a.newDashboardService().OverlaySymbol()
		}
		if req.Amount <= 0 {
			req.Amount = a.cfg.Dashboard.DefaultAmount
		}

		p := panel.New(provider, req)
		defer p.Close()
		if len(args) == 2 {
			f, err := p.SetTab(cmd.Context(), args[1])
			if err != nil {
				return fmt.Errorf("%w: %s (available: %v)", err, args[1], provider.TabIDs())
			}
			p.Apply(f.Run())
		} else {
			p.Load(cmd.Context())
		}

		snap := p.Snapshot()
		label := snap.ActiveTab
		if tab, ok := provider.Tab(snap.ActiveTab); ok {
			label = tab.Label()
		}
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderText(provider.Name+" / "+label, p.View()))
		if snap.Err != nil {
			return errors.New(repository.ErrorMessage(snap.Err))
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report [symbol]",
	Short: "Prints every tab of every provider for one symbol",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := setup("stderr")
		defer func() { _ = a.logger.Sync() }()

		symbol := ""
		if len(args) == 1 {
			symbol = args[0]
		}
		svc := a.newDashboardService()
		defer svc.Close()

		sections, err := svc.Report(cmd.Context(), symbol)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, s := range sections {
			fmt.Fprint(out, tui.RenderText(s.ProviderName+" / "+s.TabLabel, s.View))
			fmt.Fprintln(out)
		}
		return nil
	},
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Stock market dashboard client for the market-data backend",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-dashboard.yaml", "Path to the configuration file")
	panelCmd.Flags().StringVarP(&panelSymbol, "symbol", "s", "", "Stock symbol (defaults to the configured default symbol)")
	panelCmd.Flags().Float64VarP(&panelAmount, "amount", "a", 0, "Amount for the currency tabs")

	rootCmd.AddCommand(tuiCmd, webCmd, snapshotCmd, panelCmd, reportCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing dashboard CLI: %s\n", err)
		os.Exit(1)
	}
}
