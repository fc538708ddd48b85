package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cooperativa/config"
	"cooperativa/database"
	"cooperativa/pkg/apiclient"
	"cooperativa/pkg/logger"
	"cooperativa/pkg/web"
	"cooperativa/router"

	// Auth
	authCtrlImp "cooperativa/pkg/auth/controllerImp"

	// Session
	sessionRepoImp "cooperativa/pkg/session/repositoryImp"

	// Lookups
	lookupSvcImp "cooperativa/pkg/lookup/serviceImp"

	// Labor
	"cooperativa/pkg/labor"
	laborCtrlImp "cooperativa/pkg/labor/controllerImp"
	laborSvcImp "cooperativa/pkg/labor/serviceImp"

	// Payment methods
	"cooperativa/pkg/paymentmethod"
	paymentCtrlImp "cooperativa/pkg/paymentmethod/controllerImp"
	paymentSvcImp "cooperativa/pkg/paymentmethod/serviceImp"

	// Harvested products
	"cooperativa/pkg/harvest"
	harvestCtrlImp "cooperativa/pkg/harvest/controllerImp"
	harvestSvcImp "cooperativa/pkg/harvest/serviceImp"

	// Health
	healthCtrlImp "cooperativa/pkg/health/controllerImp"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var purgeAfter time.Duration

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Cooperative administration web app",
	Long: `Serves the administration pages for field labors, payment methods and
harvested products. Data lives in the backend REST API (API_BASE); this
process only keeps browser sessions in a local sqlite file (DB_PATH).`,
	SilenceUsage: true,
	RunE:         runServer,
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the backend API answers",
	RunE:  runPing,
}

func init() {
	rootCmd.Flags().DurationVar(&purgeAfter, "purge-after", 14*24*time.Hour, "Drop session rows idle longer than this at startup (0 disables)")
	rootCmd.AddCommand(pingCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	// 1) Config + logger
	cfg := config.Load()
	log, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()
	if cfg.EnvFileErr != nil {
		log.Debug("no .env file loaded", zap.Error(cfg.EnvFileErr))
	}

	// 2) Session DB (sqlite)
	db, err := database.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	sessions := sessionRepoImp.New(db)
	if purgeAfter > 0 {
		n, err := sessions.PurgeBefore(time.Now().Add(-purgeAfter))
		if err != nil {
			log.Warn("session purge", zap.Error(err))
		} else if n > 0 {
			log.Info("session purge", zap.Int64("rows", n))
		}
	}

	// 3) Backend clients, one per resource
	newClient := func(name string, timeout time.Duration, labels apiclient.Labels) (*apiclient.Client, error) {
		return apiclient.New(apiclient.Options{
			BaseURL: cfg.APIBase,
			Name:    name,
			Timeout: timeout,
			Labels:  labels,
			Logger:  log,
		})
	}
	authAPI, err := newClient("authService", 0, nil)
	if err != nil {
		return err
	}
	laborAPI, err := newClient("laborService", 0, labor.Labels)
	if err != nil {
		return err
	}
	paymentAPI, err := newClient("paymentMethodService", 0, paymentmethod.Labels)
	if err != nil {
		return err
	}
	harvestAPI, err := newClient("harvestService", cfg.ProductTimeout, harvest.Labels)
	if err != nil {
		return err
	}
	lookupAPI, err := newClient("lookupService", 0, nil)
	if err != nil {
		return err
	}

	// 4) Services + controllers
	lookups := lookupSvcImp.New(lookupAPI, log, cfg.FallbackData)
	loc := cfg.Location()

	laborCtrl := laborCtrlImp.New(laborSvcImp.New(laborAPI, log), lookups, log, laborCtrlImp.Options{
		Location: loc,
		PageSize: cfg.PageSize,
		Fallback: cfg.FallbackData,
	})
	paymentCtrl := paymentCtrlImp.New(paymentSvcImp.New(paymentAPI, log), log, paymentCtrlImp.Options{
		Fallback: cfg.FallbackData,
	})
	harvestCtrl := harvestCtrlImp.New(harvestSvcImp.New(harvestAPI, log), lookups, log, harvestCtrlImp.Options{
		Location: loc,
		PageSize: cfg.PageSize,
		Fallback: cfg.FallbackData,
	})
	authCtrl := authCtrlImp.NewAuthController(authAPI, log)
	hCtrl := healthCtrlImp.NewHealthCtrl(db, authAPI)

	// 5) Echo
	renderer, err := web.NewRenderer(log)
	if err != nil {
		return err
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	router.New(e, sessions, authCtrl, laborCtrl, paymentCtrl, harvestCtrl, hCtrl, router.Options{
		SessionCookie: cfg.SessionCookie,
		RequireLogin:  cfg.RequireLogin,
		Log:           log,
	})

	// 6) Start + graceful stop
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("port", cfg.Port), zap.String("api_base", cfg.APIBase))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func runPing(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	api, err := apiclient.New(apiclient.Options{BaseURL: cfg.APIBase, Name: "ping"})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()
	if err := api.Reachable(ctx); err != nil {
		return fmt.Errorf("backend %s unreachable: %w", cfg.APIBase, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "backend %s ok\n", cfg.APIBase)
	return nil
}
