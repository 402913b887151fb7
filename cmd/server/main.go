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

	"cane-backend/internal/auth"
	"cane-backend/internal/cache"
	"cane-backend/internal/config"
	"cane-backend/internal/database"
	"cane-backend/internal/db"
	"cane-backend/internal/handlers"
	"cane-backend/internal/health"
	h "cane-backend/internal/http"
	"cane-backend/internal/middleware"
	"cane-backend/internal/objectstore"
	"cane-backend/internal/realtime"
	"cane-backend/internal/repositories"
	"cane-backend/internal/services"
	"cane-backend/internal/timeutil"
	"cane-backend/migrations"
	"cane-backend/pkg/utils"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var (
	configPath string
	memoryMode bool

	adminName     string
	adminEmail    string
	adminPassword string
)

var rootCmd = &cobra.Command{
	Use:   "cane-server",
	Short: "Sugar cane loading system backend",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		pool, err := db.Connect(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer pool.Close()
		return database.NewMigrator(pool, migrations.FS).RunMigrations(cmd.Context())
	},
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create or reset the super admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminEmail == "" || adminPassword == "" {
			return errors.New("--email and --password are required")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		pool, err := db.Connect(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		users := services.NewUserService(repositories.NewUserRepository(pool), auth.NewJWTManager(cfg))
		user, err := users.EnsureSuperAdmin(cmd.Context(), adminName, adminEmail, adminPassword)
		if err != nil {
			return err
		}
		utils.GetLogger().WithField("user_id", user.ID).WithField("email", user.Email).Info("super admin ready")
		return nil
	},
}

var confirmReset bool

var resetEntriesCmd = &cobra.Command{
	Use:   "reset-entries",
	Short: "Delete all entries and their history (users and catalog are kept)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmReset {
			return errors.New("refusing to delete entries without --yes")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		pool, err := db.Connect(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer pool.Close()
		return database.ResetWorkflowData(cmd.Context(), pool)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default configs/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&memoryMode, "memory", false, "keep entries and users in memory (no database)")

	for _, cmd := range []*cobra.Command{serveCmd, createAdminCmd} {
		cmd.Flags().StringVar(&adminName, "name", "Super Admin", "admin display name")
		cmd.Flags().StringVar(&adminEmail, "email", "", "admin email")
		cmd.Flags().StringVar(&adminPassword, "password", "", "admin password")
	}

	resetEntriesCmd.Flags().BoolVar(&confirmReset, "yes", false, "confirm deletion")

	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd, resetEntriesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if memoryMode {
		cfg.Storage.Driver = "memory"
	}
	if err := utils.InitLogger(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}
	if cfg.FileMissing {
		utils.GetLogger().Info("no config file found, using defaults and environment")
	}
	if err := timeutil.SetLocation(cfg.Server.Timezone); err != nil {
		utils.GetLogger().WithError(err).Warn("unknown timezone, keeping default")
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := utils.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		pool       *pgxpool.Pool
		entryStore repositories.EntryStore
		userStore  repositories.UserStore
	)
	if cfg.Storage.Driver == "postgres" {
		pool, err = db.Connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := database.NewMigrator(pool, migrations.FS).RunMigrations(ctx); err != nil {
			return err
		}
		entryStore = repositories.NewEntryRepository(pool)
		userStore = repositories.NewUserRepository(pool)
	} else {
		log.Warn("memory storage driver: data is lost on restart, catalog endpoints disabled")
		entryStore = repositories.NewMemoryEntryStore()
		userStore = repositories.NewMemoryUserStore()
	}

	entryCache, err := cache.Init(cfg)
	if err != nil {
		log.WithError(err).Warn("redis unavailable, running without cache")
	}
	defer entryCache.Close()

	jwtManager := auth.NewJWTManager(cfg)
	userService := services.NewUserService(userStore, jwtManager)
	if adminEmail != "" && adminPassword != "" {
		if _, err := userService.EnsureSuperAdmin(ctx, adminName, adminEmail, adminPassword); err != nil {
			return err
		}
	}

	hub := realtime.NewHub()
	entryService := services.NewEntryService(entryStore, entryCache)

	var loadingPoints services.LoadingPointLookup
	var catalogHandler *handlers.CatalogHandler
	if pool != nil {
		pointRepo := repositories.NewLoadingPointRepository(pool)
		loadingPoints = pointRepo
		catalogHandler = handlers.NewCatalogHandler(services.NewCatalogService(
			repositories.NewMillRepository(pool),
			pointRepo,
			repositories.NewHaulageRepository(pool),
			repositories.NewDeviceRepository(pool),
		))
	}

	var uploadHandler *handlers.UploadHandler
	store, err := objectstore.NewS3Store(ctx, cfg)
	switch {
	case err == nil:
		uploadHandler = handlers.NewUploadHandler(services.NewUploadService(store, cfg.Uploads.MaxSizeMB))
	case errors.Is(err, objectstore.ErrNotConfigured):
		log.Info("uploads bucket not configured, /api/uploads disabled")
	default:
		return err
	}

	var dbPinger, cachePinger health.Pinger
	if pool != nil {
		dbPinger = pool
	}
	if entryCache.Enabled() {
		cachePinger = entryCache
	}

	router := h.NewRouter(h.Handlers{
		Auth:  handlers.NewAuthHandler(userService),
		Users: handlers.NewUserHandler(userService),
		Entries: handlers.NewEntryHandler(
			services.NewRegistrationService(entryStore, entryCache, hub, loadingPoints),
			services.NewArrivalService(entryStore, entryCache, hub, cfg.Workflow.EnforceArrivalMatch),
			services.NewVerificationService(entryStore, entryCache),
			services.NewApprovalService(entryStore, entryCache, hub),
			entryService,
		),
		Events:  handlers.NewEntryEventHandler(entryService, hub),
		Reports: handlers.NewReportHandler(services.NewReportService(entryService)),
		Health:  handlers.NewHealthHandler(health.NewHealthChecker(dbPinger, cachePinger)),
		Catalog: catalogHandler,
		Uploads: uploadHandler,
	}, middleware.NewAuthMiddleware(jwtManager, userStore))

	handler := middleware.PanicRecovery(middleware.RequestLogger(middleware.NewCORS(cfg)(router)))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).WithField("storage", cfg.Storage.Driver).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
