package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/adeputra/pharmacy-inventory/internal"
	"github.com/adeputra/pharmacy-inventory/internal/auth"
	authpostgres "github.com/adeputra/pharmacy-inventory/internal/auth/postgres"
	"github.com/adeputra/pharmacy-inventory/internal/dashboard"
	dashboardpostgres "github.com/adeputra/pharmacy-inventory/internal/dashboard/postgres"
	"github.com/adeputra/pharmacy-inventory/internal/medicine"
	medicinepostgres "github.com/adeputra/pharmacy-inventory/internal/medicine/postgres"
	"github.com/adeputra/pharmacy-inventory/internal/stock"
	stockpostgres "github.com/adeputra/pharmacy-inventory/internal/stock/postgres"
	"github.com/adeputra/pharmacy-inventory/internal/storage"
	"github.com/adeputra/pharmacy-inventory/internal/transport"
	"github.com/adeputra/pharmacy-inventory/internal/transport/rest"
	"github.com/adeputra/pharmacy-inventory/internal/user"
	userpostgres "github.com/adeputra/pharmacy-inventory/internal/user/postgres"
	"github.com/adeputra/pharmacy-inventory/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	cfg, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.App.Env)
	lg := logger.LoggerWrapper()

	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	location := cfg.App.DisplayLocation()

	base := transport.NewBaseHandler(lg)
	base.Debug = cfg.App.Debug

	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration)
	authService := auth.NewService(
		authpostgres.NewRepository(gormDB),
		tokens,
		nil,
		cfg.Security.AccessTokenDuration,
		cfg.Security.ResetTokenDuration,
		cfg.Security.BCryptCost,
	)

	imageStore := storage.NewLocalImageStore(cfg.Storage.Root)
	medicineService := medicine.NewService(medicinepostgres.NewRepository(gormDB), imageStore, location)
	stockService := stock.NewService(stockpostgres.NewRepository(gormDB), location)
	userService := user.NewService(userpostgres.NewRepository(gormDB), cfg.Security.BCryptCost, location)
	dashboardService := dashboard.NewService(dashboardpostgres.NewRepository(gormDB), location)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, rest.Handlers{
		Base:      base,
		Auth:      auth.NewHandler(base, authService),
		RBAC:      auth.NewRBAC(base),
		User:      user.NewHandler(base, userService),
		Medicine:  medicine.NewHandler(base, medicineService),
		Stock:     stock.NewHandler(base, stockService),
		Dashboard: dashboard.NewHandler(base, dashboardService, location),
	}, lg)

	return &Dependencies{
		Config: cfg,
		DB:     db,
		Gorm:   gormDB,
		Router: router,
		Logger: lg,
	}, nil
}

func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm layers the ORM over the existing pgx connection pool so both
// share one pool.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
}
