package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/godilite/eqrev-analytics/internal/config"
	handler "github.com/godilite/eqrev-analytics/internal/grpc"
	"github.com/godilite/eqrev-analytics/internal/httpapi"
	"github.com/godilite/eqrev-analytics/internal/repository"
	"github.com/godilite/eqrev-analytics/internal/service"
	"github.com/godilite/eqrev-analytics/pkg/cache"
	dbbuilder "github.com/godilite/eqrev-analytics/pkg/database"
	grpcsrv "github.com/godilite/eqrev-analytics/pkg/grpc/server"
)

// dashboardService is what both transports need from the service layer.
type dashboardService interface {
	httpapi.DashboardService
	handler.DashboardService
}

type App struct {
	logger          *zap.Logger
	db              *sqlx.DB
	cache           *cache.Cache
	httpServer      *http.Server
	httpListener    net.Listener
	grpcServer      *grpcsrv.Server
	shutdownTimeout time.Duration
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := dbbuilder.New(ctx,
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBDSN),
		dbbuilder.WithMaxOpenConns(cfg.DBMaxOpenConns),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("database pool initialized", zap.String("driver", cfg.DBDriver))

	a := &App{
		logger:          logger,
		db:              db,
		shutdownTimeout: cfg.ShutdownTimeout,
	}

	repo := repository.NewMetricsRepository(db)
	base := service.NewDashboardService(repo, logger.Named("dashboard"),
		service.WithQueryTimeout(cfg.QueryTimeout))

	var svc dashboardService = base
	if cfg.CacheEnabled() {
		c, err := cache.New(ctx,
			cache.WithAddress(cfg.RedisAddr),
			cache.WithPassword(cfg.RedisPassword),
			cache.WithDB(cfg.RedisDB),
		)
		if err != nil {
			a.closeStores()
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
		a.cache = c
		svc = service.NewCachedDashboardService(base, c, cfg.CacheTTL, logger)
		logger.Info("cache client initialized", zap.String("addr", cfg.RedisAddr))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	router := httpapi.NewRouter(httpapi.NewHandler(svc, logger), logger, httpapi.RouterOptions{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Registry:       reg,
	})

	lis, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(cfg.HTTPPort)))
	if err != nil {
		a.closeStores()
		return nil, fmt.Errorf("listen on HTTP port %d: %w", cfg.HTTPPort, err)
	}
	a.httpListener = lis
	a.httpServer = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(true),
	)
	if err != nil {
		lis.Close()
		a.closeStores()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}
	grpcHandlers := handler.NewHandlers(svc, logger, cfg.QueryTimeout*2)
	grpcServer.Register(handler.ServiceName, func(s grpc.ServiceRegistrar) {
		handler.RegisterDashboardServer(s, grpcHandlers)
	})
	a.grpcServer = grpcServer

	return a, nil
}

// HTTPAddr is the address the HTTP API listens on.
func (a *App) HTTPAddr() net.Addr {
	return a.httpListener.Addr()
}

// GRPCAddr is the address the gRPC server listens on.
func (a *App) GRPCAddr() net.Addr {
	return a.grpcServer.Addr()
}

// Run serves both transports until ctx is done or either server fails,
// then shuts everything down within the configured timeout.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("application starting",
		zap.String("http_addr", a.HTTPAddr().String()),
		zap.String("grpc_addr", a.GRPCAddr().String()))

	grpcErr := a.grpcServer.Start()

	serveErr := make(chan error, 1)
	go func() {
		if err := a.httpServer.Serve(a.httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		runErr = fmt.Errorf("http server: %w", err)
	case err := <-grpcErr:
		runErr = fmt.Errorf("grpc server: %w", err)
	}

	a.logger.Info("application shutting down")

	timeout := a.shutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", zap.Error(err))
	}
	if err := a.grpcServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("grpc shutdown error", zap.Error(err))
	}
	a.closeStores()

	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		a.logger.Warn("shutdown completed but deadline exceeded")
	} else {
		a.logger.Info("graceful shutdown completed")
	}
	return runErr
}

func (a *App) closeStores() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}
}
