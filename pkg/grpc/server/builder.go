package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

const (
	defaultPort           = 50051
	defaultMaxRecvMsgSize = 4 << 20
)

type Option func(*Options)

type Options struct {
	port              int
	listener          net.Listener
	logger            *zap.Logger
	reflection        bool
	enableLogging     bool
	maxRecvMsgSize    int
	keepalive         keepalive.ServerParameters
	unaryInterceptors []grpc.UnaryServerInterceptor
}

// WithPort sets the listen port. Zero picks a free port.
func WithPort(port int) Option {
	return func(o *Options) {
		o.port = port
	}
}

// WithListener serves on lis instead of opening a TCP port.
func WithListener(lis net.Listener) Option {
	return func(o *Options) {
		o.listener = lis
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.logger = logger
	}
}

func WithReflection(enabled bool) Option {
	return func(o *Options) {
		o.reflection = enabled
	}
}

// WithLogging logs the start and end of every unary call.
func WithLogging(enabled bool) Option {
	return func(o *Options) {
		o.enableLogging = enabled
	}
}

func WithMaxRecvMsgSize(bytes int) Option {
	return func(o *Options) {
		if bytes > 0 {
			o.maxRecvMsgSize = bytes
		}
	}
}

// WithKeepalive closes idle connections after maxIdle and recycles every
// connection after maxAge.
func WithKeepalive(maxIdle, maxAge time.Duration) Option {
	return func(o *Options) {
		o.keepalive.MaxConnectionIdle = maxIdle
		o.keepalive.MaxConnectionAge = maxAge
	}
}

// WithUnaryInterceptors appends interceptors after logging and recovery.
func WithUnaryInterceptors(interceptors ...grpc.UnaryServerInterceptor) Option {
	return func(o *Options) {
		o.unaryInterceptors = append(o.unaryInterceptors, interceptors...)
	}
}

type Server struct {
	grpcServer   *grpc.Server
	lis          net.Listener
	logger       *zap.Logger
	healthServer *health.Server
}

// New builds a server with health checks registered and the listener open.
func New(opts ...Option) (*Server, error) {
	options := &Options{
		port:           defaultPort,
		logger:         zap.NewNop(),
		maxRecvMsgSize: defaultMaxRecvMsgSize,
	}
	for _, opt := range opts {
		opt(options)
	}

	logger := options.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lis := options.listener
	if lis == nil {
		if options.port < 0 || options.port > 65535 {
			return nil, fmt.Errorf("invalid port %d: must be between 0 and 65535", options.port)
		}
		var err error
		lis, err = net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(options.port)))
		if err != nil {
			return nil, fmt.Errorf("failed to listen on port %d: %w", options.port, err)
		}
	}

	// Recovery sits innermost so a panic is logged as a failed call.
	var interceptors []grpc.UnaryServerInterceptor
	if options.enableLogging {
		interceptors = append(interceptors, LoggingInterceptor(logger))
	}
	interceptors = append(interceptors, RecoveryInterceptor(logger))
	interceptors = append(interceptors, options.unaryInterceptors...)

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(interceptors...),
		grpc.MaxRecvMsgSize(options.maxRecvMsgSize),
		grpc.KeepaliveParams(options.keepalive),
	)

	if options.reflection {
		reflection.Register(grpcServer)
	}

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	return &Server{
		grpcServer:   grpcServer,
		lis:          lis,
		logger:       logger.Named("grpc-server"),
		healthServer: healthServer,
	}, nil
}

// Register adds a service and marks it SERVING under name. An empty name
// only registers the service.
func (s *Server) Register(name string, register func(grpc.ServiceRegistrar)) {
	register(s.grpcServer)
	if name != "" {
		s.healthServer.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
		s.logger.Info("registered service", zap.String("service", name))
	}
}

// SetServing flips the health status of a registered service.
func (s *Server) SetServing(name string, serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.healthServer.SetServingStatus(name, st)
	s.logger.Info("updated service health",
		zap.String("service", name),
		zap.String("status", st.String()))
}

// Start serves in the background. The returned channel receives the serve
// error, if any, and is closed once serving stops.
func (s *Server) Start() <-chan error {
	errc := make(chan error, 1)
	s.logger.Info("gRPC server starting", zap.String("addr", s.lis.Addr().String()))

	go func() {
		defer close(errc)
		if err := s.grpcServer.Serve(s.lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			s.logger.Error("gRPC server failed", zap.Error(err))
			errc <- err
		}
	}()
	return errc
}

// Shutdown drains in-flight calls and stops hard when ctx expires first.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("gRPC server shutting down")
	s.healthServer.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("gRPC server stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("forced shutdown due to timeout")
		s.grpcServer.Stop()
		return ctx.Err()
	}
}

func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}
