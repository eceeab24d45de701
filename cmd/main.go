package main

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"socialnet/chat-service/internal/auth"
	"socialnet/chat-service/internal/config"
	grpcServer "socialnet/chat-service/internal/grpc"
	"socialnet/chat-service/internal/metrics"
	"socialnet/chat-service/internal/repository"
	"socialnet/chat-service/internal/service"
	httpTransport "socialnet/chat-service/internal/transport/http"

	pb "github.com/kegazani/metachat-proto/chat"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	logger := newLogger(cfg.Logging)

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	logger.Info("Connected to PostgreSQL database")

	chatRepo := repository.NewChatRepository(db)
	if err := chatRepo.InitializeTables(ctx); err != nil {
		logger.Fatalf("Failed to initialize database tables: %v", err)
	}

	m := metrics.NewDefault()
	chatService := service.NewChatService(chatRepo, logger, m)

	// gRPC
	grpcAddress := cfg.GRPC.Address()
	lis, err := net.Listen("tcp", grpcAddress)
	if err != nil {
		logger.Fatalf("Failed to listen on %s: %v", grpcAddress, err)
	}

	s := grpc.NewServer(grpc.UnaryInterceptor(grpcServer.UnaryServerInterceptor(logger, cfg.HTTP.RequestTimeout)))
	pb.RegisterChatServiceServer(s, grpcServer.NewChatServer(chatService, logger))

	if cfg.GRPC.ReflectionEnabled {
		reflection.Register(s)
		logger.Info("gRPC reflection enabled")
	}

	go func() {
		logger.Infof("Starting gRPC server on %s", grpcAddress)
		if err := s.Serve(lis); err != nil {
			logger.Fatalf("Failed to start gRPC server: %v", err)
		}
	}()

	// HTTP
	handler := httpTransport.NewHandler(chatService, logger)
	router := httpTransport.NewRouter(handler, auth.NewVerifier(cfg.Auth.JWTSecret, chatRepo), m, httpTransport.RouterOptions{
		RequestTimeout: cfg.HTTP.RequestTimeout,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
	})

	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Address(),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		logger.Infof("Starting HTTP server on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down servers...")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.GRPC.ShutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("HTTP server shutdown")
	}

	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("gRPC server exited gracefully")
	case <-shutdownCtx.Done():
		s.Stop()
		logger.Info("gRPC server shutdown timeout")
	}

	logger.Info("Server exited")
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{})
	}

	return logger
}
