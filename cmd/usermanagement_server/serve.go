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

	"usermanagement_server/internal/config"
	"usermanagement_server/internal/handler"
	"usermanagement_server/internal/https_server"
	"usermanagement_server/internal/infrastructure/logger"
	"usermanagement_server/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func loadConfig() (*config.Config, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	config.SetConfig(conf)
	return conf, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = zap.L().Sync() }()

	if err := handler.InitTrans("en"); err != nil {
		zap.L().Warn("init validator translations", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := service.NewServices(ctx, conf)
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}
	zap.L().Info("services ready",
		zap.String("store", conf.StoreConfig.Driver),
		zap.String("queue", conf.CacheConfig.QueueBackend),
		zap.Bool("kafka", conf.KafkaConfig.Enabled),
	)

	engine := https_server.Init(conf, handler.NewHandlers(svc.Dispatcher, svc.Conns), svc.Dispatcher)
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go svc.Sweeper.Run(sweepCtx, conf.CacheConfig.SweepInterval())

	serveErr := make(chan error, 1)
	go func() {
		zap.L().Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		zap.L().Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			zap.L().Error("server stopped", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("http shutdown", zap.Error(err))
	}
	stopSweep()
	if err := svc.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("service shutdown", zap.Error(err))
		return err
	}
	zap.L().Info("server stopped")
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	addr := adminAddr
	if addr == "" {
		conf, err := loadConfig()
		if err != nil {
			return err
		}
		host := conf.MainConfig.Host
		if host == "" || host == "0.0.0.0" {
			host = "127.0.0.1"
		}
		addr = fmt.Sprintf("%s:%d", host, conf.MainConfig.Port)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://"+addr+"/admin/cache/clear", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("sweep %s: %w", addr, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sweep %s: %s", addr, resp.Status)
	}
	_, err = os.Stdout.ReadFrom(resp.Body)
	return err
}
