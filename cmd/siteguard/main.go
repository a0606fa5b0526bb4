package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NeuralTrust/SiteGuard/pkg/config"
	"github.com/NeuralTrust/SiteGuard/pkg/dependency_container"
	infraLogger "github.com/NeuralTrust/SiteGuard/pkg/infra/logger"
	_ "github.com/NeuralTrust/SiteGuard/pkg/infra/migrations"
	"github.com/NeuralTrust/SiteGuard/pkg/server"
	"github.com/NeuralTrust/SiteGuard/pkg/server/router"
	"github.com/NeuralTrust/SiteGuard/pkg/version"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	serverTypeAll   = "all"
	serverTypeSite  = "site"
	serverTypeAdmin = "admin"

	shutdownTimeout = 15 * time.Second
)

func main() {
	serverType := getServerType()
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger, closeLogger := infraLogger.NewLogger("siteguard-" + serverType)
	defer closeLogger()
	logger.WithFields(logrus.Fields{
		"version": version.GetInfo().String(),
		"type":    serverType,
	}).Info("starting siteguard")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config"
	}
	if err := config.Load(configPath); err != nil {
		logger.WithError(err).Error("failed to load config")
		return
	}
	cfg := config.GetConfig()

	container, err := dependency_container.NewContainer(dependency_container.ContainerDI{
		Cfg:    cfg,
		Logger: logger,
	})
	if err != nil {
		logger.WithError(err).Error("failed to initialize dependencies")
		return
	}
	defer container.Close()

	servers := initializeServers(serverType, cfg, logger, container)
	if len(servers) == 0 {
		logger.WithField("type", serverType).Error("unknown server type")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		container.Run(gctx)
		return nil
	})
	for _, srv := range servers {
		g.Go(srv.Run)
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down servers")
		return shutdown(servers)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Error("server stopped with error")
		return
	}
	logger.Info("server gracefully stopped")
}

func getServerType() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	return serverTypeAll
}

// initializeServers builds the servers for the requested type. Memory
// backends only share state inside one process, so "all" is the default.
func initializeServers(
	serverType string,
	cfg *config.Config,
	logger *logrus.Logger,
	c *dependency_container.Container,
) []server.Server {
	siteRouter := router.NewSiteRouter(
		c.SiteMiddlewareTransport,
		c.InspectorMiddleware,
		c.HandlerTransport,
		cfg.Security.Routes,
	)
	adminRouter := router.NewAdminRouter(
		c.AdminMiddlewareTransport,
		c.AdminAuthMiddleware,
		c.FeedUpgradeMiddleware,
		c.HandlerTransport,
		c.WSHandlerTransport,
	)
	newSite := func() server.Server {
		return server.NewSiteServer(server.SiteServerDI{Config: cfg, Logger: logger, Routers: []router.ServerRouter{siteRouter}})
	}
	newAdmin := func() server.Server {
		return server.NewAdminServer(server.AdminServerDI{Config: cfg, Logger: logger, Routers: []router.ServerRouter{adminRouter}})
	}

	switch serverType {
	case serverTypeSite:
		return []server.Server{newSite()}
	case serverTypeAdmin:
		return []server.Server{newAdmin()}
	case serverTypeAll:
		return []server.Server{newSite(), newAdmin()}
	}
	return nil
}

func shutdown(servers []server.Server) error {
	done := make(chan error, 1)
	go func() {
		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(); err != nil {
				errs = append(errs, err)
			}
		}
		done <- errors.Join(errs...)
	}()
	select {
	case err := <-done:
		return err
	case <-time.After(shutdownTimeout):
		return errors.New("timed out waiting for servers to stop")
	}
}
