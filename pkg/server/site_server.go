package server

import (
	"fmt"

	"github.com/NeuralTrust/SiteGuard/pkg/config"
	"github.com/NeuralTrust/SiteGuard/pkg/infra/prometheus"
	"github.com/NeuralTrust/SiteGuard/pkg/server/router"
	"github.com/sirupsen/logrus"
)

type (
	SiteServerDI struct {
		Config  *config.Config
		Logger  *logrus.Logger
		Routers []router.ServerRouter
	}
	// SiteServer fronts the protected site: every request runs through
	// the inspection pipeline before it is forwarded upstream.
	SiteServer struct {
		*BaseServer
	}
)

func NewSiteServer(di SiteServerDI) *SiteServer {
	if di.Config.Metrics.Enabled {
		prometheus.Initialize(prometheus.MetricsConfig{
			EnableLatency: di.Config.Metrics.EnableLatency,
		})
	}

	s := &SiteServer{
		BaseServer: NewBaseServer(di.Config, di.Logger).WithRouters(di.Routers...),
	}
	s.BaseServer.setupMetricsEndpoint()
	return s
}

func (s *SiteServer) Run() error {
	addr := fmt.Sprintf(":%d", s.Config.Server.Port)
	s.Logger.WithField("addr", addr).Info("starting site server")
	return s.Router.Listen(addr)
}

func (s *SiteServer) Shutdown() error {
	s.shutdownMetrics()
	return s.Router.Shutdown()
}
