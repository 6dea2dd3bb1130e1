// Package service hosts the harness's own HTTP surfaces: health checks,
// prometheus metrics, and the answer callback endpoint.
package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/broadcastkit/conform/facade"
	"github.com/broadcastkit/conform/metrics"
)

const ListenHost = "0.0.0.0"

// Config selects which servers to start. A zero port disables that server;
// a nil Bridge disables the answer server.
type Config struct {
	HealthzPort int
	MetricsPort int
	AnswerPort  int
	Bridge      *facade.Bridge
	Log         *zap.SugaredLogger
}

type Service struct {
	Healthz *HealthzServer
	Metrics *MetricsServer
	Answers *AnswerServer

	cfg Config
	log *zap.SugaredLogger
}

func New(cfg Config) *Service {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{
		Healthz: &HealthzServer{log: log},
		Metrics: &MetricsServer{},
		Answers: &AnswerServer{},
		cfg:     cfg,
		log:     log,
	}
}

func (s *Service) Start(ctx context.Context) {
	s.log.Info("service starting")

	if s.cfg.HealthzPort != 0 {
		go func() {
			addr := net.JoinHostPort(ListenHost, strconv.Itoa(s.cfg.HealthzPort))
			s.log.Infow("starting healthz server", "addr", addr)
			if err := s.Healthz.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.Errorw("error starting healthz server", "err", err)
				metrics.RecordErrorDetails("error starting healthz server", err)
			}
		}()
	}

	if s.cfg.MetricsPort != 0 {
		go func() {
			addr := net.JoinHostPort(ListenHost, strconv.Itoa(s.cfg.MetricsPort))
			s.log.Infow("starting metrics server", "addr", addr)
			if err := s.Metrics.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.Errorw("error starting metrics server", "err", err)
				metrics.RecordErrorDetails("error starting metrics server", err)
			}
		}()
	}

	if s.cfg.AnswerPort != 0 && s.cfg.Bridge != nil && s.cfg.Bridge.Interactive() {
		go func() {
			addr := net.JoinHostPort(ListenHost, strconv.Itoa(s.cfg.AnswerPort))
			s.log.Infow("starting answer callback server", "addr", addr)
			if err := s.Answers.Start(ctx, addr, s.cfg.Bridge, s.log); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.Errorw("error starting answer callback server", "err", err)
				metrics.RecordErrorDetails("error starting answer callback server", err)
			}
		}()
	}

	s.log.Info("service started")
}

func (s *Service) Shutdown() {
	s.log.Info("service shutting down")

	_ = s.Healthz.Shutdown()
	_ = s.Metrics.Shutdown()
	_ = s.Answers.Shutdown()

	s.log.Info("service stopped")
}
