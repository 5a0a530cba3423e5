package worker

import (
	"context"
	"errors"
	"time"

	"github.com/orderdesk-next/internal/config"
	"github.com/orderdesk-next/internal/logger"
	"github.com/orderdesk-next/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	defaultSweepInterval = 24 * time.Hour
)

// Service 异步队列服务
type Service struct {
	name          string
	server        *asynq.Server
	mux           *asynq.ServeMux
	consumer      *Consumer
	sweepInterval time.Duration
	sweepLimit    int
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, tracking *config.TrackingConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	interval := defaultSweepInterval
	limit := 0
	if tracking != nil {
		if tracking.SweepIntervalMinutes > 0 {
			interval = time.Duration(tracking.SweepIntervalMinutes) * time.Minute
		}
		limit = tracking.BatchLimit
	}
	return &Service{
		name:          "worker",
		server:        server,
		mux:           mux,
		consumer:      consumer,
		sweepInterval: interval,
		sweepLimit:    limit,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.TrackingService != nil {
		go s.runTrackingSweepLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runTrackingSweepLoop 按固定间隔批量刷新在途订单物流状态。
func (s *Service) runTrackingSweepLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.TrackingService == nil {
		return
	}
	runOnce := func() {
		if _, err := s.consumer.TrackingService.RefreshBatch(ctx, s.sweepLimit); err != nil {
			logger.Warnw("worker_tracking_sweep_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
