package worker

import (
	"context"
	"errors"
	"time"

	"github.com/luxdecor-shop/internal/config"
	"github.com/luxdecor-shop/internal/logger"
	"github.com/luxdecor-shop/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	stockRestoreSweepInterval = time.Minute
	stockRestoreSweepIdle     = 5 * time.Minute
	stockRestoreSweepBatch    = 50
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
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
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
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
	if s.consumer != nil && s.consumer.OrderService != nil {
		go s.runStockRestoreSweepLoop(ctx)
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

// runStockRestoreSweepLoop 兜底扫描：重试任务丢失时仍能完成库存归还
func (s *Service) runStockRestoreSweepLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.OrderService == nil {
		return
	}
	runOnce := func() {
		restored, err := s.consumer.OrderService.SweepStockRestores(ctx, stockRestoreSweepIdle, stockRestoreSweepBatch)
		if err != nil {
			logger.Warnw("worker_stock_restore_sweep_failed", "error", err)
			return
		}
		if restored > 0 {
			logger.Infow("worker_stock_restore_sweep_done", "restored", restored)
		}
	}
	runOnce()

	ticker := time.NewTicker(stockRestoreSweepInterval)
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
