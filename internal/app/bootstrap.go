package app

import (
	"errors"

	"github.com/luxdecor-shop/internal/cache"
	"github.com/luxdecor-shop/internal/config"
	"github.com/luxdecor-shop/internal/logger"
	"github.com/luxdecor-shop/internal/metrics"
	"github.com/luxdecor-shop/internal/provider"
	"github.com/luxdecor-shop/internal/router"
	"github.com/luxdecor-shop/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	mode, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}

	if cfg.Metrics.Enabled {
		if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
			return nil, err
		}
	}

	container := provider.NewContainer(cfg)

	var services []Service

	// 初始化 HTTP 服务
	if servesHTTP(mode) {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(cfg.Server, engine))
	}

	// 初始化 Worker 服务；all 模式下队列未启用时仅启动 HTTP
	if runsWorker(mode) {
		if !cfg.Queue.Enabled && mode == ModeAll {
			logger.Warnw("app_worker_skipped_queue_disabled", "mode", mode)
		} else {
			consumer := worker.NewConsumer(container)
			workerService, err := worker.NewService(&cfg.Queue, consumer)
			if err != nil {
				container.Close()
				return nil, err
			}
			services = append(services, workerService)
		}
	}

	if len(services) == 0 {
		container.Close()
		return nil, errors.New("no services initialized (check mode and config)")
	}

	runner := NewRunner(services...)
	runner.OnStop(func() {
		if err := cache.Close(); err != nil {
			logger.Warnw("app_close_redis_failed", "error", err)
		}
	})
	runner.OnStop(container.Close)
	return runner, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
