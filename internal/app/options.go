package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/luxdecor-shop/internal/config"
	"github.com/luxdecor-shop/internal/logger"

	"go.uber.org/zap"
)

// 启动模式：all 同时运行 API 与队列消费者
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

// Options 应用启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

// ParseMode 规范化启动模式，空值视为 all
func ParseMode(raw string) (string, error) {
	mode := strings.ToLower(strings.TrimSpace(raw))
	switch mode {
	case "":
		return ModeAll, nil
	case ModeAll, ModeAPI, ModeWorker:
		return mode, nil
	}
	return "", fmt.Errorf("unknown mode: %s", raw)
}

func servesHTTP(mode string) bool {
	return mode == ModeAll || mode == ModeAPI
}

func runsWorker(mode string) bool {
	return mode == ModeAll || mode == ModeWorker
}

// normalizeOptions 补齐默认参数
func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if opts.Mode == "" {
		opts.Mode = ModeAll
	}
	return opts
}
