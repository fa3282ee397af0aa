package metrics

import (
	"errors"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "luxdecor"

var (
	// CheckoutTotal 结账结果计数
	CheckoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "order",
		Name:      "checkout_total",
		Help:      "Checkout attempts partitioned by result.",
	}, []string{"result"})

	// OrderTransitionTotal 订单状态迁移计数
	OrderTransitionTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "order",
		Name:      "status_transition_total",
		Help:      "Applied order status transitions partitioned by target status.",
	}, []string{"to"})

	// StockAdjustTotal 库存账本调整计数
	StockAdjustTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "stock",
		Name:      "adjust_total",
		Help:      "Stock ledger adjustments partitioned by operation and result.",
	}, []string{"op", "result"})

	// PaymentCallbackTotal 支付回调结果计数
	PaymentCallbackTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "payment",
		Name:      "callback_total",
		Help:      "Payment gateway callbacks partitioned by result status.",
	}, []string{"status"})

	// HTTPRequestDuration HTTP 请求耗时
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency partitioned by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

var registerOnce sync.Once

// Register 注册全部指标，重复注册时忽略
func Register(reg prometheus.Registerer) error {
	var err error
	registerOnce.Do(func() {
		for _, collector := range []prometheus.Collector{
			CheckoutTotal,
			OrderTransitionTotal,
			StockAdjustTotal,
			PaymentCallbackTotal,
			HTTPRequestDuration,
		} {
			if regErr := reg.Register(collector); regErr != nil {
				var already prometheus.AlreadyRegisteredError
				if errors.As(regErr, &already) {
					continue
				}
				err = regErr
				return
			}
		}
	})
	return err
}

// Handler 返回 Prometheus 抓取端点
func Handler() http.Handler {
	return promhttp.Handler()
}
