package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/luxdecor-shop/internal/authn"
	"github.com/luxdecor-shop/internal/constants"
	"github.com/luxdecor-shop/internal/events"
	"github.com/luxdecor-shop/internal/inventory"
	"github.com/luxdecor-shop/internal/logger"
	"github.com/luxdecor-shop/internal/metrics"
	"github.com/luxdecor-shop/internal/models"
	"github.com/luxdecor-shop/internal/queue"
	"github.com/luxdecor-shop/internal/repository"

	"gorm.io/gorm"
)

const (
	compensationTimeout    = 10 * time.Second
	stockRestoreRetryDelay = 30 * time.Second
)

// OrderService 订单服务：结账编排与状态机
type OrderService struct {
	orderRepo     repository.OrderRepository
	cartRepo      repository.CartRepository
	inventory     inventory.Client
	queueClient   *queue.Client
	publisher     events.Publisher
	expireMinutes int
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository, inventoryClient inventory.Client, queueClient *queue.Client, publisher events.Publisher, expireMinutes int) *OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &OrderService{
		orderRepo:     orderRepo,
		cartRepo:      cartRepo,
		inventory:     inventoryClient,
		queueClient:   queueClient,
		publisher:     publisher,
		expireMinutes: expireMinutes,
	}
}

// PlaceOrderInput 下单输入
type PlaceOrderInput struct {
	FullName           string
	PhoneNumber        string
	Address            string
	Note               string
	PaymentMethod      string
	SelectedProductIDs []uint
}

// PlaceOrder 将购物车中选中的商品转为订单
// 先写入临时订单，再整批扣减库存，最后在同一本地事务内生效订单并清理购物车；
// 扣减之后的任何失败都以库存归还补偿
func (s *OrderService) PlaceOrder(ctx context.Context, identity authn.Identity, input PlaceOrderInput) (*models.Order, error) {
	if identity.UserID == 0 {
		return nil, ErrInvalidArgument
	}
	paymentMethod, err := normalizePlaceOrderInput(&input)
	if err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetByUser(identity.UserID)
	if err != nil {
		return nil, err
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}
	selectedItems := selectCartItems(cart.Items, input.SelectedProductIDs)
	if len(selectedItems) == 0 {
		return nil, ErrNoSelection
	}

	now := time.Now()
	orderID, err := newOrderCode()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderCreateFailed, err)
	}
	details := make([]models.OrderDetail, 0, len(selectedItems))
	stockItems := make([]inventory.StockItem, 0, len(selectedItems))
	productIDs := make([]uint, 0, len(selectedItems))
	total := models.Money{}
	for _, item := range selectedItems {
		snapshot, err := s.inventory.FetchProduct(ctx, item.ProductID)
		if err != nil {
			metrics.CheckoutTotal.WithLabelValues("product_unavailable").Inc()
			return nil, err
		}
		lineTotal := snapshot.Price.MulQuantity(item.Quantity)
		details = append(details, models.OrderDetail{
			OrderID:     orderID,
			ProductID:   item.ProductID,
			ProductName: snapshot.Name,
			Quantity:    item.Quantity,
			Price:       snapshot.Price,
			TotalPrice:  lineTotal,
			Thumbnail:   snapshot.Image,
			CreatedAt:   now,
		})
		stockItems = append(stockItems, inventory.StockItem{ProductID: item.ProductID, Quantity: item.Quantity})
		productIDs = append(productIDs, item.ProductID)
		total = total.Plus(lineTotal)
	}

	order := &models.Order{
		OrderID:        orderID,
		UserID:         identity.UserID,
		Email:          identity.Email,
		FullName:       input.FullName,
		PhoneNumber:    input.PhoneNumber,
		Address:        input.Address,
		Note:           input.Note,
		Status:         constants.OrderStatusPending,
		PaymentMethod:  paymentMethod,
		PaymentStatus:  constants.PaymentStatusUnpaid,
		TotalMoney:     total,
		OrderDate:      now,
		ShippingMethod: constants.ShippingMethodStandard,
		Active:         false,
		StockState:     constants.StockStateNone,
		Details:        details,
	}
	if err := s.orderRepo.Create(order); err != nil {
		metrics.CheckoutTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: %v", ErrOrderCreateFailed, err)
	}

	if err := s.inventory.ReduceStock(ctx, orderID, stockItems); err != nil {
		s.abandonCheckout(ctx, order, err)
		if errors.Is(err, inventory.ErrInsufficientStock) {
			metrics.CheckoutTotal.WithLabelValues("insufficient_stock").Inc()
		} else {
			metrics.CheckoutTotal.WithLabelValues("failed").Inc()
		}
		return nil, err
	}

	err = s.orderRepo.Transaction(func(tx *gorm.DB) error {
		affected, err := s.orderRepo.WithTx(tx).Activate(orderID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("provisional order %s is no longer pending", orderID)
		}
		removed, err := s.cartRepo.WithTx(tx).DeleteItems(cart.ID, productIDs)
		if err != nil {
			return err
		}
		if removed != int64(len(productIDs)) {
			return ErrCartChanged
		}
		return nil
	})
	if err != nil {
		logger.Errorw("order_activate_failed", "order_id", orderID, "error", err)
		s.abandonCheckout(ctx, order, err)
		if errors.Is(err, ErrCartChanged) {
			metrics.CheckoutTotal.WithLabelValues("cart_changed").Inc()
			return nil, ErrCartChanged
		}
		metrics.CheckoutTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: %v", ErrOrderCreateFailed, err)
	}
	order.Active = true
	order.StockState = constants.StockStateReduced
	metrics.CheckoutTotal.WithLabelValues("placed").Inc()
	logger.Infow("order_placed",
		"order_id", orderID,
		"user_id", identity.UserID,
		"total_money", total.String(),
		"payment_method", paymentMethod,
	)

	if paymentMethod == constants.PaymentMethodVNPay {
		if err := s.queueClient.EnqueueOrderTimeoutCancel(orderID, s.paymentExpireDuration()); err != nil {
			logger.Warnw("order_enqueue_timeout_cancel_failed", "order_id", orderID, "error", err)
		}
	}
	s.publish(ctx, constants.EventOrderPlaced, order, "")
	return order, nil
}

// abandonCheckout 扣减或生效失败：作废临时订单并按订单编号归还
// 账本对没有扣减记录的引用只写作废占位，因此传输结果不明确时归还同样安全；
// 先认领 RESTORING，归还失败时由重试任务与扫描接手
func (s *OrderService) abandonCheckout(ctx context.Context, order *models.Order, cause error) {
	affected, err := s.orderRepo.CompareAndSetStockState(order.OrderID, constants.StockStateNone, constants.StockStateRestoring)
	if _, abandonErr := s.orderRepo.AbandonProvisional(order.OrderID); abandonErr != nil {
		logger.Errorw("order_abandon_provisional_failed", "order_id", order.OrderID, "error", abandonErr)
	}
	if err != nil {
		logger.Errorw("order_stock_restore_claim_failed", "order_id", order.OrderID, "cause", cause, "error", err)
		compensateCtx, cancel := compensationContext(ctx)
		defer cancel()
		if err := s.inventory.RestoreStock(compensateCtx, order.OrderID, stockItemsOf(order)); err != nil {
			logger.Errorw("order_stock_compensation_failed", "order_id", order.OrderID, "error", err)
		}
		return
	}
	if affected == 0 {
		logger.Debugw("order_stock_restore_skip_unclaimed", "order_id", order.OrderID)
		return
	}
	order.StockState = constants.StockStateRestoring
	s.restoreClaimedStock(ctx, order)
	logger.Infow("order_checkout_abandoned", "order_id", order.OrderID, "reason", cause)
}

// releaseStock 认领并归还订单已扣减的库存，同一订单只会执行一次
func (s *OrderService) releaseStock(ctx context.Context, order *models.Order) {
	affected, err := s.orderRepo.CompareAndSetStockState(order.OrderID, constants.StockStateReduced, constants.StockStateRestoring)
	if err != nil {
		logger.Errorw("order_stock_restore_claim_failed", "order_id", order.OrderID, "error", err)
		s.enqueueStockRestoreRetry(order.OrderID)
		return
	}
	if affected == 0 {
		logger.Debugw("order_stock_restore_skip_unclaimed", "order_id", order.OrderID)
		return
	}
	s.restoreClaimedStock(ctx, order)
}

// restoreClaimedStock 调用账本归还；失败时保持 RESTORING 并交给重试任务
func (s *OrderService) restoreClaimedStock(ctx context.Context, order *models.Order) {
	compensateCtx, cancel := compensationContext(ctx)
	defer cancel()
	if err := s.inventory.RestoreStock(compensateCtx, order.OrderID, stockItemsOf(order)); err != nil {
		logger.Errorw("order_stock_restore_failed", "order_id", order.OrderID, "error", err)
		s.enqueueStockRestoreRetry(order.OrderID)
		return
	}
	if _, err := s.orderRepo.CompareAndSetStockState(order.OrderID, constants.StockStateRestoring, constants.StockStateRestored); err != nil {
		logger.Errorw("order_stock_state_update_failed", "order_id", order.OrderID, "error", err)
		return
	}
	order.StockState = constants.StockStateRestored
	logger.Infow("order_stock_restored", "order_id", order.OrderID)
}

// RetryStockRestore 重试未完成的库存归还
// 处理 RESTORING 状态的订单，以及已取消但认领失败仍为 REDUCED 的订单
func (s *OrderService) RetryStockRestore(ctx context.Context, orderID string) error {
	order, err := s.orderRepo.GetByOrderID(strings.TrimSpace(orderID))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if order.StockState == constants.StockStateReduced && order.Status == constants.OrderStatusCancelled {
		affected, err := s.orderRepo.CompareAndSetStockState(order.OrderID, constants.StockStateReduced, constants.StockStateRestoring)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrOrderUpdateFailed, err)
		}
		if affected == 0 {
			return nil
		}
		order.StockState = constants.StockStateRestoring
	}
	if order.StockState != constants.StockStateRestoring {
		return nil
	}
	if err := s.inventory.RestoreStock(ctx, order.OrderID, stockItemsOf(order)); err != nil {
		return err
	}
	if _, err := s.orderRepo.CompareAndSetStockState(order.OrderID, constants.StockStateRestoring, constants.StockStateRestored); err != nil {
		return fmt.Errorf("%w: %v", ErrOrderUpdateFailed, err)
	}
	logger.Infow("order_stock_restore_retried", "order_id", order.OrderID)
	return nil
}

// SweepStockRestores 扫描归还未完成且停滞超过 idle 的订单并逐个重试，返回完成数量
func (s *OrderService) SweepStockRestores(ctx context.Context, idle time.Duration, limit int) (int, error) {
	orders, err := s.orderRepo.ListStockRestorePending(time.Now().Add(-idle), limit)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	restored := 0
	for _, order := range orders {
		if ctx.Err() != nil {
			return restored, ctx.Err()
		}
		if err := s.RetryStockRestore(ctx, order.OrderID); err != nil {
			logger.Warnw("order_stock_restore_sweep_failed", "order_id", order.OrderID, "error", err)
			continue
		}
		restored++
	}
	return restored, nil
}

// CancelOrder 用户取消自己的待处理订单
func (s *OrderService) CancelOrder(ctx context.Context, identity authn.Identity, orderID string) (*models.Order, error) {
	order, err := s.getActiveOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != identity.UserID {
		return nil, ErrOrderForbidden
	}
	if IsTerminalStatus(order.Status) {
		return nil, ErrOrderStatusTerminal
	}
	if order.Status != constants.OrderStatusPending {
		return nil, ErrOrderCancelNotAllowed
	}
	return s.transition(ctx, order, constants.OrderStatusCancelled, nil)
}

// UpdateOrderStatus 管理端修改订单状态
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID, rawStatus string) (*models.Order, error) {
	target, err := NormalizeOrderStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	order, err := s.getActiveOrder(orderID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, order, target, nil)
}

// CancelExpiredOrder 超时未支付的在线支付订单自动取消
func (s *OrderService) CancelExpiredOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.getActiveOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != constants.OrderStatusPending || order.PaymentStatus != constants.PaymentStatusUnpaid {
		return order, nil
	}
	if order.PaymentMethod != constants.PaymentMethodVNPay {
		return order, nil
	}
	if time.Since(order.OrderDate) < s.paymentExpireDuration() {
		return order, nil
	}
	return s.transition(ctx, order, constants.OrderStatusCancelled, nil)
}

// ApplyPaymentResult 根据已验签的支付结果推进订单
// 成功回调对已支付订单为空操作；失败回调不会取消已支付订单
func (s *OrderService) ApplyPaymentResult(ctx context.Context, order *models.Order, success bool) (*models.Order, error) {
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.PaymentStatus == constants.PaymentStatusPaid {
		return order, nil
	}
	if IsTerminalStatus(order.Status) {
		return nil, ErrOrderStatusTerminal
	}
	if !success {
		return s.transition(ctx, order, constants.OrderStatusCancelled, map[string]interface{}{
			"payment_status": constants.PaymentStatusFailed,
		})
	}
	if order.Status == constants.OrderStatusPending {
		return s.transition(ctx, order, constants.OrderStatusConfirmed, map[string]interface{}{
			"payment_status": constants.PaymentStatusPaid,
		})
	}
	// 已确认或配送中但尚未付款的订单只更新支付状态
	affected, err := s.orderRepo.CompareAndSetStatus(order.OrderID, order.Status, map[string]interface{}{
		"payment_status": constants.PaymentStatusPaid,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderUpdateFailed, err)
	}
	if affected == 0 {
		return nil, ErrOrderStatusConflict
	}
	previous := order.PaymentStatus
	order.PaymentStatus = constants.PaymentStatusPaid
	s.publish(ctx, constants.EventOrderPaymentUpdated, order, previous)
	return order, nil
}

// transition 以状态比较并交换的方式执行迁移及其副作用
func (s *OrderService) transition(ctx context.Context, order *models.Order, target string, extra map[string]interface{}) (*models.Order, error) {
	noop, err := checkTransition(order.Status, target)
	if err != nil {
		return nil, err
	}
	if noop {
		return order, nil
	}
	now := time.Now()
	updates := map[string]interface{}{
		"status":     target,
		"updated_at": now,
	}
	for key, value := range extra {
		updates[key] = value
	}
	if target == constants.OrderStatusDelivered {
		updates["payment_status"] = constants.PaymentStatusPaid
		updates["shipping_date"] = now
	}
	affected, err := s.orderRepo.CompareAndSetStatus(order.OrderID, order.Status, updates)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderUpdateFailed, err)
	}
	if affected == 0 {
		return nil, s.resolveTransitionConflict(order.OrderID)
	}

	previous := order.Status
	order.Status = target
	order.UpdatedAt = now
	if status, ok := updates["payment_status"].(string); ok {
		order.PaymentStatus = status
	}
	if target == constants.OrderStatusDelivered {
		order.ShippingDate = &now
	}
	metrics.OrderTransitionTotal.WithLabelValues(target).Inc()
	logger.Infow("order_status_changed", "order_id", order.OrderID, "from", previous, "to", target)

	if target == constants.OrderStatusCancelled {
		s.releaseStock(ctx, order)
	}
	s.publish(ctx, constants.EventOrderStatusChanged, order, previous)
	return order, nil
}

// resolveTransitionConflict 比较并交换失败时重新读取订单，区分终态与并发修改
func (s *OrderService) resolveTransitionConflict(orderID string) error {
	latest, err := s.orderRepo.GetActiveByOrderID(orderID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	if latest == nil {
		return ErrOrderNotFound
	}
	if IsTerminalStatus(latest.Status) {
		return ErrOrderStatusTerminal
	}
	return ErrOrderStatusConflict
}

func (s *OrderService) getActiveOrder(orderID string) (*models.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetActiveByOrderID(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOrderFetchFailed, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) enqueueStockRestoreRetry(orderID string) {
	if !s.queueClient.Enabled() {
		logger.Errorw("order_stock_restore_retry_unavailable", "order_id", orderID)
		return
	}
	if err := s.queueClient.EnqueueOrderStockRestore(orderID, stockRestoreRetryDelay); err != nil {
		logger.Errorw("order_enqueue_stock_restore_failed", "order_id", orderID, "error", err)
	}
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order, previous string) {
	event := events.OrderEvent{
		Type:           eventType,
		OrderID:        order.OrderID,
		UserID:         order.UserID,
		Status:         order.Status,
		PaymentStatus:  order.PaymentStatus,
		PreviousStatus: previous,
		TotalMoney:     order.TotalMoney.String(),
		OccurredAt:     time.Now(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Warnw("order_event_publish_failed", "order_id", order.OrderID, "event_type", eventType, "error", err)
	}
}

func (s *OrderService) paymentExpireDuration() time.Duration {
	minutes := s.expireMinutes
	if minutes <= 0 {
		minutes = 15
	}
	return time.Duration(minutes) * time.Minute
}

func normalizePlaceOrderInput(input *PlaceOrderInput) (string, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.PhoneNumber = strings.TrimSpace(input.PhoneNumber)
	input.Address = strings.TrimSpace(input.Address)
	input.Note = strings.TrimSpace(input.Note)
	if input.FullName == "" || input.PhoneNumber == "" || input.Address == "" {
		return "", ErrInvalidOrderInput
	}
	method := strings.ToUpper(strings.TrimSpace(input.PaymentMethod))
	switch method {
	case "":
		return constants.PaymentMethodCOD, nil
	case constants.PaymentMethodCOD, constants.PaymentMethodVNPay:
		return method, nil
	}
	return "", ErrInvalidPaymentMethod
}

// selectCartItems 按选择过滤购物车项，保留购物车中的顺序
func selectCartItems(items []models.CartItem, selected []uint) []models.CartItem {
	wanted := make(map[uint]bool, len(selected))
	for _, id := range selected {
		if id != 0 {
			wanted[id] = true
		}
	}
	result := make([]models.CartItem, 0, len(wanted))
	for _, item := range items {
		if wanted[item.ProductID] && item.Quantity > 0 {
			result = append(result, item)
		}
	}
	return result
}

func stockItemsOf(order *models.Order) []inventory.StockItem {
	items := make([]inventory.StockItem, 0, len(order.Details))
	for _, detail := range order.Details {
		items = append(items, inventory.StockItem{ProductID: detail.ProductID, Quantity: detail.Quantity})
	}
	return items
}

func compensationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
}
