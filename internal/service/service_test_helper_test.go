package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/luxdecor-shop/internal/authn"
	"github.com/luxdecor-shop/internal/constants"
	"github.com/luxdecor-shop/internal/inventory"
	"github.com/luxdecor-shop/internal/models"
	"github.com/luxdecor-shop/internal/payment/vnpay"
	"github.com/luxdecor-shop/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type orderTestEnv struct {
	db        *gorm.DB
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	inventory inventory.Client
	orders    *OrderService
	carts     *CartService
	payments  *PaymentService
	gateway   *vnpay.Config
}

func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := models.Migrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func newOrderTestEnv(t *testing.T) *orderTestEnv {
	t.Helper()
	db := openServiceTestDB(t)
	env := &orderTestEnv{
		db:        db,
		orderRepo: repository.NewOrderRepository(db),
		cartRepo:  repository.NewCartRepository(db),
		gateway: &vnpay.Config{
			TmnCode:    "DEMO0001",
			HashSecret: "SECRETKEY123",
			PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
			ReturnURL:  "http://localhost:8080/payment/vnpay-callback",
		},
	}
	ledger := inventory.NewLedger(repository.NewProductRepository(db), repository.NewStockAdjustmentRepository(db))
	env.inventory = inventory.NewLocalClient(ledger)
	env.rebuild(env.cartRepo)
	return env
}

// rebuild 使用指定的购物车仓库重建服务，便于注入故障
func (e *orderTestEnv) rebuild(cartRepo repository.CartRepository) {
	e.orders = NewOrderService(e.orderRepo, cartRepo, e.inventory, nil, nil, 15)
	e.carts = NewCartService(e.cartRepo, e.inventory)
	e.payments = NewPaymentService(e.orderRepo, e.orders, e.gateway)
}

func (e *orderTestEnv) seedProduct(t *testing.T, name string, price int64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:          name,
		Price:         models.NewMoneyFromDecimal(decimal.NewFromInt(price)),
		Image:         strings.ToLower(name) + ".png",
		StockQuantity: stock,
		IsActive:      true,
	}
	if err := e.db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func (e *orderTestEnv) stockOf(t *testing.T, productID uint) int {
	t.Helper()
	var product models.Product
	if err := e.db.First(&product, productID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	return product.StockQuantity
}

func (e *orderTestEnv) addToCart(t *testing.T, userID, productID uint, quantity int) {
	t.Helper()
	if _, err := e.carts.AddItem(context.Background(), userID, productID, quantity); err != nil {
		t.Fatalf("add to cart failed: %v", err)
	}
}

func (e *orderTestEnv) placeOrder(t *testing.T, identity authn.Identity, method string, productIDs ...uint) *models.Order {
	t.Helper()
	order, err := e.orders.PlaceOrder(context.Background(), identity, placeInput(method, productIDs...))
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	return order
}

func (e *orderTestEnv) reloadOrder(t *testing.T, orderID string) *models.Order {
	t.Helper()
	order, err := e.orderRepo.GetByOrderID(orderID)
	if err != nil || order == nil {
		t.Fatalf("reload order failed: %v", err)
	}
	return order
}

func placeInput(method string, productIDs ...uint) PlaceOrderInput {
	return PlaceOrderInput{
		FullName:           "Nguyen Van A",
		PhoneNumber:        "0900000001",
		Address:            "12 Le Loi, District 1",
		PaymentMethod:      method,
		SelectedProductIDs: productIDs,
	}
}

func userIdentity(userID uint) authn.Identity {
	return authn.Identity{UserID: userID, Email: fmt.Sprintf("user%d@example.com", userID), Role: constants.RoleUser}
}

func adminIdentity() authn.Identity {
	return authn.Identity{UserID: 9000, Email: "admin@example.com", Role: constants.RoleAdmin}
}
