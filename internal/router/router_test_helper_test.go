package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/luxdecor-shop/internal/authn"
	"github.com/luxdecor-shop/internal/config"
	"github.com/luxdecor-shop/internal/constants"
	"github.com/luxdecor-shop/internal/models"
	"github.com/luxdecor-shop/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type routerTestEnv struct {
	db        *gorm.DB
	cfg       *config.Config
	container *provider.Container
	engine    *gin.Engine
}

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func newRouterTestConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Mode: "debug"},
		JWT:     config.JWTConfig{SecretKey: "router-test-secret", Issuer: "identity-service"},
		Catalog: config.CatalogConfig{Mode: constants.CatalogModeLocal},
		VNPay: config.VNPayConfig{
			TmnCode:    "DEMO0001",
			HashSecret: "SECRETKEY123",
			PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
			ReturnURL:  "http://localhost:8080/payment/vnpay-callback",
		},
		Metrics: config.MetricsConfig{Enabled: true},
		Order:   config.OrderConfig{PaymentExpireMinutes: 15},
	}
}

func newRouterTestEnv(t *testing.T) *routerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	cfg := newRouterTestConfig()
	container, err := provider.NewContainerWithDB(cfg, db)
	if err != nil {
		t.Fatalf("init container failed: %v", err)
	}
	t.Cleanup(container.Close)
	return &routerTestEnv{
		db:        db,
		cfg:       cfg,
		container: container,
		engine:    SetupRouter(cfg, container),
	}
}

func (e *routerTestEnv) seedProduct(t *testing.T, name string, price int64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:          name,
		Price:         models.NewMoneyFromDecimal(decimal.NewFromInt(price)),
		StockQuantity: stock,
		IsActive:      true,
	}
	if err := e.db.Create(product).Error; err != nil {
		t.Fatalf("seed product failed: %v", err)
	}
	return product
}

func (e *routerTestEnv) stockOf(t *testing.T, productID uint) int {
	t.Helper()
	var product models.Product
	if err := e.db.First(&product, productID).Error; err != nil {
		t.Fatalf("load product failed: %v", err)
	}
	return product.StockQuantity
}

func (e *routerTestEnv) token(t *testing.T, identity authn.Identity) string {
	t.Helper()
	token, _, err := e.container.TokenManager.Issue(identity, time.Hour)
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}
	return token
}

func (e *routerTestEnv) userToken(t *testing.T, userID uint) string {
	return e.token(t, authn.Identity{UserID: userID, Email: fmt.Sprintf("user%d@example.com", userID), Role: constants.RoleUser})
}

func (e *routerTestEnv) adminToken(t *testing.T) string {
	return e.token(t, authn.Identity{UserID: 9000, Email: "admin@example.com", Role: constants.RoleAdmin})
}

func (e *routerTestEnv) serviceToken(t *testing.T) string {
	return e.token(t, authn.Identity{Role: constants.RoleService})
}

// do 发起请求，body 为 nil 时不带请求体
func (e *routerTestEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) envelope {
	t.Helper()
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
	}
	if dest != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, dest); err != nil {
			t.Fatalf("unmarshal data failed: %v data=%s", err, string(resp.Data))
		}
	}
	return resp
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("http status want %d got %d body=%s", want, w.Code, w.Body.String())
	}
}

func placeOrderBody(method string, productIDs ...uint) map[string]interface{} {
	return map[string]interface{}{
		"fullName":           "Nguyen Van A",
		"phoneNumber":        "0900000000",
		"address":            "12 Hang Bac, Ha Noi",
		"paymentMethod":      method,
		"selectedProductIds": productIDs,
	}
}
