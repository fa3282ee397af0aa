package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/luxdecor-shop/internal/authn"
	"github.com/luxdecor-shop/internal/config"
	"github.com/luxdecor-shop/internal/constants"
	handlershared "github.com/luxdecor-shop/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func TestKeyByIPAndQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/payment/vnpay-callback?vnp_TxnRef=%20OD123%20", nil)
	c.Request.RemoteAddr = "1.2.3.4:5678"

	key := KeyByIPAndQuery("vnp_TxnRef")(c)
	if key != "od123|1.2.3.4" {
		t.Fatalf("key want od123|1.2.3.4 got %s", key)
	}

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/payment/vnpay-callback", nil)
	c.Request.RemoteAddr = "1.2.3.4:5678"
	if key := KeyByIPAndQuery("vnp_TxnRef")(c); key != "1.2.3.4" {
		t.Fatalf("missing field should fall back to ip, got %s", key)
	}
}

func TestKeyByIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/orders/place", nil)
	c.Request.RemoteAddr = "5.6.7.8:1234"
	if key := KeyByIdentity(c); key != "5.6.7.8" {
		t.Fatalf("anonymous key want ip got %s", key)
	}

	handlershared.SetIdentity(c, authn.Identity{UserID: 42, Role: constants.RoleUser})
	if key := KeyByIdentity(c); key != "user:42" {
		t.Fatalf("key want user:42 got %s", key)
	}
}

func TestNewRateLimitRule(t *testing.T) {
	rule := NewRateLimitRule("lx:rate:place_order", config.RateLimitRuleConfig{WindowSeconds: 60, MaxRequests: 10, BlockSeconds: 120})
	if rule.Prefix != "lx:rate:place_order" || rule.WindowSeconds != 60 || rule.MaxRequests != 10 || rule.BlockSeconds != 120 {
		t.Fatalf("unexpected rule: %+v", rule)
	}
}

func TestRateLimitMiddlewareWithoutClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimitMiddleware(nil, RateLimitRule{WindowSeconds: 60, MaxRequests: 1}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("expected handler response body, got %s", w.Body.String())
	}
}

func TestToInt64(t *testing.T) {
	cases := []struct {
		name  string
		input interface{}
		want  int64
		ok    bool
	}{
		{name: "int64", input: int64(10), want: 10, ok: true},
		{name: "int", input: int(11), want: 11, ok: true},
		{name: "uint32", input: uint32(12), want: 12, ok: true},
		{name: "float64", input: float64(13.9), want: 13, ok: true},
		{name: "string", input: "bad", want: 0, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := toInt64(tc.input)
			if ok != tc.ok {
				t.Fatalf("ok want %v got %v", tc.ok, ok)
			}
			if got != tc.want {
				t.Fatalf("value want %d got %d", tc.want, got)
			}
		})
	}
}
