package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrConfigInvalid    = errors.New("vnpay config invalid")
	ErrInputInvalid     = errors.New("vnpay input invalid")
	ErrSignatureInvalid = errors.New("vnpay signature invalid")
)

const (
	Version       = "2.1.0"
	CommandPay    = "pay"
	CurrencyVND   = "VND"
	OrderTypeMisc = "other"
	LocaleVN      = "vn"

	// ResponseCodeSuccess 支付成功响应码
	ResponseCodeSuccess = "00"

	timestampLayout      = "20060102150405"
	defaultExpireMinutes = 15
	defaultTimezone      = "Asia/Ho_Chi_Minh"
)

// 回调参数名
const (
	ParamTxnRef       = "vnp_TxnRef"
	ParamAmount       = "vnp_Amount"
	ParamResponseCode = "vnp_ResponseCode"
	ParamTransStatus  = "vnp_TransactionStatus"
	ParamTransNo      = "vnp_TransactionNo"
	ParamSecureHash   = "vnp_SecureHash"
	ParamSecureType   = "vnp_SecureHashType"
)

// Config VNPay 商户配置
type Config struct {
	TmnCode       string // 商户号
	HashSecret    string // 签名密钥
	PayURL        string // 支付网关地址
	ReturnURL     string // 回调地址
	ExpireMinutes int    // 支付链接有效期
}

// CreateInput 生成支付链接输入
type CreateInput struct {
	OrderID   string
	Amount    decimal.Decimal
	OrderInfo string
	ClientIP  string
	Now       time.Time
}

// CallbackResult 验签通过后的回调内容
type CallbackResult struct {
	OrderID       string
	ResponseCode  string
	TransactionNo string
	Amount        decimal.Decimal
}

// Success 网关是否报告支付成功
func (r *CallbackResult) Success() bool {
	return r != nil && r.ResponseCode == ResponseCodeSuccess
}

// ValidateConfig 校验配置
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.TmnCode) == "" {
		return fmt.Errorf("%w: tmn_code is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.HashSecret) == "" {
		return fmt.Errorf("%w: hash_secret is required", ErrConfigInvalid)
	}
	if _, err := url.ParseRequestURI(strings.TrimSpace(cfg.PayURL)); err != nil {
		return fmt.Errorf("%w: pay_url is invalid", ErrConfigInvalid)
	}
	if _, err := url.ParseRequestURI(strings.TrimSpace(cfg.ReturnURL)); err != nil {
		return fmt.Errorf("%w: return_url is invalid", ErrConfigInvalid)
	}
	return nil
}

// BuildPaymentURL 生成带签名的支付跳转链接
func BuildPaymentURL(cfg *Config, input CreateInput) (string, error) {
	if err := ValidateConfig(cfg); err != nil {
		return "", err
	}
	orderID := strings.TrimSpace(input.OrderID)
	if orderID == "" {
		return "", fmt.Errorf("%w: order id is required", ErrInputInvalid)
	}
	if input.Amount.Sign() <= 0 {
		return "", fmt.Errorf("%w: amount must be positive", ErrInputInvalid)
	}
	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.In(gatewayLocation())
	expireMinutes := cfg.ExpireMinutes
	if expireMinutes <= 0 {
		expireMinutes = defaultExpireMinutes
	}
	orderInfo := strings.TrimSpace(input.OrderInfo)
	if orderInfo == "" {
		orderInfo = "Thanh toan don hang " + orderID
	}
	clientIP := strings.TrimSpace(input.ClientIP)
	if clientIP == "" {
		clientIP = "127.0.0.1"
	}

	params := map[string]string{
		"vnp_Version":    Version,
		"vnp_Command":    CommandPay,
		"vnp_TmnCode":    strings.TrimSpace(cfg.TmnCode),
		ParamAmount:      FormatAmount(input.Amount),
		"vnp_CurrCode":   CurrencyVND,
		ParamTxnRef:      orderID,
		"vnp_OrderInfo":  orderInfo,
		"vnp_OrderType":  OrderTypeMisc,
		"vnp_Locale":     LocaleVN,
		"vnp_ReturnUrl":  strings.TrimSpace(cfg.ReturnURL),
		"vnp_IpAddr":     clientIP,
		"vnp_CreateDate": now.Format(timestampLayout),
		"vnp_ExpireDate": now.Add(time.Duration(expireMinutes) * time.Minute).Format(timestampLayout),
	}
	content := buildSignContent(params)
	signature := sign(content, cfg.HashSecret)
	return strings.TrimSpace(cfg.PayURL) + "?" + content + "&" + ParamSecureHash + "=" + signature, nil
}

// VerifyCallback 校验回调签名并解析结果
func VerifyCallback(cfg *Config, form map[string][]string) (*CallbackResult, error) {
	if cfg == nil || strings.TrimSpace(cfg.HashSecret) == "" {
		return nil, ErrConfigInvalid
	}
	provided := strings.TrimSpace(firstValue(form, ParamSecureHash))
	if provided == "" {
		return nil, ErrSignatureInvalid
	}
	params := make(map[string]string, len(form))
	for key, values := range form {
		if len(values) == 0 || !strings.HasPrefix(key, "vnp_") {
			continue
		}
		params[key] = values[0]
	}
	expected := sign(buildSignContent(params), cfg.HashSecret)
	if !hmac.Equal([]byte(strings.ToLower(provided)), []byte(expected)) {
		return nil, ErrSignatureInvalid
	}

	result := &CallbackResult{
		OrderID:       strings.TrimSpace(params[ParamTxnRef]),
		ResponseCode:  strings.TrimSpace(params[ParamResponseCode]),
		TransactionNo: strings.TrimSpace(params[ParamTransNo]),
	}
	if raw := strings.TrimSpace(params[ParamAmount]); raw != "" {
		scaled, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: amount is invalid", ErrInputInvalid)
		}
		result.Amount = decimal.New(scaled, -2)
	}
	return result, nil
}

// SignForm 按网关规则对参数签名，返回十六进制签名
func SignForm(secret string, form map[string][]string) string {
	params := make(map[string]string, len(form))
	for key, values := range form {
		if len(values) == 0 {
			continue
		}
		params[key] = values[0]
	}
	return sign(buildSignContent(params), secret)
}

// FormatAmount 网关金额为实际金额乘以 100 的整数
func FormatAmount(amount decimal.Decimal) string {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).StringFixed(0)
}

// buildSignContent 按键名升序拼接 key=value，值使用 URL 编码，签名字段与空值不参与
func buildSignContent(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		if k == ParamSecureHash || k == ParamSecureType {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, url.QueryEscape(k)+"="+url.QueryEscape(params[k]))
	}
	return strings.Join(pairs, "&")
}

func sign(content, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(content))
	return hex.EncodeToString(mac.Sum(nil))
}

func gatewayLocation() *time.Location {
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.FixedZone("ICT", 7*60*60)
	}
	return loc
}

func firstValue(form map[string][]string, key string) string {
	if values, ok := form[key]; ok && len(values) > 0 {
		return values[0]
	}
	return ""
}
