package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultHTTPTimeout = 5 * time.Second

// TokenSource 为服务间调用提供令牌
type TokenSource func() (string, error)

// HTTPClient 通过 REST 接口访问独立部署的商品服务
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
}

// NewHTTPClient 创建商品服务 HTTP 客户端
func NewHTTPClient(baseURL string, timeout time.Duration, token TokenSource) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
		token:      token,
	}
}

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

// FetchProduct 查询商品快照
func (c *HTTPClient) FetchProduct(ctx context.Context, productID uint) (*ProductSnapshot, error) {
	if productID == 0 {
		return nil, ErrProductNotFound
	}
	endpoint := "/api/products/" + strconv.FormatUint(uint64(productID), 10)
	env, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var snapshot ProductSnapshot
	if err := json.Unmarshal(env.Data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: decode product failed", ErrUpstreamUnavailable)
	}
	if snapshot.ID == 0 {
		snapshot.ID = productID
	}
	return &snapshot, nil
}

// ReduceStock 批量扣减库存
func (c *HTTPClient) ReduceStock(ctx context.Context, reference string, items []StockItem) error {
	return c.adjust(ctx, "/api/products/reduce-stock", reference, items)
}

// RestoreStock 批量归还库存
func (c *HTTPClient) RestoreStock(ctx context.Context, reference string, items []StockItem) error {
	return c.adjust(ctx, "/api/products/restore-stock", reference, items)
}

func (c *HTTPClient) adjust(ctx context.Context, endpoint, reference string, items []StockItem) error {
	merged, err := MergeStockItems(items)
	if err != nil {
		return err
	}
	body, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("%w: marshal request failed", ErrUpstreamUnavailable)
	}
	if reference = strings.TrimSpace(reference); reference != "" {
		endpoint += "?reference=" + url.QueryEscape(reference)
	}
	_, err = c.do(ctx, http.MethodPut, endpoint, body)
	return err
}

func (c *HTTPClient) do(ctx context.Context, method, endpoint string, body []byte) (*envelope, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: build request failed", ErrUpstreamUnavailable)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		token, err := c.token()
		if err != nil {
			return nil, fmt.Errorf("%w: sign service token failed: %v", ErrUpstreamUnavailable, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response failed", ErrUpstreamUnavailable)
	}
	env := &envelope{}
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, env); err != nil && resp.StatusCode < 300 {
			return nil, fmt.Errorf("%w: decode response failed", ErrUpstreamUnavailable)
		}
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 && env.StatusCode == 0 {
		return env, nil
	}

	var detail ErrorDetail
	if len(env.Data) > 0 {
		_ = json.Unmarshal(env.Data, &detail)
	}
	statusCode := resp.StatusCode
	if statusCode < 300 {
		statusCode = env.StatusCode
	}
	if statusCode >= 500 {
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, statusCode)
	}
	return nil, errorFromDetail(statusCode, detail)
}
