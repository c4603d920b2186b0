package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/GarageLink/GarageLink/internal/apperr"
	"github.com/GarageLink/GarageLink/internal/common/logger"
	"github.com/GarageLink/GarageLink/internal/common/middleware"
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

// TokenSource 提供当前会话的 access token，空字符串表示未登录。
type TokenSource interface {
	AccessToken() string
}

// Options 客户端初始化参数
type Options struct {
	BaseURL      string
	Timeout      time.Duration // 单请求超时，<=0 时取 15s
	MaxFailures  int           // 熔断触发失败次数
	ResetTimeout time.Duration // 熔断重置时间
	Tokens       TokenSource   // 可选
	Logger       logger.Logger
	Transport    http.RoundTripper // 测试注入用，默认 http.DefaultTransport
}

// Client REST 适配器。
// 职责：拼 URL、带 token、编解码 JSON、打 span、归一化错误。
// 所有远端失败都会落到 apperr 下的四类错误之一，不向上抛裸 error。
type Client struct {
	base    string
	hc      *http.Client
	tokens  TokenSource
	log     logger.Logger
	breaker *middleware.CircuitBreaker
	timeout time.Duration
}

// New 创建REST客户端
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Client{
		base:    strings.TrimRight(opts.BaseURL, "/"),
		hc:      &http.Client{Transport: transport},
		tokens:  opts.Tokens,
		log:     opts.Logger,
		breaker: middleware.NewCircuitBreaker("api", opts.MaxFailures, opts.ResetTimeout),
		timeout: timeout,
	}
}

// Get 发起 GET 请求并把响应 JSON 解到 out（out 可为 nil）。
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post 发起 POST 请求，in 编码为 JSON 请求体。
func (c *Client) Post(ctx context.Context, path string, in, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, in, out)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	if c == nil || c.hc == nil {
		return apperr.NewNetworkError(path, fmt.Errorf("client not initialized"))
	}

	op := method + " " + path

	err := c.breaker.Call(ctx, func() error {
		return c.roundTrip(ctx, method, path, in, out)
	})
	if err == middleware.ErrBreakerOpen {
		// 熔断视同网络失败，界面按空/旧数据降级
		return apperr.NewNetworkError(op, err)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, in, out interface{}) error {
	op := method + " " + path

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	url := c.base + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return apperr.NewNetworkError(op, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	span, _ := opentracing.StartSpanFromContext(ctx, "api."+op)
	defer span.Finish()
	ext.HTTPMethod.Set(span, method)
	ext.HTTPUrl.Set(span, url)
	ext.SpanKindRPCClient.Set(span)
	_ = opentracing.GlobalTracer().Inject(
		span.Context(),
		opentracing.HTTPHeaders,
		opentracing.HTTPHeadersCarrier(req.Header),
	)

	resp, err := c.hc.Do(req)
	if err != nil {
		ext.Error.Set(span, true)
		if c.log != nil {
			c.log.WithError(err).Warnf("request failed: %s", op)
		}
		return apperr.NewNetworkError(op, err)
	}
	defer resp.Body.Close()

	ext.HTTPStatusCode.Set(span, uint16(resp.StatusCode))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.NewNetworkError(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response for %s: %w", op, err)
	}
	return nil
}

// statusError 非 2xx 响应归一化：
// 401/402/403 视为授权问题（试用/订阅失效），其余带上服务端 message。
func (c *Client) statusError(status int, body []byte) error {
	msg := serverMessage(body)
	switch status {
	case http.StatusUnauthorized, http.StatusPaymentRequired, http.StatusForbidden:
		if msg == "" {
			msg = "no active trial or subscription"
		}
		return &apperr.AuthorizationError{Reason: msg}
	default:
		return &apperr.ServerError{Status: status, Message: msg}
	}
}

// serverMessage 尽量从响应体里挖出人类可读的错误信息。
func serverMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var envelope struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	for _, m := range []string{envelope.Message, envelope.Detail, envelope.Error} {
		if strings.TrimSpace(m) != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}
